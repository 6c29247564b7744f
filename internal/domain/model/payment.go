package model

import "time"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"   // charge created; awaiting settlement at provider
	PaymentStatusApproved  PaymentStatus = "approved"  // provider reports the PIX was paid
	PaymentStatusRejected  PaymentStatus = "rejected"  // provider rejected the charge
	PaymentStatusCancelled PaymentStatus = "cancelled" // charge expired or was cancelled
	PaymentStatusUnknown   PaymentStatus = "unknown"   // provider reported something we do not recognize
)

// EntitlementDuration is how long a pack stays active after approval.
const EntitlementDuration = 30 * 24 * time.Hour

// NormalizeStatus maps a raw provider status onto our enum. Anything outside
// the four recognized values (including an empty string) becomes unknown,
// which is retryable by re-verifying.
func NormalizeStatus(raw string) PaymentStatus {
	switch PaymentStatus(raw) {
	case PaymentStatusPending, PaymentStatusApproved, PaymentStatusRejected, PaymentStatusCancelled:
		return PaymentStatus(raw)
	default:
		return PaymentStatusUnknown
	}
}

// PaymentRecord is the persisted payment/entitlement row, keyed by the
// provider-assigned payment id.
type PaymentRecord struct {
	PaymentID  int64 // assigned by the payment provider at charge creation
	UserID     int64
	Username   string // display label; may be empty
	ChatID     int64  // destination for asynchronous status messages
	PackType   string
	Status     PaymentStatus
	PixCode    string // provider-issued PIX copy-and-paste code, immutable
	CreatedAt  time.Time
	ApprovedAt *time.Time // set once, on the pending->approved edge
	ExpiresAt  *time.Time // ApprovedAt + EntitlementDuration
}

// Active reports whether the record grants an entitlement at instant now.
func (p *PaymentRecord) Active(now time.Time) bool {
	return p.Status == PaymentStatusApproved && p.ExpiresAt != nil && p.ExpiresAt.After(now)
}

// ActivePack is the (pack, expiry) pair returned to entitlement queries.
type ActivePack struct {
	PackType  string
	ExpiresAt time.Time
}
