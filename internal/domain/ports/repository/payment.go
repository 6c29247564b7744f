package repository

import (
	"context"

	"telegram-pix-packs/internal/domain/model"
)

// PaymentStore owns every read and write against the persisted payment
// ledger. No component touches the backing storage directly.
type PaymentStore interface {
	// EnsureSchema idempotently creates the backing schema.
	EnsureSchema(ctx context.Context) error

	// Save inserts a new record with status forced to pending and created_at
	// set by the store. A duplicate payment_id returns ErrAlreadyExists and
	// leaves the existing row untouched.
	Save(ctx context.Context, rec *model.PaymentRecord) error

	// FindByPaymentID is the point lookup used to authorize verification
	// requests. Returns ErrNotFound for unknown ids.
	FindByPaymentID(ctx context.Context, paymentID int64) (*model.PaymentRecord, error)

	// UpdateStatus transitions a record. On the edge into approved it sets
	// approved_at and expires_at (approved_at + 30 days) in the same write;
	// a record already approved keeps its original timestamps. Returns
	// ErrNotFound for unknown ids.
	UpdateStatus(ctx context.Context, paymentID int64, status model.PaymentStatus) error

	// ActivePacks lists the caller's approved, unexpired packs in insertion
	// order, evaluated against the store clock at call time.
	ActivePacks(ctx context.Context, userID int64) ([]model.ActivePack, error)

	// ListPending and ListActive are full scans for reporting.
	ListPending(ctx context.Context) ([]*model.PaymentRecord, error)
	ListActive(ctx context.Context) ([]*model.PaymentRecord, error)
}
