// File: internal/usecase/payment_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"telegram-pix-packs/internal/domain"
	"telegram-pix-packs/internal/domain/model"
	"telegram-pix-packs/internal/domain/ports/adapter"
	"telegram-pix-packs/internal/domain/ports/repository"
	"telegram-pix-packs/internal/infra/metrics"
)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

// PurchaseResult is what the transport needs to display after a successful
// charge creation.
type PurchaseResult struct {
	PaymentID int64
	PixCode   string
}

// VerificationResult carries the resolved status of one verification pass.
// Refreshed is false when the gateway could not be reached and Status is the
// last persisted state.
type VerificationResult struct {
	PaymentID int64
	Status    model.PaymentStatus
	Refreshed bool
}

type PaymentUseCase interface {
	// InitiatePurchase creates a charge at the provider and persists a
	// pending record. Nothing is persisted when the gateway call fails.
	InitiatePurchase(ctx context.Context, userID int64, username string, chatID int64, packType string, priceCents int64) (*PurchaseResult, error)

	// VerifyPayment re-queries the provider for a record the requester owns
	// and persists any status transition. A requester whose user or chat id
	// does not match the record gets ErrNotAuthorized and causes no write.
	VerifyPayment(ctx context.Context, paymentID, userID, chatID int64) (*VerificationResult, error)

	// Reconcile is VerifyPayment without the ownership check, for the
	// system-initiated background pass over stale pending records.
	Reconcile(ctx context.Context, paymentID int64) (*VerificationResult, error)

	// ActivePacks lists the user's approved, unexpired packs.
	ActivePacks(ctx context.Context, userID int64) ([]model.ActivePack, error)
}

type paymentUC struct {
	store   repository.PaymentStore
	gateway adapter.PaymentGateway
	catalog model.PackCatalog
	log     *zerolog.Logger
}

func NewPaymentUseCase(store repository.PaymentStore, gateway adapter.PaymentGateway, catalog model.PackCatalog, logger *zerolog.Logger) *paymentUC {
	return &paymentUC{store: store, gateway: gateway, catalog: catalog, log: logger}
}

func (u *paymentUC) InitiatePurchase(ctx context.Context, userID int64, username string, chatID int64, packType string, priceCents int64) (*PurchaseResult, error) {
	if packType == "" || priceCents <= 0 {
		return nil, domain.ErrInvalidArgument
	}

	// Gateway round trip happens before, and outside of, any store access.
	desc := fmt.Sprintf("Pagamento do usuário %d", userID)
	charge, err := u.gateway.CreateCharge(ctx, priceCents, desc)
	if err != nil {
		metrics.IncChargeCreateFailure()
		u.log.Warn().Err(err).Int64("user_id", userID).Str("pack", packType).Msg("charge creation failed")
		return nil, err
	}

	rec := &model.PaymentRecord{
		PaymentID: charge.PaymentID,
		UserID:    userID,
		Username:  username,
		ChatID:    chatID,
		PackType:  packType,
		PixCode:   charge.PixCode,
	}
	if err := u.store.Save(ctx, rec); err != nil {
		// The provider assigns a fresh id per charge, so a duplicate here is
		// a replayed save of the same charge: dedup, not a failure.
		if !errors.Is(err, domain.ErrAlreadyExists) {
			u.log.Error().Err(err).Int64("payment_id", charge.PaymentID).Msg("persist pending record failed")
			return nil, err
		}
	}

	metrics.IncChargeCreated(packType)
	u.log.Info().Int64("payment_id", charge.PaymentID).Int64("user_id", userID).Str("pack", packType).Msg("charge created")
	return &PurchaseResult{PaymentID: charge.PaymentID, PixCode: charge.PixCode}, nil
}

func (u *paymentUC) VerifyPayment(ctx context.Context, paymentID, userID, chatID int64) (*VerificationResult, error) {
	rec, err := u.store.FindByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	// The sole access-control check in the system: the stored owner must
	// match the requester on both ids. The error does not leak the owner.
	if rec.UserID != userID || rec.ChatID != chatID {
		u.log.Warn().Int64("payment_id", paymentID).Int64("requester", userID).Msg("verification denied")
		return nil, domain.ErrNotAuthorized
	}
	return u.refresh(ctx, rec)
}

func (u *paymentUC) Reconcile(ctx context.Context, paymentID int64) (*VerificationResult, error) {
	rec, err := u.store.FindByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	return u.refresh(ctx, rec)
}

// refresh polls the provider and persists a transition when the reported
// status differs from the stored one. A gateway failure degrades to the
// last known status instead of failing the user-facing action.
func (u *paymentUC) refresh(ctx context.Context, rec *model.PaymentRecord) (*VerificationResult, error) {
	raw, err := u.gateway.ChargeStatus(ctx, rec.PaymentID)
	if err != nil {
		metrics.IncVerification("stale")
		u.log.Warn().Err(err).Int64("payment_id", rec.PaymentID).Msg("status query failed; returning last known status")
		return &VerificationResult{PaymentID: rec.PaymentID, Status: rec.Status, Refreshed: false}, nil
	}

	status := model.NormalizeStatus(raw)
	if status != rec.Status {
		if err := u.store.UpdateStatus(ctx, rec.PaymentID, status); err != nil {
			return nil, err
		}
		if status == model.PaymentStatusApproved {
			metrics.AddRevenue(rec.PackType, u.catalog.PriceCents(rec.PackType))
		}
		u.log.Info().Int64("payment_id", rec.PaymentID).Str("from", string(rec.Status)).Str("to", string(status)).Msg("payment transition")
	}
	metrics.IncVerification(string(status))
	return &VerificationResult{PaymentID: rec.PaymentID, Status: status, Refreshed: true}, nil
}

func (u *paymentUC) ActivePacks(ctx context.Context, userID int64) ([]model.ActivePack, error) {
	return u.store.ActivePacks(ctx, userID)
}
