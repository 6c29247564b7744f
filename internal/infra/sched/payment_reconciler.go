package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"telegram-pix-packs/internal/domain/model"
	"telegram-pix-packs/internal/domain/ports/adapter"
	"telegram-pix-packs/internal/domain/ports/repository"
	"telegram-pix-packs/internal/usecase"
)

// PaymentReconciler periodically re-polls stale pending charges so a user
// who paid but never tapped verify still gets their pack. When a charge
// settles as approved, the user is notified on the chat the record points at.
type PaymentReconciler struct {
	uc         usecase.PaymentUseCase
	store      repository.PaymentStore
	bot        adapter.TelegramBotAdapter
	interval   time.Duration // how often to scan
	staleAfter time.Duration // how old a pending payment must be to retry
	log        *zerolog.Logger
}

func NewPaymentReconciler(uc usecase.PaymentUseCase, store repository.PaymentStore, bot adapter.TelegramBotAdapter, interval, staleAfter time.Duration, logger *zerolog.Logger) *PaymentReconciler {
	if interval <= 0 {
		interval = time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 10 * time.Minute
	}
	return &PaymentReconciler{uc: uc, store: store, bot: bot, interval: interval, staleAfter: staleAfter, log: logger}
}

func (w *PaymentReconciler) Start(ctx context.Context) {
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			w.Tick(ctx)
		}
	}
}

// Tick runs one reconciliation pass. Exported for tests.
func (w *PaymentReconciler) Tick(ctx context.Context) {
	pending, err := w.store.ListPending(ctx)
	if err != nil {
		w.log.Warn().Err(err).Msg("reconciler: list pending failed")
		return
	}
	cutoff := time.Now().Add(-w.staleAfter)
	for _, rec := range pending {
		if rec.CreatedAt.After(cutoff) {
			continue
		}
		res, err := w.uc.Reconcile(ctx, rec.PaymentID)
		if err != nil {
			w.log.Warn().Err(err).Int64("payment_id", rec.PaymentID).Msg("reconciler: refresh failed")
			continue
		}
		if res.Refreshed && res.Status == model.PaymentStatusApproved && w.bot != nil {
			if err := w.bot.SendMessage(ctx, rec.ChatID, "🎉 Pagamento aprovado! Aproveite:"); err != nil {
				w.log.Warn().Err(err).Int64("chat_id", rec.ChatID).Msg("reconciler: notify failed")
			}
		}
	}
}
