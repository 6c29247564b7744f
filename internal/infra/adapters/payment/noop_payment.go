package payment

import (
	"context"
	"fmt"
	"sync"

	"telegram-pix-packs/internal/domain"
	"telegram-pix-packs/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*NoopPaymentGateway)(nil)

// NoopPaymentGateway is a simple in-memory gateway for dev mode and tests.
// Charges start pending; tests flip them with SetStatus.
type NoopPaymentGateway struct {
	mu       sync.Mutex
	seq      int64
	statuses map[int64]string
}

func NewNoopPaymentGateway() *NoopPaymentGateway {
	return &NoopPaymentGateway{statuses: make(map[int64]string), seq: 1000}
}

func (g *NoopPaymentGateway) Name() string { return "noop" }

func (g *NoopPaymentGateway) CreateCharge(ctx context.Context, amountCents int64, description string) (adapter.ChargeCreated, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	g.statuses[g.seq] = "pending"
	return adapter.ChargeCreated{
		PaymentID: g.seq,
		PixCode:   fmt.Sprintf("noop-pix-%d-%d", g.seq, amountCents),
	}, nil
}

func (g *NoopPaymentGateway) ChargeStatus(ctx context.Context, paymentID int64) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	st, ok := g.statuses[paymentID]
	if !ok {
		return "", domain.ErrNotFound
	}
	return st, nil
}

// SetStatus overrides the reported status for a charge.
func (g *NoopPaymentGateway) SetStatus(paymentID int64, status string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statuses[paymentID] = status
}
