//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"telegram-pix-packs/internal/domain"
	"telegram-pix-packs/internal/domain/model"
	"telegram-pix-packs/internal/domain/ports/adapter"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

// memPaymentStore is a small in-memory store used by unit tests. It mirrors
// the real store's contract: insert-once dedup, pending forced on save, and
// approval timestamps written only on the edge into approved.
type memPaymentStore struct {
	mu      sync.Mutex
	records map[int64]*model.PaymentRecord
	seq     int
	order   map[int64]int // payment_id -> insertion order

	saveErr   error
	updateErr error
}

func newMemPaymentStore() *memPaymentStore {
	return &memPaymentStore{records: make(map[int64]*model.PaymentRecord), order: make(map[int64]int)}
}

func (m *memPaymentStore) EnsureSchema(ctx context.Context) error { return nil }

func (m *memPaymentStore) Save(ctx context.Context, rec *model.PaymentRecord) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[rec.PaymentID]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *rec
	cp.Status = model.PaymentStatusPending
	cp.CreatedAt = time.Now()
	cp.ApprovedAt = nil
	cp.ExpiresAt = nil
	m.records[rec.PaymentID] = &cp
	m.seq++
	m.order[rec.PaymentID] = m.seq
	*rec = cp
	return nil
}

func (m *memPaymentStore) FindByPaymentID(ctx context.Context, paymentID int64) (*model.PaymentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[paymentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *memPaymentStore) UpdateStatus(ctx context.Context, paymentID int64, status model.PaymentStatus) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[paymentID]
	if !ok {
		return domain.ErrNotFound
	}
	if status == model.PaymentStatusApproved && rec.Status != model.PaymentStatusApproved {
		now := time.Now()
		exp := now.Add(model.EntitlementDuration)
		rec.ApprovedAt = &now
		rec.ExpiresAt = &exp
	}
	rec.Status = status
	return nil
}

func (m *memPaymentStore) ActivePacks(ctx context.Context, userID int64) ([]model.ActivePack, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	var ids []int64
	for id, rec := range m.records {
		if rec.UserID == userID && rec.Active(now) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return m.order[ids[i]] < m.order[ids[j]] })
	var out []model.ActivePack
	for _, id := range ids {
		out = append(out, model.ActivePack{PackType: m.records[id].PackType, ExpiresAt: *m.records[id].ExpiresAt})
	}
	return out, nil
}

func (m *memPaymentStore) ListPending(ctx context.Context) ([]*model.PaymentRecord, error) {
	return m.listWhere(func(rec *model.PaymentRecord) bool {
		return rec.Status == model.PaymentStatusPending
	})
}

func (m *memPaymentStore) ListActive(ctx context.Context) ([]*model.PaymentRecord, error) {
	now := time.Now()
	return m.listWhere(func(rec *model.PaymentRecord) bool { return rec.Active(now) })
}

func (m *memPaymentStore) listWhere(keep func(*model.PaymentRecord) bool) ([]*model.PaymentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []int64
	for id, rec := range m.records {
		if keep(rec) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return m.order[ids[i]] < m.order[ids[j]] })
	var out []*model.PaymentRecord
	for _, id := range ids {
		cp := *m.records[id]
		out = append(out, &cp)
	}
	return out, nil
}

// count reports how many records exist, by any status.
func (m *memPaymentStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// mockGateway lets each test script the provider's behavior.
type mockGateway struct {
	mu              sync.Mutex
	seq             int64
	CreateChargeFn  func(ctx context.Context, amountCents int64, description string) (adapter.ChargeCreated, error)
	ChargeStatusFn  func(ctx context.Context, paymentID int64) (string, error)
	statusCallCount int
}

func (g *mockGateway) Name() string { return "mock" }

func (g *mockGateway) CreateCharge(ctx context.Context, amountCents int64, description string) (adapter.ChargeCreated, error) {
	if g.CreateChargeFn != nil {
		return g.CreateChargeFn(ctx, amountCents, description)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return adapter.ChargeCreated{PaymentID: 900 + g.seq, PixCode: "pix-code"}, nil
}

func (g *mockGateway) ChargeStatus(ctx context.Context, paymentID int64) (string, error) {
	g.mu.Lock()
	g.statusCallCount++
	g.mu.Unlock()
	if g.ChargeStatusFn != nil {
		return g.ChargeStatusFn(ctx, paymentID)
	}
	return "pending", nil
}

func (g *mockGateway) statusCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.statusCallCount
}
