package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"telegram-pix-packs/internal/domain/model"
	"telegram-pix-packs/internal/domain/ports/repository"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

// Totals is the operational snapshot served to the admin dashboard.
type Totals struct {
	ActivePayments int
	PendingCount   int
	UniqueBuyers   int
	RevenueCents   int64
	ActiveByPack   map[string]int
}

type StatsUseCase interface {
	Totals(ctx context.Context) (*Totals, error)
	ListPending(ctx context.Context) ([]*model.PaymentRecord, error)
	ListActive(ctx context.Context) ([]*model.PaymentRecord, error)
}

type statsUC struct {
	store   repository.PaymentStore
	catalog model.PackCatalog
	log     *zerolog.Logger
}

func NewStatsUseCase(store repository.PaymentStore, catalog model.PackCatalog, logger *zerolog.Logger) *statsUC {
	return &statsUC{store: store, catalog: catalog, log: logger}
}

func (s *statsUC) Totals(ctx context.Context) (*Totals, error) {
	active, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.store.ListPending(ctx)
	if err != nil {
		return nil, err
	}

	buyers := map[int64]struct{}{}
	byPack := map[string]int{}
	var revenue int64
	for _, rec := range active {
		buyers[rec.UserID] = struct{}{}
		byPack[rec.PackType]++
		revenue += s.catalog.PriceCents(rec.PackType)
	}

	return &Totals{
		ActivePayments: len(active),
		PendingCount:   len(pending),
		UniqueBuyers:   len(buyers),
		RevenueCents:   revenue,
		ActiveByPack:   byPack,
	}, nil
}

func (s *statsUC) ListPending(ctx context.Context) ([]*model.PaymentRecord, error) {
	return s.store.ListPending(ctx)
}

func (s *statsUC) ListActive(ctx context.Context) ([]*model.PaymentRecord, error) {
	return s.store.ListActive(ctx)
}
