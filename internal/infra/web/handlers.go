package web

import (
	"encoding/json"
	"net/http"
	"time"

	"telegram-pix-packs/internal/domain/model"
	"telegram-pix-packs/internal/usecase"
)

type paymentView struct {
	PaymentID  int64      `json:"payment_id"`
	UserID     int64      `json:"user_id"`
	Username   string     `json:"username,omitempty"`
	PackType   string     `json:"pack_type"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

func toViews(recs []*model.PaymentRecord) []paymentView {
	out := make([]paymentView, 0, len(recs))
	for _, r := range recs {
		out = append(out, paymentView{
			PaymentID:  r.PaymentID,
			UserID:     r.UserID,
			Username:   r.Username,
			PackType:   r.PackType,
			Status:     string(r.Status),
			CreatedAt:  r.CreatedAt,
			ApprovedAt: r.ApprovedAt,
			ExpiresAt:  r.ExpiresAt,
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

// statsHandler serves the dashboard snapshot.
func statsHandler(statsUC usecase.StatsUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		totals, err := statsUC.Totals(r.Context())
		if err != nil {
			http.Error(w, "Failed to get totals", http.StatusInternalServerError)
			return
		}
		writeJSON(w, struct {
			ActivePayments int            `json:"active_payments"`
			PendingCount   int            `json:"pending_count"`
			UniqueBuyers   int            `json:"unique_buyers"`
			RevenueCents   int64          `json:"revenue_cents"`
			ActiveByPack   map[string]int `json:"active_by_pack"`
		}{
			ActivePayments: totals.ActivePayments,
			PendingCount:   totals.PendingCount,
			UniqueBuyers:   totals.UniqueBuyers,
			RevenueCents:   totals.RevenueCents,
			ActiveByPack:   totals.ActiveByPack,
		})
	}
}

func pendingHandler(statsUC usecase.StatsUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := statsUC.ListPending(r.Context())
		if err != nil {
			http.Error(w, "Failed to list pending payments", http.StatusInternalServerError)
			return
		}
		writeJSON(w, toViews(recs))
	}
}

func activeHandler(statsUC usecase.StatsUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := statsUC.ListActive(r.Context())
		if err != nil {
			http.Error(w, "Failed to list active payments", http.StatusInternalServerError)
			return
		}
		writeJSON(w, toViews(recs))
	}
}
