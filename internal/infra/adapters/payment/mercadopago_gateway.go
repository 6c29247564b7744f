// File: internal/infra/adapters/payment/mercadopago_gateway.go
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"telegram-pix-packs/internal/config"
	"telegram-pix-packs/internal/domain"
	"telegram-pix-packs/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*MercadoPagoGateway)(nil)

const defaultBaseURL = "https://api.mercadopago.com"

// MercadoPagoGateway creates and polls PIX charges through the Mercado Pago
// payments REST API. Settlement is pure client-side polling; no webhook is
// registered.
type MercadoPagoGateway struct {
	accessToken string
	payerEmail  string
	baseURL     string
	chargeTTL   time.Duration
	client      *http.Client
}

func NewMercadoPagoGateway(cfg config.MercadoPagoConfig) (*MercadoPagoGateway, error) {
	if cfg.AccessToken == "" {
		return nil, errors.New("mercadopago access token empty")
	}
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	ttl := cfg.ChargeTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MercadoPagoGateway{
		accessToken: cfg.AccessToken,
		payerEmail:  cfg.PayerEmail,
		baseURL:     base,
		chargeTTL:   ttl,
		client:      &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (m *MercadoPagoGateway) Name() string { return "mercadopago" }

// CreateCharge posts a PIX payment with a one-day expiration horizon and
// returns the provider id plus the copy-and-paste code.
func (m *MercadoPagoGateway) CreateCharge(ctx context.Context, amountCents int64, description string) (adapter.ChargeCreated, error) {
	payload := map[string]any{
		"transaction_amount": float64(amountCents) / 100,
		"payment_method_id":  "pix",
		"installments":       1,
		"description":        description,
		"date_of_expiration": time.Now().Add(m.chargeTTL).Format("2006-01-02T15:04:05.000-07:00"),
		"payer":              map[string]any{"email": m.payerEmail},
	}
	b, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/v1/payments", bytes.NewReader(b))
	if err != nil {
		return adapter.ChargeCreated{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.accessToken)
	req.Header.Set("X-Idempotency-Key", uuid.NewString())

	resp, err := m.client.Do(req)
	if err != nil {
		return adapter.ChargeCreated{}, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return adapter.ChargeCreated{}, fmt.Errorf("%w: create http %d", domain.ErrGatewayUnavailable, resp.StatusCode)
	}

	var out struct {
		ID                 int64 `json:"id"`
		PointOfInteraction struct {
			TransactionData struct {
				QRCode string `json:"qr_code"`
			} `json:"transaction_data"`
		} `json:"point_of_interaction"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return adapter.ChargeCreated{}, domain.ErrMalformedResponse
	}
	if out.ID == 0 || out.PointOfInteraction.TransactionData.QRCode == "" {
		return adapter.ChargeCreated{}, domain.ErrMalformedResponse
	}
	return adapter.ChargeCreated{PaymentID: out.ID, PixCode: out.PointOfInteraction.TransactionData.QRCode}, nil
}

// ChargeStatus returns the raw provider status for a charge.
func (m *MercadoPagoGateway) ChargeStatus(ctx context.Context, paymentID int64) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/v1/payments/%d", m.baseURL, paymentID), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+m.accessToken)

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: status http %d", domain.ErrGatewayUnavailable, resp.StatusCode)
	}

	var out struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", domain.ErrMalformedResponse
	}
	if out.Status == "" {
		return "", domain.ErrMalformedResponse
	}
	return out.Status, nil
}
