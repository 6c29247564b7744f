package model

import (
	"testing"
	"time"
)

func TestNormalizeStatus(t *testing.T) {
	cases := map[string]PaymentStatus{
		"pending":      PaymentStatusPending,
		"approved":     PaymentStatusApproved,
		"rejected":     PaymentStatusRejected,
		"cancelled":    PaymentStatusCancelled,
		"in_mediation": PaymentStatusUnknown,
		"refunded":     PaymentStatusUnknown,
		"":             PaymentStatusUnknown,
	}
	for raw, want := range cases {
		if got := NormalizeStatus(raw); got != want {
			t.Errorf("NormalizeStatus(%q) = %s, want %s", raw, got, want)
		}
	}
}

func TestPaymentRecordActive(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	rec := PaymentRecord{Status: PaymentStatusApproved, ExpiresAt: &future}
	if !rec.Active(now) {
		t.Error("approved with future expiry must be active")
	}

	rec.ExpiresAt = &past
	if rec.Active(now) {
		t.Error("expired record must not be active")
	}

	rec = PaymentRecord{Status: PaymentStatusPending, ExpiresAt: &future}
	if rec.Active(now) {
		t.Error("pending record must not be active")
	}

	rec = PaymentRecord{Status: PaymentStatusApproved}
	if rec.Active(now) {
		t.Error("approved without expiry must not be active")
	}
}

func TestPackCatalog(t *testing.T) {
	c := DefaultPackCatalog()

	if p, ok := c.Find("vip"); !ok || p.PriceCents != 250 {
		t.Errorf("vip lookup failed: %+v %v", p, ok)
	}
	if _, ok := c.Find("platinum"); ok {
		t.Error("unknown pack type must not resolve")
	}
	if got := c.PriceCents("basic"); got != 50 {
		t.Errorf("basic price = %d, want 50", got)
	}
	if got := c.PriceCents("nope"); got != 0 {
		t.Errorf("unknown pack price = %d, want 0", got)
	}
}

func TestFormatBRL(t *testing.T) {
	cases := map[int64]string{
		50:   "R$0,50",
		120:  "R$1,20",
		250:  "R$2,50",
		1000: "R$10,00",
		5:    "R$0,05",
	}
	for cents, want := range cases {
		if got := FormatBRL(cents); got != want {
			t.Errorf("FormatBRL(%d) = %s, want %s", cents, got, want)
		}
	}
}
