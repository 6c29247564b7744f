//go:build integration

package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"telegram-pix-packs/internal/domain"
	"telegram-pix-packs/internal/domain/model"
)

func seedRecord(t *testing.T, repo *paymentRepo, id, userID, chatID int64, pack string) *model.PaymentRecord {
	t.Helper()
	rec := &model.PaymentRecord{PaymentID: id, UserID: userID, Username: "alice", ChatID: chatID, PackType: pack, PixCode: "pix"}
	if err := repo.Save(context.Background(), rec); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return rec
}

func TestPaymentRepo_EnsureSchemaIsIdempotent(t *testing.T) {
	repo := resetTable(t)
	for i := 0; i < 3; i++ {
		if err := repo.EnsureSchema(context.Background()); err != nil {
			t.Fatalf("repeat EnsureSchema call %d: %v", i, err)
		}
	}
}

func TestPaymentRepo_SaveForcesPendingAndDedups(t *testing.T) {
	repo := resetTable(t)
	ctx := context.Background()

	rec := &model.PaymentRecord{PaymentID: 999, UserID: 42, ChatID: 4242, PackType: "premium", PixCode: "pix-999", Status: model.PaymentStatusApproved}
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if rec.Status != model.PaymentStatusPending {
		t.Errorf("save must force pending, got %s", rec.Status)
	}
	if rec.CreatedAt.IsZero() {
		t.Error("created_at must be set by the store")
	}

	dup := &model.PaymentRecord{PaymentID: 999, UserID: 1, ChatID: 1, PackType: "vip", PixCode: "other"}
	if err := repo.Save(ctx, dup); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("duplicate save: expected ErrAlreadyExists, got %v", err)
	}

	// The original row is untouched by the duplicate insert.
	got, err := repo.FindByPaymentID(ctx, 999)
	if err != nil {
		t.Fatal(err)
	}
	if got.PackType != "premium" || got.PixCode != "pix-999" || got.UserID != 42 {
		t.Errorf("dedup overwrote the row: %+v", got)
	}
}

func TestPaymentRepo_UpdateStatus(t *testing.T) {
	repo := resetTable(t)
	ctx := context.Background()

	t.Run("unknown id returns not found", func(t *testing.T) {
		if err := repo.UpdateStatus(ctx, 12345, model.PaymentStatusApproved); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("approval sets a 30 day expiry exactly once", func(t *testing.T) {
		seedRecord(t, repo, 1, 42, 4242, "premium")

		if err := repo.UpdateStatus(ctx, 1, model.PaymentStatusApproved); err != nil {
			t.Fatal(err)
		}
		first, err := repo.FindByPaymentID(ctx, 1)
		if err != nil {
			t.Fatal(err)
		}
		if first.ApprovedAt == nil || first.ExpiresAt == nil {
			t.Fatal("expected both timestamps set")
		}
		if got := first.ExpiresAt.Sub(*first.ApprovedAt); got != model.EntitlementDuration {
			t.Errorf("expires-approved = %v, want 720h", got)
		}

		// A repeated approval must not shift the pair.
		time.Sleep(10 * time.Millisecond)
		if err := repo.UpdateStatus(ctx, 1, model.PaymentStatusApproved); err != nil {
			t.Fatal(err)
		}
		second, _ := repo.FindByPaymentID(ctx, 1)
		if !first.ApprovedAt.Equal(*second.ApprovedAt) || !first.ExpiresAt.Equal(*second.ExpiresAt) {
			t.Error("re-approval shifted the approval timestamps")
		}
	})

	t.Run("non-approval transitions leave timestamps null", func(t *testing.T) {
		seedRecord(t, repo, 2, 42, 4242, "basic")
		if err := repo.UpdateStatus(ctx, 2, model.PaymentStatusRejected); err != nil {
			t.Fatal(err)
		}
		rec, _ := repo.FindByPaymentID(ctx, 2)
		if rec.Status != model.PaymentStatusRejected {
			t.Errorf("status = %s", rec.Status)
		}
		if rec.ApprovedAt != nil || rec.ExpiresAt != nil {
			t.Error("rejection must not touch approval timestamps")
		}
	})

	t.Run("concurrent approvals keep one coherent pair", func(t *testing.T) {
		seedRecord(t, repo, 3, 7, 70, "vip")

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := repo.UpdateStatus(ctx, 3, model.PaymentStatusApproved); err != nil {
					t.Errorf("UpdateStatus: %v", err)
				}
			}()
		}
		wg.Wait()

		rec, _ := repo.FindByPaymentID(ctx, 3)
		if rec.Status != model.PaymentStatusApproved || rec.ApprovedAt == nil || rec.ExpiresAt == nil {
			t.Fatalf("incoherent record: %+v", rec)
		}
		if got := rec.ExpiresAt.Sub(*rec.ApprovedAt); got != model.EntitlementDuration {
			t.Errorf("expires-approved = %v, want 720h", got)
		}
	})
}

func TestPaymentRepo_ActivePacksAndScans(t *testing.T) {
	repo := resetTable(t)
	ctx := context.Background()

	seedRecord(t, repo, 1, 42, 4242, "basic")
	seedRecord(t, repo, 2, 42, 4242, "premium")
	seedRecord(t, repo, 3, 42, 4242, "vip")
	seedRecord(t, repo, 4, 7, 70, "vip")

	for _, id := range []int64{1, 2, 4} {
		if err := repo.UpdateStatus(ctx, id, model.PaymentStatusApproved); err != nil {
			t.Fatal(err)
		}
	}
	// One approved record already expired: push its expiry into the past.
	if _, err := testPool.Exec(ctx, `UPDATE payments SET expires_at = NOW() - interval '1 hour' WHERE payment_id = 1;`); err != nil {
		t.Fatal(err)
	}

	packs, err := repo.ActivePacks(ctx, 42)
	if err != nil {
		t.Fatal(err)
	}
	if len(packs) != 1 || packs[0].PackType != "premium" {
		t.Errorf("ActivePacks(42) = %+v, want [premium]", packs)
	}
	if !packs[0].ExpiresAt.After(time.Now()) {
		t.Error("returned pack is already expired")
	}

	pending, err := repo.ListPending(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].PaymentID != 3 {
		t.Errorf("ListPending = %+v, want [3]", pending)
	}

	active, err := repo.ListActive(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 2 {
		t.Errorf("ListActive returned %d records, want 2", len(active))
	}
	for _, rec := range active {
		if rec.PaymentID == 1 {
			t.Error("expired record leaked into ListActive")
		}
	}
}
