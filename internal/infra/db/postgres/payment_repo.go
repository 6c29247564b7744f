package postgres

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-pix-packs/internal/domain"
	"telegram-pix-packs/internal/domain/model"
	"telegram-pix-packs/internal/domain/ports/repository"
)

var _ repository.PaymentStore = (*paymentRepo)(nil)

// paymentRepo persists the payment ledger in a single payments table.
// Every operation is serialized behind mu: payment volume is low and each
// statement is sub-millisecond, so one writer/reader at a time buys
// simplicity over throughput. The lock is held only around the SQL round
// trip, never around gateway calls (those live in the use case).
type paymentRepo struct {
	mu   sync.Mutex
	pool *pgxpool.Pool
}

func NewPaymentRepo(pool *pgxpool.Pool) *paymentRepo {
	return &paymentRepo{pool: pool}
}

const recordColumns = `payment_id, user_id, username, chat_id, pack_type, status, pix_code, created_at, approved_at, expires_at`

func (r *paymentRepo) EnsureSchema(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	const q = `
CREATE TABLE IF NOT EXISTS payments (
  payment_id  BIGINT PRIMARY KEY,
  user_id     BIGINT NOT NULL,
  username    TEXT NOT NULL DEFAULT '',
  chat_id     BIGINT NOT NULL,
  pack_type   TEXT NOT NULL,
  status      TEXT NOT NULL DEFAULT 'pending',
  pix_code    TEXT NOT NULL,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  approved_at TIMESTAMPTZ,
  expires_at  TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS payments_user_idx ON payments (user_id);
CREATE INDEX IF NOT EXISTS payments_status_idx ON payments (status);`

	if _, err := r.pool.Exec(ctx, q); err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}

// Save inserts the record with status forced to pending and created_at set by
// the database. A duplicate payment_id leaves the existing row untouched and
// returns ErrAlreadyExists.
func (r *paymentRepo) Save(ctx context.Context, rec *model.PaymentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	const q = `
INSERT INTO payments (payment_id, user_id, username, chat_id, pack_type, status, pix_code)
VALUES ($1,$2,$3,$4,$5,'pending',$6)
RETURNING created_at;`

	row := r.pool.QueryRow(ctx, q, rec.PaymentID, rec.UserID, rec.Username, rec.ChatID, rec.PackType, rec.PixCode)
	if err := row.Scan(&rec.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		return domain.ErrOperationFailed
	}
	rec.Status = model.PaymentStatusPending
	rec.ApprovedAt = nil
	rec.ExpiresAt = nil
	return nil
}

func (r *paymentRepo) FindByPaymentID(ctx context.Context, paymentID int64) (*model.PaymentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	const q = `SELECT ` + recordColumns + ` FROM payments WHERE payment_id=$1;`
	return scanRecord(r.pool.QueryRow(ctx, q, paymentID))
}

// UpdateStatus applies a status transition in one statement. The approval
// timestamps are written only on the edge into approved; a record that is
// already approved keeps its original approved_at/expires_at, so a racing or
// repeated approval cannot shift the expiry.
func (r *paymentRepo) UpdateStatus(ctx context.Context, paymentID int64, status model.PaymentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	const q = `
UPDATE payments
   SET status = $2,
       approved_at = CASE WHEN $2 = 'approved' AND status <> 'approved' THEN NOW() ELSE approved_at END,
       expires_at  = CASE WHEN $2 = 'approved' AND status <> 'approved' THEN NOW() + $3::interval ELSE expires_at END
 WHERE payment_id = $1;`

	cmd, err := r.pool.Exec(ctx, q, paymentID, string(status), model.EntitlementDuration)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *paymentRepo) ActivePacks(ctx context.Context, userID int64) ([]model.ActivePack, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	const q = `
SELECT pack_type, expires_at FROM payments
 WHERE user_id=$1 AND status='approved' AND expires_at > NOW()
 ORDER BY created_at, payment_id;`

	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []model.ActivePack
	for rows.Next() {
		var p model.ActivePack
		if err := rows.Scan(&p.PackType, &p.ExpiresAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *paymentRepo) ListPending(ctx context.Context) ([]*model.PaymentRecord, error) {
	const q = `SELECT ` + recordColumns + ` FROM payments WHERE status='pending' ORDER BY created_at, payment_id;`
	return r.list(ctx, q)
}

func (r *paymentRepo) ListActive(ctx context.Context) ([]*model.PaymentRecord, error) {
	const q = `SELECT ` + recordColumns + ` FROM payments WHERE status='approved' AND expires_at > NOW() ORDER BY created_at, payment_id;`
	return r.list(ctx, q)
}

func (r *paymentRepo) list(ctx context.Context, q string) ([]*model.PaymentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.PaymentRecord
	for rows.Next() {
		rec := new(model.PaymentRecord)
		if err := rows.Scan(&rec.PaymentID, &rec.UserID, &rec.Username, &rec.ChatID, &rec.PackType, &rec.Status, &rec.PixCode, &rec.CreatedAt, &rec.ApprovedAt, &rec.ExpiresAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, rec)
	}
	return out, nil
}

func scanRecord(row pgx.Row) (*model.PaymentRecord, error) {
	rec := new(model.PaymentRecord)
	err := row.Scan(&rec.PaymentID, &rec.UserID, &rec.Username, &rec.ChatID, &rec.PackType, &rec.Status, &rec.PixCode, &rec.CreatedAt, &rec.ApprovedAt, &rec.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return rec, nil
}
