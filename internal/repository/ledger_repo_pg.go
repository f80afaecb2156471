package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/airwallet/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGLedgerRepository struct {
	db dbtx
}

func NewLedgerRepository(db *pgxpool.Pool) LedgerRepository {
	return &PGLedgerRepository{db: db}
}

func (r *PGLedgerRepository) Append(ctx context.Context, t *domain.WalletTransaction) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	return r.db.QueryRow(ctx, `INSERT INTO wallet_transactions (user_id, amount, type, description, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`, t.UserID, t.Amount, t.Type, t.Description, t.CreatedAt).Scan(&t.ID)
}

func (r *PGLedgerRepository) ListByUser(ctx context.Context, userID int64) ([]domain.WalletTransaction, error) {
	rows, err := r.db.Query(ctx, `SELECT id, user_id, amount, type, description, created_at
		FROM wallet_transactions WHERE user_id=$1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txs := make([]domain.WalletTransaction, 0)
	for rows.Next() {
		var t domain.WalletTransaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.Type, &t.Description, &t.CreatedAt); err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

var _ LedgerRepository = (*PGLedgerRepository)(nil)
