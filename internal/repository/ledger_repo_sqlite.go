package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/airwallet/internal/domain"
	"github.com/jmoiron/sqlx"
)

type walletTransactionRow struct {
	ID          int64  `db:"id"`
	UserID      int64  `db:"user_id"`
	Amount      int64  `db:"amount"`
	Type        string `db:"type"`
	Description string `db:"description"`
	CreatedAt   int64  `db:"created_at"`
}

type SQLiteLedgerRepository struct {
	db sqlx.ExtContext
}

func (r *SQLiteLedgerRepository) Append(ctx context.Context, t *domain.WalletTransaction) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	return sqlx.GetContext(ctx, r.db, &t.ID, `INSERT INTO wallet_transactions (user_id, amount, type, description, created_at)
		VALUES (?, ?, ?, ?, ?) RETURNING id`, t.UserID, t.Amount, string(t.Type), t.Description, toNanos(t.CreatedAt))
}

func (r *SQLiteLedgerRepository) ListByUser(ctx context.Context, userID int64) ([]domain.WalletTransaction, error) {
	var rows []walletTransactionRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, `SELECT id, user_id, amount, type, description, created_at
		FROM wallet_transactions WHERE user_id=? ORDER BY created_at DESC, id DESC`, userID); err != nil {
		return nil, err
	}
	txs := make([]domain.WalletTransaction, 0, len(rows))
	for _, row := range rows {
		txs = append(txs, domain.WalletTransaction{
			ID:          row.ID,
			UserID:      row.UserID,
			Amount:      row.Amount,
			Type:        domain.TransactionType(row.Type),
			Description: row.Description,
			CreatedAt:   fromNanos(row.CreatedAt),
		})
	}
	return txs, nil
}

var _ LedgerRepository = (*SQLiteLedgerRepository)(nil)
