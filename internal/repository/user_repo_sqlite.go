package repository

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/Domenick1991/airwallet/internal/domain"
	"github.com/jmoiron/sqlx"
)

type userRow struct {
	ID            int64  `db:"id"`
	Name          string `db:"name"`
	Email         string `db:"email"`
	WalletBalance int64  `db:"wallet_balance"`
	CreatedAt     int64  `db:"created_at"`
	UpdatedAt     int64  `db:"updated_at"`
}

func (r userRow) toDomain() *domain.User {
	return &domain.User{
		ID:            r.ID,
		Name:          r.Name,
		Email:         r.Email,
		WalletBalance: r.WalletBalance,
		CreatedAt:     fromNanos(r.CreatedAt),
		UpdatedAt:     fromNanos(r.UpdatedAt),
	}
}

type SQLiteUserRepository struct {
	db sqlx.ExtContext
}

func (r *SQLiteUserRepository) Create(ctx context.Context, u *domain.User) error {
	now := time.Now().UTC()
	err := sqlx.GetContext(ctx, r.db, &u.ID, `INSERT INTO users (name, email, wallet_balance, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?) RETURNING id`, u.Name, u.Email, u.WalletBalance, toNanos(now), toNanos(now))
	if err != nil {
		return err
	}
	u.CreatedAt, u.UpdatedAt = now, now
	return nil
}

func (r *SQLiteUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var row userRow
	if err := sqlx.GetContext(ctx, r.db, &row, `SELECT id, name, email, wallet_balance, created_at, updated_at FROM users WHERE id=?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *SQLiteUserRepository) Debit(ctx context.Context, userID, amount int64) (int64, error) {
	var balance int64
	err := sqlx.GetContext(ctx, r.db, &balance, `UPDATE users SET wallet_balance = wallet_balance - ?, updated_at = ?
		WHERE id=? AND wallet_balance >= ?
		RETURNING wallet_balance`, amount, toNanos(time.Now()), userID, amount)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	user, err := r.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return 0, &domain.InsufficientFundsError{Balance: user.WalletBalance, Required: amount}
}

func (r *SQLiteUserRepository) Credit(ctx context.Context, userID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	var balance int64
	err := sqlx.GetContext(ctx, r.db, &balance, `UPDATE users SET wallet_balance = wallet_balance + ?, updated_at = ?
		WHERE id=? AND wallet_balance <= ?
		RETURNING wallet_balance`, amount, toNanos(time.Now()), userID, int64(math.MaxInt64)-amount)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	if _, err := r.GetByID(ctx, userID); err != nil {
		return 0, err
	}
	return 0, domain.ErrInvalidAmount
}

var _ UserRepository = (*SQLiteUserRepository)(nil)
