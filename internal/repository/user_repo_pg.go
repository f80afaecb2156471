package repository

import (
	"context"
	"errors"
	"math"

	"github.com/Domenick1991/airwallet/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGUserRepository struct {
	db dbtx
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &PGUserRepository{db: db}
}

func (r *PGUserRepository) Create(ctx context.Context, user *domain.User) error {
	return r.db.QueryRow(ctx, `INSERT INTO users (name, email, wallet_balance)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`, user.Name, user.Email, user.WalletBalance).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *PGUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, email, wallet_balance, created_at, updated_at FROM users WHERE id=$1`, id)
	var u domain.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.WalletBalance, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *PGUserRepository) Debit(ctx context.Context, userID, amount int64) (int64, error) {
	var balance int64
	err := r.db.QueryRow(ctx, `UPDATE users SET wallet_balance = wallet_balance - $2, updated_at = now()
		WHERE id=$1 AND wallet_balance >= $2
		RETURNING wallet_balance`, userID, amount).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	user, err := r.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return 0, &domain.InsufficientFundsError{Balance: user.WalletBalance, Required: amount}
}

// Credit refuses amounts that would push the balance past the int64 range.
func (r *PGUserRepository) Credit(ctx context.Context, userID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	var balance int64
	err := r.db.QueryRow(ctx, `UPDATE users SET wallet_balance = wallet_balance + $2, updated_at = now()
		WHERE id=$1 AND wallet_balance <= $3
		RETURNING wallet_balance`, userID, amount, int64(math.MaxInt64)-amount).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	if _, err := r.GetByID(ctx, userID); err != nil {
		return 0, err
	}
	return 0, domain.ErrInvalidAmount
}

var _ UserRepository = (*PGUserRepository)(nil)
