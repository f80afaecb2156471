package repository

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestNewPGRepositories(t *testing.T) {
	pool := &pgxpool.Pool{}

	assert.NotNil(t, NewUserRepository(pool))
	assert.NotNil(t, NewFlightRepository(pool))
	assert.NotNil(t, NewBookingRepository(pool))
	assert.NotNil(t, NewLedgerRepository(pool))
	assert.NotNil(t, NewAttemptRepository(pool))
}

func TestPGStore_RepositoriesShareHandle(t *testing.T) {
	pool := &pgxpool.Pool{}
	store := NewPGStore(pool)

	users, ok := store.Users().(*PGUserRepository)
	assert.True(t, ok)
	assert.Equal(t, dbtx(pool), users.db)
}
