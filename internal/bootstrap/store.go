package bootstrap

import (
	"context"
	"fmt"

	"github.com/Domenick1991/airwallet/config"
	"github.com/Domenick1991/airwallet/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// OpenStore connects the configured backend and applies the schema.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig) (repository.Store, error) {
	var store repository.Store
	switch cfg.Driver {
	case config.DriverPostgres:
		poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("parse postgres config: %w", err)
		}
		poolCfg.MaxConns = cfg.MaxConns
		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		store = repository.NewPGStore(pool)
	case config.DriverSQLite:
		s, err := repository.NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		store = s
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	if err := store.Ping(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("migrate %s: %w", cfg.Driver, err)
	}

	zap.L().Info("Store ready", zap.String("driver", cfg.Driver))
	return store, nil
}
