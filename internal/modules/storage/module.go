package storage

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"signal_board/internal/modules/config"
	"signal_board/internal/repository"
	"signal_board/internal/repository/file"
	"signal_board/internal/repository/pg"
	"signal_board/pkg/db"
	"signal_board/pkg/logger"
)

// NewBackend выбирает хранилище сигналов по cfg.Storage.
func NewBackend(ctx context.Context, lc fx.Lifecycle, cfg *config.Config) (repository.Backend, error) {
	switch cfg.Storage {
	case config.StoragePostgres:
		poolMaster, err := db.NewPool(ctx, db.PoolConfig{
			DSN: cfg.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create poolMaster: %w", err)
		}

		tx := db.NewPgTxManager(poolMaster)
		if err = tx.Ping(ctx); err != nil {
			tx.Close()
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				tx.Close()
				return nil
			},
		})
		logger.Info("storage: postgres")
		return pg.NewSignals(tx), nil

	case config.StorageFile:
		logger.Info("storage: file %s", cfg.StorePath)
		return file.NewSignals(cfg.StorePath), nil

	case config.StorageMemory:
		logger.Warn("storage: memory, signals are lost on restart")
		return repository.NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
}

func Module() fx.Option {
	return fx.Module("storage",
		fx.Provide(
			NewBackend,
			repository.NewFacade,
		),
	)
}
