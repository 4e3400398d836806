package datastore

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/internal/config"
	pgInfra "github.com/fastygo/taskboard/internal/infrastructure/postgres"
	sqliteInfra "github.com/fastygo/taskboard/internal/infrastructure/sqlite"
	"github.com/fastygo/taskboard/repository"
	pgRepo "github.com/fastygo/taskboard/repository/postgres"
	sqliteRepo "github.com/fastygo/taskboard/repository/sqlite"
)

// Store is the process-wide task store together with its connection pool.
type Store struct {
	repository.TaskRepository

	resolution Resolution
	ping       func(ctx context.Context) error
	close      func() error
}

// Resolution reports where the store is connected.
func (s *Store) Resolution() Resolution {
	return s.resolution
}

// Ping checks that the underlying database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.ping == nil {
		return fmt.Errorf("store not opened")
	}
	return s.ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close()
}

// Open builds the store described by res. Postgres schemas are migrated when
// migrate is set; the local database always auto-migrates its models.
func Open(ctx context.Context, res Resolution, cfg config.DatabaseConfig, migrate bool, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch res.Driver {
	case DriverPostgres:
		return openPostgres(ctx, res, cfg, migrate, logger)
	case DriverSQLite:
		return openSQLite(res, logger)
	default:
		return nil, fmt.Errorf("unsupported datastore driver %q", res.Driver)
	}
}

func openPostgres(ctx context.Context, res Resolution, cfg config.DatabaseConfig, migrate bool, logger *zap.Logger) (*Store, error) {
	pgxCfg, err := pgInfra.ParseConfig(pgInfra.PoolOptions{
		DSN:             res.DSN,
		User:            res.User,
		Password:        res.Password,
		MaxConns:        cfg.MaxOpenConns,
		MinConns:        cfg.MaxIdleConns,
		MaxConnLifetime: cfg.MaxConnLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", res.Source, err)
	}

	if migrate {
		if err := pgInfra.RunMigrations(pgxCfg, logger); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}

	pool, err := pgInfra.NewPool(ctx, pgxCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("postgres connection: %w", err)
	}

	return &Store{
		TaskRepository: pgRepo.NewTaskRepository(pool),
		resolution:     res,
		ping:           pool.Ping,
		close: func() error {
			pool.Close()
			return nil
		},
	}, nil
}

func openSQLite(res Resolution, logger *zap.Logger) (*Store, error) {
	db, err := sqliteInfra.Open(res.LocalPath, logger, sqliteRepo.Models()...)
	if err != nil {
		return nil, fmt.Errorf("local database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	return &Store{
		TaskRepository: sqliteRepo.NewTaskRepository(db),
		resolution:     res,
		ping:           sqlDB.PingContext,
		close: func() error {
			return sqliteInfra.Close(db)
		},
	}, nil
}
