package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PoolOptions carries a resolved connection string plus the settings applied on top of it.
type PoolOptions struct {
	DSN             string
	User            string
	Password        string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
}

// ParseConfig parses the DSN and applies credential overrides and pool sizing.
func ParseConfig(opts PoolOptions) (*pgxpool.Config, error) {
	pgxCfg, err := pgxpool.ParseConfig(opts.DSN)
	if err != nil {
		return nil, err
	}

	if opts.User != "" {
		pgxCfg.ConnConfig.User = opts.User
	}
	if opts.Password != "" {
		pgxCfg.ConnConfig.Password = opts.Password
	}
	if opts.MaxConns > 0 {
		pgxCfg.MaxConns = int32(opts.MaxConns)
	}
	if opts.MinConns > 0 {
		pgxCfg.MinConns = int32(opts.MinConns)
	}
	if opts.MaxConnLifetime > 0 {
		pgxCfg.MaxConnLifetime = opts.MaxConnLifetime
	}
	return pgxCfg, nil
}

// NewPool creates and validates a pgx connection pool.
func NewPool(ctx context.Context, pgxCfg *pgxpool.Config, logger *zap.Logger) (*pgxpool.Pool, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("connected to postgres",
		zap.String("host", pgxCfg.ConnConfig.Host),
		zap.String("db", pgxCfg.ConnConfig.Database))
	return pool, nil
}
