package postgres

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/cabpool/cabpool-backend/config"
	"github.com/cabpool/cabpool-backend/logger"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool opens and verifies a connection pool for cfg. Production connections require TLS.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, production bool) (*pgxpool.Pool, error) {
	log := logger.GetLogger()

	poolConfig, err := pgxpool.ParseConfig(cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	if cfg.MaxConnections > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConnections)
	}
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	if production && poolConfig.ConnConfig.TLSConfig == nil {
		poolConfig.ConnConfig.TLSConfig = &tls.Config{
			ServerName: cfg.Host,
			MinVersion: tls.VersionTLS12,
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Infow("Connected to PostgreSQL",
		"host", cfg.Host,
		"database", cfg.Name,
		"maxConns", poolConfig.MaxConns)
	return pool, nil
}
