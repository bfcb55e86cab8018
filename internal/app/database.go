package app

import (
	"context"
	"fmt"
	"time"

	"github.com/avc/frete-console/internal/repository/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Состояние консоли небольшое: черновики, адреса возврата, счетчики квитанций
const (
	dbMaxConns          = 8
	dbMaxConnIdleTime   = 5 * time.Minute
	dbHealthCheckPeriod = time.Minute
	dbApplicationName   = "frete-console"
)

// initDatabase создает пул соединений с базой состояния и выполняет миграции
func initDatabase(ctx context.Context, databaseURI string, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURI)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URI: %w", err)
	}
	poolConfig.MaxConns = dbMaxConns
	poolConfig.MaxConnIdleTime = dbMaxConnIdleTime
	poolConfig.HealthCheckPeriod = dbHealthCheckPeriod
	poolConfig.ConnConfig.RuntimeParams["application_name"] = dbApplicationName

	dbPool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := postgres.RunMigrations(ctx, dbPool, logger); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info("migrations completed successfully")

	return dbPool, nil
}
