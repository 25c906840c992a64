package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/SatuKas/api/internal/config"
	"github.com/SatuKas/api/internal/events/kafka"
	infraPostgres "github.com/SatuKas/api/internal/infrastructure/database/postgres"
)

// rootContext bounds startup work (migrations, connection pools, pings).
func rootContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

func initDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*pgxpool.Pool, error) {
	if cfg.Database.AutoMigrate {
		logger.Info("Running database migrations")
		migrationURL := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
			cfg.Database.User, cfg.Database.Password, cfg.Database.Host,
			cfg.Database.Port, cfg.Database.DBName, cfg.Database.SSLMode)
		m, err := migrate.New("file://migrations", migrationURL)
		if err != nil {
			return nil, fmt.Errorf("create migration instance: %w", err)
		}
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		logger.Info("Migrations applied successfully")
	}

	return infraPostgres.NewDBPool(ctx, cfg.Database)
}

// initPublisher returns the Kafka producer, or a no-op when Kafka is
// disabled for the deployment.
func initPublisher(cfg *config.Config, logger *zap.Logger) kafka.Publisher {
	if !cfg.Kafka.Enabled {
		logger.Info("Kafka disabled, auth events will not be published")
		return kafka.NoopPublisher{}
	}
	return kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
}
