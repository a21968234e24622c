package storage

import (
	"anonpair/backend/internal/config"
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open connects to PostgreSQL and Redis, checks both and runs migrations.
func Open(ctx context.Context, cfg *config.Config) (*Service, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect PostgreSQL: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect Redis: %w", err)
	}

	if err := Migrate(db); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	log.Println("INFO: Database and Redis connections established, migrations complete.")
	return NewStorageService(db, rdb), nil
}

// Close releases the database pool and the Redis client.
func (s *Service) Close() error {
	var firstErr error
	if s.Redis != nil {
		firstErr = s.Redis.Close()
	}
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
