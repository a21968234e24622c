// Package storagetest builds a storage.Service on an in-memory SQLite
// database and an in-process Redis for tests.
package storagetest

import (
	"anonpair/backend/internal/storage"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New returns a migrated Service and the miniredis instance behind it.
//
// The database is limited to one connection, so every transaction runs
// serially, the way row locks serialize them on PostgreSQL. Code inside a
// Transaction callback must use the tx it is handed or it will block.
func New(t *testing.T) (*storage.Service, *miniredis.Miniredis) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := storage.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return storage.NewStorageService(db, rdb), mr
}
