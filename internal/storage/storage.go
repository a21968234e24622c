package storage

import (
	"anonpair/backend/internal/models"
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Storage is the persistence contract of the queue engine. Mutating methods
// on the pool and sessions are only called from inside Transaction.
type Storage interface {
	// Transaction runs fn against a transaction-scoped Storage. The
	// transaction is committed when fn returns nil and rolled back otherwise.
	Transaction(ctx context.Context, fn func(tx Storage) error) error

	CreateQueueEntry(ctx context.Context, entry *models.QueueEntry) (bool, error)
	GetQueueEntry(ctx context.Context, userID string) (*models.QueueEntry, error)
	LockQueueEntry(ctx context.Context, userID string) (*models.QueueEntry, error)
	LockAvailableEntries(ctx context.Context) ([]models.QueueEntry, error)
	CountAvailable(ctx context.Context) (int64, error)
	SetAvailability(ctx context.Context, userID string, available bool) (int64, error)
	ClaimEntry(ctx context.Context, userID string) (int64, error)
	DeleteQueueEntry(ctx context.Context, userID string) (int64, error)
	ListQueue(ctx context.Context) ([]models.QueueEntry, error)

	SaveSession(ctx context.Context, session *models.ChatSession) error
	GetSessionForUser(ctx context.Context, userID string) (*models.ChatSession, error)
	LockSessionForUser(ctx context.Context, userID string) (*models.ChatSession, error)
	GetSessionByID(ctx context.Context, chatID string) (*models.ChatSession, error)
	DeleteSession(ctx context.Context, chatID string) (int64, error)
	ListSessions(ctx context.Context) ([]models.ChatSession, error)

	SaveMessage(ctx context.Context, msg *models.ChatHistory) error
	GetRecentMessages(ctx context.Context, chatID string, limit int) ([]models.ChatHistory, error)
	DeleteMessages(ctx context.Context, chatID string) error

	SaveUser(ctx context.Context, user *models.User) error
	GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error)
	GetRelationship(ctx context.Context, viewerID, otherID string) (models.RelationshipStatus, error)

	PublishEvent(ctx context.Context, userID string, event models.QueueEvent) error
	SubscribeUser(ctx context.Context, userID string) *redis.PubSub
	IsUserBanned(ctx context.Context, userID string) (bool, error)
	BanUser(ctx context.Context, userID string, ttl time.Duration) error
	UnbanUser(ctx context.Context, userID string) error

	Ping(ctx context.Context) error
}

// Service implements Storage on PostgreSQL (through GORM) and Redis.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
	}
}

// Migrate creates or updates every table the queue engine owns or reads.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.QueueEntry{},
		&models.ChatSession{},
		&models.ChatHistory{},
		&models.User{},
		&models.Friendship{},
	)
}

// Transaction begins a database transaction and hands fn a Service bound to
// it. gorm's Transaction only calls fn after Begin has succeeded, and rolls
// back on error or panic before the connection is returned to the pool.
func (s *Service) Transaction(ctx context.Context, fn func(tx Storage) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Service{DB: tx, Redis: s.Redis})
	})
}

// Ping checks the database connection.
func (s *Service) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
