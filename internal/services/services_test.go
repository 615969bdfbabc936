package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	redisDriver "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"matchflix/internal/config"
	"matchflix/internal/models"
	appRedis "matchflix/internal/redis"
	"matchflix/internal/services"
	"matchflix/internal/storage"
)

// producedRecord captures one publish to the fake producer.
type producedRecord struct {
	Topic   string
	Key     string
	Payload []byte
}

// fakeProducer satisfies kafka.MessageProducer and records every publish.
type fakeProducer struct {
	mu      sync.Mutex
	records []producedRecord
}

func (p *fakeProducer) SendMessage(_ context.Context, topic string, key []byte, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, producedRecord{Topic: topic, Key: string(key), Payload: payload})
	return nil
}

func (p *fakeProducer) Close() {}

func (p *fakeProducer) all() []producedRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]producedRecord(nil), p.records...)
}

// fixture wires real repositories over in-memory sqlite with miniredis and a
// fake producer.
type fixture struct {
	db       *gorm.DB
	producer *fakeProducer

	userRepo        storage.UserRepository
	interactionRepo storage.InteractionRepository
	matchRepo       storage.MatchRepository
	messageRepo     storage.MessageRepository

	matchService   services.MatchService
	messageService services.MessageService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	require.NoError(t, err)
	require.NoError(t, storage.AutoMigrateTables(db))

	mr := miniredis.RunT(t)
	redisClient := redisDriver.NewClient(&redisDriver.Options{Addr: mr.Addr()})
	unreadCache := appRedis.NewRedisUnreadCountCache(redisClient)

	producer := &fakeProducer{}
	kafkaCfg := config.KafkaConfig{DeliveryTopic: "test-delivery"}

	f := &fixture{
		db:              db,
		producer:        producer,
		userRepo:        storage.NewGormUserRepository(db),
		interactionRepo: storage.NewGormInteractionRepository(db),
		matchRepo:       storage.NewGormMatchRepository(db),
		messageRepo:     storage.NewGormMessageRepository(db),
	}
	f.matchService = services.NewMatchService(f.interactionRepo, f.matchRepo, f.messageRepo, f.userRepo, unreadCache)
	f.messageService = services.NewMessageService(f.messageRepo, f.matchRepo, f.userRepo, unreadCache, producer, kafkaCfg)
	return f
}

// user inserts an account with a named profile.
func (f *fixture) user(t *testing.T, name string) *models.User {
	t.Helper()
	u := &models.User{
		Email:        fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()[:8]),
		PasswordHash: "x",
		Profile:      &models.Profile{Name: name},
	}
	require.NoError(t, f.db.Create(u).Error)
	return u
}
