package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"survey-match-service/internal/app"
	"survey-match-service/internal/config"
	filestore "survey-match-service/internal/infra/file"
	"survey-match-service/internal/infra/memory"
	pgstore "survey-match-service/internal/infra/postgres"
	redisstore "survey-match-service/internal/infra/redis"
)

// backend is the storage wiring selected by config.
type backend struct {
	questions app.QuestionBank
	users     app.UserRepository
	sessions  app.SessionRepository
	pgDocs    *pgstore.Documents
	redis     *redis.Client

	closers []func()
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func openBackend(ctx context.Context, cfg config.Config) (*backend, error) {
	b := &backend{}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		b.closers = append(b.closers, func() { _ = redisClient.Close() })
		b.redis = redisClient
	}

	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		b.closers = append(b.closers, pool.Close)
		b.pgDocs = pgstore.NewDocuments(pool)
	}

	var questions app.QuestionBank = filestore.NewQuestionBank(cfg.Storage.QuestionsPath)
	switch cfg.Storage.Driver {
	case config.DriverFile:
		b.users = filestore.NewUserRepository(cfg.Storage.UsersPath)
	case config.DriverMemory:
		b.users = memory.NewUserRepository()
	case config.DriverRedis:
		if redisClient == nil {
			b.Close()
			return nil, fmt.Errorf("storage driver redis requires redis.addr")
		}
		b.users = redisstore.NewUserRepository(redisClient, cfg.Redis.UsersKey)
	case config.DriverPostgres:
		if b.pgDocs == nil {
			b.Close()
			return nil, fmt.Errorf("storage driver postgres requires postgres.url")
		}
		questions = pgstore.NewQuestionBank(b.pgDocs)
		b.users = pgstore.NewUserRepository(b.pgDocs)
	default:
		b.Close()
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	if ttl := config.TTLDuration(cfg.Questions.CacheTTL, 0); ttl > 0 {
		if redisClient != nil {
			questions = redisstore.NewQuestionCache(redisClient, questions, ttl)
		} else {
			questions = memory.NewCachedQuestionBank(questions, ttl)
		}
	}
	b.questions = questions

	if redisClient != nil {
		b.sessions = redisstore.NewSessionStore(redisClient, config.TTLDuration(cfg.Redis.TTL, 30*time.Minute))
	} else {
		b.sessions = memory.NewSessionStore()
	}
	return b, nil
}

// invalidateQuestions drops the Redis question cache so every instance sharing
// it reloads the dataset on its next survey start.
func (b *backend) invalidateQuestions(ctx context.Context) error {
	if cache, ok := b.questions.(*redisstore.QuestionCache); ok {
		return cache.Invalidate(ctx)
	}
	if b.redis != nil {
		return redisstore.InvalidateQuestions(ctx, b.redis)
	}
	return nil
}
