package redis

import (
	"context"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"survey-match-service/internal/app"
	"survey-match-service/internal/domain"
)

const questionsKey = "survey:questions"

// QuestionCache keeps the encoded question dataset in Redis and falls back to
// a loader (file or Postgres) on cache miss:
//
//	SET survey:questions {"questions":[...]} EX ttl
type QuestionCache struct {
	client *redis.Client
	loader app.QuestionBank
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuestionCache(client *redis.Client, loader app.QuestionBank, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	if questions, ok := c.cached(ctx); ok {
		return questions, nil
	}

	fillCtx := context.WithoutCancel(ctx)
	result, err, _ := c.sf.Do(questionsKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if questions, ok := c.cached(fillCtx); ok {
			return questions, nil
		}

		questions, err := c.loader.LoadQuestions(fillCtx)
		if err != nil {
			return nil, err
		}

		if data, err := domain.EncodeQuestions(questions); err == nil {
			_ = c.client.Set(fillCtx, questionsKey, data, c.ttlWithJitter()).Err()
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// Invalidate drops the cached dataset so the next load reads the backing store.
func (c *QuestionCache) Invalidate(ctx context.Context) error {
	return InvalidateQuestions(ctx, c.client)
}

// InvalidateQuestions drops the dataset shared by every QuestionCache on client.
func InvalidateQuestions(ctx context.Context, client *redis.Client) error {
	if err := client.Del(ctx, questionsKey).Err(); err != nil {
		return domain.NewStorageError("invalidate questions", err)
	}
	return nil
}

// cached treats an unreadable or undecodable entry as a miss.
func (c *QuestionCache) cached(ctx context.Context) ([]domain.Question, bool) {
	data, err := c.client.Get(ctx, questionsKey).Bytes()
	if err != nil || len(data) == 0 {
		return nil, false
	}
	questions, err := domain.DecodeQuestions(questionsKey, data)
	if err != nil {
		return nil, false
	}
	return questions, true
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
