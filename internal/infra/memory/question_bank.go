package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"survey-match-service/internal/app"
	"survey-match-service/internal/domain"
)

// CachedQuestionBank caches the question set with TTL to avoid re-reading the
// backing dataset on every survey start.
type CachedQuestionBank struct {
	loader app.QuestionBank
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	questions []domain.Question
	expiresAt time.Time
}

func NewCachedQuestionBank(loader app.QuestionBank, ttl time.Duration) *CachedQuestionBank {
	return &CachedQuestionBank{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (b *CachedQuestionBank) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	if questions, ok := b.cached(b.clock()); ok {
		return questions, nil
	}

	// the fill is shared by every waiter, so it must outlive the first caller
	fillCtx := context.WithoutCancel(ctx)
	result, err, _ := b.sf.Do("questions", func() (interface{}, error) {
		now := b.clock()
		if questions, ok := b.cached(now); ok {
			return questions, nil
		}

		questions, err := b.loader.LoadQuestions(fillCtx)
		if err != nil {
			return nil, err
		}

		b.mu.Lock()
		b.questions = questions
		b.expiresAt = now.Add(b.ttlWithJitter())
		b.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (b *CachedQuestionBank) cached(now time.Time) ([]domain.Question, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.questions != nil && b.expiresAt.After(now) {
		return b.questions, true
	}
	return nil, false
}

func (b *CachedQuestionBank) ttlWithJitter() time.Duration {
	if b.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(b.ttl) / 10
	return b.ttl + time.Duration(b.rnd.Int63n(jitterMax+1))
}

// StaticQuestionBank serves a fixed question set (useful for tests/demos).
type StaticQuestionBank struct {
	questions []domain.Question
}

func NewStaticQuestionBank(questions []domain.Question) *StaticQuestionBank {
	return &StaticQuestionBank{questions: questions}
}

func (b *StaticQuestionBank) LoadQuestions(_ context.Context) ([]domain.Question, error) {
	out := make([]domain.Question, len(b.questions))
	copy(out, b.questions)
	return out, nil
}
