package app

import (
	"context"
	"sync"

	"survey-match-service/internal/domain"
)

// QuestionBank loads the ordered question set. Implementations are read-only.
type QuestionBank interface {
	LoadQuestions(ctx context.Context) ([]domain.Question, error)
}

// UserRepository persists the whole user document (file, Redis, Postgres, memory).
// LoadAll on a missing or blank resource returns an empty directory.
// SaveAll replaces the document in a single step.
type UserRepository interface {
	LoadAll(ctx context.Context) (*domain.UserDirectory, error)
	SaveAll(ctx context.Context, dir *domain.UserDirectory) error
}

// UserStore is the durable username -> choices mapping. Upsert is a
// read-modify-write over the repository; without SerializeCommits two
// concurrent upserts can both read the same snapshot and the later save
// drops the earlier entry.
type UserStore struct {
	repo      UserRepository
	serialize bool
	mu        sync.Mutex
}

type UserStoreOption func(*UserStore)

// SerializeCommits routes every Upsert in this process through one lock.
func SerializeCommits(enabled bool) UserStoreOption {
	return func(s *UserStore) { s.serialize = enabled }
}

func NewUserStore(repo UserRepository, opts ...UserStoreOption) *UserStore {
	s := &UserStore{repo: repo}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *UserStore) LoadAll(ctx context.Context) (*domain.UserDirectory, error) {
	return s.repo.LoadAll(ctx)
}

func (s *UserStore) SaveAll(ctx context.Context, dir *domain.UserDirectory) error {
	return s.repo.SaveAll(ctx, dir)
}

// Upsert replaces username's whole record and persists the document.
func (s *UserStore) Upsert(ctx context.Context, username string, choices domain.ChoiceRecord) error {
	if username == "" {
		return domain.ErrInvalidUsername
	}
	if s.serialize {
		s.mu.Lock()
		defer s.mu.Unlock()
	}

	dir, err := s.repo.LoadAll(ctx)
	if err != nil {
		return err
	}
	dir.Set(username, choices.Clone())
	return s.repo.SaveAll(ctx, dir)
}
