package memory

import (
	"context"
	"sync"

	"survey-match-service/internal/domain"
)

// UserRepository keeps the user document in process memory.
type UserRepository struct {
	mu  sync.RWMutex
	dir *domain.UserDirectory
}

func NewUserRepository() *UserRepository {
	return &UserRepository{dir: domain.NewUserDirectory()}
}

func (r *UserRepository) LoadAll(_ context.Context) (*domain.UserDirectory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dir.Clone(), nil
}

func (r *UserRepository) SaveAll(_ context.Context, dir *domain.UserDirectory) error {
	if dir == nil {
		dir = domain.NewUserDirectory()
	}
	r.mu.Lock()
	r.dir = dir.Clone()
	r.mu.Unlock()
	return nil
}
