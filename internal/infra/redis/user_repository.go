package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"survey-match-service/internal/domain"
)

// DefaultUsersKey holds the whole user document as one string value.
const DefaultUsersKey = "survey:users"

// UserRepository stores the user document under a single Redis key; SET
// replaces it in one step.
type UserRepository struct {
	client *redis.Client
	key    string
}

func NewUserRepository(client *redis.Client, key string) *UserRepository {
	if key == "" {
		key = DefaultUsersKey
	}
	return &UserRepository{client: client, key: key}
}

func (r *UserRepository) LoadAll(ctx context.Context) (*domain.UserDirectory, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.NewUserDirectory(), nil
	}
	if err != nil {
		return nil, domain.NewStorageError("get "+r.key, err)
	}
	return domain.DecodeUsers(r.key, data)
}

func (r *UserRepository) SaveAll(ctx context.Context, dir *domain.UserDirectory) error {
	data, err := domain.EncodeUsers(dir)
	if err != nil {
		return domain.NewStorageError("encode users", err)
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return domain.NewStorageError("set "+r.key, err)
	}
	return nil
}
