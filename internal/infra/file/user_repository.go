package file

import (
	"context"

	"survey-match-service/internal/domain"
)

// UserRepository keeps the user document in a single JSON file that is read
// and rewritten whole.
type UserRepository struct {
	path string
}

func NewUserRepository(path string) *UserRepository {
	return &UserRepository{path: path}
}

// LoadAll treats a missing or blank file as an empty directory.
func (r *UserRepository) LoadAll(_ context.Context) (*domain.UserDirectory, error) {
	data, err := readDocument(r.path, true)
	if err != nil {
		return nil, domain.NewStorageError("read users", err)
	}
	return domain.DecodeUsers(r.path, data)
}

func (r *UserRepository) SaveAll(_ context.Context, dir *domain.UserDirectory) error {
	data, err := domain.EncodeUsers(dir)
	if err != nil {
		return domain.NewStorageError("encode users", err)
	}
	if err := writeDocument(r.path, data); err != nil {
		return domain.NewStorageError("write users", err)
	}
	return nil
}
