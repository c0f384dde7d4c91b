package postgres

import (
	"context"

	"survey-match-service/internal/domain"
)

// UserRepository keeps the user document as one row in survey_documents.
type UserRepository struct {
	docs *Documents
}

func NewUserRepository(docs *Documents) *UserRepository {
	return &UserRepository{docs: docs}
}

func (r *UserRepository) LoadAll(ctx context.Context) (*domain.UserDirectory, error) {
	raw, err := r.docs.Load(ctx, UsersDocument)
	if err != nil {
		return nil, domain.NewStorageError("load users", err)
	}
	return domain.DecodeUsers(UsersDocument, raw)
}

func (r *UserRepository) SaveAll(ctx context.Context, dir *domain.UserDirectory) error {
	data, err := domain.EncodeUsers(dir)
	if err != nil {
		return domain.NewStorageError("encode users", err)
	}
	if err := r.docs.Save(ctx, UsersDocument, data); err != nil {
		return domain.NewStorageError("save users", err)
	}
	return nil
}
