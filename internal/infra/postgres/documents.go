package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const (
	QuestionsDocument = "questions"
	UsersDocument     = "users"
)

// Documents reads and writes whole JSON documents in the survey_documents table.
type Documents struct {
	pool *pgxpool.Pool
}

func NewDocuments(pool *pgxpool.Pool) *Documents {
	return &Documents{pool: pool}
}

// Load returns nil when the document has never been written.
func (d *Documents) Load(ctx context.Context, name string) ([]byte, error) {
	var raw string
	err := d.pool.QueryRow(ctx, `SELECT body::text FROM survey_documents WHERE name=$1`, name).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(raw), nil
}

// Save replaces the document in a single statement.
func (d *Documents) Save(ctx context.Context, name string, body []byte) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO survey_documents (name, body, updated_at) VALUES ($1, $2::json, now())
		ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`,
		name, string(body))
	return err
}
