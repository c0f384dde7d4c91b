package redis

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"survey-match-service/internal/domain"
)

func TestUserRepositoryRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	repo := NewUserRepository(newClient(mr), "")
	ctx := context.Background()

	dir, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Zero(t, dir.Len())

	dir.Set("ivy", domain.ChoiceRecord{"q1": 1})
	dir.Set("al", domain.ChoiceRecord{"q1": 0, "q2": 1})
	require.NoError(t, repo.SaveAll(ctx, dir))

	raw, err := mr.Get(DefaultUsersKey)
	require.NoError(t, err)
	require.JSONEq(t, `{"usersList":{"ivy":{"q1":1},"al":{"q1":0,"q2":1}}}`, raw)

	got, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Equal(t, dir.Entries(), got.Entries())
}

func TestUserRepositoryMalformedAndUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := newClient(mr)
	repo := NewUserRepository(client, "custom:users")
	ctx := context.Background()

	require.NoError(t, mr.Set("custom:users", `{"usersList":7}`))
	_, err := repo.LoadAll(ctx)
	require.ErrorIs(t, err, domain.ErrDataFormat)

	require.NoError(t, mr.Set("custom:users", ""))
	dir, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Zero(t, dir.Len())

	mr.Close()
	_, err = repo.LoadAll(ctx)
	require.ErrorIs(t, err, domain.ErrStorage)
	require.ErrorIs(t, repo.SaveAll(ctx, domain.NewUserDirectory()), domain.ErrStorage)
}
