package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/imagestudio/internal/model"
)

func TestNewConnection_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "profile", "session.db")

	db, err := NewConnection(ctx, path)
	require.NoError(t, err)
	s := NewStore(db)

	require.NoError(t, s.Set(ctx, model.Session{Email: "a@b.c", UserID: "42"}.Entries()))
	require.NoError(t, s.Set(ctx, model.Session{Email: "x@y.z", UserID: "7"}.Entries()))
	require.NoError(t, s.Close())

	// migrations are idempotent on reopen
	db, err = NewConnection(ctx, path)
	require.NoError(t, err)
	s = NewStore(db)
	t.Cleanup(func() { _ = s.Close() })

	got, err := s.Get(ctx, model.SessionKeys...)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{model.StorageKeyEmail: "x@y.z", model.StorageKeyUserID: "7"}, got)

	require.NoError(t, s.Remove(ctx, model.SessionKeys...))
	got, err = s.Get(ctx, model.SessionKeys...)
	require.NoError(t, err)
	assert.Empty(t, got)
}
