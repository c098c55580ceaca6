package service

import (
	"context"
	"testing"
	"time"

	"github.com/jimyag/adshelf/internal/adshelf/entity"
	"github.com/jimyag/adshelf/internal/adshelf/tagstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspaceManager(t *testing.T) {
	t.Parallel()

	loader := tagstore.LoaderFunc(func(context.Context) ([]entity.Tag, error) {
		return []entity.Tag{{ID: "tag-1", Name: "one"}}, nil
	})
	manager := NewWorkspaceManager(loader)
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	a := &entity.Session{SessionID: "s-a", UserID: "u-1", ExpiresAt: now.Add(time.Hour).Unix()}
	b := &entity.Session{SessionID: "s-b", UserID: "u-1", ExpiresAt: now.Add(-time.Minute).Unix()}

	wsA := manager.Get(ctx, a)
	assert.Same(t, wsA, manager.Get(ctx, a))
	wsB := manager.Get(ctx, b)
	assert.NotSame(t, wsA, wsB)
	assert.Equal(t, 2, manager.Len())

	tags, err := wsA.Tags().Tags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 1)

	// 每个会话的缓存互相独立
	assert.False(t, wsB.Tags().Loaded())

	assert.Equal(t, 1, manager.Sweep(now))
	assert.Equal(t, 1, manager.Len())
	_, err = wsB.Tags().Tags(ctx)
	assert.ErrorIs(t, err, tagstore.ErrClosed)

	assert.True(t, manager.Close("s-a"))
	assert.False(t, manager.Close("s-a"))
	assert.Equal(t, 0, manager.Len())
	_, err = wsA.Tags().Tags(ctx)
	assert.ErrorIs(t, err, tagstore.ErrClosed)
}

func TestContextHelpers(t *testing.T) {
	t.Parallel()

	_, ok := WorkspaceFromContext(context.Background())
	assert.False(t, ok)
	_, ok = SessionFromContext(context.Background())
	assert.False(t, ok)

	session := &entity.Session{SessionID: "s-1"}
	ws := newWorkspace("s-1", tagstore.LoaderFunc(func(context.Context) ([]entity.Tag, error) { return nil, nil }))
	ctx := ContextWithWorkspace(ContextWithSession(context.Background(), session), ws)

	gotWS, ok := WorkspaceFromContext(ctx)
	require.True(t, ok)
	assert.Same(t, ws, gotWS)
	gotSession, ok := SessionFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "s-1", gotSession.SessionID)
}
