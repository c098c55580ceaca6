package service

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 需要本地 redis，例如 ADSHELF_TEST_REDIS_URL=redis://localhost:6379/15
func TestRedisRevocationList(t *testing.T) {
	url := os.Getenv("ADSHELF_TEST_REDIS_URL")
	if url == "" {
		t.Skip("ADSHELF_TEST_REDIS_URL not set")
	}

	ctx := context.Background()
	list, err := NewRedisRevocationList(ctx, url)
	require.NoError(t, err)
	defer list.Close()

	jti := uuid.NewString()
	revoked, err := list.IsRevoked(ctx, jti)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, list.Revoke(ctx, jti, time.Minute))
	revoked, err = list.IsRevoked(ctx, jti)
	require.NoError(t, err)
	assert.True(t, revoked)

	// 已过期的 token 不需要记录
	expired := uuid.NewString()
	require.NoError(t, list.Revoke(ctx, expired, 0))
	revoked, err = list.IsRevoked(ctx, expired)
	require.NoError(t, err)
	assert.False(t, revoked)
}
