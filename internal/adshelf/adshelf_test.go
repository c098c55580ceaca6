package adshelf

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/jimyag/adshelf/internal/adshelf/config"
	"github.com/jimyag/adshelf/internal/adshelf/entity"
	"github.com/jimyag/adshelf/internal/adshelf/service"
	"github.com/jimyag/adshelf/internal/adshelf/tagstore"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name        string
		cfg         config.LogConfig
		expectLevel zerolog.Level
		expectError bool
	}{
		{
			name:        "default level",
			cfg:         config.LogConfig{},
			expectLevel: zerolog.InfoLevel,
		},
		{
			name:        "debug level",
			cfg:         config.LogConfig{Level: "debug"},
			expectLevel: zerolog.DebugLevel,
		},
		{
			name:        "file output",
			cfg:         config.LogConfig{Level: "warn", File: filepath.Join(t.TempDir(), "logs", "adshelf.log")},
			expectLevel: zerolog.WarnLevel,
		},
		{
			name:        "invalid level",
			cfg:         config.LogConfig{Level: "loud"},
			expectError: true,
		},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			logger, err := newLogger(tc.cfg)
			if tc.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectLevel, logger.GetLevel())
			if tc.cfg.File != "" {
				assert.DirExists(t, filepath.Dir(tc.cfg.File))
			}
		})
	}
}

func TestNewServer(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.Address = "127.0.0.1:0"
	cfg.Auth.JWTSecret = "server-test-secret"

	server, err := New(cfg)
	require.NoError(t, err)
	defer server.close()

	w := httptest.NewRecorder()
	server.api.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.DirExists(t, cfg.MediaDir())
	assert.FileExists(t, cfg.DatabaseDSN())
}

func TestWorkspaceSweeper(t *testing.T) {
	t.Parallel()

	loader := tagstore.LoaderFunc(func(context.Context) ([]entity.Tag, error) {
		return []entity.Tag{}, nil
	})
	workspaces := service.NewWorkspaceManager(loader)
	defer workspaces.CloseAll()

	workspaces.Get(context.Background(), &entity.Session{
		SessionID: "session-expired",
		UserID:    "user-1",
		ExpiresAt: time.Now().Add(-time.Minute).Unix(),
	})
	require.Equal(t, 1, workspaces.Len())

	sweeper := newWorkspaceSweeper(workspaces, 10*time.Millisecond)
	done := make(chan error, 1)
	go func() { done <- sweeper.Run(context.Background()) }()

	assert.Eventually(t, func() bool {
		return workspaces.Len() == 0
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, sweeper.Shutdown(context.Background()))
	require.NoError(t, sweeper.Shutdown(context.Background()))
	require.NoError(t, <-done)
	assert.Equal(t, "workspace sweeper", sweeper.Name())
}
