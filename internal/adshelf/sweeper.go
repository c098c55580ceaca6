package adshelf

import (
	"context"
	"sync"
	"time"

	"github.com/jimyag/adshelf/internal/adshelf/service"
	"github.com/rs/zerolog"
)

// workspaceSweeper 定期关闭 token 已过期的会话工作区
type workspaceSweeper struct {
	workspaces *service.WorkspaceManager
	interval   time.Duration
	now        func() time.Time

	stopOnce sync.Once
	stop     chan struct{}
}

func newWorkspaceSweeper(workspaces *service.WorkspaceManager, interval time.Duration) *workspaceSweeper {
	return &workspaceSweeper{
		workspaces: workspaces,
		interval:   interval,
		now:        time.Now,
		stop:       make(chan struct{}),
	}
}

func (s *workspaceSweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.stop:
			return nil
		case <-ticker.C:
			if n := s.workspaces.Sweep(s.now()); n > 0 {
				zerolog.Ctx(ctx).Info().Int("count", n).Msg("Expired workspaces closed")
			}
		}
	}
}

func (s *workspaceSweeper) Shutdown(context.Context) error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

func (s *workspaceSweeper) Name() string {
	return "workspace sweeper"
}
