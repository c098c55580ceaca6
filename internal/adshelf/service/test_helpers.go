package service

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jimyag/adshelf/internal/adshelf/entity"
	"github.com/jimyag/adshelf/internal/adshelf/repository"
	"github.com/jimyag/adshelf/internal/adshelf/repository/model"
	"github.com/jimyag/adshelf/pkg/objectstore"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret"

// TestServices 包含测试所需的所有服务和依赖
type TestServices struct {
	Repo             *repository.Repository
	Objects          *objectstore.LocalStore
	Workspaces       *WorkspaceManager
	TagService       *TagService
	AdService        *AdService
	AuthService      *AuthService
	FeedService      *FeedService
	TagEditorService *TagEditorService
	TempDir          string
}

// setupTestServices 为每个测试用例创建独立的测试环境
// 每个测试用例都会获得自己的数据库、媒体目录和 service 实例
func setupTestServices(t *testing.T) *TestServices {
	t.Helper()

	// 创建临时目录和数据库（每个测试用例都有独立的数据库文件）
	tmpDir := t.TempDir()
	repo, err := repository.New(filepath.Join(tmpDir, "test.db"))
	require.NoError(t, err)

	objects, err := objectstore.NewLocal(filepath.Join(tmpDir, "media"), "http://localhost:7788")
	require.NoError(t, err)

	tagService := NewTagService(repo)
	adService := NewAdService(repo, objects, DefaultMediaBucket)
	workspaces := NewWorkspaceManager(tagService)

	t.Cleanup(func() {
		workspaces.CloseAll()
		_ = repo.Close()
		_ = os.RemoveAll(tmpDir)
	})

	return &TestServices{
		Repo:        repo,
		Objects:     objects,
		Workspaces:  workspaces,
		TagService:  tagService,
		AdService:   adService,
		AuthService: NewAuthService(repo, testJWTSecret, time.Hour, NewMemoryRevocationList(), workspaces),
		FeedService: NewFeedService(adService, FeedOptions{
			PageSize:       4,
			SearchDebounce: 20 * time.Millisecond,
		}),
		TagEditorService: NewTagEditorService(tagService.EditorBackend()),
		TempDir:          tmpDir,
	}
}

// sessionContext 返回带有会话和工作区的 context
func (ts *TestServices) sessionContext(t *testing.T, sessionID string) (context.Context, *Workspace) {
	t.Helper()
	session := &entity.Session{
		SessionID: sessionID,
		UserID:    "u-1",
		Email:     "user@example.com",
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}
	ws := ts.Workspaces.Get(context.Background(), session)
	ctx := ContextWithSession(context.Background(), session)
	return ContextWithWorkspace(ctx, ws), ws
}

func strPtr(s string) *string {
	return &s
}

// seedAds 创建 n 条广告，ad-0 最新
func (ts *TestServices) seedAds(t *testing.T, n int) {
	t.Helper()
	adRepo := repository.NewAdRepository(ts.Repo.DB())
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		require.NoError(t, adRepo.Create(context.Background(), &model.Ad{
			ID:             fmt.Sprintf("ad-%d", i),
			AdvertiserName: strPtr(fmt.Sprintf("Advertiser %d", i)),
			AdText:         strPtr(fmt.Sprintf("body %d", i)),
			CapturedAt:     base.Add(-time.Duration(i) * time.Minute),
		}))
	}
}

// createTag 直接创建标签，不经过会话缓存
func (ts *TestServices) createTag(t *testing.T, name, color string) entity.Tag {
	t.Helper()
	resp, err := ts.TagService.CreateTag(context.Background(), &entity.CreateTagRequest{Name: name, Color: color})
	require.NoError(t, err)
	return *resp.Tag
}

// fileHeader 构造一个表单文件，contentType 为空时不带 Content-Type
func fileHeader(t *testing.T, field, filename, contentType string, data []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File[field][0]
}
