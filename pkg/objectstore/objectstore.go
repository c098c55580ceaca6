package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// MediaPrefix 对象的公开路径前缀
const MediaPrefix = "/media"

var (
	// ErrInvalidName bucket 或对象名不合法
	ErrInvalidName = errors.New("invalid object name")
	// ErrNotFound 对象不存在
	ErrNotFound = errors.New("object not found")
)

// ObjectStore 对象存储接口
type ObjectStore interface {
	Upload(ctx context.Context, bucket, name string, r io.Reader, contentType string) error
	PublicURL(bucket, name string) string
	Open(ctx context.Context, bucket, name string) (io.ReadCloser, error)
}

// LocalStore 本地目录实现的对象存储
type LocalStore struct {
	root          string
	publicBaseURL string
}

// NewLocal 创建本地对象存储，root 不存在时创建
func NewLocal(root, publicBaseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create object store root: %w", err)
	}
	return &LocalStore{
		root:          root,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

// Root 返回根目录
func (s *LocalStore) Root() string {
	return s.root
}

// Upload 写入对象，先写临时文件再重命名，同名对象被覆盖
func (s *LocalStore) Upload(ctx context.Context, bucket, name string, r io.Reader, contentType string) error {
	target, err := s.objectPath(bucket, name)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create bucket directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := io.Copy(tmp, &ctxReader{ctx: ctx, r: r}); err != nil {
		tmp.Close()
		return fmt.Errorf("write object %s/%s: %w", bucket, name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("rename object %s/%s: %w", bucket, name, err)
	}
	return nil
}

// PublicURL 返回对象的公开地址
func (s *LocalStore) PublicURL(bucket, name string) string {
	p := path.Join(MediaPrefix, url.PathEscape(bucket), url.PathEscape(name))
	return s.publicBaseURL + p
}

// Open 打开对象
func (s *LocalStore) Open(ctx context.Context, bucket, name string) (io.ReadCloser, error) {
	target, err := s.objectPath(bucket, name)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(target)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, bucket, name)
		}
		return nil, err
	}
	return f, nil
}

// objectPath 拒绝包含路径分隔符或以点开头的名称
func (s *LocalStore) objectPath(bucket, name string) (string, error) {
	for _, part := range []string{bucket, name} {
		if part == "" || strings.HasPrefix(part, ".") || strings.ContainsAny(part, `/\`) {
			return "", fmt.Errorf("%w: %q", ErrInvalidName, part)
		}
	}
	return filepath.Join(s.root, bucket, name), nil
}

// ctxReader 每次读取前检查 ctx
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
