package api

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/jimyag/adshelf/pkg/apierror"
	"github.com/jimyag/adshelf/pkg/ginx"
	"github.com/jimyag/adshelf/pkg/objectstore"
	"github.com/rs/zerolog"
)

// sniffLen mimetype 判断类型需要读取的字节数
const sniffLen = 3072

// Media 提供对象存储中的媒体文件
type Media struct {
	objects objectstore.ObjectStore
}

func NewMedia(objects objectstore.ObjectStore) *Media {
	return &Media{
		objects: objects,
	}
}

func (m *Media) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/:bucket/:name", m.Serve)
}

// Serve 按内容判断 Content-Type 后返回对象
func (m *Media) Serve(ctx *gin.Context) {
	logger := zerolog.Ctx(ctx)
	bucket, name := ctx.Param("bucket"), ctx.Param("name")

	rc, err := m.objects.Open(ctx, bucket, name)
	if err != nil {
		if errors.Is(err, objectstore.ErrNotFound) || errors.Is(err, objectstore.ErrInvalidName) {
			ginx.AbortWithError(ctx, apierror.NotFound("media %s/%s not found", bucket, name))
			return
		}
		logger.Error().Err(err).Str("bucket", bucket).Str("name", name).Msg("Failed to open media")
		ginx.AbortWithError(ctx, apierror.WrapError(apierror.ErrInternalError, "Failed to open media", err))
		return
	}
	defer rc.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(rc, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		logger.Error().Err(err).Str("bucket", bucket).Str("name", name).Msg("Failed to read media")
		ginx.AbortWithError(ctx, apierror.WrapError(apierror.ErrInternalError, "Failed to read media", err))
		return
	}
	head = head[:n]

	ctx.DataFromReader(http.StatusOK, -1, mimetype.Detect(head).String(),
		io.MultiReader(bytes.NewReader(head), rc),
		map[string]string{"Cache-Control": "public, max-age=3600"})
}
