package ginx_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jimyag/adshelf/pkg/apierror"
	"github.com/jimyag/adshelf/pkg/ginx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validatedArgs struct {
	Name string `json:"name"`
}

func (args *validatedArgs) IsValid() error {
	if strings.TrimSpace(args.Name) == "" {
		return apierror.InvalidParameter("name is required")
	}
	return nil
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestAdapt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		testFunc func(*testing.T)
	}{
		{
			name: "Adapt2_ReturnStruct",
			testFunc: func(t *testing.T) {
				t.Parallel()
				router := newRouter()
				router.GET("/healthz", ginx.Adapt2(func(c *gin.Context) gin.H {
					return gin.H{"status": "ok"}
				}))

				w := httptest.NewRecorder()
				router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

				assert.Equal(t, http.StatusOK, w.Code)
				assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
			},
		},
		{
			name: "Adapt3_PlainErrorIs500",
			testFunc: func(t *testing.T) {
				t.Parallel()
				router := newRouter()
				router.GET("/stats", ginx.Adapt3(func(c *gin.Context) (int, error) {
					return 0, assert.AnError
				}))

				w := httptest.NewRecorder()
				router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))

				assert.Equal(t, http.StatusInternalServerError, w.Code)
			},
		},
		{
			name: "Adapt4_NoContent",
			testFunc: func(t *testing.T) {
				t.Parallel()
				router := newRouter()
				type Args struct {
					ID string `uri:"id"`
				}
				router.DELETE("/ads/:id", ginx.Adapt4(func(c *gin.Context, args *Args) error {
					assert.Equal(t, "ad-1", args.ID)
					return nil
				}))

				w := httptest.NewRecorder()
				router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/ads/ad-1", nil))

				assert.Equal(t, http.StatusNoContent, w.Code)
			},
		},
		{
			name: "Adapt5_JSONBinding",
			testFunc: func(t *testing.T) {
				t.Parallel()
				router := newRouter()
				type Args struct {
					Name  string `json:"name" binding:"required"`
					Color string `json:"color"`
				}
				router.POST("/tags", ginx.Adapt5(func(c *gin.Context, args *Args) (*Args, error) {
					return args, nil
				}))

				w := httptest.NewRecorder()
				req := httptest.NewRequest(http.MethodPost, "/tags", strings.NewReader(`{"name":"shoes","color":"#D5E3F1"}`))
				req.Header.Set("Content-Type", "application/json")
				router.ServeHTTP(w, req)

				assert.Equal(t, http.StatusOK, w.Code)
				assert.JSONEq(t, `{"name":"shoes","color":"#D5E3F1"}`, w.Body.String())
			},
		},
		{
			name: "Adapt5_RequiredFieldMissing",
			testFunc: func(t *testing.T) {
				t.Parallel()
				router := newRouter()
				type Args struct {
					Name string `json:"name" binding:"required"`
				}
				router.POST("/tags", ginx.Adapt5(func(c *gin.Context, args *Args) (*Args, error) {
					t.Fatal("handler should not be called")
					return nil, nil
				}))

				w := httptest.NewRecorder()
				req := httptest.NewRequest(http.MethodPost, "/tags", strings.NewReader(`{}`))
				req.Header.Set("Content-Type", "application/json")
				router.ServeHTTP(w, req)

				assert.Equal(t, http.StatusBadRequest, w.Code)
				assert.Contains(t, w.Body.String(), `"code":"InvalidParameter"`)
			},
		},
		{
			name: "Adapt5_IsValid",
			testFunc: func(t *testing.T) {
				t.Parallel()
				router := newRouter()
				router.POST("/tags", ginx.Adapt5(func(c *gin.Context, args *validatedArgs) (*validatedArgs, error) {
					return args, nil
				}))

				w := httptest.NewRecorder()
				req := httptest.NewRequest(http.MethodPost, "/tags", strings.NewReader(`{"name":"   "}`))
				req.Header.Set("Content-Type", "application/json")
				router.ServeHTTP(w, req)

				assert.Equal(t, http.StatusBadRequest, w.Code)
				assert.Contains(t, w.Body.String(), "name is required")
			},
		},
		{
			name: "Adapt5_QueryBinding",
			testFunc: func(t *testing.T) {
				t.Parallel()
				router := newRouter()
				type Args struct {
					Search string `form:"search"`
					Limit  int    `form:"limit"`
				}
				router.GET("/ads", ginx.Adapt5(func(c *gin.Context, args *Args) (gin.H, error) {
					return gin.H{"search": args.Search, "limit": args.Limit}, nil
				}))

				w := httptest.NewRecorder()
				router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ads?search=shoe&limit=4", nil))

				assert.Equal(t, http.StatusOK, w.Code)
				assert.JSONEq(t, `{"search":"shoe","limit":4}`, w.Body.String())
			},
		},
		{
			name: "Adapt5_MultipartBinding",
			testFunc: func(t *testing.T) {
				t.Parallel()
				router := newRouter()
				type Args struct {
					AdvertiserName string                `form:"advertiser_name"`
					Media          *multipart.FileHeader `form:"media"`
				}
				router.POST("/ads", ginx.Adapt5(func(c *gin.Context, args *Args) (gin.H, error) {
					require.NotNil(t, args.Media)
					return gin.H{"advertiser": args.AdvertiserName, "file": args.Media.Filename}, nil
				}))

				body := &bytes.Buffer{}
				writer := multipart.NewWriter(body)
				require.NoError(t, writer.WriteField("advertiser_name", "Acme"))
				part, err := writer.CreateFormFile("media", "clip.mp4")
				require.NoError(t, err)
				_, err = part.Write([]byte("fake video"))
				require.NoError(t, err)
				require.NoError(t, writer.Close())

				w := httptest.NewRecorder()
				req := httptest.NewRequest(http.MethodPost, "/ads", body)
				req.Header.Set("Content-Type", writer.FormDataContentType())
				router.ServeHTTP(w, req)

				assert.Equal(t, http.StatusOK, w.Code)
				assert.JSONEq(t, `{"advertiser":"Acme","file":"clip.mp4"}`, w.Body.String())
			},
		},
		{
			name: "Adapt5_WrappedAPIError",
			testFunc: func(t *testing.T) {
				t.Parallel()
				router := newRouter()
				router.Use(func(c *gin.Context) {
					ginx.SetRequestID(c, "req-1")
					c.Next()
				})
				type Args struct {
					ID string `json:"id"`
				}
				router.POST("/tags/delete", ginx.Adapt5(func(c *gin.Context, args *Args) (*Args, error) {
					return nil, fmt.Errorf("delete tag: %w", apierror.NotFound("tag %s not found", args.ID))
				}))

				w := httptest.NewRecorder()
				req := httptest.NewRequest(http.MethodPost, "/tags/delete", strings.NewReader(`{"id":"tag-9"}`))
				req.Header.Set("Content-Type", "application/json")
				router.ServeHTTP(w, req)

				assert.Equal(t, http.StatusNotFound, w.Code)
				var resp apierror.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, "req-1", resp.RequestID)
				require.Len(t, resp.Errors, 1)
				assert.Equal(t, "ResourceNotFound", resp.Errors[0].Code)
				assert.Equal(t, "tag tag-9 not found", resp.Errors[0].Message)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}

func TestAbortWithError(t *testing.T) {
	t.Parallel()

	router := newRouter()
	router.Use(func(c *gin.Context) {
		ginx.AbortWithError(c, apierror.Unauthorized("missing bearer token"))
	})
	router.GET("/private", func(c *gin.Context) {
		t.Fatal("handler should not be called")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "missing bearer token")
}
