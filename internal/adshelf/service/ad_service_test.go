package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/jimyag/adshelf/internal/adshelf/entity"
	"github.com/jimyag/adshelf/internal/adshelf/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func TestMediaBaseName(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 1, 12, 30, 45, 123_000_000, time.UTC)
	testcases := []struct {
		name       string
		advertiser string
		want       string
	}{
		{name: "plain", advertiser: "nike", want: "nike_2024-06-01T12-30-45-123Z"},
		{name: "mixed case and spaces", advertiser: "Acme Co.", want: "acme_co__2024-06-01T12-30-45-123Z"},
		{name: "non ascii", advertiser: "Café", want: "caf__2024-06-01T12-30-45-123Z"},
		{name: "empty", advertiser: "", want: "unknown_advertiser_2024-06-01T12-30-45-123Z"},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, mediaBaseName(tc.advertiser, now))
		})
	}
}

func TestFileExtAndMediaType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "jpg", fileExt("photo.JPG", "image/jpeg"))
	assert.Equal(t, "gz", fileExt("archive.tar.gz", ""))
	assert.Equal(t, "png", fileExt("noext", "image/png"))
	assert.Equal(t, "bin", fileExt("noext", ""))

	assert.Equal(t, entity.MediaTypeVideo, mediaTypeOf("video/mp4"))
	assert.Equal(t, entity.MediaTypeImage, mediaTypeOf("image/png"))
	assert.Equal(t, entity.MediaTypeImage, mediaTypeOf("application/pdf"))
}

func TestAdService_CreateAd(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name      string
		req       func(t *testing.T) *entity.CreateAdRequest
		errorCode string
		validate  func(*testing.T, *TestServices, *entity.Ad)
	}{
		{
			name: "text only",
			req: func(t *testing.T) *entity.CreateAdRequest {
				return &entity.CreateAdRequest{AdvertiserName: "Nike", AdText: "Just do it\nnow"}
			},
			validate: func(t *testing.T, ts *TestServices, ad *entity.Ad) {
				assert.Equal(t, "Nike", ad.AdvertiserName)
				assert.Equal(t, "Just do it\nnow", ad.AdText)
				assert.Empty(t, ad.MediaURL)
				assert.Empty(t, ad.MediaType)
				assert.Empty(t, ad.AdvertiserProfileImage)
				assert.NotEmpty(t, ad.CapturedAt)
			},
		},
		{
			name: "profile image and video",
			req: func(t *testing.T) *entity.CreateAdRequest {
				return &entity.CreateAdRequest{
					AdvertiserName:        "Acme",
					AdText:                "body",
					LibraryID:             "123",
					AdvertiserProfileLink: "https://facebook.com/acme",
					ProfileImage:          fileHeader(t, "profile_image", "me.png", "image/png", pngHeader),
					Media:                 fileHeader(t, "media", "clip.mp4", "video/mp4", []byte("not really a video")),
				}
			},
			validate: func(t *testing.T, ts *TestServices, ad *entity.Ad) {
				assert.Equal(t, entity.MediaTypeVideo, ad.MediaType)
				assert.Regexp(t, `^http://localhost:7788/media/ads-media/acme_.*\.mp4$`, ad.MediaURL)
				assert.Regexp(t, `^http://localhost:7788/media/ads-media/profile_acme_.*\.png$`, ad.AdvertiserProfileImage)
				assert.Equal(t, "123", ad.LibraryID)
				assert.Equal(t, "https://facebook.com/acme", ad.AdvertiserProfileLink)
			},
		},
		{
			name: "sniffs octet stream",
			req: func(t *testing.T) *entity.CreateAdRequest {
				return &entity.CreateAdRequest{
					AdvertiserName: "Acme",
					AdText:         "body",
					Media:          fileHeader(t, "media", "upload", "application/octet-stream", pngHeader),
				}
			},
			validate: func(t *testing.T, ts *TestServices, ad *entity.Ad) {
				assert.Equal(t, entity.MediaTypeImage, ad.MediaType)
				assert.Regexp(t, `\.png$`, ad.MediaURL)

				// 嗅探读过的字节也要完整写入
				name := ad.MediaURL[len("http://localhost:7788/media/ads-media/"):]
				rc, err := ts.Objects.Open(context.Background(), DefaultMediaBucket, name)
				require.NoError(t, err)
				defer rc.Close()
				data, err := io.ReadAll(rc)
				require.NoError(t, err)
				assert.Equal(t, pngHeader, data)
			},
		},
		{
			name: "missing advertiser",
			req: func(t *testing.T) *entity.CreateAdRequest {
				return &entity.CreateAdRequest{AdText: "body"}
			},
			errorCode: "InvalidParameter",
		},
		{
			name: "missing body",
			req: func(t *testing.T) *entity.CreateAdRequest {
				return &entity.CreateAdRequest{AdvertiserName: "Acme", AdText: "  "}
			},
			errorCode: "InvalidParameter",
		},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ts := setupTestServices(t)

			resp, err := ts.AdService.CreateAd(context.Background(), tc.req(t))
			if tc.errorCode != "" {
				requireAPIError(t, err, tc.errorCode)
				return
			}
			require.NoError(t, err)
			tc.validate(t, ts, resp.Ad)

			described, err := ts.AdService.DescribeAd(context.Background(), &entity.DescribeAdRequest{AdID: resp.Ad.ID})
			require.NoError(t, err)
			assert.Equal(t, resp.Ad.ID, described.Ad.ID)
		})
	}
}

func TestAdService_DeleteAdAndStats(t *testing.T) {
	t.Parallel()
	ts := setupTestServices(t)
	ts.seedAds(t, 3)
	tag := ts.createTag(t, "Promo", "")
	ctx := context.Background()

	_, err := ts.TagService.AttachTag(ctx, &entity.AdTagRequest{AdID: "ad-1", TagID: tag.ID})
	require.NoError(t, err)

	stats, err := ts.AdService.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalAds)
	assert.Equal(t, int64(1), stats.TotalTags)

	resp, err := ts.AdService.DeleteAd(ctx, &entity.DeleteAdRequest{AdID: "ad-1"})
	require.NoError(t, err)
	assert.True(t, resp.Return)

	tagged, err := ts.AdService.CountAds(ctx, repository.AdQuery{TagIDs: []string{tag.ID}})
	require.NoError(t, err)
	assert.Zero(t, tagged)

	_, err = ts.AdService.DescribeAd(ctx, &entity.DescribeAdRequest{AdID: "ad-1"})
	requireAPIError(t, err, "ResourceNotFound")
	_, err = ts.AdService.DeleteAd(ctx, &entity.DeleteAdRequest{AdID: "ad-1"})
	requireAPIError(t, err, "ResourceNotFound")
}

func TestAdService_SearchAdsIncludesTags(t *testing.T) {
	t.Parallel()
	ts := setupTestServices(t)
	ts.seedAds(t, 5)
	tag := ts.createTag(t, "Promo", "")
	ctx := context.Background()

	_, err := ts.TagService.AttachTag(ctx, &entity.AdTagRequest{AdID: "ad-2", TagID: tag.ID})
	require.NoError(t, err)

	ads, err := ts.AdService.SearchAds(ctx, repository.AdQuery{Limit: 4})
	require.NoError(t, err)
	require.Len(t, ads, 4)
	assert.Equal(t, "ad-0", ads[0].ID)
	for _, ad := range ads {
		assert.NotNil(t, ad.Tags)
		if ad.ID == "ad-2" {
			require.Len(t, ad.Tags, 1)
			assert.Equal(t, "Promo", ad.Tags[0].Name)
		} else {
			assert.Empty(t, ad.Tags)
		}
	}

	total, err := ts.AdService.CountAds(ctx, repository.AdQuery{Search: "body 4"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}
