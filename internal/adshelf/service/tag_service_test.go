package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jimyag/adshelf/internal/adshelf/entity"
	"github.com/jimyag/adshelf/pkg/apierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireAPIError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var apiErr *apierror.Error
	require.True(t, errors.As(err, &apiErr), "expected *apierror.Error, got %T", err)
	assert.Equal(t, code, apiErr.Code)
}

func TestTagService_CreateTag(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name      string
		req       *entity.CreateTagRequest
		errorCode string
		validate  func(*testing.T, *entity.Tag)
	}{
		{
			name: "trims name",
			req:  &entity.CreateTagRequest{Name: "  Fitness  ", Color: entity.ColorBlue},
			validate: func(t *testing.T, tag *entity.Tag) {
				assert.Equal(t, "Fitness", tag.Name)
				assert.Equal(t, entity.ColorBlue, tag.Color)
				assert.True(t, strings.HasPrefix(tag.ID, "tag-"))
				assert.NotEmpty(t, tag.CreatedAt)
			},
		},
		{
			name: "default color",
			req:  &entity.CreateTagRequest{Name: "Shoes"},
			validate: func(t *testing.T, tag *entity.Tag) {
				assert.Equal(t, DefaultTagColor, tag.Color)
			},
		},
		{
			name:      "blank name",
			req:       &entity.CreateTagRequest{Name: "   "},
			errorCode: "InvalidParameter",
		},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ts := setupTestServices(t)

			resp, err := ts.TagService.CreateTag(context.Background(), tc.req)
			if tc.errorCode != "" {
				requireAPIError(t, err, tc.errorCode)
				return
			}
			require.NoError(t, err)
			tc.validate(t, resp.Tag)
		})
	}
}

func TestTagService_ListTagsUsesWorkspaceStore(t *testing.T) {
	t.Parallel()
	ts := setupTestServices(t)
	ts.createTag(t, "beta", "")
	ts.createTag(t, "alpha", "")

	ctx, ws := ts.sessionContext(t, "s-1")
	assert.False(t, ws.Tags().Loaded())

	resp, err := ts.TagService.ListTags(ctx, &entity.ListTagsRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Tags, 2)
	assert.Equal(t, "alpha", resp.Tags[0].Name)
	assert.Equal(t, "beta", resp.Tags[1].Name)
	assert.Len(t, resp.Palette, 10)
	assert.True(t, ws.Tags().Loaded())

	// 通过会话创建的标签立即出现在缓存中
	created, err := ts.TagService.CreateTag(ctx, &entity.CreateTagRequest{Name: "gamma"})
	require.NoError(t, err)
	got, ok := ws.Tags().Get(created.Tag.ID)
	require.True(t, ok)
	assert.Equal(t, "gamma", got.Name)
}

func TestTagService_UpdateTag(t *testing.T) {
	t.Parallel()
	ts := setupTestServices(t)
	ctx, ws := ts.sessionContext(t, "s-1")

	created, err := ts.TagService.CreateTag(ctx, &entity.CreateTagRequest{Name: "Old", Color: entity.ColorRed})
	require.NoError(t, err)
	_, err = ws.Tags().Tags(ctx)
	require.NoError(t, err)

	resp, err := ts.TagService.UpdateTag(ctx, &entity.UpdateTagRequest{TagID: created.Tag.ID, Name: " New "})
	require.NoError(t, err)
	assert.Equal(t, "New", resp.Tag.Name)
	assert.Equal(t, entity.ColorRed, resp.Tag.Color)

	resp, err = ts.TagService.UpdateTag(ctx, &entity.UpdateTagRequest{TagID: created.Tag.ID, Color: entity.ColorGreen})
	require.NoError(t, err)
	assert.Equal(t, "New", resp.Tag.Name)
	assert.Equal(t, entity.ColorGreen, resp.Tag.Color)

	cached, ok := ws.Tags().Get(created.Tag.ID)
	require.True(t, ok)
	assert.Equal(t, "New", cached.Name)
	assert.Equal(t, entity.ColorGreen, cached.Color)

	_, err = ts.TagService.UpdateTag(ctx, &entity.UpdateTagRequest{TagID: "tag-missing", Name: "x"})
	requireAPIError(t, err, "ResourceNotFound")
}

func TestTagService_AttachDetach(t *testing.T) {
	t.Parallel()
	ts := setupTestServices(t)
	ts.seedAds(t, 2)
	tag := ts.createTag(t, "Promo", "")
	ctx := context.Background()

	resp, err := ts.TagService.AttachTag(ctx, &entity.AdTagRequest{AdID: "ad-0", TagID: tag.ID})
	require.NoError(t, err)
	require.Len(t, resp.Tags, 1)
	assert.Equal(t, tag.ID, resp.Tags[0].ID)

	// 重复关联被忽略
	resp, err = ts.TagService.AttachTag(ctx, &entity.AdTagRequest{AdID: "ad-0", TagID: tag.ID})
	require.NoError(t, err)
	assert.Len(t, resp.Tags, 1)

	_, err = ts.TagService.AttachTag(ctx, &entity.AdTagRequest{AdID: "ad-missing", TagID: tag.ID})
	requireAPIError(t, err, "ResourceNotFound")
	_, err = ts.TagService.AttachTag(ctx, &entity.AdTagRequest{AdID: "ad-1", TagID: "tag-missing"})
	requireAPIError(t, err, "ResourceNotFound")

	resp, err = ts.TagService.DetachTag(ctx, &entity.AdTagRequest{AdID: "ad-0", TagID: tag.ID})
	require.NoError(t, err)
	assert.Empty(t, resp.Tags)

	// 关联不存在时不报错
	_, err = ts.TagService.DetachTag(ctx, &entity.AdTagRequest{AdID: "ad-0", TagID: tag.ID})
	require.NoError(t, err)
}

func TestTagService_DeleteTag(t *testing.T) {
	t.Parallel()
	ts := setupTestServices(t)
	ts.seedAds(t, 1)
	ctx, ws := ts.sessionContext(t, "s-1")

	keep := ts.createTag(t, "Keep", "")
	drop := ts.createTag(t, "Drop", "")
	for _, id := range []string{keep.ID, drop.ID} {
		_, err := ts.TagService.AttachTag(ctx, &entity.AdTagRequest{AdID: "ad-0", TagID: id})
		require.NoError(t, err)
	}
	_, err := ws.Tags().Tags(ctx)
	require.NoError(t, err)

	resp, err := ts.TagService.DeleteTag(ctx, &entity.DeleteTagRequest{TagID: drop.ID})
	require.NoError(t, err)
	assert.True(t, resp.Return)

	_, ok := ws.Tags().Get(drop.ID)
	assert.False(t, ok)

	tags, err := ts.TagService.ListAdTags(ctx, &entity.ListAdTagsRequest{AdID: "ad-0"})
	require.NoError(t, err)
	require.Len(t, tags.Tags, 1)
	assert.Equal(t, keep.ID, tags.Tags[0].ID)

	_, err = ts.TagService.DeleteTag(ctx, &entity.DeleteTagRequest{TagID: drop.ID})
	requireAPIError(t, err, "ResourceNotFound")
}
