package tagstore

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jimyag/adshelf/internal/adshelf/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedLoader(calls *atomic.Int32, tags ...entity.Tag) Loader {
	return LoaderFunc(func(ctx context.Context) ([]entity.Tag, error) {
		calls.Add(1)
		return append([]entity.Tag(nil), tags...), nil
	})
}

func names(tags []entity.Tag) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		out = append(out, tag.Name)
	}
	return out
}

var (
	shoes   = entity.Tag{ID: "tag-1", Name: "shoes", Color: entity.ColorBlue}
	apparel = entity.Tag{ID: "tag-2", Name: "apparel", Color: entity.ColorYellow}
	kids    = entity.Tag{ID: "tag-3", Name: "kids", Color: entity.ColorBrown}
)

func TestStoreLazyLoad(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	store := New(fixedLoader(&calls, shoes, apparel))
	assert.False(t, store.Loaded())
	assert.Equal(t, int32(0), calls.Load())

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tags, err := store.Tags(ctx)
			assert.NoError(t, err)
			assert.Equal(t, []string{"apparel", "shoes"}, names(tags))
		}()
	}
	wg.Wait()

	assert.True(t, store.Loaded())
	assert.Equal(t, int32(1), calls.Load())
}

func TestStoreLoadError(t *testing.T) {
	t.Parallel()

	loadErr := errors.New("db down")
	store := New(LoaderFunc(func(ctx context.Context) ([]entity.Tag, error) {
		return nil, loadErr
	}))

	_, err := store.Tags(context.Background())
	assert.ErrorIs(t, err, loadErr)
	assert.False(t, store.Loaded())
}

func TestStoreReducers(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name   string
		mutate func(*Store)
		want   []entity.Tag
	}{
		{
			name:   "add",
			mutate: func(s *Store) { s.Add(kids) },
			want:   []entity.Tag{apparel, kids, shoes},
		},
		{
			name:   "add existing id replaces",
			mutate: func(s *Store) { s.Add(entity.Tag{ID: "tag-1", Name: "sneakers", Color: entity.ColorRed}) },
			want:   []entity.Tag{apparel, {ID: "tag-1", Name: "sneakers", Color: entity.ColorRed}},
		},
		{
			name:   "update",
			mutate: func(s *Store) { s.Update(entity.Tag{ID: "tag-2", Name: "clothing", Color: entity.ColorGreen}) },
			want:   []entity.Tag{{ID: "tag-2", Name: "clothing", Color: entity.ColorGreen}, shoes},
		},
		{
			name:   "update unknown id",
			mutate: func(s *Store) { s.Update(entity.Tag{ID: "tag-9", Name: "ghost"}) },
			want:   []entity.Tag{apparel, shoes},
		},
		{
			name:   "delete",
			mutate: func(s *Store) { s.Delete("tag-1") },
			want:   []entity.Tag{apparel},
		},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var calls atomic.Int32
			store := New(fixedLoader(&calls, shoes, apparel))
			_, err := store.Tags(context.Background())
			require.NoError(t, err)

			var notified []entity.Tag
			cancel := store.Subscribe(func(tags []entity.Tag) { notified = tags })
			defer cancel()

			tc.mutate(store)

			got, err := store.Tags(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.want, notified)
			assert.Equal(t, int32(1), calls.Load(), "reducers never re-fetch")
		})
	}
}

func TestStoreReducersBeforeLoad(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	store := New(fixedLoader(&calls, shoes))
	notified := 0
	store.Subscribe(func([]entity.Tag) { notified++ })

	store.Add(kids)
	assert.False(t, store.Loaded())
	assert.Equal(t, 0, notified)
}

func TestStoreSubscribeCancel(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	store := New(fixedLoader(&calls, shoes))
	_, err := store.Tags(context.Background())
	require.NoError(t, err)

	count := 0
	cancel := store.Subscribe(func([]entity.Tag) { count++ })
	store.Add(kids)
	cancel()
	cancel()
	store.Delete("tag-3")

	assert.Equal(t, 1, count)
}

func TestStoreReconcile(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	store := New(fixedLoader(&calls, shoes, apparel))

	stale := []entity.Tag{
		{ID: "tag-1", Name: "shoes-old", Color: entity.ColorDefault},
		{ID: "tag-2", Name: "apparel", Color: entity.ColorYellow},
	}

	// 未加载时原样返回
	assert.Equal(t, stale, store.Reconcile(stale))

	_, err := store.Tags(context.Background())
	require.NoError(t, err)

	store.Update(entity.Tag{ID: "tag-1", Name: "sneakers", Color: entity.ColorRed})
	store.Delete("tag-2")

	got := store.Reconcile(stale)
	assert.Equal(t, []entity.Tag{{ID: "tag-1", Name: "sneakers", Color: entity.ColorRed}}, got)
}

func TestStoreClose(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	store := New(fixedLoader(&calls, shoes))
	_, err := store.Tags(context.Background())
	require.NoError(t, err)

	count := 0
	store.Subscribe(func([]entity.Tag) { count++ })
	store.Close()

	store.Add(kids)
	assert.Equal(t, 0, count)
	assert.False(t, store.Loaded())

	_, err = store.Tags(context.Background())
	assert.ErrorIs(t, err, ErrClosed)

	_, ok := store.Get("tag-1")
	assert.False(t, ok)
}
