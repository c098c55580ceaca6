package idgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	gen := New()
	assert.NotNil(t, gen)
	assert.NotNil(t, gen.sf)
}

func TestGenerateTagID(t *testing.T) {
	t.Parallel()

	gen := New()

	testcases := []struct {
		name  string
		check func(t *testing.T, id string)
	}{
		{
			name: "generate tag ID",
			check: func(t *testing.T, id string) {
				assert.True(t, strings.HasPrefix(id, "tag-"))
			},
		},
		{
			name: "generate multiple IDs are unique",
			check: func(t *testing.T, id string) {
				ids := make(map[string]bool)
				for i := 0; i < 100; i++ {
					newID, err := gen.GenerateTagID()
					require.NoError(t, err)
					assert.False(t, ids[newID], "ID should be unique: %s", newID)
					ids[newID] = true
				}
			},
		},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			id, err := gen.GenerateTagID()
			require.NoError(t, err)
			tc.check(t, id)
		})
	}
}

func TestGenerateAdID(t *testing.T) {
	t.Parallel()

	gen := New()
	a := gen.GenerateAdID()
	b := gen.GenerateAdID()

	assert.True(t, strings.HasPrefix(a, "ad-"))
	assert.Len(t, a, len("ad-")+36)
	assert.NotEqual(t, a, b)
}

func TestGenerateID_Incremental(t *testing.T) {
	t.Parallel()

	gen := New()

	var prevID uint64
	for i := 0; i < 100; i++ {
		id, err := gen.GenerateID()
		require.NoError(t, err)

		if i > 0 {
			assert.Greater(t, id, prevID, "ID should be incremental: %d > %d", id, prevID)
		}
		prevID = id
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	t.Parallel()

	assert.Same(t, DefaultGenerator(), DefaultGenerator())

	tagID, err := GenerateTagID()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(tagID, "tag-"))

	userID, err := GenerateUserID()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(userID, "u-"))

	assert.True(t, strings.HasPrefix(GenerateAdID(), "ad-"))
}
