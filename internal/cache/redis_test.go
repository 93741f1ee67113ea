package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedPost struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() {
		SetClient(nil)
		mr.Close()
	})
	return mr
}

func TestAside(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	fetches := 0
	fetch := func(dest *cachedPost) func() error {
		return func() error {
			fetches++
			dest.Slug = "intro"
			dest.Title = "Intro"
			return nil
		}
	}

	var first cachedPost
	require.NoError(t, Aside(ctx, PostKey("intro"), &first, PostTTL, fetch(&first)))
	assert.Equal(t, 1, fetches)
	assert.Equal(t, "Intro", first.Title)

	// Second read is served from cache.
	var second cachedPost
	require.NoError(t, Aside(ctx, PostKey("intro"), &second, PostTTL, fetch(&second)))
	assert.Equal(t, 1, fetches)
	assert.Equal(t, "Intro", second.Title)

	Invalidate(ctx, PostKey("intro"))

	var third cachedPost
	require.NoError(t, Aside(ctx, PostKey("intro"), &third, PostTTL, fetch(&third)))
	assert.Equal(t, 2, fetches, "invalidation forces a refetch")
}

func TestAsideWithoutClient(t *testing.T) {
	SetClient(nil)

	var dest cachedPost
	err := Aside(context.Background(), PostKey("x"), &dest, time.Minute, func() error {
		dest.Title = "from source"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "from source", dest.Title, "cache disabled falls through to fetch")
}

func TestInvalidatePostClearsPopular(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, PostKey("intro"), cachedPost{Slug: "intro"}, time.Minute))
	require.NoError(t, SetJSON(ctx, PopularKey(), []cachedPost{{Slug: "intro"}}, time.Minute))

	InvalidatePost(ctx, "intro")

	assert.False(t, mr.Exists(PostKey("intro")))
	assert.False(t, mr.Exists(PopularKey()))
}
