package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix    = "user:%d"
	PostKeyPrefix    = "post:%s"
	PopularKeyPrefix = "posts:popular"
)

const (
	UserTTL    = 5 * time.Minute
	PostTTL    = 30 * time.Minute
	PopularTTL = 2 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

// PostKey is keyed by slug because the public read path retrieves by slug.
// Only anonymous reads are cached; personalized fields (liked, saved) make
// per-viewer caching pointless.
func PostKey(slug string) string {
	return fmt.Sprintf(PostKeyPrefix, slug)
}

func PopularKey() string {
	return PopularKeyPrefix
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePost(ctx context.Context, slug string) {
	Invalidate(ctx, PostKey(slug))
	Invalidate(ctx, PopularKey())
}

func InvalidatePopular(ctx context.Context) {
	Invalidate(ctx, PopularKey())
}
