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

type payload struct {
	Title string `json:"title"`
	Views int64  `json:"views"`
}

func testCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	c := NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestSetGetRoundTrip(t *testing.T) {
	c, _ := testCache(t)
	ctx := context.Background()

	want := []payload{{Title: "hot", Views: 42}}
	c.SetJSON(ctx, PopularPostsKey, want, FeedTTL)

	var got []payload
	require.NoError(t, c.GetJSON(ctx, PopularPostsKey, &got))
	assert.Equal(t, want, got)
}

func TestMissOnAbsentKey(t *testing.T) {
	c, _ := testCache(t)

	var got []payload
	err := c.GetJSON(context.Background(), "no-such-key", &got)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestEntryExpires(t *testing.T) {
	c, mr := testCache(t)
	ctx := context.Background()

	c.SetJSON(ctx, TopUsersKey, []payload{{Title: "a"}}, FeedTTL)
	mr.FastForward(FeedTTL + time.Second)

	var got []payload
	err := c.GetJSON(ctx, TopUsersKey, &got)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestNilCacheIsDisabled(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	c.SetJSON(ctx, "key", "value", time.Minute)
	var got string
	assert.ErrorIs(t, c.GetJSON(ctx, "key", &got), ErrMiss)
	assert.NoError(t, c.Close())
}

func TestNewWithEmptyAddrDisabled(t *testing.T) {
	c := New("")
	var got string
	assert.ErrorIs(t, c.GetJSON(context.Background(), "key", &got), ErrMiss)
}
