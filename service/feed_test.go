package service

import (
	"context"
	"testing"
	"time"

	"mingle/cache"
	"mingle/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func followerRefs(n int) []models.UserRef {
	refs := make([]models.UserRef, n)
	for i := range refs {
		refs[i] = models.UserRef{User: newUser("f", time.Now()).ID}
	}
	return refs
}

func TestTopUsersRankedByFollowers(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	ana := newUser("Ana", base.Add(2*time.Hour))
	ana.Followers = followerRefs(5)
	ben := newUser("Ben", base.Add(3*time.Hour))
	ben.Followers = followerRefs(3)
	cid := newUser("Cid", base.Add(1*time.Hour))
	cid.Followers = followerRefs(3)
	dee := newUser("Dee", base)
	dee.Followers = followerRefs(1)

	svc := NewFeedService(newMemUserRepo(ana, ben, cid, dee), newMemPostRepo(), nil)

	ranked, err := svc.TopUsers(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, ranked, 4)

	// 5 first, then the 3/3 tie broken by earlier creation, then 1.
	assert.Equal(t, "Ana", ranked[0].Name)
	assert.Equal(t, 5, ranked[0].FollowersCount)
	assert.Equal(t, "Cid", ranked[1].Name)
	assert.Equal(t, "Ben", ranked[2].Name)
	assert.Equal(t, "Dee", ranked[3].Name)
}

func TestTopUsersHonorsLimit(t *testing.T) {
	base := time.Now()
	users := make([]*models.User, 0, 15)
	for i := 0; i < 15; i++ {
		u := newUser("User", base.Add(time.Duration(i)*time.Minute))
		u.Followers = followerRefs(i)
		users = append(users, u)
	}

	svc := NewFeedService(newMemUserRepo(users...), newMemPostRepo(), nil)

	ranked, err := svc.TopUsers(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, ranked, DefaultFeedLimit)
	assert.Equal(t, 14, ranked[0].FollowersCount)
}

func TestPopularPostsOrderedByViews(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	author := newUser("Author", base)
	older := newPost(author.ID, "older", 40, base)
	newer := newPost(author.ID, "newer", 40, base.Add(time.Hour))
	top := newPost(author.ID, "top", 90, base)

	svc := NewFeedService(newMemUserRepo(author), newMemPostRepo(older, newer, top), nil)

	posts, err := svc.PopularPosts(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "top", posts[0].Title)
	// View tie broken by most recent creation.
	assert.Equal(t, "newer", posts[1].Title)
	assert.Equal(t, "older", posts[2].Title)
}

func TestFeedServesFromCacheUntilExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	c := cache.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer c.Close()

	base := time.Now()
	author := newUser("Author", base)
	post := newPost(author.ID, "hot", 100, base)
	posts := newMemPostRepo(post)
	svc := NewFeedService(newMemUserRepo(author), posts, c)

	ctx := context.Background()
	first, err := svc.PopularPosts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// New data is invisible while the cached entry lives.
	_, err = posts.IncrementViews(ctx, post.ID)
	require.NoError(t, err)
	cached, err := svc.PopularPosts(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(100), cached[0].Views)

	mr.FastForward(cache.FeedTTL + time.Second)
	fresh, err := svc.PopularPosts(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(101), fresh[0].Views)
}
