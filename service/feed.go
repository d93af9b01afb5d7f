package service

import (
	"context"
	"sort"

	"mingle/cache"
	"mingle/models"
	"mingle/repository"
)

// DefaultFeedLimit is the homepage ranking size when the caller does not ask
// for one.
const DefaultFeedLimit = 10

// FeedService produces the homepage ranking. It only reads; slightly stale
// counts are fine, which is why results sit behind a short-TTL cache.
type FeedService struct {
	users repository.UserRepository
	posts repository.PostRepository
	cache *cache.Cache
}

// NewFeedService returns a new FeedService. The cache may be nil.
func NewFeedService(users repository.UserRepository, posts repository.PostRepository, c *cache.Cache) *FeedService {
	return &FeedService{users: users, posts: posts, cache: c}
}

// PopularPosts returns the most viewed posts, ties broken by most recent
// creation, each joined with its author's current name and avatar.
func (s *FeedService) PopularPosts(ctx context.Context, limit int) ([]models.PostWithAuthor, error) {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}

	var cached []models.PostWithAuthor
	if err := s.cache.GetJSON(ctx, cache.PopularPostsKey, &cached); err == nil {
		if len(cached) > limit {
			cached = cached[:limit]
		}
		return cached, nil
	}

	posts, err := s.posts.TopByViews(ctx, int64(limit))
	if err != nil {
		return nil, err
	}

	s.cache.SetJSON(ctx, cache.PopularPostsKey, posts, cache.FeedTTL)
	return posts, nil
}

// TopUsers returns users ranked by follower count descending. Ties are broken
// by earliest creation time so the ordering is deterministic regardless of
// insertion order.
func (s *FeedService) TopUsers(ctx context.Context, limit int) ([]models.RankedUser, error) {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}

	var cached []models.RankedUser
	if err := s.cache.GetJSON(ctx, cache.TopUsersKey, &cached); err == nil {
		if len(cached) > limit {
			cached = cached[:limit]
		}
		return cached, nil
	}

	users, err := s.users.All(ctx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(users, func(i, j int) bool {
		fi, fj := len(users[i].Followers), len(users[j].Followers)
		if fi != fj {
			return fi > fj
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})

	if len(users) > limit {
		users = users[:limit]
	}

	ranked := make([]models.RankedUser, len(users))
	for i, u := range users {
		ranked[i] = models.RankedUser{
			ID:             u.ID,
			Name:           u.Name,
			Avatar:         u.Avatar,
			FollowersCount: len(u.Followers),
		}
	}

	s.cache.SetJSON(ctx, cache.TopUsersKey, ranked, cache.FeedTTL)
	return ranked, nil
}
