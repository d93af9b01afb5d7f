// Package service holds the business logic between the HTTP handlers and the
// repositories.
package service

import (
	"context"

	"mingle/models"
	"mingle/monitoring"
	"mingle/repository"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RelationshipService maintains the follow/unfollow relationship between two
// user documents. The two writes are applied as a saga: target first, then
// follower, with one idempotent retry of the second write. If the second
// write still fails the two documents are left inconsistent; that is logged
// at error level and surfaced as a storage failure, never repaired silently.
type RelationshipService struct {
	users repository.UserRepository
}

// NewRelationshipService returns a new RelationshipService.
func NewRelationshipService(users repository.UserRepository) *RelationshipService {
	return &RelationshipService{users: users}
}

// Follow adds follower to target's followers and target to follower's
// following. Returns the follower's updated counts.
func (s *RelationshipService) Follow(ctx context.Context, followerID, targetID primitive.ObjectID) (*models.FollowCounts, error) {
	if followerID == targetID {
		return nil, models.NewSelfReferenceError("you cannot follow yourself")
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, followerID); err != nil {
		return nil, err
	}

	if target.IsFollowedBy(followerID) {
		return nil, models.NewConflictError("already following this user")
	}

	if err := s.users.AddFollower(ctx, targetID, followerID); err != nil {
		return nil, err
	}

	if err := s.applySecondWrite(ctx, "follow", followerID, targetID, func() error {
		return s.users.AddFollowing(ctx, followerID, targetID)
	}); err != nil {
		return nil, err
	}

	return s.counts(ctx, followerID)
}

// Unfollow removes the edge from both sides.
func (s *RelationshipService) Unfollow(ctx context.Context, followerID, targetID primitive.ObjectID) (*models.FollowCounts, error) {
	if followerID == targetID {
		return nil, models.NewSelfReferenceError("you cannot unfollow yourself")
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, followerID); err != nil {
		return nil, err
	}

	if !target.IsFollowedBy(followerID) {
		return nil, models.NewConflictError("not following this user")
	}

	if err := s.users.RemoveFollower(ctx, targetID, followerID); err != nil {
		return nil, err
	}

	if err := s.applySecondWrite(ctx, "unfollow", followerID, targetID, func() error {
		return s.users.RemoveFollowing(ctx, followerID, targetID)
	}); err != nil {
		return nil, err
	}

	return s.counts(ctx, followerID)
}

// applySecondWrite runs the follower-side write of the saga. The edge
// mutations are idempotent, so a CONFLICT here means the write already took
// effect (a previous partial apply or a retried delivery) and counts as
// success. Any other failure is retried once; if the retry also fails the
// stores are out of sync.
func (s *RelationshipService) applySecondWrite(ctx context.Context, op string, followerID, targetID primitive.ObjectID, write func() error) error {
	err := write()
	if err == nil || models.IsCode(err, models.CodeConflict) {
		return nil
	}

	if retryErr := write(); retryErr == nil || models.IsCode(retryErr, models.CodeConflict) {
		return nil
	}

	monitoring.SagaFailures.Inc()
	logrus.WithFields(logrus.Fields{
		"op":       op,
		"follower": followerID.Hex(),
		"target":   targetID.Hex(),
	}).WithError(err).Error("relationship writes out of sync: second aggregate update failed")

	return models.NewStorageError(err)
}

func (s *RelationshipService) counts(ctx context.Context, userID primitive.ObjectID) (*models.FollowCounts, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.FollowCounts{
		Followers: len(user.Followers),
		Following: len(user.Following),
	}, nil
}
