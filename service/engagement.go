package service

import (
	"context"
	"strings"
	"time"

	"mingle/models"
	"mingle/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EngagementService handles likes, comments and views on a single post
// aggregate. Every mutation is one atomic document update in the repository.
type EngagementService struct {
	users repository.UserRepository
	posts repository.PostRepository
}

// NewEngagementService returns a new EngagementService.
func NewEngagementService(users repository.UserRepository, posts repository.PostRepository) *EngagementService {
	return &EngagementService{users: users, posts: posts}
}

// Like adds the user to the post's like set and returns the updated set.
func (s *EngagementService) Like(ctx context.Context, userID, postID primitive.ObjectID) ([]models.UserRef, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.LikedBy(userID) {
		return nil, models.NewConflictError("post already liked")
	}

	updated, err := s.posts.AddLike(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	return updated.Likes, nil
}

// Unlike removes exactly the user's entry from the like set.
func (s *EngagementService) Unlike(ctx context.Context, userID, postID primitive.ObjectID) ([]models.UserRef, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.LikedBy(userID) {
		return nil, models.NewConflictError("post not liked")
	}

	updated, err := s.posts.RemoveLike(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	return updated.Likes, nil
}

// AddComment prepends a comment to the post, capturing the commenter's
// current display name and avatar. Those fields stay as written even if the
// profile changes later.
func (s *EngagementService) AddComment(ctx context.Context, userID, postID primitive.ObjectID, text string) ([]models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, models.NewValidationError("comment text is required")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		User:      userID,
		Text:      text,
		Name:      user.Name,
		Avatar:    user.Avatar,
		CreatedAt: time.Now().UTC(),
	}

	updated, err := s.posts.AddComment(ctx, postID, comment)
	if err != nil {
		return nil, err
	}
	return updated.Comments, nil
}

// DeleteComment removes the comment with the given id. Only the comment's
// author may delete it.
func (s *EngagementService) DeleteComment(ctx context.Context, userID, postID, commentID primitive.ObjectID) ([]models.Comment, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := post.FindComment(commentID)
	if comment == nil {
		return nil, models.NewNotFoundError("comment", commentID.Hex())
	}
	if comment.User != userID {
		return nil, models.NewForbiddenError("you can only delete your own comments")
	}

	updated, err := s.posts.RemoveComment(ctx, postID, commentID)
	if err != nil {
		return nil, err
	}
	return updated.Comments, nil
}

// RecordView bumps the post's view counter by one and returns the new value.
// Views are not deduplicated per viewer.
func (s *EngagementService) RecordView(ctx context.Context, postID primitive.ObjectID) (int64, error) {
	post, err := s.posts.IncrementViews(ctx, postID)
	if err != nil {
		return 0, err
	}
	return post.Views, nil
}
