package service

import (
	"context"
	"strings"
	"time"

	"mingle/models"
	"mingle/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostService handles post CRUD. Ownership of a post is fixed at creation;
// edits and deletes check it by id value.
type PostService struct {
	users repository.UserRepository
	posts repository.PostRepository
}

// NewPostService returns a new PostService.
func NewPostService(users repository.UserRepository, posts repository.PostRepository) *PostService {
	return &PostService{users: users, posts: posts}
}

// Create stores a new post owned by userID. Image is an opaque reference and
// may be empty.
func (s *PostService) Create(ctx context.Context, userID primitive.ObjectID, title, text, image string) (*models.Post, error) {
	title = strings.TrimSpace(title)
	text = strings.TrimSpace(text)
	if title == "" {
		return nil, models.NewValidationError("post title is required")
	}
	if text == "" {
		return nil, models.NewValidationError("post text is required")
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	post := &models.Post{
		ID:        primitive.NewObjectID(),
		User:      userID,
		Title:     title,
		Image:     image,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Update edits a post's title, text and image. Only the owner may edit.
func (s *PostService) Update(ctx context.Context, userID, postID primitive.ObjectID, update repository.PostUpdate) (*models.Post, error) {
	update.Title = strings.TrimSpace(update.Title)
	update.Text = strings.TrimSpace(update.Text)
	if update.Title == "" {
		return nil, models.NewValidationError("post title is required")
	}
	if update.Text == "" {
		return nil, models.NewValidationError("post text is required")
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.User != userID {
		return nil, models.NewForbiddenError("you do not own this post")
	}

	return s.posts.Update(ctx, postID, update)
}

// Delete removes a post. Only the owner may delete.
func (s *PostService) Delete(ctx context.Context, userID, postID primitive.ObjectID) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.User != userID {
		return models.NewForbiddenError("you do not own this post")
	}

	return s.posts.Delete(ctx, postID)
}

// Get returns a single post after recording the view, joined with the
// author's current display fields.
func (s *PostService) Get(ctx context.Context, postID primitive.ObjectID) (*models.PostWithAuthor, error) {
	post, err := s.posts.IncrementViews(ctx, postID)
	if err != nil {
		return nil, err
	}

	result := &models.PostWithAuthor{Post: *post}
	if author, err := s.users.GetByID(ctx, post.User); err == nil {
		result.AuthorName = author.Name
		result.AuthorAvatar = author.Avatar
	}
	return result, nil
}

// List returns all posts, newest first, with author display fields.
func (s *PostService) List(ctx context.Context) ([]models.PostWithAuthor, error) {
	return s.posts.ListNewest(ctx)
}

// Search returns posts matching the title, newest first.
func (s *PostService) Search(ctx context.Context, title string) ([]models.PostWithAuthor, error) {
	return s.posts.SearchByTitle(ctx, title)
}
