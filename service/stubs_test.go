package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"mingle/models"
	"mingle/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memUserRepo mirrors the MongoDB edge semantics in memory: lists behave as
// sets, inserts go to the front, and re-applying an edge write reports
// CONFLICT. failFollowing lets tests break the second saga write a set number
// of times.
type memUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User

	failFollowing      error
	failFollowingTimes int
}

func newMemUserRepo(users ...*models.User) *memUserRepo {
	r := &memUserRepo{users: make(map[primitive.ObjectID]*models.User)}
	for _, u := range users {
		if u.Followers == nil {
			u.Followers = []models.UserRef{}
		}
		if u.Following == nil {
			u.Following = []models.UserRef{}
		}
		r.users[u.ID] = u
	}
	return r
}

func (r *memUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, models.NewNotFoundError("user", id.Hex())
	}
	clone := *user
	clone.Followers = append([]models.UserRef{}, user.Followers...)
	clone.Following = append([]models.UserRef{}, user.Following...)
	return &clone, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == strings.ToLower(email) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, models.NewNotFoundError("user", email)
}

func (r *memUserRepo) SearchByName(ctx context.Context, name string) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.User
	for _, user := range r.users {
		if user.Name == name {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (r *memUserRepo) UpdateProfile(ctx context.Context, id primitive.ObjectID, update repository.ProfileUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return models.NewNotFoundError("user", id.Hex())
	}
	if update.Name != "" {
		user.Name = update.Name
	}
	if update.Bio != "" {
		user.Bio = update.Bio
	}
	if update.Occupation != "" {
		user.Occupation = update.Occupation
	}
	if update.Avatar != "" {
		user.Avatar = update.Avatar
	}
	return nil
}

func (r *memUserRepo) All(ctx context.Context) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.User, 0, len(r.users))
	for _, user := range r.users {
		out = append(out, *user)
	}
	return out, nil
}

func (r *memUserRepo) AddFollower(ctx context.Context, userID, followerID primitive.ObjectID) error {
	return r.pushEdge(userID, followerID, func(u *models.User) *[]models.UserRef { return &u.Followers })
}

func (r *memUserRepo) RemoveFollower(ctx context.Context, userID, followerID primitive.ObjectID) error {
	return r.pullEdge(userID, followerID, func(u *models.User) *[]models.UserRef { return &u.Followers })
}

func (r *memUserRepo) AddFollowing(ctx context.Context, userID, targetID primitive.ObjectID) error {
	r.mu.Lock()
	if r.failFollowingTimes > 0 {
		r.failFollowingTimes--
		err := r.failFollowing
		r.mu.Unlock()
		return err
	}
	r.mu.Unlock()
	return r.pushEdge(userID, targetID, func(u *models.User) *[]models.UserRef { return &u.Following })
}

func (r *memUserRepo) RemoveFollowing(ctx context.Context, userID, targetID primitive.ObjectID) error {
	r.mu.Lock()
	if r.failFollowingTimes > 0 {
		r.failFollowingTimes--
		err := r.failFollowing
		r.mu.Unlock()
		return err
	}
	r.mu.Unlock()
	return r.pullEdge(userID, targetID, func(u *models.User) *[]models.UserRef { return &u.Following })
}

func (r *memUserRepo) pushEdge(userID, refID primitive.ObjectID, list func(*models.User) *[]models.UserRef) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return models.NewConflictError("edge already exists")
	}
	edges := list(user)
	for _, ref := range *edges {
		if ref.User == refID {
			return models.NewConflictError("edge already exists")
		}
	}
	*edges = append([]models.UserRef{{User: refID}}, *edges...)
	return nil
}

func (r *memUserRepo) pullEdge(userID, refID primitive.ObjectID, list func(*models.User) *[]models.UserRef) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return models.NewConflictError("edge does not exist")
	}
	edges := list(user)
	for i, ref := range *edges {
		if ref.User == refID {
			*edges = append((*edges)[:i], (*edges)[i+1:]...)
			return nil
		}
	}
	return models.NewConflictError("edge does not exist")
}

// memPostRepo keeps posts in memory with the same like and comment semantics
// as the MongoDB repository.
type memPostRepo struct {
	mu    sync.Mutex
	posts map[primitive.ObjectID]*models.Post
}

func newMemPostRepo(posts ...*models.Post) *memPostRepo {
	r := &memPostRepo{posts: make(map[primitive.ObjectID]*models.Post)}
	for _, p := range posts {
		if p.Comments == nil {
			p.Comments = []models.Comment{}
		}
		if p.Likes == nil {
			p.Likes = []models.UserRef{}
		}
		r.posts[p.ID] = p
	}
	return r
}

func (r *memPostRepo) clone(post *models.Post) *models.Post {
	c := *post
	c.Comments = append([]models.Comment{}, post.Comments...)
	c.Likes = append([]models.UserRef{}, post.Likes...)
	return &c
}

func (r *memPostRepo) Create(ctx context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts[post.ID] = post
	return nil
}

func (r *memPostRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, models.NewNotFoundError("post", id.Hex())
	}
	return r.clone(post), nil
}

func (r *memPostRepo) Update(ctx context.Context, id primitive.ObjectID, update repository.PostUpdate) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, models.NewNotFoundError("post", id.Hex())
	}
	if update.Title != "" {
		post.Title = update.Title
	}
	if update.Text != "" {
		post.Text = update.Text
	}
	if update.Image != "" {
		post.Image = update.Image
	} else if update.ClearImage {
		post.Image = ""
	}
	return r.clone(post), nil
}

func (r *memPostRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return models.NewNotFoundError("post", id.Hex())
	}
	delete(r.posts, id)
	return nil
}

func (r *memPostRepo) ListNewest(ctx context.Context) ([]models.PostWithAuthor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.PostWithAuthor, 0, len(r.posts))
	for _, post := range r.posts {
		out = append(out, models.PostWithAuthor{Post: *r.clone(post)})
	}
	return out, nil
}

func (r *memPostRepo) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Post
	for _, post := range r.posts {
		if post.User == userID {
			out = append(out, *r.clone(post))
		}
	}
	return out, nil
}

func (r *memPostRepo) CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	posts, _ := r.ListByUser(ctx, userID)
	return int64(len(posts)), nil
}

func (r *memPostRepo) SearchByTitle(ctx context.Context, title string) ([]models.PostWithAuthor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.PostWithAuthor
	for _, post := range r.posts {
		if post.Title == title {
			out = append(out, models.PostWithAuthor{Post: *r.clone(post)})
		}
	}
	return out, nil
}

func (r *memPostRepo) TopByViews(ctx context.Context, limit int64) ([]models.PostWithAuthor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*models.Post, 0, len(r.posts))
	for _, post := range r.posts {
		all = append(all, post)
	}
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			a, b := all[i], all[j]
			swap := b.Views > a.Views ||
				(b.Views == a.Views && b.CreatedAt.After(a.CreatedAt))
			if swap {
				all[i], all[j] = all[j], all[i]
			}
		}
	}
	if int64(len(all)) > limit {
		all = all[:limit]
	}
	out := make([]models.PostWithAuthor, len(all))
	for i, post := range all {
		out[i] = models.PostWithAuthor{Post: *r.clone(post)}
	}
	return out, nil
}

func (r *memPostRepo) IncrementViews(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, models.NewNotFoundError("post", id.Hex())
	}
	post.Views++
	return r.clone(post), nil
}

func (r *memPostRepo) AddLike(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[postID]
	if !ok {
		return nil, models.NewConflictError("post already liked")
	}
	for _, ref := range post.Likes {
		if ref.User == userID {
			return nil, models.NewConflictError("post already liked")
		}
	}
	post.Likes = append([]models.UserRef{{User: userID}}, post.Likes...)
	return r.clone(post), nil
}

func (r *memPostRepo) RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[postID]
	if !ok {
		return nil, models.NewConflictError("post not liked")
	}
	for i, ref := range post.Likes {
		if ref.User == userID {
			post.Likes = append(post.Likes[:i], post.Likes[i+1:]...)
			return r.clone(post), nil
		}
	}
	return nil, models.NewConflictError("post not liked")
}

func (r *memPostRepo) AddComment(ctx context.Context, postID primitive.ObjectID, comment models.Comment) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[postID]
	if !ok {
		return nil, models.NewNotFoundError("post", postID.Hex())
	}
	post.Comments = append([]models.Comment{comment}, post.Comments...)
	return r.clone(post), nil
}

func (r *memPostRepo) RemoveComment(ctx context.Context, postID, commentID primitive.ObjectID) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[postID]
	if !ok {
		return nil, models.NewNotFoundError("post", postID.Hex())
	}
	for i, c := range post.Comments {
		if c.ID == commentID {
			post.Comments = append(post.Comments[:i], post.Comments[i+1:]...)
			break
		}
	}
	return r.clone(post), nil
}

func newUser(name string, createdAt time.Time) *models.User {
	return &models.User{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Email:     strings.ToLower(name) + "@example.com",
		CreatedAt: createdAt,
	}
}

func newPost(user primitive.ObjectID, title string, views int64, createdAt time.Time) *models.Post {
	return &models.Post{
		ID:        primitive.NewObjectID(),
		User:      user,
		Title:     title,
		Text:      "text for " + title,
		Views:     views,
		CreatedAt: createdAt,
	}
}
