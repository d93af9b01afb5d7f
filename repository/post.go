package repository

import (
	"context"

	"mingle/database"
	"mingle/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostUpdate carries the editable post fields. ClearImage distinguishes
// "remove the image" from "leave it alone".
type PostUpdate struct {
	Title      string
	Text       string
	Image      string
	ClearImage bool
}

// PostRepository defines data operations on the posts collection. Like,
// comment and view mutations are single-document atomic updates.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	Update(ctx context.Context, id primitive.ObjectID, update PostUpdate) (*models.Post, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	ListNewest(ctx context.Context) ([]models.PostWithAuthor, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Post, error)
	CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
	SearchByTitle(ctx context.Context, title string) ([]models.PostWithAuthor, error)
	TopByViews(ctx context.Context, limit int64) ([]models.PostWithAuthor, error)

	IncrementViews(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	AddLike(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, error)
	RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, error)
	AddComment(ctx context.Context, postID primitive.ObjectID, comment models.Comment) (*models.Post, error)
	RemoveComment(ctx context.Context, postID, commentID primitive.ObjectID) (*models.Post, error)
}

type postRepository struct {
	posts *mongo.Collection
}

// NewPostRepository returns a PostRepository backed by the given store.
func NewPostRepository(store *database.Store) PostRepository {
	return &postRepository{posts: store.Posts}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	if post.Likes == nil {
		post.Likes = []models.UserRef{}
	}
	if _, err := r.posts.InsertOne(ctx, post); err != nil {
		return models.NewStorageError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := r.posts.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return nil, models.NewNotFoundError("post", id.Hex())
	}
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	return &post, nil
}

func (r *postRepository) Update(ctx context.Context, id primitive.ObjectID, update PostUpdate) (*models.Post, error) {
	set := bson.M{}
	if update.Title != "" {
		set["title"] = update.Title
	}
	if update.Text != "" {
		set["text"] = update.Text
	}
	if update.Image != "" {
		set["image"] = update.Image
	} else if update.ClearImage {
		set["image"] = ""
	}
	if len(set) == 0 {
		return r.GetByID(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post models.Post
	err := r.posts.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return nil, models.NewNotFoundError("post", id.Hex())
	}
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	return &post, nil
}

func (r *postRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.posts.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return models.NewStorageError(err)
	}
	if result.DeletedCount == 0 {
		return models.NewNotFoundError("post", id.Hex())
	}
	return nil
}

func (r *postRepository) ListNewest(ctx context.Context) ([]models.PostWithAuthor, error) {
	pipeline := append(mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
	}, authorJoinStages()...)
	return r.aggregatePosts(ctx, pipeline)
}

func (r *postRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.posts.Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, models.NewStorageError(err)
	}
	return posts, nil
}

func (r *postRepository) CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	count, err := r.posts.CountDocuments(ctx, bson.M{"user": userID})
	if err != nil {
		return 0, models.NewStorageError(err)
	}
	return count, nil
}

func (r *postRepository) SearchByTitle(ctx context.Context, title string) ([]models.PostWithAuthor, error) {
	pipeline := append(mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "title", Value: title}}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
	}, authorJoinStages()...)
	return r.aggregatePosts(ctx, pipeline)
}

// TopByViews ranks by views descending, ties broken by most recent creation.
func (r *postRepository) TopByViews(ctx context.Context, limit int64) ([]models.PostWithAuthor, error) {
	pipeline := append(mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "views", Value: -1}, {Key: "createdAt", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}, authorJoinStages()...)
	return r.aggregatePosts(ctx, pipeline)
}

// IncrementViews applies a relative +1 so concurrent views never lose
// updates, and returns the post as it looks after the increment.
func (r *postRepository) IncrementViews(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post models.Post
	err := r.posts.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"views": 1}}, opts).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return nil, models.NewNotFoundError("post", id.Hex())
	}
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	return &post, nil
}

// AddLike prepends the user to the like set. The filter excludes posts that
// already contain the user, so a raced duplicate surfaces as CONFLICT instead
// of a second entry.
func (r *postRepository) AddLike(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, error) {
	filter := bson.M{
		"_id":        postID,
		"likes.user": bson.M{"$ne": userID},
	}
	update := bson.M{
		"$push": bson.M{
			"likes": bson.M{
				"$each":     []models.UserRef{{User: userID}},
				"$position": 0,
			},
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post models.Post
	err := r.posts.FindOneAndUpdate(ctx, filter, update, opts).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return nil, models.NewConflictError("post already liked")
	}
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	return &post, nil
}

// RemoveLike pulls the entry equal to the user id. Never positional.
func (r *postRepository) RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, error) {
	filter := bson.M{
		"_id":        postID,
		"likes.user": userID,
	}
	update := bson.M{
		"$pull": bson.M{
			"likes": bson.M{"user": userID},
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post models.Post
	err := r.posts.FindOneAndUpdate(ctx, filter, update, opts).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return nil, models.NewConflictError("post not liked")
	}
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	return &post, nil
}

func (r *postRepository) AddComment(ctx context.Context, postID primitive.ObjectID, comment models.Comment) (*models.Post, error) {
	update := bson.M{
		"$push": bson.M{
			"comments": bson.M{
				"$each":     []models.Comment{comment},
				"$position": 0,
			},
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post models.Post
	err := r.posts.FindOneAndUpdate(ctx, bson.M{"_id": postID}, update, opts).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return nil, models.NewNotFoundError("post", postID.Hex())
	}
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	return &post, nil
}

// RemoveComment pulls exactly the comment with the given id.
func (r *postRepository) RemoveComment(ctx context.Context, postID, commentID primitive.ObjectID) (*models.Post, error) {
	update := bson.M{
		"$pull": bson.M{
			"comments": bson.M{"_id": commentID},
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post models.Post
	err := r.posts.FindOneAndUpdate(ctx, bson.M{"_id": postID}, update, opts).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return nil, models.NewNotFoundError("post", postID.Hex())
	}
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	return &post, nil
}

// authorJoinStages joins each post with its author's current name and avatar.
// The join happens at read time; nothing beyond the owner id is stored on the
// post.
func authorJoinStages() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "user"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "author"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$author"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "authorName", Value: "$author.name"},
			{Key: "authorAvatar", Value: "$author.avatar"},
		}}},
		{{Key: "$project", Value: bson.D{{Key: "author", Value: 0}}}},
	}
}

func (r *postRepository) aggregatePosts(ctx context.Context, pipeline mongo.Pipeline) ([]models.PostWithAuthor, error) {
	cursor, err := r.posts.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	defer cursor.Close(ctx)

	var posts []models.PostWithAuthor
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, models.NewStorageError(err)
	}
	return posts, nil
}
