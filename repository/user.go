// Package repository implements data access over the MongoDB store. All
// mutations on embedded relationship and engagement lists go through targeted
// update operators so a single document update stays atomic.
package repository

import (
	"context"
	"strings"

	"mingle/database"
	"mingle/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ProfileUpdate carries the profile fields a user may edit. Empty fields are
// left untouched.
type ProfileUpdate struct {
	Name       string
	Bio        string
	Occupation string
	Avatar     string
}

// UserRepository defines data operations on the users collection.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	SearchByName(ctx context.Context, name string) ([]models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, update ProfileUpdate) error
	All(ctx context.Context) ([]models.User, error)

	// Edge mutations. Inserts are guarded so re-applying them is a no-op
	// (surfaced as CONFLICT), which is what makes the follow saga retryable.
	AddFollower(ctx context.Context, userID, followerID primitive.ObjectID) error
	RemoveFollower(ctx context.Context, userID, followerID primitive.ObjectID) error
	AddFollowing(ctx context.Context, userID, targetID primitive.ObjectID) error
	RemoveFollowing(ctx context.Context, userID, targetID primitive.ObjectID) error
}

type userRepository struct {
	users *mongo.Collection
}

// NewUserRepository returns a UserRepository backed by the given store.
func NewUserRepository(store *database.Store) UserRepository {
	return &userRepository{users: store.Users}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(user.Email)
	if user.Followers == nil {
		user.Followers = []models.UserRef{}
	}
	if user.Following == nil {
		user.Following = []models.UserRef{}
	}
	if _, err := r.users.InsertOne(ctx, user); err != nil {
		return models.NewStorageError(err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, models.NewNotFoundError("user", id.Hex())
	}
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.users.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, models.NewNotFoundError("user", email)
	}
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	return &user, nil
}

func (r *userRepository) SearchByName(ctx context.Context, name string) ([]models.User, error) {
	cursor, err := r.users.Find(ctx, bson.M{"name": name})
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, models.NewStorageError(err)
	}
	return users, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, update ProfileUpdate) error {
	set := bson.M{}
	if update.Name != "" {
		set["name"] = update.Name
	}
	if update.Bio != "" {
		set["bio"] = update.Bio
	}
	if update.Occupation != "" {
		set["occupation"] = update.Occupation
	}
	if update.Avatar != "" {
		set["avatar"] = update.Avatar
	}
	if len(set) == 0 {
		return nil
	}

	result, err := r.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return models.NewStorageError(err)
	}
	if result.MatchedCount == 0 {
		return models.NewNotFoundError("user", id.Hex())
	}
	return nil
}

func (r *userRepository) All(ctx context.Context) ([]models.User, error) {
	cursor, err := r.users.Find(ctx, bson.M{})
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, models.NewStorageError(err)
	}
	return users, nil
}

func (r *userRepository) AddFollower(ctx context.Context, userID, followerID primitive.ObjectID) error {
	return r.pushEdge(ctx, userID, "followers", followerID)
}

func (r *userRepository) RemoveFollower(ctx context.Context, userID, followerID primitive.ObjectID) error {
	return r.pullEdge(ctx, userID, "followers", followerID)
}

func (r *userRepository) AddFollowing(ctx context.Context, userID, targetID primitive.ObjectID) error {
	return r.pushEdge(ctx, userID, "following", targetID)
}

func (r *userRepository) RemoveFollowing(ctx context.Context, userID, targetID primitive.ObjectID) error {
	return r.pullEdge(ctx, userID, "following", targetID)
}

// pushEdge prepends {user: refID} to the named list. The filter excludes
// documents that already hold the edge, so the list behaves as a set and a
// repeated apply matches nothing.
func (r *userRepository) pushEdge(ctx context.Context, userID primitive.ObjectID, field string, refID primitive.ObjectID) error {
	filter := bson.M{
		"_id":           userID,
		field + ".user": bson.M{"$ne": refID},
	}
	update := bson.M{
		"$push": bson.M{
			field: bson.M{
				"$each":     []models.UserRef{{User: refID}},
				"$position": 0,
			},
		},
	}

	result, err := r.users.UpdateOne(ctx, filter, update)
	if err != nil {
		return models.NewStorageError(err)
	}
	if result.MatchedCount == 0 {
		return models.NewConflictError("edge already exists")
	}
	return nil
}

// pullEdge removes the entry equal to {user: refID} from the named list.
// Removal is by value, never by index.
func (r *userRepository) pullEdge(ctx context.Context, userID primitive.ObjectID, field string, refID primitive.ObjectID) error {
	filter := bson.M{
		"_id":           userID,
		field + ".user": refID,
	}
	update := bson.M{
		"$pull": bson.M{
			field: bson.M{"user": refID},
		},
	}

	result, err := r.users.UpdateOne(ctx, filter, update)
	if err != nil {
		return models.NewStorageError(err)
	}
	if result.MatchedCount == 0 {
		return models.NewConflictError("edge does not exist")
	}
	return nil
}
