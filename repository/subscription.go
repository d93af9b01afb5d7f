package repository

import (
	"context"

	"mingle/database"
	"mingle/models"

	"github.com/SherClockHolmes/webpush-go"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PushSubscription stores one browser push subscription per user.
type PushSubscription struct {
	ID     primitive.ObjectID   `bson:"_id,omitempty"`
	UserID primitive.ObjectID   `bson:"userId"`
	Sub    webpush.Subscription `bson:"sub"`
}

// SubscriptionRepository defines data operations on push subscriptions.
type SubscriptionRepository interface {
	Upsert(ctx context.Context, sub PushSubscription) error
	GetByUser(ctx context.Context, userID primitive.ObjectID) (*PushSubscription, error)
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) error
}

type subscriptionRepository struct {
	subs *mongo.Collection
}

// NewSubscriptionRepository returns a SubscriptionRepository backed by the
// given store.
func NewSubscriptionRepository(store *database.Store) SubscriptionRepository {
	return &subscriptionRepository{subs: store.Subscriptions}
}

func (r *subscriptionRepository) Upsert(ctx context.Context, sub PushSubscription) error {
	_, err := r.subs.UpdateOne(
		ctx,
		bson.M{"userId": sub.UserID},
		bson.M{"$set": bson.M{"userId": sub.UserID, "sub": sub.Sub}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return models.NewStorageError(err)
	}
	return nil
}

func (r *subscriptionRepository) GetByUser(ctx context.Context, userID primitive.ObjectID) (*PushSubscription, error) {
	var sub PushSubscription
	err := r.subs.FindOne(ctx, bson.M{"userId": userID}).Decode(&sub)
	if err == mongo.ErrNoDocuments {
		return nil, models.NewNotFoundError("subscription", userID.Hex())
	}
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	return &sub, nil
}

func (r *subscriptionRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) error {
	if _, err := r.subs.DeleteOne(ctx, bson.M{"userId": userID}); err != nil {
		return models.NewStorageError(err)
	}
	return nil
}
