package database

import (
	"context"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultURI = "mongodb://127.0.0.1:27017"

// Store owns the MongoDB client and the collections the application uses. It
// is opened once at startup, handed to the repositories, and closed at
// shutdown; nothing else holds connection state.
type Store struct {
	Client        *mongo.Client
	Users         *mongo.Collection
	Posts         *mongo.Collection
	Subscriptions *mongo.Collection
}

// Connect opens the MongoDB connection and verifies it with a ping.
func Connect(ctx context.Context, uri string) (*Store, error) {
	if uri == "" {
		uri = os.Getenv("MONGODB_URI")
	}
	if uri == "" {
		logrus.Warn("MONGODB_URI not set, using default localhost")
		uri = defaultURI
	}

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	db := client.Database(databaseName())

	logrus.WithField("database", db.Name()).Info("Connected to MongoDB")

	return &Store{
		Client:        client,
		Users:         db.Collection("users"),
		Posts:         db.Collection("posts"),
		Subscriptions: db.Collection("push_subscriptions"),
	}, nil
}

// Close disconnects the client. Safe to call on a nil store.
func (s *Store) Close(ctx context.Context) error {
	if s == nil || s.Client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.Client.Disconnect(ctx); err != nil {
		return err
	}

	logrus.Info("Disconnected from MongoDB")
	return nil
}

func databaseName() string {
	if name := os.Getenv("MONGODB_DATABASE"); name != "" {
		return name
	}
	return "mingle"
}
