// Command seed fills the database with fake users, posts and engagement so a
// fresh instance has something to render.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"mingle/database"
	"mingle/models"
	"mingle/repository"
	"mingle/service"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	userCount := flag.Int("users", 20, "number of users to create")
	postsPerUser := flag.Int("posts", 3, "posts per user")
	seed := flag.Int64("seed", 0, "random seed, 0 for time-based")
	flag.Parse()

	_ = godotenv.Load()

	if *seed != 0 {
		gofakeit.Seed(*seed)
		rand.Seed(*seed)
	}

	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		logrus.Fatal("MONGODB_URI is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	store, err := database.Connect(ctx, uri)
	if err != nil {
		logrus.WithError(err).Fatal("could not connect to mongodb")
	}
	defer store.Close(context.Background())

	users := repository.NewUserRepository(store)
	posts := repository.NewPostRepository(store)
	relationships := service.NewRelationshipService(users)
	engagement := service.NewEngagementService(users, posts)

	password, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Fatal("bcrypt failed")
	}

	created := make([]*models.User, 0, *userCount)
	for i := 0; i < *userCount; i++ {
		user := &models.User{
			ID:         primitive.NewObjectID(),
			Name:       gofakeit.Name(),
			Email:      fmt.Sprintf("user%d@%s", i, gofakeit.DomainName()),
			Password:   string(password),
			Avatar:     gofakeit.ImageURL(200, 200),
			Bio:        gofakeit.Sentence(8),
			Occupation: gofakeit.JobTitle(),
			CreatedAt:  time.Now().UTC().Add(-time.Duration(rand.Intn(90*24)) * time.Hour),
		}
		if err := users.Create(ctx, user); err != nil {
			logrus.WithError(err).Fatal("failed to create user")
		}
		created = append(created, user)
	}
	logrus.WithField("count", len(created)).Info("users created")

	for _, follower := range created {
		for _, target := range pickOthers(created, follower, rand.Intn(6)) {
			if _, err := relationships.Follow(ctx, follower.ID, target.ID); err != nil {
				if !models.IsCode(err, models.CodeConflict) {
					logrus.WithError(err).Warn("follow failed")
				}
			}
		}
	}
	logrus.Info("follow edges created")

	var allPosts []*models.Post
	for _, author := range created {
		for i := 0; i < *postsPerUser; i++ {
			post := &models.Post{
				ID:        primitive.NewObjectID(),
				User:      author.ID,
				Title:     gofakeit.Sentence(4),
				Text:      gofakeit.Paragraph(1, 3, 12, " "),
				Image:     gofakeit.ImageURL(800, 600),
				CreatedAt: time.Now().UTC().Add(-time.Duration(rand.Intn(60*24)) * time.Hour),
			}
			if err := posts.Create(ctx, post); err != nil {
				logrus.WithError(err).Fatal("failed to create post")
			}
			allPosts = append(allPosts, post)
		}
	}
	logrus.WithField("count", len(allPosts)).Info("posts created")

	for _, post := range allPosts {
		for _, liker := range pickOthers(created, nil, rand.Intn(8)) {
			if _, err := engagement.Like(ctx, liker.ID, post.ID); err != nil {
				if !models.IsCode(err, models.CodeConflict) {
					logrus.WithError(err).Warn("like failed")
				}
			}
		}
		for _, commenter := range pickOthers(created, nil, rand.Intn(4)) {
			if _, err := engagement.AddComment(ctx, commenter.ID, post.ID, gofakeit.Sentence(10)); err != nil {
				logrus.WithError(err).Warn("comment failed")
			}
		}
		for i := 0; i < rand.Intn(200); i++ {
			if _, err := engagement.RecordView(ctx, post.ID); err != nil {
				logrus.WithError(err).Warn("view failed")
				break
			}
		}
	}
	logrus.Info("engagement created, done")
}

// pickOthers returns up to n distinct random users, skipping exclude.
func pickOthers(users []*models.User, exclude *models.User, n int) []*models.User {
	shuffled := make([]*models.User, len(users))
	copy(shuffled, users)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	picked := make([]*models.User, 0, n)
	for _, u := range shuffled {
		if len(picked) == n {
			break
		}
		if exclude != nil && u.ID == exclude.ID {
			continue
		}
		picked = append(picked, u)
	}
	return picked
}
