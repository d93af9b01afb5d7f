package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mingle/cache"
	"mingle/database"
	"mingle/handlers"
	"mingle/logger"
	"mingle/repository"
	"mingle/routes"
	"mingle/service"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found, using environment variables")
	}
	logger.Init()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logrus.Fatal("JWT_SECRET is required")
	}
	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		logrus.Fatal("MONGODB_URI is required")
	}

	store := connectWithRetry(mongoURI)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(ctx); err != nil {
			logrus.WithError(err).Error("failed to close mongodb connection")
		}
	}()

	feedCache := cache.New(os.Getenv("REDIS_ADDR"))
	defer feedCache.Close()

	users := repository.NewUserRepository(store)
	posts := repository.NewPostRepository(store)
	subs := repository.NewSubscriptionRepository(store)

	relationships := service.NewRelationshipService(users)
	engagement := service.NewEngagementService(users, posts)
	postService := service.NewPostService(users, posts)
	feed := service.NewFeedService(users, posts, feedCache)
	push := service.NewPushService(subs, os.Getenv("VAPID_PUBLIC_KEY"), os.Getenv("VAPID_PRIVATE_KEY"), os.Getenv("VAPID_SUBSCRIBER"))

	h := handlers.New(handlers.Config{
		Users:         users,
		Posts:         posts,
		Relationships: relationships,
		Engagement:    engagement,
		PostService:   postService,
		Feed:          feed,
		Push:          push,
		JWTSecret:     jwtSecret,
		CloudinaryURL: os.Getenv("CLOUDINARY_URL"),
	})

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := routes.Setup(h, jwtSecret)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.WithField("port", port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("forced shutdown")
	}
}

// connectWithRetry gives mongodb a few chances to come up before giving up.
// Containers frequently start the app before the database is ready.
func connectWithRetry(uri string) *database.Store {
	var store *database.Store
	var err error
	for attempt := 1; attempt <= 3; attempt++ {
		store, err = database.Connect(context.Background(), uri)
		if err == nil {
			return store
		}
		logrus.WithError(err).WithField("attempt", attempt).Warn("mongodb connection failed, retrying")
		time.Sleep(2 * time.Second)
	}
	logrus.WithError(err).Fatal("could not connect to mongodb")
	return nil
}
