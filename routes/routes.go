// Package routes assembles the gin router.
package routes

import (
	"net/http"
	"time"

	"mingle/handlers"
	"mingle/middleware"
	"mingle/monitoring"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Setup registers every route on a fresh engine.
func Setup(h *handlers.Handler, jwtSecret string) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(monitoring.Middleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	// Public routes.
	api.POST("/signup", h.Signup)
	api.POST("/login", h.Login)
	api.GET("/posts", h.ListPosts)
	api.GET("/posts/homepage-data", h.HomepageData)
	api.GET("/posts/search/:title", h.SearchPosts)
	api.GET("/posts/:id", h.GetPost)
	api.PUT("/posts/view/:id", h.RecordView)
	api.GET("/users/search/:name", h.SearchUsers)
	api.GET("/users/:id", h.GetUser)
	api.GET("/vapid-public-key", h.GetVapidPublicKey)

	// Routes that require a valid token.
	auth := api.Group("")
	auth.Use(middleware.JWTAuth(jwtSecret))

	auth.GET("/auth", h.Me)
	auth.PUT("/users/profile", h.UpdateProfile)
	auth.PUT("/users/follow/:id", h.Follow)
	auth.PUT("/users/unfollow/:id", h.Unfollow)

	auth.POST("/posts", h.CreatePost)
	auth.PUT("/posts/like/:id", h.Like)
	auth.PUT("/posts/unlike/:id", h.Unlike)
	auth.POST("/posts/comment/:id", h.AddComment)
	auth.DELETE("/posts/comment/:post_id/:comment_id", h.DeleteComment)
	auth.PUT("/posts/:id", h.UpdatePost)
	auth.DELETE("/posts/:id", h.DeletePost)

	auth.POST("/upload-image", h.UploadImage)
	auth.POST("/subscribe", h.SubscribePush)

	return r
}
