// Package handlers contains the gin HTTP handlers. Handlers translate
// requests into service calls and typed errors into stable JSON responses;
// business rules live in the service package.
package handlers

import (
	"net/http"

	"mingle/middleware"
	"mingle/models"
	"mingle/repository"
	"mingle/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const fallbackAvatar = "https://upload.wikimedia.org/wikipedia/commons/8/89/Portrait_Placeholder.png"

// Handler bundles the services and repositories the HTTP layer needs.
type Handler struct {
	users         repository.UserRepository
	posts         repository.PostRepository
	relationships *service.RelationshipService
	engagement    *service.EngagementService
	postService   *service.PostService
	feed          *service.FeedService
	push          *service.PushService

	jwtSecret     string
	cloudinaryURL string
}

// Config wires a Handler.
type Config struct {
	Users         repository.UserRepository
	Posts         repository.PostRepository
	Relationships *service.RelationshipService
	Engagement    *service.EngagementService
	PostService   *service.PostService
	Feed          *service.FeedService
	Push          *service.PushService
	JWTSecret     string
	CloudinaryURL string
}

// New returns a Handler with all dependencies injected.
func New(cfg Config) *Handler {
	return &Handler{
		users:         cfg.Users,
		posts:         cfg.Posts,
		relationships: cfg.Relationships,
		engagement:    cfg.Engagement,
		postService:   cfg.PostService,
		feed:          cfg.Feed,
		push:          cfg.Push,
		jwtSecret:     cfg.JWTSecret,
		cloudinaryURL: cfg.CloudinaryURL,
	}
}

// respondError maps a typed error to its HTTP status and a stable JSON body.
func respondError(c *gin.Context, err error) {
	appErr := models.AsAppError(err)
	c.JSON(appErr.HTTPStatus(), gin.H{
		"error": appErr.Message,
		"code":  appErr.Code,
	})
}

// callerID reads the authenticated user id set by the JWT middleware.
func callerID(c *gin.Context) (primitive.ObjectID, bool) {
	idStr := c.GetString(middleware.ContextUserID)
	if idStr == "" {
		respondError(c, models.NewUnauthorizedError("not authenticated"))
		return primitive.NilObjectID, false
	}

	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		respondError(c, models.NewUnauthorizedError("invalid user id"))
		return primitive.NilObjectID, false
	}
	return id, true
}

// pathID parses an ObjectID path parameter.
func pathID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid " + name,
			"code":  models.CodeValidation,
		})
		return primitive.NilObjectID, false
	}
	return id, true
}
