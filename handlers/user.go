package handlers

import (
	"net/http"

	"mingle/models"
	"mingle/monitoring"
	"mingle/repository"

	"github.com/gin-gonic/gin"
)

type UpdateProfileRequest struct {
	Name       string `json:"name" binding:"required"`
	Bio        string `json:"bio"`
	Occupation string `json:"occupation"`
	Avatar     string `json:"avatar"`
}

// GetUser returns a public profile with its posts and counts.
func (h *Handler) GetUser(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.users.GetByID(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	posts, err := h.posts.ListByUser(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":             user.ID.Hex(),
		"name":           user.Name,
		"avatar":         user.Avatar,
		"bio":            user.Bio,
		"occupation":     user.Occupation,
		"createdAt":      user.CreatedAt,
		"followersCount": len(user.Followers),
		"followingCount": len(user.Following),
		"postCount":      len(posts),
		"posts":          posts,
	})
}

// SearchUsers returns users with the exact given name.
func (h *Handler) SearchUsers(c *gin.Context) {
	name := c.Param("name")

	ctx, cancel := requestContext(c)
	defer cancel()

	users, err := h.users.SearchByName(ctx, name)
	if err != nil {
		respondError(c, err)
		return
	}
	if len(users) == 0 {
		respondError(c, models.NewNotFoundError("user", name))
		return
	}

	c.JSON(http.StatusOK, users)
}

// UpdateProfile edits the caller's own profile. Avatar is an opaque
// reference, typically produced by the upload endpoint.
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, models.NewValidationError(err.Error()))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	update := repository.ProfileUpdate{
		Name:       req.Name,
		Bio:        req.Bio,
		Occupation: req.Occupation,
		Avatar:     req.Avatar,
	}
	if err := h.users.UpdateProfile(ctx, userID, update); err != nil {
		respondError(c, err)
		return
	}

	user, err := h.users.GetByID(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// Follow makes the caller follow the target user.
func (h *Handler) Follow(c *gin.Context) {
	followerID, ok := callerID(c)
	if !ok {
		return
	}
	targetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	counts, err := h.relationships.Follow(ctx, followerID, targetID)
	if err != nil {
		respondError(c, err)
		return
	}

	monitoring.FollowsTotal.Inc()

	if follower, err := h.users.GetByID(ctx, followerID); err == nil {
		h.push.NotifyNewFollower(targetID, follower.Name)
	}

	c.JSON(http.StatusOK, counts)
}

// Unfollow removes the caller's follow edge to the target user.
func (h *Handler) Unfollow(c *gin.Context) {
	followerID, ok := callerID(c)
	if !ok {
		return
	}
	targetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	counts, err := h.relationships.Unfollow(ctx, followerID, targetID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, counts)
}
