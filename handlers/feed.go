package handlers

import (
	"net/http"
	"strconv"

	"mingle/service"

	"github.com/gin-gonic/gin"
)

// HomepageData returns the homepage payload: most viewed posts and the users
// with the most followers.
func (h *Handler) HomepageData(c *gin.Context) {
	limit := service.DefaultFeedLimit
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	popularPosts, err := h.feed.PopularPosts(ctx, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	topUsers, err := h.feed.TopUsers(ctx, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"popularPosts": popularPosts,
		"topUsers":     topUsers,
	})
}
