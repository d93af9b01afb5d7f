package handlers

import (
	"net/http"

	"mingle/models"
	"mingle/monitoring"

	"github.com/gin-gonic/gin"
)

type AddCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// Like adds the caller to the post's like set.
func (h *Handler) Like(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	likes, err := h.engagement.Like(ctx, userID, postID)
	if err != nil {
		respondError(c, err)
		return
	}

	monitoring.LikesTotal.Inc()
	c.JSON(http.StatusOK, likes)
}

// Unlike removes the caller from the post's like set.
func (h *Handler) Unlike(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	likes, err := h.engagement.Unlike(ctx, userID, postID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, likes)
}

// AddComment prepends a comment to the post.
func (h *Handler) AddComment(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, models.NewValidationError(err.Error()))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	// Loaded up front so the post owner can be notified after the write.
	post, err := h.posts.GetByID(ctx, postID)
	if err != nil {
		respondError(c, err)
		return
	}

	comments, err := h.engagement.AddComment(ctx, userID, postID, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}

	monitoring.CommentsTotal.Inc()

	if post.User != userID && len(comments) > 0 {
		h.push.NotifyNewComment(post.User, comments[0].Name, post.Title)
	}

	c.JSON(http.StatusOK, comments)
}

// DeleteComment removes the caller's own comment from a post.
func (h *Handler) DeleteComment(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "post_id")
	if !ok {
		return
	}
	commentID, ok := pathID(c, "comment_id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	comments, err := h.engagement.DeleteComment(ctx, userID, postID, commentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, comments)
}

// RecordView bumps the view counter without returning the whole post.
func (h *Handler) RecordView(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	views, err := h.engagement.RecordView(ctx, postID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"views": views})
}
