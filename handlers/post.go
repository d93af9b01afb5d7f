package handlers

import (
	"net/http"

	"mingle/models"
	"mingle/repository"

	"github.com/gin-gonic/gin"
)

type CreatePostRequest struct {
	Title string `json:"title" binding:"required"`
	Text  string `json:"text" binding:"required"`
	Image string `json:"image"`
}

type UpdatePostRequest struct {
	Title string  `json:"title" binding:"required"`
	Text  string  `json:"text" binding:"required"`
	Image *string `json:"image"`
}

// CreatePost stores a new post owned by the caller.
func (h *Handler) CreatePost(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, models.NewValidationError(err.Error()))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	post, err := h.postService.Create(ctx, userID, req.Title, req.Text, req.Image)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

// UpdatePost edits a post. Sending "image": "" removes the image; omitting
// the field leaves it alone.
func (h *Handler) UpdatePost(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, models.NewValidationError(err.Error()))
		return
	}

	update := repository.PostUpdate{
		Title: req.Title,
		Text:  req.Text,
	}
	if req.Image != nil {
		update.Image = *req.Image
		update.ClearImage = *req.Image == ""
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	post, err := h.postService.Update(ctx, userID, postID, update)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// DeletePost removes a post owned by the caller.
func (h *Handler) DeletePost(c *gin.Context) {
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

	if err := h.postService.Delete(ctx, userID, postID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}

// GetPost returns one post and records the view.
func (h *Handler) GetPost(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	post, err := h.postService.Get(ctx, postID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// ListPosts returns all posts, newest first.
func (h *Handler) ListPosts(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	posts, err := h.postService.List(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, posts)
}

// SearchPosts returns posts with the exact given title.
func (h *Handler) SearchPosts(c *gin.Context) {
	title := c.Param("title")

	ctx, cancel := requestContext(c)
	defer cancel()

	posts, err := h.postService.Search(ctx, title)
	if err != nil {
		respondError(c, err)
		return
	}
	if len(posts) == 0 {
		respondError(c, models.NewNotFoundError("post", title))
		return
	}

	c.JSON(http.StatusOK, posts)
}
