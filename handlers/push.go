package handlers

import (
	"net/http"

	"mingle/models"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
)

type SubscribePushRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	Keys     struct {
		P256dh string `json:"p256dh" binding:"required"`
		Auth   string `json:"auth" binding:"required"`
	} `json:"keys" binding:"required"`
}

// GetVapidPublicKey returns the key browsers subscribe with.
func (h *Handler) GetVapidPublicKey(c *gin.Context) {
	key := h.push.PublicKey()
	if key == "" {
		respondError(c, models.NewNotFoundError("vapid key", "public"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"publicKey": key})
}

// SubscribePush stores the caller's browser push subscription.
func (h *Handler) SubscribePush(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req SubscribePushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, models.NewValidationError(err.Error()))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	sub := webpush.Subscription{
		Endpoint: req.Endpoint,
		Keys: webpush.Keys{
			P256dh: req.Keys.P256dh,
			Auth:   req.Keys.Auth,
		},
	}
	if err := h.push.Subscribe(ctx, userID, sub); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "push subscription saved"})
}
