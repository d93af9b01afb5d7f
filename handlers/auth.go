package handlers

import (
	"context"
	"net/http"
	"time"

	"mingle/middleware"
	"mingle/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Signup registers a new user and returns a token.
func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, models.NewValidationError(err.Error()))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := h.users.GetByEmail(ctx, req.Email); err == nil {
		respondError(c, models.NewConflictError("email already in use"))
		return
	} else if !models.IsCode(err, models.CodeNotFound) {
		respondError(c, err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, models.NewStorageError(err))
		return
	}

	user := &models.User{
		ID:        primitive.NewObjectID(),
		Name:      req.Name,
		Email:     req.Email,
		Password:  string(hashed),
		Avatar:    fallbackAvatar,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.users.Create(ctx, user); err != nil {
		respondError(c, err)
		return
	}

	token, err := h.issueToken(user.ID)
	if err != nil {
		respondError(c, models.NewStorageError(err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token":  token,
		"userId": user.ID.Hex(),
	})
}

// Login checks credentials and returns a token.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, models.NewValidationError(err.Error()))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			respondError(c, models.NewUnauthorizedError("invalid email or password"))
			return
		}
		respondError(c, err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		respondError(c, models.NewUnauthorizedError("invalid email or password"))
		return
	}

	token, err := h.issueToken(user.ID)
	if err != nil {
		respondError(c, models.NewStorageError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":  token,
		"userId": user.ID.Hex(),
	})
}

// Me returns the authenticated user's own record.
func (h *Handler) Me(c *gin.Context) {
	userID, ok := callerID(c)
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

	c.JSON(http.StatusOK, user)
}

func (h *Handler) issueToken(userID primitive.ObjectID) (string, error) {
	claims := &middleware.Claims{
		UserID: userID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}

// requestContext bounds a handler's storage calls.
func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), 10*time.Second)
}
