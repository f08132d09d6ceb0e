package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/krishivaani/krishivaani/src/config"
	"github.com/krishivaani/krishivaani/src/store"
)

type Handler struct {
	users  *store.UserStore
	cfg    *config.AuthConfig
	logger *zap.Logger
}

func NewHandler(users *store.UserStore, cfg *config.AuthConfig, logger *zap.Logger) *Handler {
	return &Handler{
		users:  users,
		cfg:    cfg,
		logger: logger,
	}
}

// Register creates a new user account.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hashed, err := HashPassword(req.Password)
	if err != nil {
		h.logger.Error("password hashing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}

	if _, err := h.users.Create(c.Request.Context(), req.Username, hashed, req.Email); err != nil {
		if errors.Is(err, store.ErrUserExists) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username already registered"})
			return
		}
		h.logger.Error("user creation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "User registered"})
}

// Token is the password-grant login endpoint: it exchanges credentials
// for a bearer access token.
func (h *Handler) Token(c *gin.Context) {
	var creds Credentials
	if err := c.ShouldBind(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.GetByUsername(c.Request.Context(), creds.Username)
	if err != nil || !VerifyPassword(creds.Password, user.HashedPassword) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Incorrect username or password"})
		return
	}

	token, err := IssueToken(user.Username, h.cfg.Secret, h.cfg.TokenTTL)
	if err != nil {
		h.logger.Error("token issuance failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	c.JSON(http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(c *gin.Context) {
	username := c.GetString("username")

	user, err := h.users.GetByUsername(c.Request.Context(), username)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"username":   user.Username,
		"email":      user.Email,
		"created_at": user.CreatedAt,
	})
}
