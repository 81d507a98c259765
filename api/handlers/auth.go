package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/auth"
	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/logger"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/config"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/database/queries"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/validation"
)

type AuthHandler struct {
	users       UserStore
	authService *auth.Service
	cookie      cookieConfig
}

type cookieConfig struct {
	name     string
	maxAge   int
	path     string
	secure   bool
	httpOnly bool
}

func NewAuthHandler(users UserStore, authService *auth.Service, cfg config.APIConfig) *AuthHandler {
	cookie := cookieConfig{
		name:     cfg.CookieName,
		maxAge:   cfg.CookieMaxAge,
		path:     cfg.CookiePath,
		secure:   cfg.CookieSecure,
		httpOnly: cfg.CookieHTTPOnly,
	}
	if cookie.maxAge == 0 {
		cookie.maxAge = int(authService.Duration().Seconds())
	}
	if cookie.path == "" {
		cookie.path = "/"
	}

	return &AuthHandler{
		users:       users,
		authService: authService,
		cookie:      cookie,
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"dispatcher"`
	Password string `json:"password" binding:"required" example:"Sentinel#2026"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in" example:"86400"`
	Username  string `json:"username" example:"dispatcher"`
}

// Login godoc
// @Summary Log in
// @Description Exchange operator credentials for a JWT. The token is also set as an HTTP-only cookie.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 429 {object} map[string]string
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	username := validation.SanitizeString(req.Username)
	if err := validation.ValidateUsername(username); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, queries.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		logger.WithFields(map[string]interface{}{
			"username": username,
			"ip":       c.ClientIP(),
		}).Warn("Failed dashboard login")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := h.authService.GenerateToken(user.ID, user.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	if h.cookie.name != "" {
		c.SetSameSite(http.SameSiteStrictMode)
		c.SetCookie(h.cookie.name, token, h.cookie.maxAge, h.cookie.path, "", h.cookie.secure, h.cookie.httpOnly)
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresIn: int(h.authService.Duration().Seconds()),
		Username:  user.Username,
	})
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	if h.cookie.name != "" {
		c.SetSameSite(http.SameSiteStrictMode)
		c.SetCookie(h.cookie.name, "", -1, h.cookie.path, "", h.cookie.secure, h.cookie.httpOnly)
	}
	c.Status(http.StatusNoContent)
}
