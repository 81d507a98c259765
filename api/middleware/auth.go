package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/auth"
)

const (
	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "
	UserIDKey           = "user_id"
	UsernameKey         = "username"
)

// JWTAuth accepts a bearer token, falling back to the session cookie when
// cookieName is set.
func JWTAuth(authService *auth.Service, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok && cookieName != "" {
			if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
				token, ok = cookie, true
			}
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing or malformed credentials",
			})
			return
		}

		claims, err := authService.ValidateToken(token)
		if err != nil {
			message := "invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				message = "token expired"
			}

			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": message,
			})
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UsernameKey, claims.Username)

		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader(AuthorizationHeader)
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	return token, token != ""
}

func GetUserID(c *gin.Context) int {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0
	}
	return userID.(int)
}

func GetUsername(c *gin.Context) string {
	username, exists := c.Get(UsernameKey)
	if !exists {
		return ""
	}
	return username.(string)
}
