package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const userIDKey = "userId"

func (h *Handler) userIdMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing Authorization header",
		})
		return
	}

	token, ok := bearerToken(header)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid Authorization header format",
		})
		return
	}

	h.authorize(c, token)
}

// wsUserIdMiddleware accepts the token from ?token= as well as the Authorization header.
func (h *Handler) wsUserIdMiddleware(c *gin.Context) {
	if token := c.Query("token"); token != "" {
		h.authorize(c, token)
		return
	}
	h.userIdMiddleware(c)
}

func (h *Handler) authorize(c *gin.Context, token string) {
	userId, err := h.services.ParseToken(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid or expired token",
		})
		return
	}

	c.Set(userIDKey, userId)
	c.Next()
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// userID returns the id stored by the auth middleware.
func userID(c *gin.Context) int {
	return c.GetInt(userIDKey)
}
