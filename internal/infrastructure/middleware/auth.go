package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const viewerKey = "viewer_id"

// TokenValidator returns the user id carried by a bearer token.
type TokenValidator interface {
	Validate(token string) (string, error)
}

// Auth rejects requests without a valid bearer token and stores the token
// subject as the viewer id.
func Auth(v TokenValidator, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		sub, err := v.Validate(strings.TrimSpace(token))
		if err != nil {
			log.Debug("token rejected", zap.String("path", c.FullPath()), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(viewerKey, sub)
		c.Next()
	}
}

// ViewerID returns the authenticated user id, or "" outside Auth.
func ViewerID(c *gin.Context) string {
	return c.GetString(viewerKey)
}

// SetViewerID is used by tests that bypass token validation.
func SetViewerID(c *gin.Context, id string) {
	c.Set(viewerKey, id)
}
