package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ossgate/internal/domain"
	"ossgate/internal/service"
)

const (
	ContextKeyOwnerID   = "owner_id"
	ContextKeyClaims    = "claims"
	ContextKeyRequestID = "request_id"
)

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":    -1,
		"message": "please log in",
		"reason":  "UNAUTHORIZED",
	})
}

// OwnerIdentity resolves the uploading owner from an optional bearer token.
// A token that is present but invalid is always rejected. Without a token the
// default owner is used unless required is set.
func OwnerIdentity(tokens service.TokenService, defaultOwner string, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			if required || defaultOwner == "" {
				abortUnauthorized(c)
				return
			}
			c.Set(ContextKeyOwnerID, defaultOwner)
			c.Next()
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c)
			return
		}

		claims, err := tokens.Validate(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			abortUnauthorized(c)
			return
		}

		c.Set(ContextKeyOwnerID, string(claims.UserID))
		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// GetOwnerID extracts the owner ID from the Gin context.
func GetOwnerID(c *gin.Context) (string, error) {
	val, exists := c.Get(ContextKeyOwnerID)
	if !exists {
		return "", domain.ErrUnauthorized
	}
	return val.(string), nil
}
