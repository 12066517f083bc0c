package jwt

import (
	"strings"

	"Omamori/pkg/back"
	"Omamori/pkg/util/myjwt"
	"Omamori/pkg/xerr"

	"github.com/gin-gonic/gin"
)

// Auth puts the caller's uuid and username on the context for handlers.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			back.Error(c, xerr.Unauthorized, "missing or invalid authorization header")
			c.Abort()
			return
		}

		claims, err := myjwt.ParseToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil || claims.Uuid == "" {
			back.Error(c, xerr.Unauthorized, "invalid token")
			c.Abort()
			return
		}

		c.Set("uuid", claims.Uuid)
		c.Set("username", claims.Username)
		c.Next()
	}
}
