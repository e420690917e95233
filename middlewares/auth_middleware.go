package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hostelhq/hostel-app/utils"
)

// AuthMiddleware validates the bearer token and puts the caller's user ID in
// the context. Browser websocket clients cannot set headers, so a ?token=
// query parameter is accepted as a fallback.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			if q := c.Query("token"); q != "" {
				token = "Bearer " + q
			}
		}

		if token == "" {
			utils.RespondError(c, http.StatusUnauthorized, utils.CodeAuth401, errors.New("authorization token required"))
			c.Abort()
			return
		}

		if !strings.HasPrefix(token, "Bearer ") {
			utils.RespondError(c, http.StatusUnauthorized, utils.CodeAuth401, errors.New("invalid token format"))
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(token, "Bearer ")
		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, utils.CodeAuth401, err)
			c.Abort()
			return
		}

		if utils.IsTokenBlacklisted(tokenString) {
			utils.RespondError(c, http.StatusUnauthorized, utils.CodeAuth401, errors.New("token has been revoked"))
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("token", tokenString)
		if claims.ExpiresAt != nil {
			c.Set("token_expires_at", claims.ExpiresAt.Time)
		}

		c.Next()
	}
}
