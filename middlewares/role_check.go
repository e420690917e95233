package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hostelhq/hostel-app/models"
	"github.com/hostelhq/hostel-app/utils"
)

// IsAdmin reports whether the user holds a platform admin binding.
func IsAdmin(db *gorm.DB, userID uint) bool {
	var binding models.UserRole
	err := db.Where("user_id = ? AND role = ? AND hostel_id IS NULL", userID, models.RoleAdmin).
		First(&binding).Error
	return err == nil
}

// RequireAdmin allows only platform admins through. AuthMiddleware must run
// first.
func RequireAdmin(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")
		if userID == 0 {
			utils.RespondError(c, http.StatusUnauthorized, utils.CodeAuth401, errors.New("user not authenticated"))
			c.Abort()
			return
		}

		if !IsAdmin(db, userID) {
			utils.RespondError(c, http.StatusForbidden, utils.CodeRBAC403, errors.New("admin access required"))
			c.Abort()
			return
		}

		c.Set("role", models.RoleAdmin)
		c.Next()
	}
}

// RequireRoles allows the listed hostel roles through. TenantScope must run
// first so the caller's role for this hostel is in the context. Admins
// always pass.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if role == models.RoleAdmin {
			c.Next()
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		utils.RespondError(c, http.StatusForbidden, utils.CodeRBAC403, utils.ErrNoPermission)
		c.Abort()
	}
}
