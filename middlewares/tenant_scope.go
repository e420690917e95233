package middlewares

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hostelhq/hostel-app/models"
	"github.com/hostelhq/hostel-app/utils"
)

// TenantScope resolves the caller's role binding for the hostel in the path
// and rejects anyone without one. The hostel ID and resolved role are put in
// the context; handlers must still filter queries by hostel_id.
func TenantScope(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id64, err := strconv.ParseUint(c.Param("hostel_id"), 10, 64)
		if err != nil || id64 == 0 {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeValidation, errors.New("invalid hostel id"))
			c.Abort()
			return
		}
		hostelID := uint(id64)

		var hostel models.Hostel
		if err := db.First(&hostel, hostelID).Error; err != nil {
			utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, errors.New("hostel not found"))
			c.Abort()
			return
		}

		userID := c.GetUint("user_id")
		if userID == 0 {
			utils.RespondError(c, http.StatusUnauthorized, utils.CodeAuth401, errors.New("user not authenticated"))
			c.Abort()
			return
		}

		// Platform admins are implicit members of every hostel.
		if IsAdmin(db, userID) {
			c.Set("hostel_id", hostelID)
			c.Set("role", models.RoleAdmin)
			c.Next()
			return
		}

		var binding models.UserRole
		if err := db.Where("user_id = ? AND hostel_id = ?", userID, hostelID).First(&binding).Error; err != nil {
			utils.RespondError(c, http.StatusForbidden, utils.CodeTenant403, utils.ErrNotHostelMember)
			c.Abort()
			return
		}

		c.Set("hostel_id", hostelID)
		c.Set("role", binding.Role)
		c.Next()
	}
}
