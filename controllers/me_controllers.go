package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/hostelhq/hostel-app/models"
	"github.com/hostelhq/hostel-app/services"
	"github.com/hostelhq/hostel-app/utils"
)

type MeController struct {
	DB *gorm.DB
}

func NewMeController(db *gorm.DB) *MeController {
	return &MeController{DB: db}
}

// GetProfile returns the caller's account and every role binding,
// hostel names included so clients can render a hostel switcher.
func (mc *MeController) GetProfile(c *gin.Context) {
	userID := c.GetUint("user_id")

	var user models.User
	if err := mc.DB.Preload("Roles").First(&user, userID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, errors.New("user not found"))
		return
	}

	type bindingView struct {
		ID         uint    `json:"id"`
		Role       string  `json:"role"`
		HostelID   *uint   `json:"hostel_id"`
		HostelName *string `json:"hostel_name"`
	}

	bindings := make([]bindingView, 0, len(user.Roles))
	for _, r := range user.Roles {
		view := bindingView{ID: r.ID, Role: r.Role, HostelID: r.HostelID}
		if r.HostelID != nil {
			var hostel models.Hostel
			if err := mc.DB.Select("name").First(&hostel, *r.HostelID).Error; err == nil {
				view.HostelName = &hostel.Name
			}
		}
		bindings = append(bindings, view)
	}

	utils.RespondJSON(c, http.StatusOK, "Profile", gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"roles": bindings,
	})
}

// ChangePassword verifies the old password before setting the new one.
func (mc *MeController) ChangePassword(c *gin.Context) {
	type request struct {
		OldPassword string `json:"old_password" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,min=8"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.CodeValidation, err)
		return
	}

	userID := c.GetUint("user_id")

	var user models.User
	if err := mc.DB.First(&user, userID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, errors.New("user not found"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, utils.CodeAuth401, errors.New("old password does not match"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
		return
	}

	if err := mc.DB.Model(&user).Update("password", string(hashed)).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
		return
	}

	services.RecordAudit(c, mc.DB, "user.change_password", services.EntityUser, &user.ID, nil)
	utils.RespondJSON(c, http.StatusOK, "Password updated", nil)
}

// MyAnnouncements aggregates platform-wide notices with those of every
// hostel the caller belongs to, newest first, expired ones dropped.
func (mc *MeController) MyAnnouncements(c *gin.Context) {
	userID := c.GetUint("user_id")

	var hostelIDs []uint
	mc.DB.Model(&models.UserRole{}).
		Where("user_id = ? AND hostel_id IS NOT NULL", userID).
		Pluck("hostel_id", &hostelIDs)

	now := time.Now()
	var announcements []models.Announcement
	query := mc.DB.Where("expires_at IS NULL OR expires_at > ?", now)
	if len(hostelIDs) > 0 {
		query = query.Where("hostel_id IS NULL OR hostel_id IN ?", hostelIDs)
	} else {
		query = query.Where("hostel_id IS NULL")
	}
	if err := query.Order("published_at DESC").Find(&announcements).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Announcements", announcements)
}

// MyCleaningRequests lists requests the caller filed or was assigned to,
// across all hostels.
func (mc *MeController) MyCleaningRequests(c *gin.Context) {
	userID := c.GetUint("user_id")

	var requests []models.CleaningRequest
	query := mc.DB.Preload("Room").
		Where("requested_by_id = ? OR assigned_to_id = ?", userID, userID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Order("created_at DESC").Find(&requests).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Cleaning requests", requests)
}
