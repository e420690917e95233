package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hostelhq/hostel-app/models"
	"github.com/hostelhq/hostel-app/realtime"
	"github.com/hostelhq/hostel-app/services"
	"github.com/hostelhq/hostel-app/utils"
)

type AnnouncementController struct {
	DB *gorm.DB
}

func NewAnnouncementController(db *gorm.DB) *AnnouncementController {
	return &AnnouncementController{DB: db}
}

// ListAnnouncements returns the hostel's unexpired notices, newest first.
// Pass ?all=true to include expired ones (warden view of the archive).
func (anc *AnnouncementController) ListAnnouncements(c *gin.Context) {
	hostelID := c.GetUint("hostel_id")

	query := anc.DB.Where("hostel_id = ?", hostelID)
	if c.Query("all") == "true" {
		role := c.GetString("role")
		if role != models.RoleWarden && role != models.RoleAdmin {
			utils.RespondError(c, http.StatusForbidden, utils.CodeRBAC403, utils.ErrNoPermission)
			return
		}
	} else {
		query = query.Where("expires_at IS NULL OR expires_at > ?", time.Now())
	}

	var announcements []models.Announcement
	if err := query.Order("published_at DESC").Find(&announcements).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Announcements", announcements)
}

// CreateAnnouncement posts a notice to the hostel. Warden only.
func (anc *AnnouncementController) CreateAnnouncement(c *gin.Context) {
	type request struct {
		Title     string     `json:"title" binding:"required"`
		Body      string     `json:"body" binding:"required"`
		ExpiresAt *time.Time `json:"expires_at"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.CodeValidation, err)
		return
	}

	if req.ExpiresAt != nil && req.ExpiresAt.Before(time.Now()) {
		utils.RespondError(c, http.StatusBadRequest, utils.CodeValidation, errors.New("expires_at must be in the future"))
		return
	}

	hostelID := c.GetUint("hostel_id")
	userID := c.GetUint("user_id")

	announcement := models.Announcement{
		HostelID:    &hostelID,
		PostedByID:  userID,
		Title:       req.Title,
		Body:        req.Body,
		PublishedAt: time.Now(),
		ExpiresAt:   req.ExpiresAt,
	}

	if err := anc.DB.Create(&announcement).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
		return
	}

	services.RecordAudit(c, anc.DB, "announcement.create", services.EntityAnnouncement, &announcement.ID, map[string]interface{}{
		"title": announcement.Title,
	})
	realtime.BroadcastToHostel(hostelID, realtime.EventAnnouncementPosted, announcement)

	utils.RespondJSON(c, http.StatusCreated, "Announcement posted", announcement)
}

// DeleteAnnouncement takes a notice down. Warden only.
func (anc *AnnouncementController) DeleteAnnouncement(c *gin.Context) {
	hostelID := c.GetUint("hostel_id")

	var announcement models.Announcement
	if err := anc.DB.Where("id = ? AND hostel_id = ?", c.Param("announcement_id"), hostelID).First(&announcement).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, errors.New("announcement not found"))
		return
	}

	if err := anc.DB.Delete(&announcement).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
		return
	}

	services.RecordAudit(c, anc.DB, "announcement.delete", services.EntityAnnouncement, &announcement.ID, map[string]interface{}{
		"title": announcement.Title,
	})

	utils.RespondJSON(c, http.StatusOK, "Announcement deleted", nil)
}

// CreateGlobalAnnouncement posts a platform-wide notice every hostel sees.
// Admin only; hostel_id stays NULL.
func (anc *AnnouncementController) CreateGlobalAnnouncement(c *gin.Context) {
	type request struct {
		Title     string     `json:"title" binding:"required"`
		Body      string     `json:"body" binding:"required"`
		ExpiresAt *time.Time `json:"expires_at"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.CodeValidation, err)
		return
	}

	if req.ExpiresAt != nil && req.ExpiresAt.Before(time.Now()) {
		utils.RespondError(c, http.StatusBadRequest, utils.CodeValidation, errors.New("expires_at must be in the future"))
		return
	}

	announcement := models.Announcement{
		HostelID:    nil,
		PostedByID:  c.GetUint("user_id"),
		Title:       req.Title,
		Body:        req.Body,
		PublishedAt: time.Now(),
		ExpiresAt:   req.ExpiresAt,
	}

	if err := anc.DB.Create(&announcement).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
		return
	}

	services.RecordAudit(c, anc.DB, "announcement.create_global", services.EntityAnnouncement, &announcement.ID, map[string]interface{}{
		"title": announcement.Title,
	})
	realtime.BroadcastAll(realtime.EventAnnouncementPosted, announcement)

	utils.RespondJSON(c, http.StatusCreated, "Announcement posted", announcement)
}
