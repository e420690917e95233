package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hostelhq/hostel-app/models"
	"github.com/hostelhq/hostel-app/realtime"
	"github.com/hostelhq/hostel-app/services"
	"github.com/hostelhq/hostel-app/utils"
)

type CleaningRequestController struct {
	DB *gorm.DB
}

func NewCleaningRequestController(db *gorm.DB) *CleaningRequestController {
	return &CleaningRequestController{DB: db}
}

// CreateCleaningRequest files a PENDING request for a room. Students may
// only file for the room they live in; wardens and cleaners may file for
// any room in the hostel. A room can carry at most one open request.
func (cc *CleaningRequestController) CreateCleaningRequest(c *gin.Context) {
	type request struct {
		RoomID uint   `json:"room_id" binding:"required"`
		Note   string `json:"note"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.CodeValidation, err)
		return
	}

	hostelID := c.GetUint("hostel_id")
	userID := c.GetUint("user_id")
	role := c.GetString("role")

	var room models.Room
	if err := cc.DB.Where("id = ? AND hostel_id = ?", req.RoomID, hostelID).First(&room).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, errors.New("room not found in this hostel"))
		return
	}

	if role == models.RoleStudent {
		var profile models.Student
		if err := cc.DB.Where("hostel_id = ? AND user_id = ? AND status = ?",
			hostelID, userID, models.StudentActive).First(&profile).Error; err != nil {
			utils.RespondError(c, http.StatusForbidden, utils.CodeRBAC403, errors.New("no active student profile in this hostel"))
			return
		}
		if profile.RoomID == nil || *profile.RoomID != req.RoomID {
			utils.RespondError(c, http.StatusForbidden, utils.CodeRBAC403, errors.New("students may only request cleaning for their own room"))
			return
		}
	}

	tx := cc.DB.Begin()
	if tx.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, tx.Error)
		return
	}

	var open int64
	tx.Model(&models.CleaningRequest{}).
		Where("room_id = ? AND status IN ?", room.ID, []string{models.CleaningPending, models.CleaningInProgress}).
		Count(&open)
	if open > 0 {
		tx.Rollback()
		utils.RespondError(c, http.StatusConflict, utils.CodeConflict, errors.New("room already has an open cleaning request"))
		return
	}

	cleaningRequest := models.CleaningRequest{
		HostelID:      hostelID,
		RoomID:        room.ID,
		RequestedByID: userID,
		Status:        models.CleaningPending,
		Note:          req.Note,
	}

	if err := tx.Create(&cleaningRequest).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
		return
	}

	cc.DB.Preload("Room").First(&cleaningRequest, cleaningRequest.ID)

	services.RecordAudit(c, cc.DB, "cleaning_request.create", services.EntityCleaningRequest, &cleaningRequest.ID, map[string]interface{}{
		"room_id": room.ID,
	})
	realtime.BroadcastToHostel(hostelID, realtime.EventCleaningCreated, cleaningRequest)

	utils.RespondJSON(c, http.StatusCreated, "Cleaning request created", cleaningRequest)
}

// ListCleaningRequests returns the hostel's requests. Students only see
// their own; wardens and cleaners see everything.
func (cc *CleaningRequestController) ListCleaningRequests(c *gin.Context) {
	hostelID := c.GetUint("hostel_id")
	userID := c.GetUint("user_id")
	role := c.GetString("role")

	query := cc.DB.Preload("Room").Where("hostel_id = ?", hostelID)
	if role == models.RoleStudent {
		query = query.Where("requested_by_id = ?", userID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if roomID := c.Query("room_id"); roomID != "" {
		query = query.Where("room_id = ?", roomID)
	}

	var requests []models.CleaningRequest
	if err := query.Order("created_at DESC").Find(&requests).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Cleaning requests", requests)
}

// GetCleaningRequestByID returns one request. Students only their own.
func (cc *CleaningRequestController) GetCleaningRequestByID(c *gin.Context) {
	hostelID := c.GetUint("hostel_id")
	userID := c.GetUint("user_id")
	role := c.GetString("role")

	var cleaningRequest models.CleaningRequest
	if err := cc.DB.Preload("Room").
		Where("id = ? AND hostel_id = ?", c.Param("request_id"), hostelID).
		First(&cleaningRequest).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, errors.New("cleaning request not found"))
		return
	}

	if role == models.RoleStudent && cleaningRequest.RequestedByID != userID {
		utils.RespondError(c, http.StatusForbidden, utils.CodeRBAC403, utils.ErrNoPermission)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Cleaning request", cleaningRequest)
}

// StartCleaningRequest moves PENDING to IN_PROGRESS and assigns the
// caller. The guarded update keeps two cleaners from both taking it.
func (cc *CleaningRequestController) StartCleaningRequest(c *gin.Context) {
	hostelID := c.GetUint("hostel_id")
	userID := c.GetUint("user_id")

	var cleaningRequest models.CleaningRequest
	if err := cc.DB.Where("id = ? AND hostel_id = ?", c.Param("request_id"), hostelID).First(&cleaningRequest).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, errors.New("cleaning request not found"))
		return
	}

	if !cleaningRequest.CanTransition(models.CleaningInProgress) {
		utils.RespondError(c, http.StatusBadRequest, utils.CodeValidation,
			fmt.Errorf("cannot move %s to %s", cleaningRequest.Status, models.CleaningInProgress))
		return
	}

	now := time.Now()
	res := cc.DB.Model(&models.CleaningRequest{}).
		Where("id = ? AND status = ?", cleaningRequest.ID, models.CleaningPending).
		Updates(map[string]interface{}{
			"status":         models.CleaningInProgress,
			"assigned_to_id": userID,
			"started_at":     now,
		})
	if res.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, http.StatusConflict, utils.CodeConflict, errors.New("request was already picked up"))
		return
	}

	cc.DB.Preload("Room").First(&cleaningRequest, cleaningRequest.ID)

	services.RecordAudit(c, cc.DB, "cleaning_request.start", services.EntityCleaningRequest, &cleaningRequest.ID, map[string]interface{}{
		"room_id": cleaningRequest.RoomID,
	})
	realtime.BroadcastToHostel(hostelID, realtime.EventCleaningUpdated, cleaningRequest)

	utils.RespondJSON(c, http.StatusOK, "Cleaning started", cleaningRequest)
}

// CompleteCleaningRequest moves IN_PROGRESS to DONE. Wardens may complete
// any request; cleaners only the one assigned to them.
func (cc *CleaningRequestController) CompleteCleaningRequest(c *gin.Context) {
	hostelID := c.GetUint("hostel_id")
	userID := c.GetUint("user_id")
	role := c.GetString("role")

	var cleaningRequest models.CleaningRequest
	if err := cc.DB.Where("id = ? AND hostel_id = ?", c.Param("request_id"), hostelID).First(&cleaningRequest).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, errors.New("cleaning request not found"))
		return
	}

	if role == models.RoleCleaner {
		if cleaningRequest.AssignedToID == nil || *cleaningRequest.AssignedToID != userID {
			utils.RespondError(c, http.StatusForbidden, utils.CodeRBAC403, errors.New("only the assigned cleaner may complete this request"))
			return
		}
	}

	if !cleaningRequest.CanTransition(models.CleaningDone) {
		utils.RespondError(c, http.StatusBadRequest, utils.CodeValidation,
			fmt.Errorf("cannot move %s to %s", cleaningRequest.Status, models.CleaningDone))
		return
	}

	now := time.Now()
	res := cc.DB.Model(&models.CleaningRequest{}).
		Where("id = ? AND status = ?", cleaningRequest.ID, models.CleaningInProgress).
		Updates(map[string]interface{}{
			"status":      models.CleaningDone,
			"resolved_at": now,
		})
	if res.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, http.StatusConflict, utils.CodeConflict, errors.New("request state changed underneath; reload and retry"))
		return
	}

	cc.DB.Preload("Room").First(&cleaningRequest, cleaningRequest.ID)

	services.RecordAudit(c, cc.DB, "cleaning_request.done", services.EntityCleaningRequest, &cleaningRequest.ID, map[string]interface{}{
		"room_id": cleaningRequest.RoomID,
	})
	realtime.BroadcastToHostel(hostelID, realtime.EventCleaningUpdated, cleaningRequest)

	utils.RespondJSON(c, http.StatusOK, "Cleaning completed", cleaningRequest)
}

// RejectCleaningRequest closes a PENDING or IN_PROGRESS request with a
// reason. Warden only.
func (cc *CleaningRequestController) RejectCleaningRequest(c *gin.Context) {
	type request struct {
		Reason string `json:"reason" binding:"required"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.CodeValidation, err)
		return
	}

	hostelID := c.GetUint("hostel_id")

	var cleaningRequest models.CleaningRequest
	if err := cc.DB.Where("id = ? AND hostel_id = ?", c.Param("request_id"), hostelID).First(&cleaningRequest).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, errors.New("cleaning request not found"))
		return
	}

	if !cleaningRequest.CanTransition(models.CleaningRejected) {
		utils.RespondError(c, http.StatusBadRequest, utils.CodeValidation,
			fmt.Errorf("cannot move %s to %s", cleaningRequest.Status, models.CleaningRejected))
		return
	}

	now := time.Now()
	res := cc.DB.Model(&models.CleaningRequest{}).
		Where("id = ? AND status IN ?", cleaningRequest.ID, []string{models.CleaningPending, models.CleaningInProgress}).
		Updates(map[string]interface{}{
			"status":        models.CleaningRejected,
			"resolved_at":   now,
			"reject_reason": req.Reason,
		})
	if res.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, http.StatusConflict, utils.CodeConflict, errors.New("request state changed underneath; reload and retry"))
		return
	}

	cc.DB.Preload("Room").First(&cleaningRequest, cleaningRequest.ID)

	services.RecordAudit(c, cc.DB, "cleaning_request.reject", services.EntityCleaningRequest, &cleaningRequest.ID, map[string]interface{}{
		"room_id": cleaningRequest.RoomID,
		"reason":  req.Reason,
	})
	realtime.BroadcastToHostel(hostelID, realtime.EventCleaningUpdated, cleaningRequest)

	utils.RespondJSON(c, http.StatusOK, "Cleaning request rejected", cleaningRequest)
}
