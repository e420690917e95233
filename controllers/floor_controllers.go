package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hostelhq/hostel-app/models"
	"github.com/hostelhq/hostel-app/services"
	"github.com/hostelhq/hostel-app/utils"
)

type FloorController struct {
	DB *gorm.DB
}

func NewFloorController(db *gorm.DB) *FloorController {
	return &FloorController{DB: db}
}

// ListFloors returns the hostel's floors with their rooms, lowest first.
func (fc *FloorController) ListFloors(c *gin.Context) {
	hostelID := c.GetUint("hostel_id")

	var floors []models.Floor
	if err := fc.DB.Preload("Rooms").
		Where("hostel_id = ?", hostelID).
		Order("number ASC").
		Find(&floors).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Floors", floors)
}

// CreateFloor adds a floor. Number is a pointer so that a ground floor
// of 0 passes the required check. Warden only.
func (fc *FloorController) CreateFloor(c *gin.Context) {
	type request struct {
		Number *int   `json:"number" binding:"required"`
		Label  string `json:"label"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.CodeValidation, err)
		return
	}

	hostelID := c.GetUint("hostel_id")

	var existing models.Floor
	if err := fc.DB.Where("hostel_id = ? AND number = ?", hostelID, *req.Number).First(&existing).Error; err == nil {
		utils.RespondError(c, http.StatusConflict, utils.CodeConflict, errors.New("floor number already exists in this hostel"))
		return
	}

	floor := models.Floor{
		HostelID: hostelID,
		Number:   *req.Number,
		Label:    req.Label,
	}

	if err := fc.DB.Create(&floor).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
		return
	}

	services.RecordAudit(c, fc.DB, "floor.create", services.EntityFloor, &floor.ID, map[string]interface{}{
		"number": floor.Number,
	})

	utils.RespondJSON(c, http.StatusCreated, "Floor created", floor)
}

// UpdateFloor patches number or label. Warden only.
func (fc *FloorController) UpdateFloor(c *gin.Context) {
	type request struct {
		Number *int    `json:"number"`
		Label  *string `json:"label"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.CodeValidation, err)
		return
	}

	hostelID := c.GetUint("hostel_id")

	var floor models.Floor
	if err := fc.DB.Where("id = ? AND hostel_id = ?", c.Param("floor_id"), hostelID).First(&floor).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, errors.New("floor not found"))
		return
	}

	updates := map[string]interface{}{}
	if req.Number != nil && *req.Number != floor.Number {
		var dup models.Floor
		if err := fc.DB.Where("hostel_id = ? AND number = ? AND id <> ?", hostelID, *req.Number, floor.ID).First(&dup).Error; err == nil {
			utils.RespondError(c, http.StatusConflict, utils.CodeConflict, errors.New("floor number already exists in this hostel"))
			return
		}
		updates["number"] = *req.Number
	}
	if req.Label != nil {
		updates["label"] = *req.Label
	}

	if len(updates) > 0 {
		if err := fc.DB.Model(&floor).Updates(updates).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
			return
		}
		services.RecordAudit(c, fc.DB, "floor.update", services.EntityFloor, &floor.ID, map[string]interface{}{
			"fields": updateKeys(updates),
		})
	}

	utils.RespondJSON(c, http.StatusOK, "Floor updated", floor)
}

// DeleteFloor removes an empty floor. Floors with rooms refuse with 409.
func (fc *FloorController) DeleteFloor(c *gin.Context) {
	hostelID := c.GetUint("hostel_id")

	var floor models.Floor
	if err := fc.DB.Where("id = ? AND hostel_id = ?", c.Param("floor_id"), hostelID).First(&floor).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, errors.New("floor not found"))
		return
	}

	var roomCount int64
	fc.DB.Model(&models.Room{}).Where("floor_id = ?", floor.ID).Count(&roomCount)
	if roomCount > 0 {
		utils.RespondError(c, http.StatusConflict, utils.CodeConflict, errors.New("floor still has rooms"))
		return
	}

	if err := fc.DB.Delete(&floor).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
		return
	}

	services.RecordAudit(c, fc.DB, "floor.delete", services.EntityFloor, &floor.ID, map[string]interface{}{
		"number": floor.Number,
	})

	utils.RespondJSON(c, http.StatusOK, "Floor deleted", nil)
}
