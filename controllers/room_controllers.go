package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hostelhq/hostel-app/models"
	"github.com/hostelhq/hostel-app/realtime"
	"github.com/hostelhq/hostel-app/services"
	"github.com/hostelhq/hostel-app/utils"
)

type RoomController struct {
	DB *gorm.DB
}

func NewRoomController(db *gorm.DB) *RoomController {
	return &RoomController{DB: db}
}

// countActiveStudents returns how many active students occupy a room.
func countActiveStudents(db *gorm.DB, roomID uint) int64 {
	var n int64
	db.Model(&models.Student{}).
		Where("room_id = ? AND status = ?", roomID, models.StudentActive).
		Count(&n)
	return n
}

// refreshRoomStatus recomputes available/full from occupancy. Rooms under
// maintenance keep that status until a warden lifts it.
func refreshRoomStatus(db *gorm.DB, room *models.Room) error {
	if room.Status == models.RoomMaintenance {
		return nil
	}
	status := models.RoomAvailable
	if countActiveStudents(db, room.ID) >= int64(room.Capacity) {
		status = models.RoomFull
	}
	if status == room.Status {
		return nil
	}
	room.Status = status
	return db.Model(room).Update("status", status).Error
}

// ListRooms returns the hostel's rooms, filterable by status and floor.
func (rc *RoomController) ListRooms(c *gin.Context) {
	type listQuery struct {
		Status  string `form:"status" binding:"omitempty,roomstatus"`
		FloorID uint   `form:"floor_id"`
	}
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.CodeValidation, err)
		return
	}

	hostelID := c.GetUint("hostel_id")

	query := rc.DB.Preload("Floor").Where("hostel_id = ?", hostelID)
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.FloorID != 0 {
		query = query.Where("floor_id = ?", q.FloorID)
	}

	var rooms []models.Room
	if err := query.Order("number ASC").Find(&rooms).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
		return
	}

	type roomView struct {
		models.Room
		Occupancy int64 `json:"occupancy"`
	}
	views := make([]roomView, 0, len(rooms))
	for _, room := range rooms {
		views = append(views, roomView{Room: room, Occupancy: countActiveStudents(rc.DB, room.ID)})
	}

	utils.RespondJSON(c, http.StatusOK, "Rooms", views)
}

// CreateRoom adds a room on one of the hostel's floors. Warden only.
func (rc *RoomController) CreateRoom(c *gin.Context) {
	type request struct {
		FloorID  uint   `json:"floor_id" binding:"required"`
		Number   string `json:"number" binding:"required"`
		Capacity int    `json:"capacity" binding:"required,min=1"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.CodeValidation, err)
		return
	}

	hostelID := c.GetUint("hostel_id")

	var floor models.Floor
	if err := rc.DB.Where("id = ? AND hostel_id = ?", req.FloorID, hostelID).First(&floor).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, errors.New("floor not found in this hostel"))
		return
	}

	var existing models.Room
	if err := rc.DB.Where("hostel_id = ? AND number = ?", hostelID, req.Number).First(&existing).Error; err == nil {
		utils.RespondError(c, http.StatusConflict, utils.CodeConflict, errors.New("room number already exists in this hostel"))
		return
	}

	room := models.Room{
		HostelID: hostelID,
		FloorID:  req.FloorID,
		Number:   req.Number,
		Capacity: req.Capacity,
		Status:   models.RoomAvailable,
	}

	if err := rc.DB.Create(&room).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
		return
	}

	services.RecordAudit(c, rc.DB, "room.create", services.EntityRoom, &room.ID, map[string]interface{}{
		"number":   room.Number,
		"capacity": room.Capacity,
	})
	realtime.BroadcastToHostel(hostelID, realtime.EventRoomUpdate, room)

	utils.RespondJSON(c, http.StatusCreated, "Room created", room)
}

// GetRoomByID returns one room with its floor and current occupants.
func (rc *RoomController) GetRoomByID(c *gin.Context) {
	hostelID := c.GetUint("hostel_id")

	var room models.Room
	if err := rc.DB.Preload("Floor").
		Where("id = ? AND hostel_id = ?", c.Param("room_id"), hostelID).
		First(&room).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, errors.New("room not found"))
		return
	}

	var occupants []models.Student
	rc.DB.Where("room_id = ? AND status = ?", room.ID, models.StudentActive).Find(&occupants)

	utils.RespondJSON(c, http.StatusOK, "Room", gin.H{
		"room":      room,
		"occupants": occupants,
		"occupancy": len(occupants),
	})
}

// UpdateRoom patches number, capacity, floor or status. Status accepts
// only "maintenance" and "available"; "full" is always derived. Capacity
// can never drop below the current occupancy. Warden only.
func (rc *RoomController) UpdateRoom(c *gin.Context) {
	type request struct {
		Number   *string `json:"number"`
		Capacity *int    `json:"capacity" binding:"omitempty,min=1"`
		FloorID  *uint   `json:"floor_id"`
		Status   *string `json:"status" binding:"omitempty,oneof=maintenance available"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.CodeValidation, err)
		return
	}

	hostelID := c.GetUint("hostel_id")

	var room models.Room
	if err := rc.DB.Where("id = ? AND hostel_id = ?", c.Param("room_id"), hostelID).First(&room).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, errors.New("room not found"))
		return
	}

	occupancy := countActiveStudents(rc.DB, room.ID)
	updates := map[string]interface{}{}

	if req.Number != nil && *req.Number != room.Number {
		var dup models.Room
		if err := rc.DB.Where("hostel_id = ? AND number = ? AND id <> ?", hostelID, *req.Number, room.ID).First(&dup).Error; err == nil {
			utils.RespondError(c, http.StatusConflict, utils.CodeConflict, errors.New("room number already exists in this hostel"))
			return
		}
		updates["number"] = *req.Number
	}
	if req.Capacity != nil {
		if int64(*req.Capacity) < occupancy {
			utils.RespondError(c, http.StatusConflict, utils.CodeConflict,
				fmt.Errorf("capacity %d is below current occupancy %d", *req.Capacity, occupancy))
			return
		}
		updates["capacity"] = *req.Capacity
	}
	if req.FloorID != nil {
		var floor models.Floor
		if err := rc.DB.Where("id = ? AND hostel_id = ?", *req.FloorID, hostelID).First(&floor).Error; err != nil {
			utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, errors.New("floor not found in this hostel"))
			return
		}
		updates["floor_id"] = *req.FloorID
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}

	if len(updates) > 0 {
		if err := rc.DB.Model(&room).Updates(updates).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
			return
		}
		if err := refreshRoomStatus(rc.DB, &room); err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
			return
		}
		services.RecordAudit(c, rc.DB, "room.update", services.EntityRoom, &room.ID, map[string]interface{}{
			"fields": updateKeys(updates),
		})
		realtime.BroadcastToHostel(hostelID, realtime.EventRoomUpdate, room)
	}

	utils.RespondJSON(c, http.StatusOK, "Room updated", room)
}

// DeleteRoom removes a room nobody lives in and no cleaning request ever
// touched. Rooms with history should be marked maintenance instead.
func (rc *RoomController) DeleteRoom(c *gin.Context) {
	hostelID := c.GetUint("hostel_id")

	var room models.Room
	if err := rc.DB.Where("id = ? AND hostel_id = ?", c.Param("room_id"), hostelID).First(&room).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, errors.New("room not found"))
		return
	}

	if countActiveStudents(rc.DB, room.ID) > 0 {
		utils.RespondError(c, http.StatusConflict, utils.CodeConflict, errors.New("room still has active students"))
		return
	}

	var requestCount int64
	rc.DB.Model(&models.CleaningRequest{}).Where("room_id = ?", room.ID).Count(&requestCount)
	if requestCount > 0 {
		utils.RespondError(c, http.StatusConflict, utils.CodeConflict, errors.New("room has cleaning history; mark it maintenance instead"))
		return
	}

	if err := rc.DB.Delete(&room).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
		return
	}

	services.RecordAudit(c, rc.DB, "room.delete", services.EntityRoom, &room.ID, map[string]interface{}{
		"number": room.Number,
	})
	realtime.BroadcastToHostel(hostelID, realtime.EventRoomUpdate, gin.H{"id": room.ID, "deleted": true})

	utils.RespondJSON(c, http.StatusOK, "Room deleted", nil)
}
