package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hostelhq/hostel-app/models"
	"github.com/hostelhq/hostel-app/realtime"
	"github.com/hostelhq/hostel-app/services"
	"github.com/hostelhq/hostel-app/utils"
)

type StudentController struct {
	DB *gorm.DB
}

func NewStudentController(db *gorm.DB) *StudentController {
	return &StudentController{DB: db}
}

// newRegNumber builds a registration number like REG-20260115-3F2A9B1C.
// The date keeps them sortable, the uuid chunk keeps them unique.
func newRegNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:8]
	return fmt.Sprintf("REG-%s-%s", time.Now().Format("20060102"), suffix)
}

// ListStudents returns the hostel's students. Warden and cleaner.
func (sc *StudentController) ListStudents(c *gin.Context) {
	hostelID := c.GetUint("hostel_id")

	query := sc.DB.Preload("Room").Where("hostel_id = ?", hostelID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if roomID := c.Query("room_id"); roomID != "" {
		query = query.Where("room_id = ?", roomID)
	}

	var students []models.Student
	if err := query.Order("full_name ASC").Find(&students).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Students", students)
}

// CreateStudent registers a student, optionally linking a user account
// (which also binds the student role) and optionally allocating a room
// in the same transaction. Warden only.
func (sc *StudentController) CreateStudent(c *gin.Context) {
	type request struct {
		FullName string `json:"full_name" binding:"required"`
		Phone    string `json:"phone"`
		UserID   *uint  `json:"user_id"`
		RoomID   *uint  `json:"room_id"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.CodeValidation, err)
		return
	}

	hostelID := c.GetUint("hostel_id")

	tx := sc.DB.Begin()
	if tx.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, tx.Error)
		return
	}

	if req.UserID != nil {
		var user models.User
		if err := tx.First(&user, *req.UserID).Error; err != nil {
			tx.Rollback()
			utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, errors.New("user not found"))
			return
		}

		var linked int64
		tx.Model(&models.Student{}).
			Where("hostel_id = ? AND user_id = ? AND status = ?", hostelID, *req.UserID, models.StudentActive).
			Count(&linked)
		if linked > 0 {
			tx.Rollback()
			utils.RespondError(c, http.StatusConflict, utils.CodeConflict, errors.New("user already has an active student profile in this hostel"))
			return
		}

		var binding models.UserRole
		err := tx.Where("user_id = ? AND hostel_id = ?", *req.UserID, hostelID).First(&binding).Error
		switch {
		case err == nil && binding.Role != models.RoleStudent:
			tx.Rollback()
			utils.RespondError(c, http.StatusConflict, utils.CodeConflict,
				fmt.Errorf("user already holds the %s role in this hostel", binding.Role))
			return
		case errors.Is(err, gorm.ErrRecordNotFound):
			hid := hostelID
			if err := tx.Create(&models.UserRole{UserID: *req.UserID, HostelID: &hid, Role: models.RoleStudent}).Error; err != nil {
				tx.Rollback()
				utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
				return
			}
		case err != nil:
			// Never commit a student whose account link could not be checked.
			tx.Rollback()
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
			return
		}
	}

	var room *models.Room
	if req.RoomID != nil {
		room = &models.Room{}
		if err := tx.Where("id = ? AND hostel_id = ?", *req.RoomID, hostelID).First(room).Error; err != nil {
			tx.Rollback()
			utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, errors.New("room not found in this hostel"))
			return
		}
		if room.Status == models.RoomMaintenance {
			tx.Rollback()
			utils.RespondError(c, http.StatusConflict, utils.CodeConflict, errors.New("room is under maintenance"))
			return
		}
		if countActiveStudents(tx, room.ID) >= int64(room.Capacity) {
			tx.Rollback()
			utils.RespondError(c, http.StatusConflict, utils.CodeConflict, errors.New("room is already at capacity"))
			return
		}
	}

	student := models.Student{
		HostelID:  hostelID,
		RoomID:    req.RoomID,
		UserID:    req.UserID,
		FullName:  req.FullName,
		Phone:     req.Phone,
		RegNumber: newRegNumber(),
		Status:    models.StudentActive,
	}

	if err := tx.Create(&student).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
		return
	}

	if room != nil {
		if err := refreshRoomStatus(sc.DB, room); err != nil {
			utils.ErrorLogger.Printf("refresh room %d status: %v", room.ID, err)
		}
		realtime.BroadcastToHostel(hostelID, realtime.EventRoomUpdate, room)
	}

	services.RecordAudit(c, sc.DB, "student.create", services.EntityStudent, &student.ID, map[string]interface{}{
		"reg_number": student.RegNumber,
		"room_id":    req.RoomID,
	})

	utils.RespondJSON(c, http.StatusCreated, "Student created", student)
}

// GetStudentByID returns one student with room details.
func (sc *StudentController) GetStudentByID(c *gin.Context) {
	hostelID := c.GetUint("hostel_id")

	var student models.Student
	if err := sc.DB.Preload("Room").
		Where("id = ? AND hostel_id = ?", c.Param("student_id"), hostelID).
		First(&student).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, errors.New("student not found"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Student", student)
}

// UpdateStudent patches name or phone. Room moves go through Allocate.
func (sc *StudentController) UpdateStudent(c *gin.Context) {
	type request struct {
		FullName *string `json:"full_name"`
		Phone    *string `json:"phone"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.CodeValidation, err)
		return
	}

	hostelID := c.GetUint("hostel_id")

	var student models.Student
	if err := sc.DB.Where("id = ? AND hostel_id = ?", c.Param("student_id"), hostelID).First(&student).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, errors.New("student not found"))
		return
	}

	updates := map[string]interface{}{}
	if req.FullName != nil {
		updates["full_name"] = *req.FullName
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}

	if len(updates) > 0 {
		if err := sc.DB.Model(&student).Updates(updates).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
			return
		}
		services.RecordAudit(c, sc.DB, "student.update", services.EntityStudent, &student.ID, map[string]interface{}{
			"fields": updateKeys(updates),
		})
	}

	utils.RespondJSON(c, http.StatusOK, "Student updated", student)
}

// AllocateStudent moves an active student into a room, enforcing capacity
// inside the transaction so two wardens cannot oversubscribe the last bed.
func (sc *StudentController) AllocateStudent(c *gin.Context) {
	type request struct {
		RoomID uint `json:"room_id" binding:"required"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.CodeValidation, err)
		return
	}

	hostelID := c.GetUint("hostel_id")

	var student models.Student
	if err := sc.DB.Where("id = ? AND hostel_id = ?", c.Param("student_id"), hostelID).First(&student).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, errors.New("student not found"))
		return
	}
	if student.Status != models.StudentActive {
		utils.RespondError(c, http.StatusConflict, utils.CodeConflict, errors.New("checked-out students cannot be allocated"))
		return
	}
	if student.RoomID != nil && *student.RoomID == req.RoomID {
		utils.RespondError(c, http.StatusConflict, utils.CodeConflict, errors.New("student already lives in this room"))
		return
	}

	previousRoomID := student.RoomID

	tx := sc.DB.Begin()
	if tx.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, tx.Error)
		return
	}

	var room models.Room
	if err := tx.Where("id = ? AND hostel_id = ?", req.RoomID, hostelID).First(&room).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, errors.New("room not found in this hostel"))
		return
	}
	if room.Status == models.RoomMaintenance {
		tx.Rollback()
		utils.RespondError(c, http.StatusConflict, utils.CodeConflict, errors.New("room is under maintenance"))
		return
	}
	if countActiveStudents(tx, room.ID) >= int64(room.Capacity) {
		tx.Rollback()
		utils.RespondError(c, http.StatusConflict, utils.CodeConflict, errors.New("room is already at capacity"))
		return
	}

	if err := tx.Model(&student).Update("room_id", req.RoomID).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
		return
	}

	if err := refreshRoomStatus(sc.DB, &room); err != nil {
		utils.ErrorLogger.Printf("refresh room %d status: %v", room.ID, err)
	}
	realtime.BroadcastToHostel(hostelID, realtime.EventRoomUpdate, room)

	if previousRoomID != nil {
		var previous models.Room
		if err := sc.DB.First(&previous, *previousRoomID).Error; err == nil {
			if err := refreshRoomStatus(sc.DB, &previous); err != nil {
				utils.ErrorLogger.Printf("refresh room %d status: %v", previous.ID, err)
			}
			realtime.BroadcastToHostel(hostelID, realtime.EventRoomUpdate, previous)
		}
	}

	services.RecordAudit(c, sc.DB, "student.allocate", services.EntityStudent, &student.ID, map[string]interface{}{
		"room_id":          req.RoomID,
		"previous_room_id": previousRoomID,
	})

	utils.RespondJSON(c, http.StatusOK, "Student allocated", student)
}

// CheckoutStudent releases the bed and marks the student checked out.
func (sc *StudentController) CheckoutStudent(c *gin.Context) {
	hostelID := c.GetUint("hostel_id")

	var student models.Student
	if err := sc.DB.Where("id = ? AND hostel_id = ?", c.Param("student_id"), hostelID).First(&student).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, errors.New("student not found"))
		return
	}
	if student.Status == models.StudentCheckedOut {
		utils.RespondError(c, http.StatusConflict, utils.CodeConflict, errors.New("student already checked out"))
		return
	}

	previousRoomID := student.RoomID

	if err := sc.DB.Model(&student).Updates(map[string]interface{}{
		"status":  models.StudentCheckedOut,
		"room_id": nil,
	}).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
		return
	}

	if previousRoomID != nil {
		var previous models.Room
		if err := sc.DB.First(&previous, *previousRoomID).Error; err == nil {
			if err := refreshRoomStatus(sc.DB, &previous); err != nil {
				utils.ErrorLogger.Printf("refresh room %d status: %v", previous.ID, err)
			}
			realtime.BroadcastToHostel(hostelID, realtime.EventRoomUpdate, previous)
		}
	}

	services.RecordAudit(c, sc.DB, "student.checkout", services.EntityStudent, &student.ID, map[string]interface{}{
		"previous_room_id": previousRoomID,
	})

	utils.RespondJSON(c, http.StatusOK, "Student checked out", student)
}

// DeleteStudent removes a student record. Students still holding a bed
// must be checked out first so occupancy stays honest.
func (sc *StudentController) DeleteStudent(c *gin.Context) {
	hostelID := c.GetUint("hostel_id")

	var student models.Student
	if err := sc.DB.Where("id = ? AND hostel_id = ?", c.Param("student_id"), hostelID).First(&student).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, errors.New("student not found"))
		return
	}

	if student.RoomID != nil {
		utils.RespondError(c, http.StatusConflict, utils.CodeConflict, errors.New("student still holds a room; check them out first"))
		return
	}

	if err := sc.DB.Delete(&student).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
		return
	}

	services.RecordAudit(c, sc.DB, "student.delete", services.EntityStudent, &student.ID, map[string]interface{}{
		"reg_number": student.RegNumber,
	})

	utils.RespondJSON(c, http.StatusOK, "Student deleted", nil)
}
