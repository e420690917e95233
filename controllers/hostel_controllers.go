package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hostelhq/hostel-app/models"
	"github.com/hostelhq/hostel-app/realtime"
	"github.com/hostelhq/hostel-app/services"
	"github.com/hostelhq/hostel-app/utils"
)

type HostelController struct {
	DB *gorm.DB
}

func NewHostelController(db *gorm.DB) *HostelController {
	return &HostelController{DB: db}
}

// GetAllHostels lists every hostel on the platform. Admin only.
func (hc *HostelController) GetAllHostels(c *gin.Context) {
	var hostels []models.Hostel
	query := hc.DB.Order("name ASC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&hostels).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Hostels", hostels)
}

// CreateHostel registers a new hostel. Codes are normalized to upper case
// so "blk-a" and "BLK-A" cannot coexist.
func (hc *HostelController) CreateHostel(c *gin.Context) {
	type request struct {
		Name    string `json:"name" binding:"required"`
		Code    string `json:"code" binding:"required"`
		Address string `json:"address"`
		Status  string `json:"status" binding:"omitempty,oneof=active inactive"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.CodeValidation, err)
		return
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))

	var existing models.Hostel
	if err := hc.DB.Where("name = ? OR code = ?", req.Name, code).First(&existing).Error; err == nil {
		utils.RespondError(c, http.StatusConflict, utils.CodeConflict, errors.New("hostel name or code already in use"))
		return
	}

	hostel := models.Hostel{
		Name:    req.Name,
		Code:    code,
		Address: req.Address,
		Status:  models.HostelActive,
	}
	if req.Status != "" {
		hostel.Status = req.Status
	}

	if err := hc.DB.Create(&hostel).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
		return
	}

	services.RecordAudit(c, hc.DB, "hostel.create", services.EntityHostel, &hostel.ID, map[string]interface{}{
		"name": hostel.Name,
		"code": hostel.Code,
	})

	utils.RespondJSON(c, http.StatusCreated, "Hostel created", hostel)
}

// GetHostelByID returns one hostel with its floors. Admin only; members
// use the tenant-scoped GetHostel instead.
func (hc *HostelController) GetHostelByID(c *gin.Context) {
	var hostel models.Hostel
	if err := hc.DB.Preload("Floors").First(&hostel, c.Param("hostel_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, errors.New("hostel not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Hostel", hostel)
}

// UpdateHostel patches name, code, address or status.
func (hc *HostelController) UpdateHostel(c *gin.Context) {
	type request struct {
		Name    *string `json:"name"`
		Code    *string `json:"code"`
		Address *string `json:"address"`
		Status  *string `json:"status" binding:"omitempty,oneof=active inactive"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.CodeValidation, err)
		return
	}

	var hostel models.Hostel
	if err := hc.DB.First(&hostel, c.Param("hostel_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, errors.New("hostel not found"))
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil && *req.Name != hostel.Name {
		var dup models.Hostel
		if err := hc.DB.Where("name = ? AND id <> ?", *req.Name, hostel.ID).First(&dup).Error; err == nil {
			utils.RespondError(c, http.StatusConflict, utils.CodeConflict, errors.New("hostel name already in use"))
			return
		}
		updates["name"] = *req.Name
	}
	if req.Code != nil {
		code := strings.ToUpper(strings.TrimSpace(*req.Code))
		if code != hostel.Code {
			var dup models.Hostel
			if err := hc.DB.Where("code = ? AND id <> ?", code, hostel.ID).First(&dup).Error; err == nil {
				utils.RespondError(c, http.StatusConflict, utils.CodeConflict, errors.New("hostel code already in use"))
				return
			}
			updates["code"] = code
		}
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}

	if len(updates) > 0 {
		if err := hc.DB.Model(&hostel).Updates(updates).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
			return
		}
		services.RecordAudit(c, hc.DB, "hostel.update", services.EntityHostel, &hostel.ID, map[string]interface{}{
			"fields": updateKeys(updates),
		})
	}

	utils.RespondJSON(c, http.StatusOK, "Hostel updated", hostel)
}

// DeleteHostel removes a hostel that no longer houses anyone. Hostels with
// active students must check them out first.
func (hc *HostelController) DeleteHostel(c *gin.Context) {
	var hostel models.Hostel
	if err := hc.DB.First(&hostel, c.Param("hostel_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, errors.New("hostel not found"))
		return
	}

	var activeStudents int64
	hc.DB.Model(&models.Student{}).
		Where("hostel_id = ? AND status = ?", hostel.ID, models.StudentActive).
		Count(&activeStudents)
	if activeStudents > 0 {
		utils.RespondError(c, http.StatusConflict, utils.CodeConflict, errors.New("hostel still has active students"))
		return
	}

	if err := hc.DB.Delete(&hostel).Error; err != nil {
		utils.RespondError(c, http.StatusConflict, utils.CodeConflict, errors.New("hostel still has dependent records"))
		return
	}

	services.RecordAudit(c, hc.DB, "hostel.delete", services.EntityHostel, &hostel.ID, map[string]interface{}{
		"name": hostel.Name,
	})

	utils.RespondJSON(c, http.StatusOK, "Hostel deleted", nil)
}

// GetHostel returns the scoped hostel with its floors. Any member.
func (hc *HostelController) GetHostel(c *gin.Context) {
	hostelID := c.GetUint("hostel_id")

	var hostel models.Hostel
	if err := hc.DB.Preload("Floors").First(&hostel, hostelID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, errors.New("hostel not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Hostel", hostel)
}

// GetHostelStats aggregates occupancy and workload numbers for one hostel.
// Warden only.
func (hc *HostelController) GetHostelStats(c *gin.Context) {
	hostelID := c.GetUint("hostel_id")
	today := time.Now().Format("2006-01-02")

	var floorCount, roomCount int64
	hc.DB.Model(&models.Floor{}).Where("hostel_id = ?", hostelID).Count(&floorCount)
	hc.DB.Model(&models.Room{}).Where("hostel_id = ?", hostelID).Count(&roomCount)

	roomsByStatus := map[string]int64{}
	for _, status := range []string{models.RoomAvailable, models.RoomFull, models.RoomMaintenance} {
		var n int64
		hc.DB.Model(&models.Room{}).Where("hostel_id = ? AND status = ?", hostelID, status).Count(&n)
		roomsByStatus[status] = n
	}

	var totalCapacity int64
	hc.DB.Model(&models.Room{}).
		Where("hostel_id = ?", hostelID).
		Select("COALESCE(SUM(capacity), 0)").
		Row().Scan(&totalCapacity)

	var occupiedBeds int64
	hc.DB.Model(&models.Student{}).
		Where("hostel_id = ? AND status = ? AND room_id IS NOT NULL", hostelID, models.StudentActive).
		Count(&occupiedBeds)

	var activeStudents int64
	hc.DB.Model(&models.Student{}).
		Where("hostel_id = ? AND status = ?", hostelID, models.StudentActive).
		Count(&activeStudents)

	cleaningByStatus := map[string]int64{}
	for _, status := range []string{models.CleaningPending, models.CleaningInProgress, models.CleaningDone, models.CleaningRejected} {
		var n int64
		hc.DB.Model(&models.CleaningRequest{}).
			Where("hostel_id = ? AND status = ?", hostelID, status).
			Count(&n)
		cleaningByStatus[status] = n
	}

	var cleanedToday int64
	hc.DB.Model(&models.CleaningRequest{}).
		Where("hostel_id = ? AND status = ? AND DATE(resolved_at) = ?", hostelID, models.CleaningDone, today).
		Count(&cleanedToday)

	utils.RespondJSON(c, http.StatusOK, "Hostel stats", gin.H{
		"floors":             floorCount,
		"rooms":              roomCount,
		"rooms_by_status":    roomsByStatus,
		"total_capacity":     totalCapacity,
		"occupied_beds":      occupiedBeds,
		"active_students":    activeStudents,
		"cleaning_by_status": cleaningByStatus,
		"cleaned_today":      cleanedToday,
		"live_clients":       realtime.ClientCount(hostelID),
	})
}

func updateKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
