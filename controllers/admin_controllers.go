package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hostelhq/hostel-app/models"
	"github.com/hostelhq/hostel-app/services"
	"github.com/hostelhq/hostel-app/utils"
)

type AdminController struct {
	DB *gorm.DB
}

func NewAdminController(db *gorm.DB) *AdminController {
	return &AdminController{DB: db}
}

// FindUsers searches accounts by email or name fragment. Admin only.
func (ac *AdminController) FindUsers(c *gin.Context) {
	query := ac.DB.Preload("Roles").Limit(20)
	if email := c.Query("email"); email != "" {
		query = query.Where("email LIKE ?", "%"+email+"%")
	}
	if name := c.Query("name"); name != "" {
		query = query.Where("name LIKE ?", "%"+name+"%")
	}

	var users []models.User
	if err := query.Order("name ASC").Find(&users).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Users", users)
}

// ListUserRoles lists role bindings, filterable by user, hostel and role.
func (ac *AdminController) ListUserRoles(c *gin.Context) {
	query := ac.DB.Model(&models.UserRole{})
	if userID := c.Query("user_id"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if hostelID := c.Query("hostel_id"); hostelID != "" {
		query = query.Where("hostel_id = ?", hostelID)
	}
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	var bindings []models.UserRole
	if err := query.Order("id ASC").Find(&bindings).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Role bindings", bindings)
}

// AssignRole binds a role to a user. Admin bindings are platform-wide and
// must not carry a hostel; every other role must. Assigning warden also
// creates the warden profile when one is missing.
func (ac *AdminController) AssignRole(c *gin.Context) {
	type request struct {
		UserID   uint   `json:"user_id" binding:"required"`
		Role     string `json:"role" binding:"required,rolename"`
		HostelID *uint  `json:"hostel_id"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.CodeValidation, err)
		return
	}

	if req.Role == models.RoleAdmin && req.HostelID != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.CodeValidation, errors.New("admin bindings are platform-wide; omit hostel_id"))
		return
	}
	if req.Role != models.RoleAdmin && req.HostelID == nil {
		utils.RespondError(c, http.StatusBadRequest, utils.CodeValidation, errors.New("hostel_id is required for non-admin roles"))
		return
	}

	var user models.User
	if err := ac.DB.First(&user, req.UserID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, errors.New("user not found"))
		return
	}

	if req.HostelID != nil {
		var hostel models.Hostel
		if err := ac.DB.First(&hostel, *req.HostelID).Error; err != nil {
			utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, errors.New("hostel not found"))
			return
		}
	}

	existingQuery := ac.DB.Where("user_id = ?", req.UserID)
	if req.HostelID == nil {
		existingQuery = existingQuery.Where("hostel_id IS NULL")
	} else {
		existingQuery = existingQuery.Where("hostel_id = ?", *req.HostelID)
	}
	var existing models.UserRole
	if err := existingQuery.First(&existing).Error; err == nil {
		utils.RespondError(c, http.StatusConflict, utils.CodeConflict,
			fmt.Errorf("user already holds the %s role in this scope", existing.Role))
		return
	}

	tx := ac.DB.Begin()
	if tx.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, tx.Error)
		return
	}

	binding := models.UserRole{
		UserID:   req.UserID,
		HostelID: req.HostelID,
		Role:     req.Role,
	}
	if err := tx.Create(&binding).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
		return
	}

	if req.Role == models.RoleWarden {
		var profile models.Warden
		err := tx.Where("hostel_id = ? AND user_id = ?", *req.HostelID, req.UserID).First(&profile).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			profile = models.Warden{
				HostelID: *req.HostelID,
				UserID:   req.UserID,
				FullName: user.Name,
			}
			if err := tx.Create(&profile).Error; err != nil {
				tx.Rollback()
				utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
				return
			}
		}
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
		return
	}

	services.RecordAudit(c, ac.DB, "user_role.assign", services.EntityUserRole, &binding.ID, map[string]interface{}{
		"user_id":   req.UserID,
		"role":      req.Role,
		"hostel_id": req.HostelID,
	})

	utils.RespondJSON(c, http.StatusCreated, "Role assigned", binding)
}

// RevokeRole deletes a role binding; a warden binding takes its warden
// profile with it. Admins cannot revoke their own admin binding; a
// platform without admins is unrecoverable from the API.
func (ac *AdminController) RevokeRole(c *gin.Context) {
	var binding models.UserRole
	if err := ac.DB.First(&binding, c.Param("binding_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, errors.New("role binding not found"))
		return
	}

	callerID := c.GetUint("user_id")
	if binding.UserID == callerID && binding.Role == models.RoleAdmin {
		utils.RespondError(c, http.StatusConflict, utils.CodeConflict, errors.New("cannot revoke your own admin binding"))
		return
	}

	tx := ac.DB.Begin()
	if tx.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, tx.Error)
		return
	}

	if err := tx.Delete(&binding).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
		return
	}

	if binding.Role == models.RoleWarden && binding.HostelID != nil {
		if err := tx.Where("hostel_id = ? AND user_id = ?", *binding.HostelID, binding.UserID).
			Delete(&models.Warden{}).Error; err != nil {
			tx.Rollback()
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
		return
	}

	services.RecordAudit(c, ac.DB, "user_role.revoke", services.EntityUserRole, &binding.ID, map[string]interface{}{
		"user_id":   binding.UserID,
		"role":      binding.Role,
		"hostel_id": binding.HostelID,
	})

	utils.RespondJSON(c, http.StatusOK, "Role revoked", nil)
}

// CreateWarden appoints a user as warden of a hostel: role binding plus
// warden profile in one transaction. Admin only.
func (ac *AdminController) CreateWarden(c *gin.Context) {
	type request struct {
		UserID   uint   `json:"user_id" binding:"required"`
		FullName string `json:"full_name" binding:"required"`
		Phone    string `json:"phone"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.CodeValidation, err)
		return
	}

	var hostel models.Hostel
	if err := ac.DB.First(&hostel, c.Param("hostel_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, errors.New("hostel not found"))
		return
	}

	var user models.User
	if err := ac.DB.First(&user, req.UserID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, errors.New("user not found"))
		return
	}

	var existing models.UserRole
	if err := ac.DB.Where("user_id = ? AND hostel_id = ?", req.UserID, hostel.ID).First(&existing).Error; err == nil {
		utils.RespondError(c, http.StatusConflict, utils.CodeConflict,
			fmt.Errorf("user already holds the %s role in this hostel", existing.Role))
		return
	}

	tx := ac.DB.Begin()
	if tx.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, tx.Error)
		return
	}

	binding := models.UserRole{UserID: req.UserID, HostelID: &hostel.ID, Role: models.RoleWarden}
	if err := tx.Create(&binding).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
		return
	}

	warden := models.Warden{
		HostelID: hostel.ID,
		UserID:   req.UserID,
		FullName: req.FullName,
		Phone:    req.Phone,
	}
	if err := tx.Create(&warden).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
		return
	}

	services.RecordAudit(c, ac.DB, "warden.create", services.EntityWarden, &warden.ID, map[string]interface{}{
		"user_id":   req.UserID,
		"hostel_id": hostel.ID,
	})

	utils.RespondJSON(c, http.StatusCreated, "Warden appointed", warden)
}

// ListWardens returns a hostel's wardens. Served on both the admin route
// and the tenant route; both carry the hostel id as the same path param.
func (ac *AdminController) ListWardens(c *gin.Context) {
	var hostel models.Hostel
	if err := ac.DB.First(&hostel, c.Param("hostel_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, errors.New("hostel not found"))
		return
	}

	var wardens []models.Warden
	if err := ac.DB.Where("hostel_id = ?", hostel.ID).Order("full_name ASC").Find(&wardens).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Wardens", wardens)
}

// GetAdminStats aggregates platform-wide numbers plus per-hostel occupancy.
func (ac *AdminController) GetAdminStats(c *gin.Context) {
	var hostelCount, userCount, activeStudents, roomCount, openRequests int64

	ac.DB.Model(&models.Hostel{}).Count(&hostelCount)
	ac.DB.Model(&models.User{}).Count(&userCount)
	ac.DB.Model(&models.Student{}).Where("status = ?", models.StudentActive).Count(&activeStudents)
	ac.DB.Model(&models.Room{}).Count(&roomCount)
	ac.DB.Model(&models.CleaningRequest{}).
		Where("status IN ?", []string{models.CleaningPending, models.CleaningInProgress}).
		Count(&openRequests)

	type hostelOccupancy struct {
		HostelID uint   `json:"hostel_id"`
		Name     string `json:"name"`
		Capacity int64  `json:"capacity"`
		Occupied int64  `json:"occupied"`
	}
	var occupancy []hostelOccupancy
	ac.DB.Raw(`
		SELECT h.id AS hostel_id,
		       h.name AS name,
		       COALESCE((SELECT SUM(r.capacity) FROM rooms r WHERE r.hostel_id = h.id), 0) AS capacity,
		       (SELECT COUNT(*) FROM students s
		         WHERE s.hostel_id = h.id AND s.status = ? AND s.room_id IS NOT NULL) AS occupied
		FROM hostels h
		ORDER BY h.name`, models.StudentActive).Scan(&occupancy)

	utils.RespondJSON(c, http.StatusOK, "Platform stats", gin.H{
		"hostels":                hostelCount,
		"users":                  userCount,
		"active_students":        activeStudents,
		"rooms":                  roomCount,
		"open_cleaning_requests": openRequests,
		"occupancy":              occupancy,
	})
}
