package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hostelhq/hostel-app/models"
	"github.com/hostelhq/hostel-app/utils"
)

type AuditController struct {
	DB *gorm.DB
}

func NewAuditController(db *gorm.DB) *AuditController {
	return &AuditController{DB: db}
}

const (
	auditDefaultLimit = 50
	auditMaxLimit     = 200
)

// auditFilters applies the shared query-string filters.
func auditFilters(c *gin.Context, query *gorm.DB) (*gorm.DB, error) {
	if actorID := c.Query("actor_id"); actorID != "" {
		query = query.Where("actor_id = ?", actorID)
	}
	if action := c.Query("action"); action != "" {
		query = query.Where("action = ?", action)
	}
	if entityType := c.Query("entity_type"); entityType != "" {
		query = query.Where("entity_type = ?", entityType)
	}
	if since := c.Query("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return nil, errors.New("since must be RFC3339")
		}
		query = query.Where("created_at >= ?", t)
	}
	if until := c.Query("until"); until != "" {
		t, err := time.Parse(time.RFC3339, until)
		if err != nil {
			return nil, errors.New("until must be RFC3339")
		}
		query = query.Where("created_at <= ?", t)
	}
	return query, nil
}

func auditPagination(c *gin.Context) (limit, offset int) {
	limit = auditDefaultLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > auditMaxLimit {
		limit = auditMaxLimit
	}
	if raw := c.Query("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

// ListAuditLogs returns the platform trail, newest first. Admin only.
func (auc *AuditController) ListAuditLogs(c *gin.Context) {
	query := auc.DB.Model(&models.AuditLog{})
	if hostelID := c.Query("hostel_id"); hostelID != "" {
		query = query.Where("hostel_id = ?", hostelID)
	}

	query, err := auditFilters(c, query)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.CodeValidation, err)
		return
	}

	var total int64
	query.Count(&total)

	limit, offset := auditPagination(c)

	var logs []models.AuditLog
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&logs).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Audit logs", gin.H{
		"total":  total,
		"limit":  limit,
		"offset": offset,
		"logs":   logs,
	})
}

// ListHostelAuditLogs returns one hostel's trail. Warden only; the scope
// comes from the tenant middleware, never from the query string.
func (auc *AuditController) ListHostelAuditLogs(c *gin.Context) {
	hostelID := c.GetUint("hostel_id")

	query := auc.DB.Model(&models.AuditLog{}).Where("hostel_id = ?", hostelID)

	query, err := auditFilters(c, query)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.CodeValidation, err)
		return
	}

	var total int64
	query.Count(&total)

	limit, offset := auditPagination(c)

	var logs []models.AuditLog
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&logs).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Audit logs", gin.H{
		"total":  total,
		"limit":  limit,
		"offset": offset,
		"logs":   logs,
	})
}
