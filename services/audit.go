package services

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hostelhq/hostel-app/models"
	"github.com/hostelhq/hostel-app/utils"
)

// Entity types recorded in the audit trail.
const (
	EntityHostel          = "hostel"
	EntityFloor           = "floor"
	EntityRoom            = "room"
	EntityStudent         = "student"
	EntityWarden          = "warden"
	EntityUserRole        = "user_role"
	EntityCleaningRequest = "cleaning_request"
	EntityAnnouncement    = "announcement"
	EntityUser            = "user"
)

// RecordAudit writes one audit row for a mutating operation. Failures are
// logged, never surfaced: an audit miss must not fail the request itself.
func RecordAudit(c *gin.Context, db *gorm.DB, action, entityType string, entityID *uint, metadata map[string]interface{}) {
	var hostelID *uint
	if v, ok := c.Get("hostel_id"); ok {
		if id, ok := v.(uint); ok && id != 0 {
			hostelID = &id
		}
	}

	entry := models.AuditLog{
		EventID:    uuid.New().String(),
		ActorID:    c.GetUint("user_id"),
		ActorRole:  c.GetString("role"),
		HostelID:   hostelID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   datatypes.JSONMap(metadata),
		RequestID:  c.GetString("request_id"),
		IPAddress:  c.ClientIP(),
	}

	if err := db.Create(&entry).Error; err != nil {
		utils.ErrorLogger.Printf("audit: recording %s on %s failed: %v", action, entityType, err)
	}
}
