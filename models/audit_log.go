package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog records every mutating operation: who did what to which entity,
// under which tenant, with a metadata snapshot.
type AuditLog struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	EventID    string            `gorm:"type:varchar(36);uniqueIndex;not null" json:"event_id"`
	ActorID    uint              `gorm:"not null;index" json:"actor_id"`
	ActorRole  string            `gorm:"type:varchar(20);not null" json:"actor_role"`
	HostelID   *uint             `gorm:"index" json:"hostel_id,omitempty"`
	Action     string            `gorm:"type:varchar(64);not null;index" json:"action"`
	EntityType string            `gorm:"type:varchar(64);not null" json:"entity_type"`
	EntityID   *uint             `json:"entity_id,omitempty"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata,omitempty"`
	RequestID  string            `gorm:"type:varchar(36)" json:"request_id,omitempty"`
	IPAddress  string            `gorm:"type:varchar(45)" json:"ip_address,omitempty"`
	CreatedAt  time.Time         `gorm:"index" json:"created_at"`
}
