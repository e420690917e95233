package models

import "time"

const (
	HostelActive   = "active"
	HostelInactive = "inactive"
)

// Hostel is the tenant root: every scoped record hangs off a hostel_id.
type Hostel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Code      string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"code"`
	Address   string    `gorm:"type:varchar(255)" json:"address"`
	Status    string    `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Floors []Floor `gorm:"foreignKey:HostelID" json:"floors,omitempty"`
	Rooms  []Room  `gorm:"foreignKey:HostelID" json:"rooms,omitempty"`
}
