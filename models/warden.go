package models

import "time"

// Warden is the staff profile for a hostel manager. The authorization fact
// is the matching UserRole binding; both are created in one transaction.
type Warden struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	HostelID  uint      `gorm:"not null;uniqueIndex:idx_hostel_warden" json:"hostel_id"`
	Hostel    Hostel    `gorm:"foreignKey:HostelID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_hostel_warden" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user,omitempty"`
	FullName  string    `gorm:"type:varchar(255);not null" json:"full_name"`
	Phone     string    `gorm:"type:varchar(30)" json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
