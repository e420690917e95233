package models

import "time"

// Role names. An admin binding is platform-wide and carries a NULL hostel;
// every other role is bound to exactly one hostel.
const (
	RoleAdmin   = "admin"
	RoleWarden  = "warden"
	RoleCleaner = "cleaner"
	RoleStudent = "student"
)

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleWarden, RoleCleaner, RoleStudent:
		return true
	}
	return false
}

// UserRole binds a user to a role within a hostel. A user holds at most one
// role per hostel.
type UserRole struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_hostel" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	HostelID  *uint     `gorm:"uniqueIndex:idx_user_hostel" json:"hostel_id,omitempty"`
	Hostel    *Hostel   `gorm:"foreignKey:HostelID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"hostel,omitempty"`
	Role      string    `gorm:"type:varchar(20);not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
