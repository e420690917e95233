package models

import "time"

const (
	StudentActive     = "active"
	StudentCheckedOut = "checked_out"
)

type Student struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	HostelID  uint      `gorm:"not null;index" json:"hostel_id"`
	Hostel    Hostel    `gorm:"foreignKey:HostelID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	RoomID    *uint     `gorm:"index" json:"room_id,omitempty"`
	Room      *Room     `gorm:"foreignKey:RoomID" json:"room,omitempty"`
	UserID    *uint     `gorm:"index" json:"user_id,omitempty"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	RegNumber string    `gorm:"type:varchar(40);uniqueIndex;not null" json:"reg_number"`
	FullName  string    `gorm:"type:varchar(255);not null" json:"full_name"`
	Phone     string    `gorm:"type:varchar(30)" json:"phone"`
	Status    string    `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
