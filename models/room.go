package models

import "time"

const (
	RoomAvailable   = "available"
	RoomFull        = "full"
	RoomMaintenance = "maintenance"
)

// Room status is derived on allocation/checkout except for maintenance,
// which wardens set and clear by hand.
type Room struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	HostelID  uint      `gorm:"not null;uniqueIndex:idx_hostel_room_number" json:"hostel_id"`
	Hostel    Hostel    `gorm:"foreignKey:HostelID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	FloorID   uint      `gorm:"not null;index" json:"floor_id"`
	Floor     Floor     `gorm:"foreignKey:FloorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Number    string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_hostel_room_number" json:"number"`
	Capacity  int       `gorm:"not null" json:"capacity"`
	Status    string    `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Students []Student `gorm:"foreignKey:RoomID" json:"students,omitempty"`
}
