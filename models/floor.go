package models

import "time"

type Floor struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	HostelID  uint      `gorm:"not null;uniqueIndex:idx_hostel_floor_number" json:"hostel_id"`
	Hostel    Hostel    `gorm:"foreignKey:HostelID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Number    int       `gorm:"not null;uniqueIndex:idx_hostel_floor_number" json:"number"`
	Label     string    `gorm:"type:varchar(100)" json:"label"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Rooms []Room `gorm:"foreignKey:FloorID" json:"rooms,omitempty"`
}
