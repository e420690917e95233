package models

import "time"

// Announcement with a NULL HostelID is platform-wide and visible to every
// authenticated user.
type Announcement struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	HostelID    *uint      `gorm:"index" json:"hostel_id,omitempty"`
	Hostel      *Hostel    `gorm:"foreignKey:HostelID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	PostedByID  uint       `gorm:"not null" json:"posted_by_id"`
	PostedBy    User       `gorm:"foreignKey:PostedByID" json:"posted_by,omitempty"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Body        string     `gorm:"type:text;not null" json:"body"`
	PublishedAt time.Time  `gorm:"not null" json:"published_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Expired reports whether the announcement has lapsed at the given time.
func (a *Announcement) Expired(now time.Time) bool {
	return a.ExpiresAt != nil && a.ExpiresAt.Before(now)
}
