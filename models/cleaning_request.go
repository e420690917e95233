package models

import "time"

const (
	CleaningPending    = "PENDING"
	CleaningInProgress = "IN_PROGRESS"
	CleaningDone       = "DONE"
	CleaningRejected   = "REJECTED"
)

type CleaningRequest struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	HostelID          uint       `gorm:"not null;index" json:"hostel_id"`
	Hostel            Hostel     `gorm:"foreignKey:HostelID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	RoomID            uint       `gorm:"not null;index" json:"room_id"`
	Room              Room       `gorm:"foreignKey:RoomID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"room,omitempty"`
	RequestedByID     uint       `gorm:"not null" json:"requested_by_id"`
	RequestedBy       User       `gorm:"foreignKey:RequestedByID" json:"requested_by,omitempty"`
	AssignedToID      *uint      `gorm:"index" json:"assigned_to_id,omitempty"`
	AssignedTo        *User      `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`
	Status            string     `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	Note              string     `gorm:"type:text" json:"note"`
	RejectReason      string     `gorm:"type:text" json:"reject_reason,omitempty"`
	StartedAt         *time.Time `json:"started_at,omitempty"`
	ResolvedAt        *time.Time `json:"resolved_at,omitempty"`
	OverdueNotifiedAt *time.Time `json:"overdue_notified_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Open reports whether the request still blocks a new one for the same room.
func (cr *CleaningRequest) Open() bool {
	return cr.Status == CleaningPending || cr.Status == CleaningInProgress
}

// CanTransition reports whether the request may move to the target status.
// DONE and REJECTED are terminal.
func (cr *CleaningRequest) CanTransition(target string) bool {
	switch cr.Status {
	case CleaningPending:
		return target == CleaningInProgress || target == CleaningRejected
	case CleaningInProgress:
		return target == CleaningDone || target == CleaningRejected
	}
	return false
}
