package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/hostelhq/hostel-app/models"
	"github.com/hostelhq/hostel-app/realtime"
	"github.com/hostelhq/hostel-app/utils"
)

// CleaningMonitor flags cleaning requests that sit in PENDING past the
// threshold: it stamps OverdueNotifiedAt once and pushes an overdue event to
// the hostel's dashboards.
type CleaningMonitor struct {
	DB        *gorm.DB
	Interval  time.Duration
	Threshold time.Duration
	StopChan  chan struct{}
}

func NewCleaningMonitor(db *gorm.DB) *CleaningMonitor {
	return &CleaningMonitor{
		DB:        db,
		Interval:  time.Minute,
		Threshold: 24 * time.Hour,
		StopChan:  make(chan struct{}),
	}
}

func (cm *CleaningMonitor) Start() {
	go func() {
		ticker := time.NewTicker(cm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				cm.checkOverdue()
			case <-cm.StopChan:
				return
			}
		}
	}()
}

func (cm *CleaningMonitor) Stop() {
	close(cm.StopChan)
}

func (cm *CleaningMonitor) checkOverdue() {
	cutoff := time.Now().Add(-cm.Threshold)

	var requests []models.CleaningRequest
	if err := cm.DB.Preload("Room").
		Where("status = ? AND overdue_notified_at IS NULL AND created_at < ?", models.CleaningPending, cutoff).
		Order("created_at ASC").
		Limit(100).
		Find(&requests).Error; err != nil {
		utils.ErrorLogger.Printf("cleaning monitor: fetching overdue requests: %v", err)
		return
	}

	for _, req := range requests {
		now := time.Now()
		if err := cm.DB.Model(&models.CleaningRequest{}).
			Where("id = ? AND overdue_notified_at IS NULL", req.ID).
			Update("overdue_notified_at", now).Error; err != nil {
			utils.ErrorLogger.Printf("cleaning monitor: stamping request %d: %v", req.ID, err)
			continue
		}

		req.OverdueNotifiedAt = &now
		utils.InfoLogger.Printf("cleaning request %d for room %s is overdue (pending since %s)",
			req.ID, req.Room.Number, req.CreatedAt.Format(time.RFC3339))

		realtime.BroadcastToHostel(req.HostelID, realtime.EventCleaningOverdue, req)
	}
}
