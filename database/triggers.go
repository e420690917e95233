package database

import (
	"os"
	"strings"

	"gorm.io/gorm"

	"github.com/hostelhq/hostel-app/utils"
)

// ApplyTriggers installs the MySQL guard triggers from
// database/migrations/triggers.sql. The file uses DELIMITER // blocks, so
// it is split here instead of being piped to the server as one script.
// SQLite runs without triggers; the handlers enforce the same rules.
func ApplyTriggers(db *gorm.DB) error {
	if db.Dialector.Name() != "mysql" {
		utils.InfoLogger.Printf("skipping triggers for driver %s", db.Dialector.Name())
		return nil
	}

	triggerSQL, err := os.ReadFile("database/migrations/triggers.sql")
	if err != nil {
		return err
	}

	for _, block := range strings.Split(string(triggerSQL), "DELIMITER") {
		if strings.TrimSpace(block) == "" {
			continue
		}

		for _, stmt := range strings.Split(block, "//") {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" || stmt == ";" {
				continue
			}

			if err := db.Exec(stmt).Error; err != nil {
				utils.ErrorLogger.Printf("trigger statement failed: %v\n%s", err, stmt)
				continue
			}
		}
	}

	var triggers []struct {
		Trigger string
		Event   string
		Table   string
		Timing  string
	}

	db.Raw(`
        SELECT
            TRIGGER_NAME as trigger_name,
            EVENT_MANIPULATION as event_type,
            EVENT_OBJECT_TABLE as table_name,
            ACTION_TIMING as timing
        FROM information_schema.triggers
        WHERE TRIGGER_SCHEMA = DATABASE()
    `).Scan(&triggers)

	for _, t := range triggers {
		utils.InfoLogger.Printf("trigger active: %s (%s %s on %s)",
			t.Trigger, t.Timing, t.Event, t.Table)
	}

	return nil
}
