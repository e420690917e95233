package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/hostelhq/hostel-app/config"
	"github.com/hostelhq/hostel-app/database"
	"github.com/hostelhq/hostel-app/models"
	"github.com/hostelhq/hostel-app/router"
	"github.com/hostelhq/hostel-app/services"
	"github.com/hostelhq/hostel-app/utils"
)

func init() {
	// Load .env before anything reads the environment.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	utils.InitLogger()
}

func main() {
	cfg := config.Load()

	db, err := config.OpenDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("failed to connect to database: %v", err)
	}

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)

	if err := database.EnsureAdmin(db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		utils.ErrorLogger.Fatalf("failed to seed admin: %v", err)
	}

	if cfg.RedisAddr != "" {
		if err := utils.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
			utils.ErrorLogger.Printf("redis unavailable, using in-memory token blacklist: %v", err)
		}
		defer utils.CloseRedis()
	}

	utils.RegisterValidators()

	monitor := services.NewCleaningMonitor(db)
	monitor.Interval = time.Duration(cfg.CleaningMonitorIntervalSeconds) * time.Second
	monitor.Threshold = time.Duration(cfg.CleaningOverdueHours) * time.Hour
	monitor.Start()
	defer monitor.Stop()

	sweeperStop := utils.StartBlacklistSweeper(10 * time.Minute)
	defer close(sweeperStop)

	r := router.SetupRouter(db)

	r.SetTrustedProxies([]string{"127.0.0.1"})

	utils.InfoLogger.Printf("listening on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.UserRole{},
		&models.Hostel{},
		&models.Floor{},
		&models.Room{},
		&models.Student{},
		&models.Warden{},
		&models.CleaningRequest{},
		&models.Announcement{},
		&models.AuditLog{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed")

	if err := database.ApplyTriggers(db); err != nil {
		utils.ErrorLogger.Printf("error installing triggers: %v", err)
	}
}
