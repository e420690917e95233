package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hostelhq/hostel-app/controllers"
	"github.com/hostelhq/hostel-app/middlewares"
	"github.com/hostelhq/hostel-app/models"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middlewares.RequestID())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware())

	// Coarse guard against floods; login gets a stricter one below.
	limiter := middlewares.NewRateLimiter(100, 60)
	r.Use(limiter.RateLimit())

	authCtrl := controllers.NewAuthController(db)
	meCtrl := controllers.NewMeController(db)
	hostelCtrl := controllers.NewHostelController(db)
	floorCtrl := controllers.NewFloorController(db)
	roomCtrl := controllers.NewRoomController(db)
	studentCtrl := controllers.NewStudentController(db)
	cleaningCtrl := controllers.NewCleaningRequestController(db)
	announcementCtrl := controllers.NewAnnouncementController(db)
	adminCtrl := controllers.NewAdminController(db)
	auditCtrl := controllers.NewAuditController(db)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	auth := api.Group("/auth")
	auth.Use(middlewares.NewStrictRateLimiter())
	{
		auth.POST("/register", authCtrl.Register)
		auth.POST("/login", authCtrl.Login)
		auth.POST("/logout", middlewares.AuthMiddleware(), authCtrl.Logout)
	}

	// ----------------------------------------------------------------
	//                      SELF-SERVICE ROUTES
	// ----------------------------------------------------------------
	me := api.Group("/me")
	me.Use(middlewares.AuthMiddleware())
	{
		me.GET("", meCtrl.GetProfile)
		me.PATCH("/password", meCtrl.ChangePassword)
		me.GET("/announcements", meCtrl.MyAnnouncements)
		me.GET("/cleaning-requests", meCtrl.MyCleaningRequests)
	}

	// ----------------------------------------------------------------
	//                      ADMIN ROUTES (platform-wide)
	// ----------------------------------------------------------------
	admin := api.Group("/admin")
	admin.Use(middlewares.AuthMiddleware(), middlewares.RequireAdmin(db))
	{
		admin.GET("/hostels", hostelCtrl.GetAllHostels)
		admin.POST("/hostels", hostelCtrl.CreateHostel)
		admin.GET("/hostels/:hostel_id", hostelCtrl.GetHostelByID)
		admin.PATCH("/hostels/:hostel_id", hostelCtrl.UpdateHostel)
		admin.DELETE("/hostels/:hostel_id", hostelCtrl.DeleteHostel)

		admin.GET("/hostels/:hostel_id/wardens", adminCtrl.ListWardens)
		admin.POST("/hostels/:hostel_id/wardens", adminCtrl.CreateWarden)

		admin.GET("/users", adminCtrl.FindUsers)
		admin.GET("/user-roles", adminCtrl.ListUserRoles)
		admin.POST("/user-roles", adminCtrl.AssignRole)
		admin.DELETE("/user-roles/:binding_id", adminCtrl.RevokeRole)

		admin.POST("/announcements", announcementCtrl.CreateGlobalAnnouncement)
		admin.GET("/audit-logs", auditCtrl.ListAuditLogs)
		admin.GET("/stats", adminCtrl.GetAdminStats)
	}

	// ----------------------------------------------------------------
	//                      TENANT ROUTES (hostel-scoped)
	// ----------------------------------------------------------------
	hostels := api.Group("/hostels/:hostel_id")
	hostels.Use(middlewares.AuthMiddleware(), middlewares.TenantScope(db))
	{
		hostels.GET("", hostelCtrl.GetHostel)
		hostels.GET("/stats", middlewares.RequireRoles(models.RoleWarden), hostelCtrl.GetHostelStats)
		hostels.GET("/wardens", adminCtrl.ListWardens)

		// FLOORS
		hostels.GET("/floors", floorCtrl.ListFloors)
		hostels.POST("/floors", middlewares.RequireRoles(models.RoleWarden), floorCtrl.CreateFloor)
		hostels.PATCH("/floors/:floor_id", middlewares.RequireRoles(models.RoleWarden), floorCtrl.UpdateFloor)
		hostels.DELETE("/floors/:floor_id", middlewares.RequireRoles(models.RoleWarden), floorCtrl.DeleteFloor)

		// ROOMS
		hostels.GET("/rooms", roomCtrl.ListRooms)
		hostels.POST("/rooms", middlewares.RequireRoles(models.RoleWarden), roomCtrl.CreateRoom)
		hostels.GET("/rooms/:room_id", roomCtrl.GetRoomByID)
		hostels.PATCH("/rooms/:room_id", middlewares.RequireRoles(models.RoleWarden), roomCtrl.UpdateRoom)
		hostels.DELETE("/rooms/:room_id", middlewares.RequireRoles(models.RoleWarden), roomCtrl.DeleteRoom)

		// STUDENTS
		hostels.GET("/students", middlewares.RequireRoles(models.RoleWarden, models.RoleCleaner), studentCtrl.ListStudents)
		hostels.POST("/students", middlewares.RequireRoles(models.RoleWarden), studentCtrl.CreateStudent)
		hostels.GET("/students/:student_id", middlewares.RequireRoles(models.RoleWarden, models.RoleCleaner), studentCtrl.GetStudentByID)
		hostels.PATCH("/students/:student_id", middlewares.RequireRoles(models.RoleWarden), studentCtrl.UpdateStudent)
		hostels.DELETE("/students/:student_id", middlewares.RequireRoles(models.RoleWarden), studentCtrl.DeleteStudent)
		hostels.POST("/students/:student_id/allocate", middlewares.RequireRoles(models.RoleWarden), studentCtrl.AllocateStudent)
		hostels.POST("/students/:student_id/checkout", middlewares.RequireRoles(models.RoleWarden), studentCtrl.CheckoutStudent)

		// CLEANING REQUESTS
		hostels.GET("/cleaning-requests", cleaningCtrl.ListCleaningRequests)
		hostels.POST("/cleaning-requests", cleaningCtrl.CreateCleaningRequest)
		hostels.GET("/cleaning-requests/:request_id", cleaningCtrl.GetCleaningRequestByID)
		hostels.POST("/cleaning-requests/:request_id/start", middlewares.RequireRoles(models.RoleWarden, models.RoleCleaner), cleaningCtrl.StartCleaningRequest)
		hostels.POST("/cleaning-requests/:request_id/done", middlewares.RequireRoles(models.RoleWarden, models.RoleCleaner), cleaningCtrl.CompleteCleaningRequest)
		hostels.POST("/cleaning-requests/:request_id/reject", middlewares.RequireRoles(models.RoleWarden), cleaningCtrl.RejectCleaningRequest)

		// ANNOUNCEMENTS
		hostels.GET("/announcements", announcementCtrl.ListAnnouncements)
		hostels.POST("/announcements", middlewares.RequireRoles(models.RoleWarden), announcementCtrl.CreateAnnouncement)
		hostels.DELETE("/announcements/:announcement_id", middlewares.RequireRoles(models.RoleWarden), announcementCtrl.DeleteAnnouncement)

		// AUDIT TRAIL
		hostels.GET("/audit-logs", middlewares.RequireRoles(models.RoleWarden), auditCtrl.ListHostelAuditLogs)

		// Realtime event stream
		hostels.GET("/events/ws", controllers.EventsHandler)
	}

	return r
}
