package api

import (
	"net/http"

	"timesheetpro-backend/internal/auth/delivery"
	employeedomain "timesheetpro-backend/internal/employee/domain"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *Handler) {
	authRequired := delivery.AuthMiddleware(h.authUsecase)
	adminOnly := delivery.RequireRole(employeedomain.RoleAdmin)
	staffOnly := delivery.RequireRole(employeedomain.RoleAdmin, employeedomain.RoleManager)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", h.authHandler.Login)
			auth.POST("/refresh", h.authHandler.RefreshToken)
			auth.POST("/logout", h.authHandler.Logout)
			auth.GET("/me", authRequired, h.authHandler.Me)
			auth.POST("/change-password", authRequired, h.authHandler.ChangePassword)
		}

		// FCM routes (protected)
		fcm := api.Group("/fcm")
		fcm.Use(authRequired)
		{
			fcm.POST("/register", h.authHandler.RegisterFCMToken)
			fcm.DELETE("/:token", h.authHandler.UnregisterFCMToken)
		}

		// Employee directory (reads for everyone signed in, writes for admins)
		employees := api.Group("/employees")
		employees.Use(authRequired)
		{
			employees.GET("", h.employeeHandler.ListEmployees)
			employees.GET("/:id", h.employeeHandler.GetEmployee)
			employees.POST("", adminOnly, h.employeeHandler.CreateEmployee)
			employees.PUT("/:id", adminOnly, h.employeeHandler.UpdateEmployee)
			employees.DELETE("/:id", adminOnly, h.employeeHandler.DeactivateEmployee)
		}

		clients := api.Group("/clients")
		clients.Use(authRequired)
		{
			clients.GET("", h.employeeHandler.ListClients)
			clients.POST("", adminOnly, h.employeeHandler.CreateClient)
			clients.PUT("/:id", adminOnly, h.employeeHandler.UpdateClient)
			clients.DELETE("/:id", adminOnly, h.employeeHandler.DeactivateClient)
		}

		calendars := api.Group("/calendars")
		calendars.Use(authRequired)
		{
			calendars.GET("", h.employeeHandler.ListCalendars)
			calendars.GET("/:id", h.employeeHandler.GetCalendar)
			calendars.POST("", staffOnly, h.employeeHandler.CreateCalendar)
			calendars.DELETE("/:id", staffOnly, h.employeeHandler.DeleteCalendar)
			calendars.POST("/:id/holidays", staffOnly, h.employeeHandler.AddHoliday)
			calendars.DELETE("/:id/holidays/:holidayId", staffOnly, h.employeeHandler.RemoveHoliday)
		}

		// Timesheet workflow (protected)
		timesheets := api.Group("/timesheets")
		timesheets.Use(authRequired)
		{
			timesheets.GET("", h.timesheetHandler.List)
			timesheets.POST("", h.timesheetHandler.Create)
			timesheets.GET("/:id", h.timesheetHandler.Get)
			timesheets.PUT("/:id", h.timesheetHandler.Update)
			timesheets.DELETE("/:id", h.timesheetHandler.Delete)
			timesheets.POST("/:id/submit", h.timesheetHandler.Submit)
			timesheets.POST("/:id/approve", staffOnly, h.timesheetHandler.Approve)
			timesheets.POST("/:id/reject", staffOnly, h.timesheetHandler.Reject)
			timesheets.GET("/:id/approvals", h.timesheetHandler.Approvals)
		}

		// Notification feed (protected)
		api.GET("/notifications", authRequired, h.notificationHandler.Feed)

		// Uploads (protected)
		uploads := api.Group("/uploads")
		uploads.Use(authRequired)
		{
			uploads.POST("", h.uploadHandler.Upload)
			uploads.GET("", h.uploadHandler.List)
			uploads.GET("/stats", staffOnly, h.uploadHandler.Stats)
			uploads.GET("/:id", h.uploadHandler.Get)
			uploads.DELETE("/:id", adminOnly, h.uploadHandler.Delete)
		}

		// Integration administration (admin only except the OAuth callback,
		// which Google redirects the browser to)
		api.GET("/integrations/oauth/callback", h.integrationHandler.OAuthCallback)
		integrations := api.Group("/integrations")
		integrations.Use(authRequired, adminOnly)
		{
			integrations.GET("/status", h.integrationHandler.Status)
			integrations.POST("/email", h.integrationHandler.ConfigureEmail)
			integrations.POST("/drive", h.integrationHandler.ConfigureDrive)
			integrations.GET("/oauth/url", h.integrationHandler.OAuthURL)
			integrations.POST("/:type/toggle", h.integrationHandler.Toggle)
			integrations.POST("/:type/test", h.integrationHandler.Test)
			integrations.DELETE("/:type", h.integrationHandler.Disconnect)
		}

		// Ingestion monitoring (admin only)
		monitoring := api.Group("/monitoring")
		monitoring.Use(authRequired, adminOnly)
		{
			monitoring.GET("/scheduler", h.monitoringHandler.SchedulerStatus)
			monitoring.POST("/sync/:type", h.monitoringHandler.RunNow)
			monitoring.GET("/processed-files", h.monitoringHandler.RecentProcessed)
		}

		// Webhooks: the drive receiver is unauthenticated (Google calls it),
		// channel management is admin only
		api.POST("/webhooks/drive", h.webhookHandler.DriveNotification)
		webhooks := api.Group("/webhooks")
		webhooks.Use(authRequired, adminOnly)
		{
			webhooks.GET("/status", h.webhookHandler.Status)
			webhooks.POST("/drive/register", h.webhookHandler.RegisterDrive)
			webhooks.DELETE("/drive/channel", h.webhookHandler.StopDrive)
			webhooks.POST("/idle/start", h.webhookHandler.StartIdle)
			webhooks.POST("/idle/stop", h.webhookHandler.StopIdle)
		}
	}
}
