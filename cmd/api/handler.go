package api

import (
	authDelivery "timesheetpro-backend/internal/auth/delivery"
	authUsecasePkg "timesheetpro-backend/internal/auth/usecase"
	employeeDelivery "timesheetpro-backend/internal/employee/delivery"
	employeeUsecasePkg "timesheetpro-backend/internal/employee/usecase"
	ingestionDelivery "timesheetpro-backend/internal/ingestion/delivery"
	"timesheetpro-backend/internal/ingestion/scheduler"
	ingestionUsecasePkg "timesheetpro-backend/internal/ingestion/usecase"
	integrationDelivery "timesheetpro-backend/internal/integration/delivery"
	integrationRepo "timesheetpro-backend/internal/integration/repository"
	integrationUsecasePkg "timesheetpro-backend/internal/integration/usecase"
	"timesheetpro-backend/internal/notification"
	timesheetDelivery "timesheetpro-backend/internal/timesheet/delivery"
	timesheetUsecasePkg "timesheetpro-backend/internal/timesheet/usecase"
	uploadDelivery "timesheetpro-backend/internal/upload/delivery"
	uploadUsecasePkg "timesheetpro-backend/internal/upload/usecase"
	"timesheetpro-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	authUsecase         authUsecasePkg.AuthUsecase
	config              *config.Config
	authHandler         *authDelivery.AuthHandler
	employeeHandler     *employeeDelivery.EmployeeHandler
	timesheetHandler    *timesheetDelivery.TimesheetHandler
	uploadHandler       *uploadDelivery.UploadHandler
	integrationHandler  *integrationDelivery.IntegrationHandler
	monitoringHandler   *ingestionDelivery.MonitoringHandler
	webhookHandler      *ingestionDelivery.WebhookHandler
	notificationHandler *notification.Handler
}

// Deps carries everything the HTTP layer needs. Wiring happens in main;
// this just fans the pieces out to the per-module handlers.
type Deps struct {
	Config             *config.Config
	AuthUsecase        authUsecasePkg.AuthUsecase
	EmployeeUsecase    employeeUsecasePkg.EmployeeUsecase
	TimesheetUsecase   timesheetUsecasePkg.TimesheetUsecase
	UploadUsecase      uploadUsecasePkg.UploadUsecase
	IntegrationUsecase integrationUsecasePkg.IntegrationUsecase
	WebhookUsecase     ingestionUsecasePkg.WebhookUsecase
	IdleMonitor        *ingestionUsecasePkg.IdleMonitor
	Scheduler          *scheduler.Scheduler
	Ledger             integrationRepo.ProcessedFileRepository
	Notifications      *notification.Service
}

func NewHandler(deps Deps) *Handler {
	return &Handler{
		authUsecase:         deps.AuthUsecase,
		config:              deps.Config,
		authHandler:         authDelivery.NewAuthHandler(deps.AuthUsecase),
		employeeHandler:     employeeDelivery.NewEmployeeHandler(deps.EmployeeUsecase),
		timesheetHandler:    timesheetDelivery.NewTimesheetHandler(deps.TimesheetUsecase),
		uploadHandler:       uploadDelivery.NewUploadHandler(deps.UploadUsecase),
		integrationHandler:  integrationDelivery.NewIntegrationHandler(deps.IntegrationUsecase),
		monitoringHandler:   ingestionDelivery.NewMonitoringHandler(deps.Scheduler, deps.Ledger),
		webhookHandler:      ingestionDelivery.NewWebhookHandler(deps.WebhookUsecase, deps.IdleMonitor),
		notificationHandler: notification.NewHandler(deps.Notifications),
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h)

	return r.Run(addr)
}
