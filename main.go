package main

import (
	"context"
	"log"
	"strings"

	api "timesheetpro-backend/cmd/api"
	authdomain "timesheetpro-backend/internal/auth/domain"
	authRepo "timesheetpro-backend/internal/auth/repository"
	authUsecasePkg "timesheetpro-backend/internal/auth/usecase"
	employeedomain "timesheetpro-backend/internal/employee/domain"
	employeeRepo "timesheetpro-backend/internal/employee/repository"
	employeeUsecasePkg "timesheetpro-backend/internal/employee/usecase"
	ingestionScheduler "timesheetpro-backend/internal/ingestion/scheduler"
	ingestionUsecasePkg "timesheetpro-backend/internal/ingestion/usecase"
	integrationdomain "timesheetpro-backend/internal/integration/domain"
	integrationRepo "timesheetpro-backend/internal/integration/repository"
	integrationUsecasePkg "timesheetpro-backend/internal/integration/usecase"
	"timesheetpro-backend/internal/notification"
	timesheetdomain "timesheetpro-backend/internal/timesheet/domain"
	timesheetRepo "timesheetpro-backend/internal/timesheet/repository"
	timesheetUsecasePkg "timesheetpro-backend/internal/timesheet/usecase"
	uploaddomain "timesheetpro-backend/internal/upload/domain"
	uploadRepo "timesheetpro-backend/internal/upload/repository"
	uploadUsecasePkg "timesheetpro-backend/internal/upload/usecase"
	"timesheetpro-backend/pkg/config"
	"timesheetpro-backend/pkg/database"
	"timesheetpro-backend/pkg/drive"
	"timesheetpro-backend/pkg/fcm"
	"timesheetpro-backend/pkg/gmail"
	"timesheetpro-backend/pkg/imapmail"
	"timesheetpro-backend/pkg/storage"

	"golang.org/x/oauth2"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&employeedomain.Employee{},
		&employeedomain.Client{},
		&employeedomain.Calendar{},
		&employeedomain.Holiday{},
		&authdomain.RefreshToken{},
		&authdomain.FCMToken{},
		&integrationdomain.IntegrationConfig{},
		&integrationdomain.ProcessedFile{},
		&uploaddomain.TimesheetUpload{},
		&timesheetdomain.Timesheet{},
		&timesheetdomain.Approval{},
		&notification.Notification{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	employeeRepository := employeeRepo.NewEmployeeRepository(db)
	clientRepository := employeeRepo.NewClientRepository(db)
	calendarRepository := employeeRepo.NewCalendarRepository(db)
	tokenRepository := authRepo.NewTokenRepository(db)
	fcmTokenRepository := authRepo.NewFCMTokenRepository(db)
	configRepository := integrationRepo.NewConfigRepository(db)
	ledgerRepository := integrationRepo.NewProcessedFileRepository(db)
	uploadRepository := uploadRepo.NewUploadRepository(db)
	timesheetRepository := timesheetRepo.NewTimesheetRepository(db)

	// File landing area
	store := storage.NewStore(cfg.UploadDir)

	// Encrypted integration settings
	settingsStore := integrationUsecasePkg.NewSettingsStore(configRepository, cfg.EncryptionKey)

	// Google API services
	gmailService := gmail.NewService(cfg.GoogleClientID, cfg.GoogleClientSecret)
	driveService := drive.NewService(cfg.GoogleClientID, cfg.GoogleClientSecret)

	// Refreshed OAuth tokens go straight back into the encrypted blob.
	emailTokenRefresh := func(token *oauth2.Token) error {
		return settingsStore.UpdateEmailToken(&integrationdomain.TokenCredentials{
			AccessToken:  token.AccessToken,
			RefreshToken: token.RefreshToken,
		})
	}
	driveTokenRefresh := func(token *oauth2.Token) error {
		return settingsStore.UpdateDriveToken(&integrationdomain.TokenCredentials{
			AccessToken:  token.AccessToken,
			RefreshToken: token.RefreshToken,
		})
	}

	// Ingestion pipeline and engines
	pipeline := ingestionUsecasePkg.NewPipeline(employeeRepository, uploadRepository, ledgerRepository, store)

	mailFactory := func(settings *integrationdomain.EmailSettings) ingestionUsecasePkg.MailTransport {
		if settings.Direct != nil {
			return imapmail.NewTransport(settings.Direct)
		}
		return gmail.NewTransport(gmailService, settings.Token, emailTokenRefresh)
	}
	driveFactory := func(settings *integrationdomain.DriveSettings) ingestionUsecasePkg.DriveTransport {
		return drive.NewTransport(driveService, settings.Token, driveTokenRefresh)
	}

	emailEngine := ingestionUsecasePkg.NewEmailEngine(settingsStore, configRepository, pipeline, mailFactory)
	driveEngine := ingestionUsecasePkg.NewDriveEngine(settingsStore, configRepository, pipeline, driveFactory)

	// Push notifications (optional)
	var fcmClient *fcm.Client
	if cfg.FirebaseCredentials != "" {
		fcmClient, err = fcm.NewClient(cfg.FirebaseCredentials)
		if err != nil {
			log.Printf("[WARN] Failed to initialize FCM client (push notifications disabled): %v", err)
		}
	}
	notificationService := notification.NewService(db, employeeRepository, fcmTokenRepository, fcmClient)
	pipeline.SetNotifier(notificationService)

	// Scheduler drives periodic scans
	sched := ingestionScheduler.NewScheduler(configRepository, []ingestionUsecasePkg.Engine{emailEngine, driveEngine}, cfg.SchedulerTick)
	sched.Start()
	defer sched.Stop()

	// IMAP IDLE monitor is started on demand through the API
	idleMonitor := ingestionUsecasePkg.NewIdleMonitor(settingsStore, emailEngine)

	// Drive push channel management
	webhookUsecase := ingestionUsecasePkg.NewWebhookUsecase(settingsStore, driveService, driveEngine, idleMonitor, cfg.WebhookBaseURL)

	// Gmail Pub/Sub push (optional, needs a GCP project and topic)
	if cfg.GoogleProjectID != "" && cfg.GooglePubSubTopic != "" {
		topicName := cfg.GooglePubSubTopic
		if parts := strings.Split(topicName, "/"); len(parts) > 1 {
			topicName = parts[len(parts)-1]
		}

		listener, err := ingestionUsecasePkg.NewPubSubListener(cfg.GoogleProjectID, topicName, cfg.GoogleCredentials, emailEngine)
		if err != nil {
			log.Printf("[WARN] Failed to initialize Pub/Sub listener: %v", err)
		} else {
			go listener.Start(context.Background())
		}
	}

	// Initialize use cases (dependency injection)
	authUsecase := authUsecasePkg.NewAuthUsecase(employeeRepository, tokenRepository, fcmTokenRepository, cfg)
	employeeUsecase := employeeUsecasePkg.NewEmployeeUsecase(employeeRepository, clientRepository, calendarRepository)
	timesheetUsecase := timesheetUsecasePkg.NewTimesheetUsecase(timesheetRepository)
	uploadUsecase := uploadUsecasePkg.NewUploadUsecase(uploadRepository, employeeRepository, store)
	tester := integrationUsecasePkg.NewConnectionTester(gmailService, driveService)
	integrationUsecase := integrationUsecasePkg.NewIntegrationUsecase(settingsStore, configRepository, ledgerRepository, tester, cfg)

	// Initialize HTTP handler
	handler := api.NewHandler(api.Deps{
		Config:             cfg,
		AuthUsecase:        authUsecase,
		EmployeeUsecase:    employeeUsecase,
		TimesheetUsecase:   timesheetUsecase,
		UploadUsecase:      uploadUsecase,
		IntegrationUsecase: integrationUsecase,
		WebhookUsecase:     webhookUsecase,
		IdleMonitor:        idleMonitor,
		Scheduler:          sched,
		Ledger:             ledgerRepository,
		Notifications:      notificationService,
	})

	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
