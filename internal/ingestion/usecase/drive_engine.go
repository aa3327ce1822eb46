package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	ingestiondomain "timesheetpro-backend/internal/ingestion/domain"
	integrationdomain "timesheetpro-backend/internal/integration/domain"
	integrationrepo "timesheetpro-backend/internal/integration/repository"
	integrationusecase "timesheetpro-backend/internal/integration/usecase"
	uploaddomain "timesheetpro-backend/internal/upload/domain"
)

// DriveEngine scans one shared Drive folder. Unlike email there is no
// server-side "since" filter worth trusting, so every run lists the folder
// and leans on the dedup ledger to make that cheap.
type DriveEngine struct {
	settings  *integrationusecase.SettingsStore
	configs   integrationrepo.ConfigRepository
	pipeline  *Pipeline
	transport DriveTransportFactory
	now       func() time.Time
}

func NewDriveEngine(settings *integrationusecase.SettingsStore, configs integrationrepo.ConfigRepository, pipeline *Pipeline, transport DriveTransportFactory) *DriveEngine {
	return &DriveEngine{
		settings:  settings,
		configs:   configs,
		pipeline:  pipeline,
		transport: transport,
		now:       time.Now,
	}
}

func (e *DriveEngine) Kind() integrationdomain.IntegrationType {
	return integrationdomain.IntegrationDrive
}

func (e *DriveEngine) Run(ctx context.Context) *ingestiondomain.SyncResult {
	driveSettings, cfg, err := e.settings.LoadDrive()
	if err != nil {
		return failure("drive", err)
	}
	if !cfg.IsActive {
		return &ingestiondomain.SyncResult{Success: false, Message: "drive integration is disabled"}
	}
	if driveSettings.FolderID == "" {
		return &ingestiondomain.SyncResult{Success: false, Message: "drive folder is not configured"}
	}

	now := e.now()

	transport := e.transport(driveSettings)
	if err := transport.Connect(ctx); err != nil {
		log.Printf("[DriveSync] Connection failed: %v", err)
		return &ingestiondomain.SyncResult{Success: false, Message: fmt.Sprintf("connection failed: %v", err)}
	}
	defer transport.Close()

	items, err := transport.ListFolder(ctx, driveSettings.FolderID)
	if err != nil {
		log.Printf("[DriveSync] Folder listing failed: %v", err)
		return &ingestiondomain.SyncResult{Success: false, Message: fmt.Sprintf("folder listing failed: %v", err)}
	}

	processed := e.pipeline.process(ctx, uploaddomain.SourceDrive, "[DriveSync]", items, time.Time{})

	if err := e.configs.MarkSyncSuccess(integrationdomain.IntegrationDrive, processed, now); err != nil {
		log.Printf("[DriveSync] Failed to advance watermark: %v", err)
	}

	return &ingestiondomain.SyncResult{
		Success:   true,
		Message:   fmt.Sprintf("scanned %d files, landed %d", len(items), processed),
		Scanned:   len(items),
		Processed: processed,
	}
}
