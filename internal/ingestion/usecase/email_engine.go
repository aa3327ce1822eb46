package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	ingestiondomain "timesheetpro-backend/internal/ingestion/domain"
	integrationdomain "timesheetpro-backend/internal/integration/domain"
	integrationrepo "timesheetpro-backend/internal/integration/repository"
	integrationusecase "timesheetpro-backend/internal/integration/usecase"
	uploaddomain "timesheetpro-backend/internal/upload/domain"
)

// EmailEngine scans a shared mailbox for timesheet attachments. The first
// run of a fresh configuration bootstraps its watermark to now minus the
// configured interval, so stale inbox history is never swept in.
type EmailEngine struct {
	settings  *integrationusecase.SettingsStore
	configs   integrationrepo.ConfigRepository
	pipeline  *Pipeline
	transport MailTransportFactory
	now       func() time.Time
}

func NewEmailEngine(settings *integrationusecase.SettingsStore, configs integrationrepo.ConfigRepository, pipeline *Pipeline, transport MailTransportFactory) *EmailEngine {
	return &EmailEngine{
		settings:  settings,
		configs:   configs,
		pipeline:  pipeline,
		transport: transport,
		now:       time.Now,
	}
}

func (e *EmailEngine) Kind() integrationdomain.IntegrationType {
	return integrationdomain.IntegrationEmail
}

func (e *EmailEngine) Run(ctx context.Context) *ingestiondomain.SyncResult {
	emailSettings, cfg, err := e.settings.LoadEmail()
	if err != nil {
		return failure("email", err)
	}
	if !cfg.IsActive {
		return &ingestiondomain.SyncResult{Success: false, Message: "email integration is disabled"}
	}

	now := e.now()
	since := now.Add(-time.Duration(cfg.SyncIntervalMinutes) * time.Minute)
	if cfg.LastSync != nil {
		since = *cfg.LastSync
	}

	transport := e.transport(emailSettings)
	if err := transport.Connect(ctx); err != nil {
		log.Printf("[EmailSync] Connection failed: %v", err)
		return &ingestiondomain.SyncResult{Success: false, Message: fmt.Sprintf("connection failed: %v", err)}
	}
	defer transport.Close()

	items, err := transport.Messages(ctx, since)
	if err != nil {
		log.Printf("[EmailSync] Message listing failed: %v", err)
		return &ingestiondomain.SyncResult{Success: false, Message: fmt.Sprintf("message listing failed: %v", err)}
	}

	processed := e.pipeline.process(ctx, uploaddomain.SourceEmail, "[EmailSync]", items, since)

	if err := e.configs.MarkSyncSuccess(integrationdomain.IntegrationEmail, processed, now); err != nil {
		log.Printf("[EmailSync] Failed to advance watermark: %v", err)
	}

	return &ingestiondomain.SyncResult{
		Success:   true,
		Message:   fmt.Sprintf("scanned %d messages, landed %d files", len(items), processed),
		Scanned:   len(items),
		Processed: processed,
	}
}

func failure(kind string, err error) *ingestiondomain.SyncResult {
	switch {
	case errors.Is(err, integrationdomain.ErrNotConfigured):
		return &ingestiondomain.SyncResult{Success: false, Message: kind + " integration is not configured"}
	case errors.Is(err, integrationdomain.ErrCorruptConfig):
		return &ingestiondomain.SyncResult{Success: false, Message: kind + " integration configuration is corrupt"}
	default:
		return &ingestiondomain.SyncResult{Success: false, Message: err.Error()}
	}
}
