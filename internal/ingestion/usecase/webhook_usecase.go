package usecase

import (
	"context"
	"errors"
	"log"
	"strings"

	integrationdomain "timesheetpro-backend/internal/integration/domain"
	integrationusecase "timesheetpro-backend/internal/integration/usecase"
	"timesheetpro-backend/pkg/drive"
)

// WebhookStatus is the admin view of the push channels.
type WebhookStatus struct {
	DriveWebhook *integrationdomain.WebhookChannel `json:"drive_webhook,omitempty"`
	EmailIdle    IdleState                         `json:"email_idle"`
}

// WebhookUsecase manages the Drive push channel and answers incoming
// notifications.
type WebhookUsecase interface {
	RegisterDrive(ctx context.Context) (*integrationdomain.WebhookChannel, error)
	StopDrive(ctx context.Context) error
	Status() (*WebhookStatus, error)
	HandleDriveNotification(channelID, resourceState string) bool
}

type webhookUsecase struct {
	settings    *integrationusecase.SettingsStore
	driveSvc    *drive.Service
	driveEngine Engine
	idle        *IdleMonitor
	baseURL     string
}

func NewWebhookUsecase(settings *integrationusecase.SettingsStore, driveSvc *drive.Service, driveEngine Engine, idle *IdleMonitor, baseURL string) WebhookUsecase {
	return &webhookUsecase{
		settings:    settings,
		driveSvc:    driveSvc,
		driveEngine: driveEngine,
		idle:        idle,
		baseURL:     baseURL,
	}
}

func (u *webhookUsecase) RegisterDrive(ctx context.Context) (*integrationdomain.WebhookChannel, error) {
	if u.baseURL == "" {
		return nil, errors.New("WEBHOOK_BASE_URL is not configured")
	}

	settings, _, err := u.settings.LoadDrive()
	if err != nil {
		return nil, err
	}
	if settings.FolderID == "" {
		return nil, errors.New("drive folder is not configured")
	}
	if settings.Webhook != nil {
		return nil, errors.New("a drive webhook is already registered")
	}

	address := strings.TrimRight(u.baseURL, "/") + "/api/webhooks/drive"
	channel, err := u.driveSvc.Watch(ctx, settings.Token, settings.FolderID, address, nil)
	if err != nil {
		return nil, err
	}

	if err := u.settings.UpdateDriveWebhook(channel); err != nil {
		// Best effort rollback; the channel would otherwise leak until expiry.
		if stopErr := u.driveSvc.StopChannel(ctx, settings.Token, channel.ChannelID, channel.ResourceID, nil); stopErr != nil {
			log.Printf("[DriveWebhook] Failed to stop orphaned channel %s: %v", channel.ChannelID, stopErr)
		}
		return nil, err
	}

	log.Printf("[DriveWebhook] Registered channel %s for folder %s", channel.ChannelID, settings.FolderID)
	return channel, nil
}

func (u *webhookUsecase) StopDrive(ctx context.Context) error {
	settings, _, err := u.settings.LoadDrive()
	if err != nil {
		return err
	}
	if settings.Webhook == nil {
		return errors.New("no drive webhook is registered")
	}

	if err := u.driveSvc.StopChannel(ctx, settings.Token, settings.Webhook.ChannelID, settings.Webhook.ResourceID, nil); err != nil {
		// Expired channels fail to stop; clear the record anyway.
		log.Printf("[DriveWebhook] Stop failed for channel %s: %v", settings.Webhook.ChannelID, err)
	}

	if err := u.settings.UpdateDriveWebhook(nil); err != nil {
		return err
	}

	log.Printf("[DriveWebhook] Stopped channel %s", settings.Webhook.ChannelID)
	return nil
}

func (u *webhookUsecase) Status() (*WebhookStatus, error) {
	status := &WebhookStatus{EmailIdle: u.idle.State()}

	settings, _, err := u.settings.LoadDrive()
	if err != nil {
		if errors.Is(err, integrationdomain.ErrNotConfigured) || errors.Is(err, integrationdomain.ErrCorruptConfig) {
			return status, nil
		}
		return nil, err
	}

	status.DriveWebhook = settings.Webhook
	return status, nil
}

// HandleDriveNotification answers one push callback. Drive sends a "sync"
// message when the channel is created; anything else means the folder
// changed and a scan is triggered in the background. Returns whether a
// scan was started.
func (u *webhookUsecase) HandleDriveNotification(channelID, resourceState string) bool {
	if resourceState == "sync" {
		log.Printf("[DriveWebhook] Channel %s confirmed", channelID)
		return false
	}

	settings, _, err := u.settings.LoadDrive()
	if err != nil {
		log.Printf("[DriveWebhook] Dropping notification, settings unavailable: %v", err)
		return false
	}
	if settings.Webhook == nil || settings.Webhook.ChannelID != channelID {
		log.Printf("[DriveWebhook] Dropping notification from unknown channel %s", channelID)
		return false
	}

	log.Printf("[DriveWebhook] Change notification on channel %s, triggering scan", channelID)
	go func() {
		result := u.driveEngine.Run(context.Background())
		if !result.Success {
			log.Printf("[DriveWebhook] Triggered scan failed: %s", result.Message)
		}
	}()
	return true
}
