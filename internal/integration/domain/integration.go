package domain

import (
	"errors"
	"time"

	uploaddomain "timesheetpro-backend/internal/upload/domain"
)

// IntegrationType identifies an ingestion source kind. At most one
// configuration row exists per kind.
type IntegrationType string

const (
	IntegrationEmail IntegrationType = "email"
	IntegrationDrive IntegrationType = "drive"
)

var (
	// ErrNotConfigured is returned when no configuration row exists for a kind.
	ErrNotConfigured = errors.New("integration is not configured")
	// ErrCorruptConfig is returned when a stored settings blob cannot be
	// decrypted or parsed.
	ErrCorruptConfig = errors.New("integration configuration is corrupt")
)

// IntegrationConfig is the persisted state of one ingestion source.
// ConfigData holds the encrypted settings JSON; LastSync is the watermark
// for incremental scans and SyncCount counts files landed across all runs.
type IntegrationConfig struct {
	ID                  string          `json:"id" gorm:"primaryKey"`
	Type                IntegrationType `json:"type" gorm:"uniqueIndex;not null"`
	ConfigData          string          `json:"-" gorm:"type:text;not null"`
	IsActive            bool            `json:"is_active" gorm:"default:false"`
	LastSync            *time.Time      `json:"last_sync,omitempty"`
	SyncCount           int64           `json:"sync_count" gorm:"default:0"`
	SyncIntervalMinutes int             `json:"sync_interval_minutes" gorm:"default:10"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// ProcessedFile is the dedup ledger. The unique index on (source,
// external_id) is the serialization point that makes replays idempotent.
type ProcessedFile struct {
	ID          string                    `json:"id" gorm:"primaryKey"`
	Source      uploaddomain.UploadSource `json:"source" gorm:"uniqueIndex:idx_processed_source_external;not null"`
	ExternalID  string                    `json:"external_id" gorm:"uniqueIndex:idx_processed_source_external;not null"`
	EmployeeID  string                    `json:"employee_id" gorm:"not null"`
	UploadID    *string                   `json:"upload_id,omitempty"`
	ProcessedAt time.Time                 `json:"processed_at"`
}

// DirectCredentials are plain IMAP credentials for the direct email transport.
type DirectCredentials struct {
	Server   string `json:"server"`
	Port     int    `json:"port"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenCredentials are OAuth tokens for the Google API transports.
type TokenCredentials struct {
	Email        string `json:"email,omitempty"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// EmailSettings is the decrypted email configuration. Exactly one of the
// two credential variants is set; the transport is chosen once at connect.
type EmailSettings struct {
	Direct *DirectCredentials `json:"direct,omitempty"`
	Token  *TokenCredentials  `json:"token,omitempty"`
}

// WebhookChannel records a registered Drive push channel so it can be
// stopped later. Stored inside the encrypted settings blob.
type WebhookChannel struct {
	ChannelID    string    `json:"channel_id"`
	ResourceID   string    `json:"resource_id"`
	Address      string    `json:"address"`
	Expiration   int64     `json:"expiration,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
}

// DriveSettings is the decrypted drive configuration.
type DriveSettings struct {
	FolderID string            `json:"folder_id"`
	Token    *TokenCredentials `json:"token"`
	Webhook  *WebhookChannel   `json:"webhook,omitempty"`
}
