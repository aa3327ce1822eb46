package usecase

import (
	"encoding/json"
	"fmt"

	integrationdomain "timesheetpro-backend/internal/integration/domain"
	"timesheetpro-backend/internal/integration/repository"
	"timesheetpro-backend/pkg/crypto"
)

// SettingsStore wraps the config repository with encryption. Everything the
// rest of the system knows about integration settings goes through here, so
// plaintext credentials never touch the database.
type SettingsStore struct {
	configs repository.ConfigRepository
	key     string
}

func NewSettingsStore(configs repository.ConfigRepository, encryptionKey string) *SettingsStore {
	return &SettingsStore{
		configs: configs,
		key:     encryptionKey,
	}
}

// LoadEmail returns the decrypted email settings together with the config
// row. Missing row maps to ErrNotConfigured; undecryptable or malformed
// blobs map to ErrCorruptConfig.
func (s *SettingsStore) LoadEmail() (*integrationdomain.EmailSettings, *integrationdomain.IntegrationConfig, error) {
	cfg, raw, err := s.load(integrationdomain.IntegrationEmail)
	if err != nil {
		return nil, nil, err
	}

	var settings integrationdomain.EmailSettings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return nil, nil, integrationdomain.ErrCorruptConfig
	}
	if (settings.Direct == nil) == (settings.Token == nil) {
		return nil, nil, integrationdomain.ErrCorruptConfig
	}
	return &settings, cfg, nil
}

// LoadDrive is the drive counterpart of LoadEmail.
func (s *SettingsStore) LoadDrive() (*integrationdomain.DriveSettings, *integrationdomain.IntegrationConfig, error) {
	cfg, raw, err := s.load(integrationdomain.IntegrationDrive)
	if err != nil {
		return nil, nil, err
	}

	var settings integrationdomain.DriveSettings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return nil, nil, integrationdomain.ErrCorruptConfig
	}
	// FolderID may still be empty right after the OAuth callback; engines
	// treat that as "not fully configured" rather than corrupt.
	if settings.Token == nil {
		return nil, nil, integrationdomain.ErrCorruptConfig
	}
	return &settings, cfg, nil
}

func (s *SettingsStore) load(kind integrationdomain.IntegrationType) (*integrationdomain.IntegrationConfig, string, error) {
	cfg, err := s.configs.FindByType(kind)
	if err != nil {
		return nil, "", err
	}
	if cfg == nil {
		return nil, "", integrationdomain.ErrNotConfigured
	}

	raw, err := crypto.Decrypt(cfg.ConfigData, s.key)
	if err != nil {
		return nil, "", integrationdomain.ErrCorruptConfig
	}
	return cfg, raw, nil
}

// SaveEmail encrypts and persists email settings, creating or replacing the
// single email config row.
func (s *SettingsStore) SaveEmail(settings *integrationdomain.EmailSettings, intervalMinutes int) (*integrationdomain.IntegrationConfig, error) {
	return s.save(integrationdomain.IntegrationEmail, settings, intervalMinutes)
}

// SaveDrive encrypts and persists drive settings.
func (s *SettingsStore) SaveDrive(settings *integrationdomain.DriveSettings, intervalMinutes int) (*integrationdomain.IntegrationConfig, error) {
	return s.save(integrationdomain.IntegrationDrive, settings, intervalMinutes)
}

func (s *SettingsStore) save(kind integrationdomain.IntegrationType, settings interface{}, intervalMinutes int) (*integrationdomain.IntegrationConfig, error) {
	if intervalMinutes <= 0 {
		intervalMinutes = 10
	}

	raw, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to encode settings: %w", err)
	}
	blob, err := crypto.Encrypt(string(raw), s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt settings: %w", err)
	}

	cfg := &integrationdomain.IntegrationConfig{
		Type:                kind,
		ConfigData:          blob,
		SyncIntervalMinutes: intervalMinutes,
	}
	if err := s.configs.Upsert(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UpdateDriveWebhook rewrites only the webhook section of the drive blob.
// Pass nil to clear a stopped channel.
func (s *SettingsStore) UpdateDriveWebhook(webhook *integrationdomain.WebhookChannel) error {
	settings, cfg, err := s.LoadDrive()
	if err != nil {
		return err
	}

	settings.Webhook = webhook
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	blob, err := crypto.Encrypt(string(raw), s.key)
	if err != nil {
		return fmt.Errorf("failed to encrypt settings: %w", err)
	}
	return s.configs.UpdateConfigData(cfg.Type, blob)
}

// UpdateDriveToken persists refreshed OAuth tokens for the drive integration.
func (s *SettingsStore) UpdateDriveToken(token *integrationdomain.TokenCredentials) error {
	settings, cfg, err := s.LoadDrive()
	if err != nil {
		return err
	}

	settings.Token = token
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	blob, err := crypto.Encrypt(string(raw), s.key)
	if err != nil {
		return fmt.Errorf("failed to encrypt settings: %w", err)
	}
	return s.configs.UpdateConfigData(cfg.Type, blob)
}

// UpdateEmailToken persists refreshed OAuth tokens for the email integration.
func (s *SettingsStore) UpdateEmailToken(token *integrationdomain.TokenCredentials) error {
	settings, cfg, err := s.LoadEmail()
	if err != nil {
		return err
	}
	if settings.Token == nil {
		return integrationdomain.ErrCorruptConfig
	}

	settings.Token = token
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	blob, err := crypto.Encrypt(string(raw), s.key)
	if err != nil {
		return fmt.Errorf("failed to encrypt settings: %w", err)
	}
	return s.configs.UpdateConfigData(cfg.Type, blob)
}
