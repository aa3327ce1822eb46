package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	integrationdomain "timesheetpro-backend/internal/integration/domain"
	integrationdto "timesheetpro-backend/internal/integration/dto"
	"timesheetpro-backend/internal/integration/repository"
	uploaddomain "timesheetpro-backend/internal/upload/domain"
	"timesheetpro-backend/pkg/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	gmailScope = "https://www.googleapis.com/auth/gmail.readonly"
	driveScope = "https://www.googleapis.com/auth/drive.readonly"
)

// integrationUsecase implements IntegrationUsecase
type integrationUsecase struct {
	settings *SettingsStore
	configs  repository.ConfigRepository
	ledger   repository.ProcessedFileRepository
	tester   ConnectionTester
	config   *config.Config
}

// NewIntegrationUsecase creates a new instance of integrationUsecase
func NewIntegrationUsecase(settings *SettingsStore, configs repository.ConfigRepository, ledger repository.ProcessedFileRepository, tester ConnectionTester, cfg *config.Config) IntegrationUsecase {
	return &integrationUsecase{
		settings: settings,
		configs:  configs,
		ledger:   ledger,
		tester:   tester,
		config:   cfg,
	}
}

func (u *integrationUsecase) ConfigureEmail(req *integrationdto.EmailConfigRequest) (*integrationdomain.IntegrationConfig, error) {
	if err := validateInterval(req.SyncIntervalMinutes); err != nil {
		return nil, err
	}

	if req.Server == "" || req.Email == "" || req.Password == "" {
		// No direct credentials: keep an existing OAuth connection and only
		// adjust the interval.
		settings, _, err := u.settings.LoadEmail()
		if err != nil {
			if errors.Is(err, integrationdomain.ErrNotConfigured) {
				return nil, errors.New("imap server, email and password are required")
			}
			return nil, err
		}
		return u.settings.SaveEmail(settings, req.SyncIntervalMinutes)
	}

	port := req.Port
	if port == 0 {
		port = 993
	}

	return u.settings.SaveEmail(&integrationdomain.EmailSettings{
		Direct: &integrationdomain.DirectCredentials{
			Server:   req.Server,
			Port:     port,
			Email:    strings.ToLower(req.Email),
			Password: req.Password,
		},
	}, req.SyncIntervalMinutes)
}

func (u *integrationUsecase) ConfigureDrive(req *integrationdto.DriveConfigRequest) (*integrationdomain.IntegrationConfig, error) {
	if err := validateInterval(req.SyncIntervalMinutes); err != nil {
		return nil, err
	}

	settings, _, err := u.settings.LoadDrive()
	if err != nil {
		if errors.Is(err, integrationdomain.ErrNotConfigured) {
			return nil, errors.New("connect a google account before configuring drive")
		}
		return nil, err
	}

	settings.FolderID = req.FolderID
	return u.settings.SaveDrive(settings, req.SyncIntervalMinutes)
}

func (u *integrationUsecase) Status() ([]integrationdto.IntegrationStatus, error) {
	kinds := []struct {
		kind   integrationdomain.IntegrationType
		source uploaddomain.UploadSource
	}{
		{integrationdomain.IntegrationEmail, uploaddomain.SourceEmail},
		{integrationdomain.IntegrationDrive, uploaddomain.SourceDrive},
	}

	statuses := make([]integrationdto.IntegrationStatus, 0, len(kinds))
	for _, k := range kinds {
		status := integrationdto.IntegrationStatus{Type: string(k.kind)}

		cfg, err := u.configs.FindByType(k.kind)
		if err != nil {
			return nil, err
		}
		if cfg != nil {
			status.Configured = true
			status.IsActive = cfg.IsActive
			status.LastSync = cfg.LastSync
			status.SyncCount = cfg.SyncCount
			status.SyncIntervalMinutes = cfg.SyncIntervalMinutes
		}

		count, err := u.ledger.CountBySource(k.source)
		if err != nil {
			return nil, err
		}
		status.ProcessedFiles = count

		statuses = append(statuses, status)
	}
	return statuses, nil
}

func (u *integrationUsecase) Toggle(kind integrationdomain.IntegrationType) (*integrationdomain.IntegrationConfig, error) {
	return u.configs.ToggleActive(kind)
}

func (u *integrationUsecase) Test(ctx context.Context, kind integrationdomain.IntegrationType) error {
	switch kind {
	case integrationdomain.IntegrationEmail:
		settings, _, err := u.settings.LoadEmail()
		if err != nil {
			return err
		}
		return u.tester.TestEmail(ctx, settings)
	case integrationdomain.IntegrationDrive:
		settings, _, err := u.settings.LoadDrive()
		if err != nil {
			return err
		}
		return u.tester.TestDrive(ctx, settings)
	default:
		return fmt.Errorf("unknown integration type: %s", kind)
	}
}

func (u *integrationUsecase) Disconnect(kind integrationdomain.IntegrationType) error {
	return u.configs.DeleteByType(kind)
}

func (u *integrationUsecase) OAuthURL(kind integrationdomain.IntegrationType) (string, error) {
	conf, err := u.oauthConfig(kind)
	if err != nil {
		return "", err
	}
	// State carries the kind back through the callback.
	return conf.AuthCodeURL(string(kind), oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

func (u *integrationUsecase) HandleOAuthCallback(ctx context.Context, kind integrationdomain.IntegrationType, code string) error {
	conf, err := u.oauthConfig(kind)
	if err != nil {
		return err
	}

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	creds := &integrationdomain.TokenCredentials{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}

	switch kind {
	case integrationdomain.IntegrationEmail:
		_, err = u.settings.SaveEmail(&integrationdomain.EmailSettings{Token: creds}, u.currentInterval(kind))
		return err
	case integrationdomain.IntegrationDrive:
		settings, _, loadErr := u.settings.LoadDrive()
		if loadErr != nil && !errors.Is(loadErr, integrationdomain.ErrNotConfigured) && !errors.Is(loadErr, integrationdomain.ErrCorruptConfig) {
			return loadErr
		}
		if settings == nil {
			settings = &integrationdomain.DriveSettings{}
		}
		settings.Token = creds
		_, err = u.settings.SaveDrive(settings, u.currentInterval(kind))
		return err
	default:
		return fmt.Errorf("unknown integration type: %s", kind)
	}
}

func (u *integrationUsecase) oauthConfig(kind integrationdomain.IntegrationType) (*oauth2.Config, error) {
	if u.config.GoogleClientID == "" || u.config.GoogleClientSecret == "" {
		return nil, errors.New("google oauth is not configured")
	}

	var scope string
	switch kind {
	case integrationdomain.IntegrationEmail:
		scope = gmailScope
	case integrationdomain.IntegrationDrive:
		scope = driveScope
	default:
		return nil, fmt.Errorf("unknown integration type: %s", kind)
	}

	return &oauth2.Config{
		ClientID:     u.config.GoogleClientID,
		ClientSecret: u.config.GoogleClientSecret,
		RedirectURL:  u.config.GoogleRedirectURI,
		Scopes:       []string{scope},
		Endpoint:     google.Endpoint,
	}, nil
}

func (u *integrationUsecase) currentInterval(kind integrationdomain.IntegrationType) int {
	cfg, err := u.configs.FindByType(kind)
	if err != nil || cfg == nil {
		return 10
	}
	return cfg.SyncIntervalMinutes
}

func validateInterval(minutes int) error {
	if minutes == 0 {
		return nil // SettingsStore applies the default
	}
	if minutes < 1 || minutes > 1440 {
		return errors.New("sync_interval_minutes must be between 1 and 1440")
	}
	return nil
}
