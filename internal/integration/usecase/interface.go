package usecase

import (
	"context"

	integrationdomain "timesheetpro-backend/internal/integration/domain"
	integrationdto "timesheetpro-backend/internal/integration/dto"
)

// ConnectionTester performs a real connection attempt against a configured
// source. Implementations live next to the transports; the usecase only
// needs the verdict.
type ConnectionTester interface {
	TestEmail(ctx context.Context, settings *integrationdomain.EmailSettings) error
	TestDrive(ctx context.Context, settings *integrationdomain.DriveSettings) error
}

// IntegrationUsecase is the admin surface for ingestion sources.
type IntegrationUsecase interface {
	ConfigureEmail(req *integrationdto.EmailConfigRequest) (*integrationdomain.IntegrationConfig, error)
	ConfigureDrive(req *integrationdto.DriveConfigRequest) (*integrationdomain.IntegrationConfig, error)
	Status() ([]integrationdto.IntegrationStatus, error)
	Toggle(kind integrationdomain.IntegrationType) (*integrationdomain.IntegrationConfig, error)
	Test(ctx context.Context, kind integrationdomain.IntegrationType) error
	Disconnect(kind integrationdomain.IntegrationType) error
	OAuthURL(kind integrationdomain.IntegrationType) (string, error)
	HandleOAuthCallback(ctx context.Context, kind integrationdomain.IntegrationType, code string) error
}
