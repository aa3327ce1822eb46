package repository

import (
	"time"

	integrationdomain "timesheetpro-backend/internal/integration/domain"
)

// ConfigRepository persists per-kind integration configuration rows.
type ConfigRepository interface {
	FindByType(kind integrationdomain.IntegrationType) (*integrationdomain.IntegrationConfig, error)
	List() ([]integrationdomain.IntegrationConfig, error)
	ListActive() ([]integrationdomain.IntegrationConfig, error)
	Upsert(cfg *integrationdomain.IntegrationConfig) error
	UpdateConfigData(kind integrationdomain.IntegrationType, blob string) error
	MarkSyncSuccess(kind integrationdomain.IntegrationType, processed int, at time.Time) error
	ToggleActive(kind integrationdomain.IntegrationType) (*integrationdomain.IntegrationConfig, error)
	DeleteByType(kind integrationdomain.IntegrationType) error
}
