package repository

import (
	"errors"
	"time"

	integrationdomain "timesheetpro-backend/internal/integration/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// configRepository implements ConfigRepository
type configRepository struct {
	db *gorm.DB
}

// NewConfigRepository creates a new instance of configRepository
func NewConfigRepository(db *gorm.DB) ConfigRepository {
	return &configRepository{
		db: db,
	}
}

func (r *configRepository) FindByType(kind integrationdomain.IntegrationType) (*integrationdomain.IntegrationConfig, error) {
	var cfg integrationdomain.IntegrationConfig
	err := r.db.Where("type = ?", kind).First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cfg, nil
}

func (r *configRepository) List() ([]integrationdomain.IntegrationConfig, error) {
	var configs []integrationdomain.IntegrationConfig
	err := r.db.Order("type").Find(&configs).Error
	return configs, err
}

func (r *configRepository) ListActive() ([]integrationdomain.IntegrationConfig, error) {
	var configs []integrationdomain.IntegrationConfig
	err := r.db.Where("is_active = ?", true).Order("type").Find(&configs).Error
	return configs, err
}

// Upsert creates the row for a kind or replaces its settings while
// preserving watermark and counters.
func (r *configRepository) Upsert(cfg *integrationdomain.IntegrationConfig) error {
	existing, err := r.FindByType(cfg.Type)
	if err != nil {
		return err
	}

	now := time.Now()
	if existing == nil {
		cfg.ID = uuid.New().String()
		cfg.CreatedAt = now
		cfg.UpdatedAt = now
		return r.db.Create(cfg).Error
	}

	existing.ConfigData = cfg.ConfigData
	existing.SyncIntervalMinutes = cfg.SyncIntervalMinutes
	existing.IsActive = cfg.IsActive
	existing.UpdatedAt = now
	*cfg = *existing
	return r.db.Save(existing).Error
}

func (r *configRepository) UpdateConfigData(kind integrationdomain.IntegrationType, blob string) error {
	result := r.db.Model(&integrationdomain.IntegrationConfig{}).
		Where("type = ?", kind).
		Updates(map[string]interface{}{
			"config_data": blob,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return integrationdomain.ErrNotConfigured
	}
	return nil
}

// MarkSyncSuccess advances the watermark and adds the processed count in a
// single UPDATE so concurrent runs never lose increments.
func (r *configRepository) MarkSyncSuccess(kind integrationdomain.IntegrationType, processed int, at time.Time) error {
	result := r.db.Model(&integrationdomain.IntegrationConfig{}).
		Where("type = ?", kind).
		Updates(map[string]interface{}{
			"last_sync":  at,
			"sync_count": gorm.Expr("sync_count + ?", processed),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return integrationdomain.ErrNotConfigured
	}
	return nil
}

func (r *configRepository) ToggleActive(kind integrationdomain.IntegrationType) (*integrationdomain.IntegrationConfig, error) {
	cfg, err := r.FindByType(kind)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, integrationdomain.ErrNotConfigured
	}

	cfg.IsActive = !cfg.IsActive
	cfg.UpdatedAt = time.Now()
	if err := r.db.Save(cfg).Error; err != nil {
		return nil, err
	}
	return cfg, nil
}

func (r *configRepository) DeleteByType(kind integrationdomain.IntegrationType) error {
	return r.db.Where("type = ?", kind).Delete(&integrationdomain.IntegrationConfig{}).Error
}
