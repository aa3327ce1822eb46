package repository

import (
	"errors"
	"time"

	integrationdomain "timesheetpro-backend/internal/integration/domain"
	uploaddomain "timesheetpro-backend/internal/upload/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// processedFileRepository implements ProcessedFileRepository
type processedFileRepository struct {
	db *gorm.DB
}

// NewProcessedFileRepository creates a new instance of processedFileRepository
func NewProcessedFileRepository(db *gorm.DB) ProcessedFileRepository {
	return &processedFileRepository{
		db: db,
	}
}

// IsProcessed checks whether an external item has already been ingested.
func (r *processedFileRepository) IsProcessed(source uploaddomain.UploadSource, externalID string) (bool, error) {
	var record integrationdomain.ProcessedFile
	err := r.db.Where("source = ? AND external_id = ?", source, externalID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// MarkProcessed records an ingested item. When two runs race on the same
// item the unique index rejects the second insert; that loss is not an
// error, the item is simply already owned by the winner.
func (r *processedFileRepository) MarkProcessed(record *integrationdomain.ProcessedFile) error {
	record.ID = uuid.New().String()
	if record.ProcessedAt.IsZero() {
		record.ProcessedAt = time.Now()
	}

	err := r.db.Create(record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return err
	}
	return nil
}

func (r *processedFileRepository) CountBySource(source uploaddomain.UploadSource) (int64, error) {
	var count int64
	err := r.db.Model(&integrationdomain.ProcessedFile{}).Where("source = ?", source).Count(&count).Error
	return count, err
}

func (r *processedFileRepository) ListRecent(limit int) ([]integrationdomain.ProcessedFile, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []integrationdomain.ProcessedFile
	err := r.db.Order("processed_at DESC").Limit(limit).Find(&records).Error
	return records, err
}
