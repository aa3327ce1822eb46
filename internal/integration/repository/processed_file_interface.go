package repository

import (
	integrationdomain "timesheetpro-backend/internal/integration/domain"
	uploaddomain "timesheetpro-backend/internal/upload/domain"
)

// ProcessedFileRepository is the dedup ledger over (source, external_id).
type ProcessedFileRepository interface {
	IsProcessed(source uploaddomain.UploadSource, externalID string) (bool, error)
	MarkProcessed(record *integrationdomain.ProcessedFile) error
	CountBySource(source uploaddomain.UploadSource) (int64, error)
	ListRecent(limit int) ([]integrationdomain.ProcessedFile, error)
}
