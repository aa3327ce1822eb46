package repository

import (
	"errors"
	"time"

	uploaddomain "timesheetpro-backend/internal/upload/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListFilter narrows List results. Zero values mean "no filter".
type ListFilter struct {
	EmployeeID string
	Source     uploaddomain.UploadSource
	Status     uploaddomain.UploadStatus
	Limit      int
	Offset     int
}

// UploadRepository persists landed timesheet files.
type UploadRepository interface {
	Create(upload *uploaddomain.TimesheetUpload) error
	FindByID(id string) (*uploaddomain.TimesheetUpload, error)
	List(filter ListFilter) ([]uploaddomain.TimesheetUpload, int64, error)
	UpdateStatus(id string, status uploaddomain.UploadStatus, errorMessage string) error
	Delete(id string) error
	Stats() (*uploaddomain.UploadStats, error)
}

// uploadRepository implements UploadRepository
type uploadRepository struct {
	db *gorm.DB
}

// NewUploadRepository creates a new instance of uploadRepository
func NewUploadRepository(db *gorm.DB) UploadRepository {
	return &uploadRepository{
		db: db,
	}
}

func (r *uploadRepository) Create(upload *uploaddomain.TimesheetUpload) error {
	if upload.ID == "" {
		upload.ID = uuid.New().String()
	}
	if upload.Status == "" {
		upload.Status = uploaddomain.StatusPending
	}
	now := time.Now()
	upload.CreatedAt = now
	upload.UpdatedAt = now
	return r.db.Create(upload).Error
}

func (r *uploadRepository) FindByID(id string) (*uploaddomain.TimesheetUpload, error) {
	var upload uploaddomain.TimesheetUpload
	err := r.db.Where("id = ?", id).First(&upload).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &upload, nil
}

func (r *uploadRepository) List(filter ListFilter) ([]uploaddomain.TimesheetUpload, int64, error) {
	query := r.db.Model(&uploaddomain.TimesheetUpload{})
	if filter.EmployeeID != "" {
		query = query.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.Source != "" {
		query = query.Where("source = ?", filter.Source)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var uploads []uploaddomain.TimesheetUpload
	err := query.Order("created_at DESC").Limit(limit).Offset(filter.Offset).Find(&uploads).Error
	return uploads, total, err
}

func (r *uploadRepository) UpdateStatus(id string, status uploaddomain.UploadStatus, errorMessage string) error {
	return r.db.Model(&uploaddomain.TimesheetUpload{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        status,
			"error_message": errorMessage,
			"updated_at":    time.Now(),
		}).Error
}

func (r *uploadRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&uploaddomain.TimesheetUpload{}).Error
}

func (r *uploadRepository) Stats() (*uploaddomain.UploadStats, error) {
	stats := &uploaddomain.UploadStats{
		ByStatus: make(map[uploaddomain.UploadStatus]int64),
		BySource: make(map[uploaddomain.UploadSource]int64),
	}

	if err := r.db.Model(&uploaddomain.TimesheetUpload{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	type group struct {
		Key   string
		Count int64
	}

	var byStatus []group
	if err := r.db.Model(&uploaddomain.TimesheetUpload{}).
		Select("status as key, count(*) as count").Group("status").Scan(&byStatus).Error; err != nil {
		return nil, err
	}
	for _, g := range byStatus {
		stats.ByStatus[uploaddomain.UploadStatus(g.Key)] = g.Count
	}

	var bySource []group
	if err := r.db.Model(&uploaddomain.TimesheetUpload{}).
		Select("source as key, count(*) as count").Group("source").Scan(&bySource).Error; err != nil {
		return nil, err
	}
	for _, g := range bySource {
		stats.BySource[uploaddomain.UploadSource(g.Key)] = g.Count
	}

	return stats, nil
}
