package repository

import (
	"errors"
	"time"

	timesheetdomain "timesheetpro-backend/internal/timesheet/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListFilter narrows timesheet listings.
type ListFilter struct {
	EmployeeID string
	Status     timesheetdomain.TimesheetStatus
	Limit      int
	Offset     int
}

// TimesheetRepository persists timesheets and approval decisions.
type TimesheetRepository interface {
	Create(timesheet *timesheetdomain.Timesheet) error
	FindByID(id string) (*timesheetdomain.Timesheet, error)
	List(filter ListFilter) ([]timesheetdomain.Timesheet, int64, error)
	Update(timesheet *timesheetdomain.Timesheet) error
	Delete(id string) error
	RecordApproval(approval *timesheetdomain.Approval) error
	ApprovalsFor(timesheetID string) ([]timesheetdomain.Approval, error)
}

type timesheetRepository struct {
	db *gorm.DB
}

func NewTimesheetRepository(db *gorm.DB) TimesheetRepository {
	return &timesheetRepository{
		db: db,
	}
}

func (r *timesheetRepository) Create(timesheet *timesheetdomain.Timesheet) error {
	timesheet.ID = uuid.New().String()
	if timesheet.Status == "" {
		timesheet.Status = timesheetdomain.TimesheetDraft
	}
	now := time.Now()
	timesheet.CreatedAt = now
	timesheet.UpdatedAt = now
	return r.db.Create(timesheet).Error
}

func (r *timesheetRepository) FindByID(id string) (*timesheetdomain.Timesheet, error) {
	var timesheet timesheetdomain.Timesheet
	err := r.db.Where("id = ?", id).First(&timesheet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &timesheet, nil
}

func (r *timesheetRepository) List(filter ListFilter) ([]timesheetdomain.Timesheet, int64, error) {
	query := r.db.Model(&timesheetdomain.Timesheet{})
	if filter.EmployeeID != "" {
		query = query.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	var timesheets []timesheetdomain.Timesheet
	err := query.Order("period_start DESC").Limit(limit).Offset(filter.Offset).Find(&timesheets).Error
	return timesheets, total, err
}

func (r *timesheetRepository) Update(timesheet *timesheetdomain.Timesheet) error {
	timesheet.UpdatedAt = time.Now()
	return r.db.Save(timesheet).Error
}

func (r *timesheetRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("timesheet_id = ?", id).Delete(&timesheetdomain.Approval{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&timesheetdomain.Timesheet{}).Error
	})
}

// RecordApproval writes the decision and flips the timesheet status in one
// transaction.
func (r *timesheetRepository) RecordApproval(approval *timesheetdomain.Approval) error {
	approval.ID = uuid.New().String()
	approval.DecidedAt = time.Now()
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(approval).Error; err != nil {
			return err
		}
		return tx.Model(&timesheetdomain.Timesheet{}).
			Where("id = ?", approval.TimesheetID).
			Updates(map[string]interface{}{"status": approval.Status, "updated_at": time.Now()}).Error
	})
}

func (r *timesheetRepository) ApprovalsFor(timesheetID string) ([]timesheetdomain.Approval, error) {
	var approvals []timesheetdomain.Approval
	err := r.db.Where("timesheet_id = ?", timesheetID).Order("decided_at DESC").Find(&approvals).Error
	return approvals, err
}
