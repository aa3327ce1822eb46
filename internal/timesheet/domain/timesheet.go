package domain

import "time"

// TimesheetStatus follows the submission workflow.
type TimesheetStatus string

const (
	TimesheetDraft     TimesheetStatus = "draft"
	TimesheetSubmitted TimesheetStatus = "submitted"
	TimesheetApproved  TimesheetStatus = "approved"
	TimesheetRejected  TimesheetStatus = "rejected"
)

// Timesheet is one reporting period for one employee.
type Timesheet struct {
	ID          string          `json:"id" gorm:"primaryKey"`
	EmployeeID  string          `json:"employee_id" gorm:"index;not null"`
	ClientID    *string         `json:"client_id,omitempty"`
	PeriodStart time.Time       `json:"period_start" gorm:"not null"`
	PeriodEnd   time.Time       `json:"period_end" gorm:"not null"`
	TotalHours  float64         `json:"total_hours"`
	Status      TimesheetStatus `json:"status" gorm:"not null;default:draft"`
	Notes       string          `json:"notes,omitempty"`
	UploadID    *string         `json:"upload_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Approval records a manager's decision on a submitted timesheet.
type Approval struct {
	ID          string          `json:"id" gorm:"primaryKey"`
	TimesheetID string          `json:"timesheet_id" gorm:"index;not null"`
	ApproverID  string          `json:"approver_id" gorm:"not null"`
	Status      TimesheetStatus `json:"status" gorm:"not null"`
	Comments    string          `json:"comments,omitempty"`
	DecidedAt   time.Time       `json:"decided_at"`
}
