package dto

import "time"

type CreateTimesheetRequest struct {
	EmployeeID  string    `json:"employee_id"`
	ClientID    *string   `json:"client_id,omitempty"`
	PeriodStart time.Time `json:"period_start" binding:"required"`
	PeriodEnd   time.Time `json:"period_end" binding:"required"`
	TotalHours  float64   `json:"total_hours"`
	Notes       string    `json:"notes"`
	UploadID    *string   `json:"upload_id,omitempty"`
}

type UpdateTimesheetRequest struct {
	PeriodStart *time.Time `json:"period_start,omitempty"`
	PeriodEnd   *time.Time `json:"period_end,omitempty"`
	TotalHours  *float64   `json:"total_hours,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
	UploadID    *string    `json:"upload_id,omitempty"`
}

type DecisionRequest struct {
	Comments string `json:"comments"`
}
