package domain

import "time"

// UploadSource identifies where a timesheet file came from.
type UploadSource string

const (
	SourceManual UploadSource = "manual"
	SourceEmail  UploadSource = "email"
	SourceDrive  UploadSource = "drive"
)

// UploadStatus tracks a file through the analysis pipeline.
type UploadStatus string

const (
	StatusPending    UploadStatus = "pending"
	StatusProcessing UploadStatus = "processing"
	StatusAnalyzed   UploadStatus = "analyzed"
	StatusFailed     UploadStatus = "failed"
)

// TimesheetUpload is one landed timesheet file. Metadata carries
// source-specific provenance (sender, subject, drive file name) as JSON.
type TimesheetUpload struct {
	ID           string       `json:"id" gorm:"primaryKey"`
	EmployeeID   string       `json:"employee_id" gorm:"index;not null"`
	FilePath     string       `json:"file_path" gorm:"not null"`
	FileName     string       `json:"file_name" gorm:"not null"`
	FileFormat   string       `json:"file_format" gorm:"not null"` // pdf, jpg, csv
	Source       UploadSource `json:"source" gorm:"not null"`
	Status       UploadStatus `json:"status" gorm:"not null;default:pending"`
	UploadedBy   *string      `json:"uploaded_by,omitempty"`
	Metadata     string       `json:"metadata,omitempty" gorm:"type:text"`
	ErrorMessage string       `json:"error_message,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// UploadStats aggregates upload counts for the monitoring endpoint.
type UploadStats struct {
	Total    int64                   `json:"total"`
	ByStatus map[UploadStatus]int64  `json:"by_status"`
	BySource map[UploadSource]int64  `json:"by_source"`
}
