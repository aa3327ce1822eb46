package dto

import "time"

// EmailConfigRequest configures the email integration. Direct IMAP
// credentials go here; OAuth accounts are connected through the consent
// flow instead and only set the interval.
type EmailConfigRequest struct {
	Server              string `json:"server"`
	Port                int    `json:"port"`
	Email               string `json:"email"`
	Password            string `json:"password"`
	SyncIntervalMinutes int    `json:"sync_interval_minutes"`
}

type DriveConfigRequest struct {
	FolderID            string `json:"folder_id" binding:"required"`
	SyncIntervalMinutes int    `json:"sync_interval_minutes"`
}

// IntegrationStatus is the admin view of one integration. Secrets never
// appear here.
type IntegrationStatus struct {
	Type                string     `json:"type"`
	Configured          bool       `json:"configured"`
	IsActive            bool       `json:"is_active"`
	LastSync            *time.Time `json:"last_sync,omitempty"`
	SyncCount           int64      `json:"sync_count"`
	SyncIntervalMinutes int        `json:"sync_interval_minutes"`
	ProcessedFiles      int64      `json:"processed_files"`
}
