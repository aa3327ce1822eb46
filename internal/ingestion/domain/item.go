package domain

import (
	"context"
	"time"
)

// Attachment is one downloadable file on an external item. Fetch pulls the
// bytes lazily so the dedup check runs before any expensive download.
type Attachment struct {
	Filename string
	Fetch    func(ctx context.Context) ([]byte, error)
}

// ExternalItem is one candidate unit of work discovered by a transport:
// an email message or a drive file. Owner and Files are lazy for the same
// reason Fetch is; a deduplicated or filtered item costs one listing entry
// and nothing more.
type ExternalItem struct {
	ExternalID string
	ReceivedAt time.Time
	Subject    string
	Owner      func(ctx context.Context) (string, error)
	Files      func(ctx context.Context) ([]Attachment, error)
	Provenance map[string]interface{}
}

// SyncResult summarizes one engine run.
type SyncResult struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Scanned   int    `json:"scanned"`
	Processed int    `json:"processed"`
}
