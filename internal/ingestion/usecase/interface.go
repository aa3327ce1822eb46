package usecase

import (
	"context"
	"time"

	ingestiondomain "timesheetpro-backend/internal/ingestion/domain"
	integrationdomain "timesheetpro-backend/internal/integration/domain"
	uploaddomain "timesheetpro-backend/internal/upload/domain"
)

// Engine is one ingestion source. Run performs a complete scan and never
// panics the caller: failures come back in the result.
type Engine interface {
	Kind() integrationdomain.IntegrationType
	Run(ctx context.Context) *ingestiondomain.SyncResult
}

// MailTransport lists inbox messages. Both the IMAP and the Gmail API
// transports satisfy it; the engine picks one per run from the stored
// credential variant.
type MailTransport interface {
	Connect(ctx context.Context) error
	Messages(ctx context.Context, since time.Time) ([]*ingestiondomain.ExternalItem, error)
	Close() error
}

// DriveTransport lists files in a watched folder.
type DriveTransport interface {
	Connect(ctx context.Context) error
	ListFolder(ctx context.Context, folderID string) ([]*ingestiondomain.ExternalItem, error)
	Close() error
}

// Notifier is told about every landed upload. Implementations must not
// block the scan.
type Notifier interface {
	UploadLanded(upload *uploaddomain.TimesheetUpload)
}

// MailTransportFactory builds a transport for the stored settings variant.
type MailTransportFactory func(settings *integrationdomain.EmailSettings) MailTransport

// DriveTransportFactory builds a transport for the stored drive settings.
type DriveTransportFactory func(settings *integrationdomain.DriveSettings) DriveTransport
