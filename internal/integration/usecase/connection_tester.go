package usecase

import (
	"context"

	integrationdomain "timesheetpro-backend/internal/integration/domain"
	"timesheetpro-backend/pkg/drive"
	"timesheetpro-backend/pkg/gmail"
	"timesheetpro-backend/pkg/imapmail"
)

// connectionTester checks stored credentials against the live services.
type connectionTester struct {
	gmailSvc *gmail.Service
	driveSvc *drive.Service
}

func NewConnectionTester(gmailSvc *gmail.Service, driveSvc *drive.Service) ConnectionTester {
	return &connectionTester{
		gmailSvc: gmailSvc,
		driveSvc: driveSvc,
	}
}

func (t *connectionTester) TestEmail(ctx context.Context, settings *integrationdomain.EmailSettings) error {
	if settings.Direct != nil {
		return imapmail.TestConnection(settings.Direct)
	}
	return t.gmailSvc.TestConnection(ctx, settings.Token)
}

func (t *connectionTester) TestDrive(ctx context.Context, settings *integrationdomain.DriveSettings) error {
	return t.driveSvc.TestConnection(ctx, settings.Token)
}
