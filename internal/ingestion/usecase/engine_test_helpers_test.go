package usecase

import (
	"context"
	"testing"
	"time"

	employeedomain "timesheetpro-backend/internal/employee/domain"
	employeerepo "timesheetpro-backend/internal/employee/repository"
	ingestiondomain "timesheetpro-backend/internal/ingestion/domain"
	integrationdomain "timesheetpro-backend/internal/integration/domain"
	integrationrepo "timesheetpro-backend/internal/integration/repository"
	integrationusecase "timesheetpro-backend/internal/integration/usecase"
	uploaddomain "timesheetpro-backend/internal/upload/domain"
	uploadrepo "timesheetpro-backend/internal/upload/repository"
	"timesheetpro-backend/pkg/storage"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db        *gorm.DB
	employees employeerepo.EmployeeRepository
	uploads   uploadrepo.UploadRepository
	ledger    integrationrepo.ProcessedFileRepository
	configs   integrationrepo.ConfigRepository
	settings  *integrationusecase.SettingsStore
	pipeline  *Pipeline
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	err = db.AutoMigrate(
		&employeedomain.Employee{},
		&integrationdomain.IntegrationConfig{},
		&integrationdomain.ProcessedFile{},
		&uploaddomain.TimesheetUpload{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	employees := employeerepo.NewEmployeeRepository(db)
	uploads := uploadrepo.NewUploadRepository(db)
	ledger := integrationrepo.NewProcessedFileRepository(db)
	configs := integrationrepo.NewConfigRepository(db)
	settings := integrationusecase.NewSettingsStore(configs, "test-key")
	store := storage.NewStore(t.TempDir())

	return &testEnv{
		db:        db,
		employees: employees,
		uploads:   uploads,
		ledger:    ledger,
		configs:   configs,
		settings:  settings,
		pipeline:  NewPipeline(employees, uploads, ledger, store),
	}
}

func (e *testEnv) addEmployee(t *testing.T, email string, active bool) *employeedomain.Employee {
	t.Helper()
	emp := &employeedomain.Employee{
		Email:    email,
		FullName: email,
		Role:     employeedomain.RoleEmployee,
		IsActive: active,
	}
	if err := e.employees.Create(emp); err != nil {
		t.Fatalf("failed to create employee %s: %v", email, err)
	}
	if !active {
		if err := e.employees.Deactivate(emp.ID); err != nil {
			t.Fatalf("failed to deactivate employee %s: %v", email, err)
		}
	}
	return emp
}

func (e *testEnv) configureEmail(t *testing.T, intervalMinutes int, active bool) {
	t.Helper()
	_, err := e.settings.SaveEmail(&integrationdomain.EmailSettings{
		Direct: &integrationdomain.DirectCredentials{
			Server:   "imap.co.com",
			Port:     993,
			Email:    "timesheets@co.com",
			Password: "secret",
		},
	}, intervalMinutes)
	if err != nil {
		t.Fatalf("failed to configure email: %v", err)
	}
	if active {
		if _, err := e.configs.ToggleActive(integrationdomain.IntegrationEmail); err != nil {
			t.Fatalf("failed to activate email config: %v", err)
		}
	}
}

func (e *testEnv) configureDrive(t *testing.T, folderID string, active bool) {
	t.Helper()
	_, err := e.settings.SaveDrive(&integrationdomain.DriveSettings{
		FolderID: folderID,
		Token:    &integrationdomain.TokenCredentials{AccessToken: "at", RefreshToken: "rt"},
	}, 10)
	if err != nil {
		t.Fatalf("failed to configure drive: %v", err)
	}
	if active {
		if _, err := e.configs.ToggleActive(integrationdomain.IntegrationDrive); err != nil {
			t.Fatalf("failed to activate drive config: %v", err)
		}
	}
}

// fakeFile is a canned attachment for fake transports.
type fakeFile struct {
	name     string
	content  string
	fetchErr error
}

func newItem(externalID, owner string, receivedAt time.Time, files ...fakeFile) *ingestiondomain.ExternalItem {
	attachments := make([]ingestiondomain.Attachment, 0, len(files))
	for _, f := range files {
		file := f
		attachments = append(attachments, ingestiondomain.Attachment{
			Filename: file.name,
			Fetch: func(ctx context.Context) ([]byte, error) {
				if file.fetchErr != nil {
					return nil, file.fetchErr
				}
				return []byte(file.content), nil
			},
		})
	}

	return &ingestiondomain.ExternalItem{
		ExternalID: externalID,
		ReceivedAt: receivedAt,
		Owner: func(ctx context.Context) (string, error) {
			return owner, nil
		},
		Files: func(ctx context.Context) ([]ingestiondomain.Attachment, error) {
			return attachments, nil
		},
		Provenance: map[string]interface{}{"sender": owner},
	}
}

type fakeMailTransport struct {
	items      []*ingestiondomain.ExternalItem
	listErr    error
	connectErr error

	connected bool
	closed    bool
	sinceSeen time.Time
}

func (f *fakeMailTransport) Connect(ctx context.Context) error {
	if f.connectErr != nil {
		return f.connectErr
	}
	f.connected = true
	return nil
}

func (f *fakeMailTransport) Messages(ctx context.Context, since time.Time) ([]*ingestiondomain.ExternalItem, error) {
	f.sinceSeen = since
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.items, nil
}

func (f *fakeMailTransport) Close() error {
	f.closed = true
	return nil
}

type fakeDriveTransport struct {
	items      []*ingestiondomain.ExternalItem
	listErr    error
	connectErr error

	folderSeen string
}

func (f *fakeDriveTransport) Connect(ctx context.Context) error {
	return f.connectErr
}

func (f *fakeDriveTransport) ListFolder(ctx context.Context, folderID string) ([]*ingestiondomain.ExternalItem, error) {
	f.folderSeen = folderID
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.items, nil
}

func (f *fakeDriveTransport) Close() error {
	return nil
}
