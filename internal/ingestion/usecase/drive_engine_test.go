package usecase

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	ingestiondomain "timesheetpro-backend/internal/ingestion/domain"
	integrationdomain "timesheetpro-backend/internal/integration/domain"
	uploaddomain "timesheetpro-backend/internal/upload/domain"
	uploadrepo "timesheetpro-backend/internal/upload/repository"
)

func newDriveEngine(env *testEnv, transport *fakeDriveTransport, now time.Time) *DriveEngine {
	engine := NewDriveEngine(env.settings, env.configs, env.pipeline, func(settings *integrationdomain.DriveSettings) DriveTransport {
		return transport
	})
	engine.now = func() time.Time { return now }
	return engine
}

func TestDriveEngineNotConfigured(t *testing.T) {
	env := newTestEnv(t)
	engine := newDriveEngine(env, &fakeDriveTransport{}, time.Now())

	result := engine.Run(context.Background())
	if result.Success {
		t.Fatal("expected failure for unconfigured integration")
	}
	if !strings.Contains(result.Message, "not configured") {
		t.Fatalf("message = %q, want a not-configured explanation", result.Message)
	}
}

func TestDriveEngineMissingFolder(t *testing.T) {
	env := newTestEnv(t)
	// OAuth done, folder not chosen yet.
	env.configureDrive(t, "", true)

	transport := &fakeDriveTransport{}
	engine := newDriveEngine(env, transport, time.Now())

	result := engine.Run(context.Background())
	if result.Success {
		t.Fatal("expected failure without a folder")
	}
	if !strings.Contains(result.Message, "folder") {
		t.Fatalf("message = %q, want a folder explanation", result.Message)
	}
	if transport.folderSeen != "" {
		t.Fatal("engine must not list without a folder")
	}
}

func TestDriveEngineEndToEnd(t *testing.T) {
	env := newTestEnv(t)
	alice := env.addEmployee(t, "alice@co.com", true)
	env.configureDrive(t, "folder-123", true)

	now := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)
	transport := &fakeDriveTransport{
		items: []*ingestiondomain.ExternalItem{
			newItem("file-1", "alice@co.com", now.Add(-time.Hour),
				fakeFile{name: "timesheet.csv", content: "day,hours"},
			),
			newItem("file-2", "mallory@other.com", now.Add(-time.Hour),
				fakeFile{name: "intruder.pdf", content: "%PDF-1.4"},
			),
		},
	}
	engine := newDriveEngine(env, transport, now)

	result := engine.Run(context.Background())
	if !result.Success {
		t.Fatalf("run failed: %s", result.Message)
	}
	if transport.folderSeen != "folder-123" {
		t.Fatalf("listed folder %q, want folder-123", transport.folderSeen)
	}
	if result.Scanned != 2 || result.Processed != 1 {
		t.Fatalf("scanned/processed = %d/%d, want 2/1", result.Scanned, result.Processed)
	}

	uploads, total, err := env.uploads.List(uploadrepo.ListFilter{})
	if err != nil || total != 1 {
		t.Fatalf("upload count = (%d, %v), want 1", total, err)
	}
	if uploads[0].EmployeeID != alice.ID || uploads[0].Source != uploaddomain.SourceDrive {
		t.Fatalf("unexpected upload row: %+v", uploads[0])
	}
	if uploads[0].FileName != filepath.Base(uploads[0].FilePath) || uploads[0].FileName == "timesheet.csv" {
		t.Fatalf("file_name %q is not the stored filename for %q", uploads[0].FileName, uploads[0].FilePath)
	}

	cfg, _ := env.configs.FindByType(integrationdomain.IntegrationDrive)
	if cfg.SyncCount != 1 {
		t.Fatalf("sync_count = %d, want 1", cfg.SyncCount)
	}
	if cfg.LastSync == nil || !cfg.LastSync.Equal(now) {
		t.Fatalf("watermark = %v, want %v", cfg.LastSync, now)
	}
}

func TestDriveEngineRelisting(t *testing.T) {
	env := newTestEnv(t)
	env.addEmployee(t, "alice@co.com", true)
	env.configureDrive(t, "folder-123", true)

	now := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)
	items := []*ingestiondomain.ExternalItem{
		newItem("file-1", "alice@co.com", now.Add(-24*time.Hour),
			fakeFile{name: "week.pdf", content: "%PDF-1.4"},
		),
	}

	engine := newDriveEngine(env, &fakeDriveTransport{items: items}, now)
	if result := engine.Run(context.Background()); !result.Success || result.Processed != 1 {
		t.Fatalf("first run = %+v", result)
	}

	// Every drive run re-lists the whole folder; the ledger alone must keep
	// old files from landing twice, however old they are.
	replay := newDriveEngine(env, &fakeDriveTransport{items: items}, now.Add(10*time.Minute))
	result := replay.Run(context.Background())
	if !result.Success || result.Processed != 0 {
		t.Fatalf("replay = %+v, want success with 0 processed", result)
	}

	_, total, err := env.uploads.List(uploadrepo.ListFilter{})
	if err != nil || total != 1 {
		t.Fatalf("upload count after replay = (%d, %v), want 1", total, err)
	}
}

func TestDriveEngineListFailure(t *testing.T) {
	env := newTestEnv(t)
	env.configureDrive(t, "folder-123", true)

	transport := &fakeDriveTransport{listErr: errors.New("googleapi: Error 403")}
	engine := newDriveEngine(env, transport, time.Now())

	result := engine.Run(context.Background())
	if result.Success {
		t.Fatal("expected failure when listing fails")
	}

	cfg, _ := env.configs.FindByType(integrationdomain.IntegrationDrive)
	if cfg.LastSync != nil {
		t.Fatal("failed run must not advance the watermark")
	}
}
