package scheduler

import (
	"context"
	"testing"
	"time"

	ingestiondomain "timesheetpro-backend/internal/ingestion/domain"
	"timesheetpro-backend/internal/ingestion/usecase"
	integrationdomain "timesheetpro-backend/internal/integration/domain"
	"timesheetpro-backend/internal/integration/repository"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeEngine struct {
	kind integrationdomain.IntegrationType
	runs int
}

func (f *fakeEngine) Kind() integrationdomain.IntegrationType {
	return f.kind
}

func (f *fakeEngine) Run(ctx context.Context) *ingestiondomain.SyncResult {
	f.runs++
	return &ingestiondomain.SyncResult{Success: true, Message: "ok"}
}

func openTestConfigs(t *testing.T) repository.ConfigRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&integrationdomain.IntegrationConfig{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return repository.NewConfigRepository(db)
}

func TestIsDue(t *testing.T) {
	now := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-5 * time.Minute)
	old := now.Add(-15 * time.Minute)

	cases := []struct {
		name     string
		lastSync *time.Time
		want     bool
	}{
		{"never synced", nil, true},
		{"synced recently", &recent, false},
		{"interval elapsed", &old, true},
	}

	for _, tc := range cases {
		cfg := &integrationdomain.IntegrationConfig{SyncIntervalMinutes: 10, LastSync: tc.lastSync}
		if got := isDue(cfg, now); got != tc.want {
			t.Fatalf("%s: isDue = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCheckAndRunOnlyDueConfigs(t *testing.T) {
	configs := openTestConfigs(t)

	emailCfg := integrationdomain.IntegrationConfig{
		Type:                integrationdomain.IntegrationEmail,
		ConfigData:          "blob",
		SyncIntervalMinutes: 10,
		IsActive:            true,
	}
	if err := configs.Upsert(&emailCfg); err != nil {
		t.Fatalf("Upsert email: %v", err)
	}

	driveCfg := integrationdomain.IntegrationConfig{
		Type:                integrationdomain.IntegrationDrive,
		ConfigData:          "blob",
		SyncIntervalMinutes: 10,
		IsActive:            true,
	}
	if err := configs.Upsert(&driveCfg); err != nil {
		t.Fatalf("Upsert drive: %v", err)
	}

	now := time.Now()
	// Drive synced moments ago; email never synced.
	if err := configs.MarkSyncSuccess(integrationdomain.IntegrationDrive, 0, now.Add(-time.Minute)); err != nil {
		t.Fatalf("MarkSyncSuccess: %v", err)
	}

	email := &fakeEngine{kind: integrationdomain.IntegrationEmail}
	drive := &fakeEngine{kind: integrationdomain.IntegrationDrive}
	s := NewScheduler(configs, []usecase.Engine{email, drive}, time.Minute)
	s.now = func() time.Time { return now }

	s.checkAndRun()

	if email.runs != 1 {
		t.Fatalf("email engine runs = %d, want 1 (never synced is due)", email.runs)
	}
	if drive.runs != 0 {
		t.Fatalf("drive engine runs = %d, want 0 (not due yet)", drive.runs)
	}
}

func TestCheckAndRunSkipsInactive(t *testing.T) {
	configs := openTestConfigs(t)

	cfg := integrationdomain.IntegrationConfig{
		Type:                integrationdomain.IntegrationEmail,
		ConfigData:          "blob",
		SyncIntervalMinutes: 10,
	}
	if err := configs.Upsert(&cfg); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	engine := &fakeEngine{kind: integrationdomain.IntegrationEmail}
	s := NewScheduler(configs, []usecase.Engine{engine}, time.Minute)

	s.checkAndRun()

	if engine.runs != 0 {
		t.Fatalf("engine runs = %d, want 0 for inactive config", engine.runs)
	}
}

type signalEngine struct {
	kind integrationdomain.IntegrationType
	runs chan struct{}
}

func (f *signalEngine) Kind() integrationdomain.IntegrationType {
	return f.kind
}

func (f *signalEngine) Run(ctx context.Context) *ingestiondomain.SyncResult {
	select {
	case f.runs <- struct{}{}:
	default:
	}
	return &ingestiondomain.SyncResult{Success: true, Message: "ok"}
}

func waitForRun(t *testing.T, runs chan struct{}, what string) {
	t.Helper()
	select {
	case <-runs:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestStartAfterStop(t *testing.T) {
	configs := openTestConfigs(t)

	// Never synced and active, so every tick is due.
	cfg := integrationdomain.IntegrationConfig{
		Type:                integrationdomain.IntegrationEmail,
		ConfigData:          "blob",
		SyncIntervalMinutes: 10,
		IsActive:            true,
	}
	if err := configs.Upsert(&cfg); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	engine := &signalEngine{kind: integrationdomain.IntegrationEmail, runs: make(chan struct{}, 1)}
	s := NewScheduler(configs, []usecase.Engine{engine}, 10*time.Millisecond)

	s.Start()
	waitForRun(t, engine.runs, "first run")
	s.Stop()

	s.Start()
	defer s.Stop()

	// At most one stale pre-Stop run can still be buffered, and the
	// restarted loop runs once immediately. A third run can only come
	// from the restarted ticker loop.
	waitForRun(t, engine.runs, "run after restart")
	waitForRun(t, engine.runs, "run after restart")
	waitForRun(t, engine.runs, "ticker run after restart")
}

func TestRunNowUnknownKind(t *testing.T) {
	s := NewScheduler(openTestConfigs(t), nil, time.Minute)

	result := s.RunNow(context.Background(), integrationdomain.IntegrationType("ftp"))
	if result.Success {
		t.Fatal("expected failure for unknown integration type")
	}
}
