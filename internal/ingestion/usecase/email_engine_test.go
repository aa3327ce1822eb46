package usecase

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	ingestiondomain "timesheetpro-backend/internal/ingestion/domain"
	integrationdomain "timesheetpro-backend/internal/integration/domain"
	uploaddomain "timesheetpro-backend/internal/upload/domain"
	uploadrepo "timesheetpro-backend/internal/upload/repository"
)

func newEmailEngine(env *testEnv, transport *fakeMailTransport, now time.Time) *EmailEngine {
	engine := NewEmailEngine(env.settings, env.configs, env.pipeline, func(settings *integrationdomain.EmailSettings) MailTransport {
		return transport
	})
	engine.now = func() time.Time { return now }
	return engine
}

func TestEmailEngineNotConfigured(t *testing.T) {
	env := newTestEnv(t)
	transport := &fakeMailTransport{}
	engine := newEmailEngine(env, transport, time.Now())

	result := engine.Run(context.Background())
	if result.Success {
		t.Fatal("expected failure for unconfigured integration")
	}
	if !strings.Contains(result.Message, "not configured") {
		t.Fatalf("message = %q, want a not-configured explanation", result.Message)
	}
	if transport.connected {
		t.Fatal("engine must not connect when unconfigured")
	}
}

func TestEmailEngineDisabledConfig(t *testing.T) {
	env := newTestEnv(t)
	env.configureEmail(t, 10, false)
	transport := &fakeMailTransport{}
	engine := newEmailEngine(env, transport, time.Now())

	result := engine.Run(context.Background())
	if result.Success {
		t.Fatal("expected failure for disabled integration")
	}
	if transport.connected {
		t.Fatal("engine must not connect when disabled")
	}

	cfg, err := env.configs.FindByType(integrationdomain.IntegrationEmail)
	if err != nil || cfg == nil {
		t.Fatalf("FindByType = (%v, %v)", cfg, err)
	}
	if cfg.LastSync != nil || cfg.SyncCount != 0 {
		t.Fatal("disabled run must leave watermark and counter untouched")
	}
}

func TestEmailEngineCorruptConfig(t *testing.T) {
	env := newTestEnv(t)
	err := env.configs.Upsert(&integrationdomain.IntegrationConfig{
		Type:                integrationdomain.IntegrationEmail,
		ConfigData:          "garbage",
		SyncIntervalMinutes: 10,
		IsActive:            true,
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	engine := newEmailEngine(env, &fakeMailTransport{}, time.Now())
	result := engine.Run(context.Background())
	if result.Success {
		t.Fatal("expected failure for corrupt config")
	}
	if !strings.Contains(result.Message, "corrupt") {
		t.Fatalf("message = %q, want corrupt-config explanation", result.Message)
	}
}

func TestEmailEngineBootstrapWindow(t *testing.T) {
	env := newTestEnv(t)
	env.configureEmail(t, 15, true)

	now := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)
	transport := &fakeMailTransport{}
	engine := newEmailEngine(env, transport, now)

	result := engine.Run(context.Background())
	if !result.Success {
		t.Fatalf("run failed: %s", result.Message)
	}

	want := now.Add(-15 * time.Minute)
	if !transport.sinceSeen.Equal(want) {
		t.Fatalf("first run window starts at %v, want now-interval %v", transport.sinceSeen, want)
	}

	cfg, _ := env.configs.FindByType(integrationdomain.IntegrationEmail)
	if cfg.LastSync == nil || !cfg.LastSync.Equal(now) {
		t.Fatalf("watermark = %v, want %v even with zero items", cfg.LastSync, now)
	}
}

func TestEmailEngineEndToEnd(t *testing.T) {
	env := newTestEnv(t)
	alice := env.addEmployee(t, "alice@co.com", true)
	env.configureEmail(t, 10, true)

	now := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)
	transport := &fakeMailTransport{
		items: []*ingestiondomain.ExternalItem{
			newItem("<msg-alice@co.com>", "alice@co.com", now.Add(-2*time.Minute),
				fakeFile{name: "march.pdf", content: "%PDF-1.4"},
				fakeFile{name: "notes.exe", content: "MZ"},
			),
			newItem("<msg-bob@co.com>", "bob@unknown.com", now.Add(-3*time.Minute),
				fakeFile{name: "other.pdf", content: "%PDF-1.4"},
			),
		},
	}
	engine := newEmailEngine(env, transport, now)

	result := engine.Run(context.Background())
	if !result.Success {
		t.Fatalf("run failed: %s", result.Message)
	}
	if result.Scanned != 2 || result.Processed != 1 {
		t.Fatalf("scanned/processed = %d/%d, want 2/1", result.Scanned, result.Processed)
	}
	if !transport.closed {
		t.Fatal("transport not closed after run")
	}

	uploads, total, err := env.uploads.List(uploadrepo.ListFilter{})
	if err != nil {
		t.Fatalf("List uploads: %v", err)
	}
	if total != 1 {
		t.Fatalf("upload count = %d, want 1 (exe gated, unknown sender filtered)", total)
	}
	upload := uploads[0]
	if upload.EmployeeID != alice.ID {
		t.Fatalf("upload employee = %s, want alice", upload.EmployeeID)
	}
	if upload.Source != uploaddomain.SourceEmail || upload.FileFormat != "pdf" || upload.Status != uploaddomain.StatusPending {
		t.Fatalf("unexpected upload row: %+v", upload)
	}
	if !strings.Contains(upload.Metadata, "alice@co.com") {
		t.Fatalf("metadata lost provenance: %s", upload.Metadata)
	}
	if _, err := os.Stat(upload.FilePath); err != nil {
		t.Fatalf("landed file missing on disk: %v", err)
	}

	processed, err := env.ledger.IsProcessed(uploaddomain.SourceEmail, "<msg-alice@co.com>")
	if err != nil || !processed {
		t.Fatalf("alice message not in ledger: (%v, %v)", processed, err)
	}
	processed, err = env.ledger.IsProcessed(uploaddomain.SourceEmail, "<msg-bob@co.com>")
	if err != nil {
		t.Fatalf("ledger check: %v", err)
	}
	if processed {
		t.Fatal("unknown-sender message must not enter the ledger")
	}

	cfg, _ := env.configs.FindByType(integrationdomain.IntegrationEmail)
	if cfg.SyncCount != 1 {
		t.Fatalf("sync_count = %d, want 1", cfg.SyncCount)
	}
	if cfg.LastSync == nil || !cfg.LastSync.Equal(now) {
		t.Fatalf("watermark = %v, want %v", cfg.LastSync, now)
	}
}

func TestEmailEngineIdempotentReplay(t *testing.T) {
	env := newTestEnv(t)
	env.addEmployee(t, "alice@co.com", true)
	env.configureEmail(t, 10, true)

	first := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)
	items := []*ingestiondomain.ExternalItem{
		newItem("<msg-1@co.com>", "alice@co.com", first.Add(-time.Minute),
			fakeFile{name: "week.csv", content: "day,hours"},
		),
	}

	engine := newEmailEngine(env, &fakeMailTransport{items: items}, first)
	if result := engine.Run(context.Background()); !result.Success || result.Processed != 1 {
		t.Fatalf("first run = %+v", result)
	}

	// Replay the same listing, e.g. a concurrent trigger or day-granular
	// overlap. The item must be recognized, not landed twice.
	second := first.Add(10 * time.Minute)
	items[0].ReceivedAt = second.Add(-time.Minute) // inside the new window
	replay := newEmailEngine(env, &fakeMailTransport{items: items}, second)
	result := replay.Run(context.Background())
	if !result.Success {
		t.Fatalf("replay failed: %s", result.Message)
	}
	if result.Processed != 0 {
		t.Fatalf("replay processed = %d, want 0", result.Processed)
	}

	_, total, err := env.uploads.List(uploadrepo.ListFilter{})
	if err != nil || total != 1 {
		t.Fatalf("upload count after replay = (%d, %v), want 1", total, err)
	}

	cfg, _ := env.configs.FindByType(integrationdomain.IntegrationEmail)
	if cfg.SyncCount != 1 {
		t.Fatalf("sync_count after replay = %d, want 1", cfg.SyncCount)
	}
	if cfg.LastSync == nil || !cfg.LastSync.Equal(second) {
		t.Fatalf("watermark after replay = %v, want %v", cfg.LastSync, second)
	}
}

func TestEmailEngineWatermarkRecheck(t *testing.T) {
	env := newTestEnv(t)
	env.addEmployee(t, "alice@co.com", true)
	env.configureEmail(t, 10, true)

	now := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)
	watermark := now.Add(-30 * time.Minute)
	if err := env.configs.MarkSyncSuccess(integrationdomain.IntegrationEmail, 0, watermark); err != nil {
		t.Fatalf("MarkSyncSuccess: %v", err)
	}

	// Same calendar day but older than the watermark: the day-granular
	// listing returns it, the pipeline must drop it.
	transport := &fakeMailTransport{
		items: []*ingestiondomain.ExternalItem{
			newItem("<old@co.com>", "alice@co.com", watermark.Add(-time.Hour),
				fakeFile{name: "old.pdf", content: "%PDF-1.4"},
			),
		},
	}
	engine := newEmailEngine(env, transport, now)

	result := engine.Run(context.Background())
	if !result.Success {
		t.Fatalf("run failed: %s", result.Message)
	}
	if result.Processed != 0 {
		t.Fatalf("processed = %d, want 0 for pre-watermark message", result.Processed)
	}
	if !transport.sinceSeen.Equal(watermark) {
		t.Fatalf("listing window = %v, want stored watermark %v", transport.sinceSeen, watermark)
	}
}

func TestEmailEngineConnectionFailed(t *testing.T) {
	env := newTestEnv(t)
	env.configureEmail(t, 10, true)

	transport := &fakeMailTransport{connectErr: errors.New("dial tcp: connection refused")}
	engine := newEmailEngine(env, transport, time.Now())

	result := engine.Run(context.Background())
	if result.Success {
		t.Fatal("expected failure when the transport cannot connect")
	}
	if !strings.Contains(result.Message, "connection failed") {
		t.Fatalf("message = %q", result.Message)
	}

	cfg, _ := env.configs.FindByType(integrationdomain.IntegrationEmail)
	if cfg.LastSync != nil {
		t.Fatal("failed run must not advance the watermark")
	}
}

func TestEmailEnginePerItemFailureIsolation(t *testing.T) {
	env := newTestEnv(t)
	env.addEmployee(t, "alice@co.com", true)
	env.addEmployee(t, "carol@co.com", true)
	env.configureEmail(t, 10, true)

	now := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)
	broken := newItem("<broken@co.com>", "alice@co.com", now.Add(-time.Minute))
	broken.Files = func(ctx context.Context) ([]ingestiondomain.Attachment, error) {
		return nil, errors.New("mime parse error")
	}

	transport := &fakeMailTransport{
		items: []*ingestiondomain.ExternalItem{
			broken,
			newItem("<good@co.com>", "carol@co.com", now.Add(-time.Minute),
				fakeFile{name: "hours.csv", content: "day,hours"},
			),
		},
	}
	engine := newEmailEngine(env, transport, now)

	result := engine.Run(context.Background())
	if !result.Success {
		t.Fatalf("run failed: %s", result.Message)
	}
	if result.Processed != 1 {
		t.Fatalf("processed = %d, want 1 (broken item skipped, good one landed)", result.Processed)
	}

	processed, _ := env.ledger.IsProcessed(uploaddomain.SourceEmail, "<broken@co.com>")
	if processed {
		t.Fatal("failed item must stay out of the ledger for retry")
	}
}

func TestEmailEngineFetchFailureSkipsAttachment(t *testing.T) {
	env := newTestEnv(t)
	env.addEmployee(t, "alice@co.com", true)
	env.configureEmail(t, 10, true)

	now := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)
	transport := &fakeMailTransport{
		items: []*ingestiondomain.ExternalItem{
			newItem("<msg@co.com>", "alice@co.com", now.Add(-time.Minute),
				fakeFile{name: "broken.pdf", fetchErr: errors.New("download aborted")},
				fakeFile{name: "fine.pdf", content: "%PDF-1.4"},
			),
		},
	}
	engine := newEmailEngine(env, transport, now)

	result := engine.Run(context.Background())
	if !result.Success || result.Processed != 1 {
		t.Fatalf("result = %+v, want success with 1 processed", result)
	}

	_, total, err := env.uploads.List(uploadrepo.ListFilter{})
	if err != nil || total != 1 {
		t.Fatalf("upload count = (%d, %v), want 1", total, err)
	}
}
