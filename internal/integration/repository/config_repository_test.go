package repository

import (
	"errors"
	"testing"
	"time"

	integrationdomain "timesheetpro-backend/internal/integration/domain"
)

func TestUpsertCreatesThenUpdates(t *testing.T) {
	repo := NewConfigRepository(openTestDB(t))

	cfg := integrationdomain.IntegrationConfig{
		Type:                integrationdomain.IntegrationEmail,
		ConfigData:          "blob-1",
		SyncIntervalMinutes: 10,
	}
	if err := repo.Upsert(&cfg); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}
	if cfg.ID == "" {
		t.Fatal("Upsert did not assign an id")
	}

	// Simulate runs so watermark/counter carry state worth preserving.
	at := time.Now().Add(-time.Hour)
	if err := repo.MarkSyncSuccess(integrationdomain.IntegrationEmail, 3, at); err != nil {
		t.Fatalf("MarkSyncSuccess returned error: %v", err)
	}

	updated := integrationdomain.IntegrationConfig{
		Type:                integrationdomain.IntegrationEmail,
		ConfigData:          "blob-2",
		SyncIntervalMinutes: 5,
	}
	if err := repo.Upsert(&updated); err != nil {
		t.Fatalf("second Upsert returned error: %v", err)
	}
	if updated.ID != cfg.ID {
		t.Fatalf("Upsert created a second row: id %q != %q", updated.ID, cfg.ID)
	}
	if updated.SyncCount != 3 {
		t.Fatalf("Upsert lost sync_count: got %d, want 3", updated.SyncCount)
	}
	if updated.LastSync == nil {
		t.Fatal("Upsert lost last_sync watermark")
	}
	if updated.ConfigData != "blob-2" || updated.SyncIntervalMinutes != 5 {
		t.Fatal("Upsert did not replace settings")
	}
}

func TestMarkSyncSuccessAccumulates(t *testing.T) {
	repo := NewConfigRepository(openTestDB(t))

	cfg := integrationdomain.IntegrationConfig{
		Type:                integrationdomain.IntegrationDrive,
		ConfigData:          "blob",
		SyncIntervalMinutes: 10,
	}
	if err := repo.Upsert(&cfg); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}

	first := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)
	second := first.Add(10 * time.Minute)
	if err := repo.MarkSyncSuccess(integrationdomain.IntegrationDrive, 2, first); err != nil {
		t.Fatalf("first MarkSyncSuccess: %v", err)
	}
	if err := repo.MarkSyncSuccess(integrationdomain.IntegrationDrive, 0, second); err != nil {
		t.Fatalf("second MarkSyncSuccess: %v", err)
	}

	got, err := repo.FindByType(integrationdomain.IntegrationDrive)
	if err != nil || got == nil {
		t.Fatalf("FindByType = (%v, %v)", got, err)
	}
	if got.SyncCount != 2 {
		t.Fatalf("sync_count = %d, want 2", got.SyncCount)
	}
	if got.LastSync == nil || !got.LastSync.Equal(second) {
		t.Fatalf("last_sync = %v, want %v (zero-item run must still advance the watermark)", got.LastSync, second)
	}
}

func TestMarkSyncSuccessWithoutConfig(t *testing.T) {
	repo := NewConfigRepository(openTestDB(t))

	err := repo.MarkSyncSuccess(integrationdomain.IntegrationEmail, 1, time.Now())
	if !errors.Is(err, integrationdomain.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestToggleActive(t *testing.T) {
	repo := NewConfigRepository(openTestDB(t))

	if _, err := repo.ToggleActive(integrationdomain.IntegrationEmail); !errors.Is(err, integrationdomain.ErrNotConfigured) {
		t.Fatalf("toggle on missing config: expected ErrNotConfigured, got %v", err)
	}

	cfg := integrationdomain.IntegrationConfig{
		Type:                integrationdomain.IntegrationEmail,
		ConfigData:          "blob",
		SyncIntervalMinutes: 10,
	}
	if err := repo.Upsert(&cfg); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}

	toggled, err := repo.ToggleActive(integrationdomain.IntegrationEmail)
	if err != nil {
		t.Fatalf("ToggleActive returned error: %v", err)
	}
	if !toggled.IsActive {
		t.Fatal("expected config active after first toggle")
	}

	toggled, err = repo.ToggleActive(integrationdomain.IntegrationEmail)
	if err != nil {
		t.Fatalf("second ToggleActive returned error: %v", err)
	}
	if toggled.IsActive {
		t.Fatal("expected config inactive after second toggle")
	}
}

func TestFindByTypeMissing(t *testing.T) {
	repo := NewConfigRepository(openTestDB(t))

	got, err := repo.FindByType(integrationdomain.IntegrationDrive)
	if err != nil {
		t.Fatalf("FindByType returned error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing config, got %+v", got)
	}
}
