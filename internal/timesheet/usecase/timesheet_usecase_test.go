package usecase

import (
	"errors"
	"testing"
	"time"

	timesheetdomain "timesheetpro-backend/internal/timesheet/domain"
	timesheetdto "timesheetpro-backend/internal/timesheet/dto"
	"timesheetpro-backend/internal/timesheet/repository"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestUsecase(t *testing.T) TimesheetUsecase {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&timesheetdomain.Timesheet{}, &timesheetdomain.Approval{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return NewTimesheetUsecase(repository.NewTimesheetRepository(db))
}

func createDraft(t *testing.T, uc TimesheetUsecase, employeeID string) *timesheetdomain.Timesheet {
	t.Helper()

	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	ts, err := uc.Create(&timesheetdto.CreateTimesheetRequest{
		EmployeeID:  employeeID,
		PeriodStart: start,
		PeriodEnd:   start.AddDate(0, 0, 7),
		TotalHours:  40,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return ts
}

func TestCreateRejectsInvertedPeriod(t *testing.T) {
	uc := newTestUsecase(t)

	start := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	_, err := uc.Create(&timesheetdto.CreateTimesheetRequest{
		EmployeeID:  "emp-1",
		PeriodStart: start,
		PeriodEnd:   start.AddDate(0, 0, -7),
	})
	if !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("err = %v, want ErrInvalidPeriod", err)
	}
}

func TestSubmitApproveFlow(t *testing.T) {
	uc := newTestUsecase(t)
	ts := createDraft(t, uc, "emp-1")

	if ts.Status != timesheetdomain.TimesheetDraft {
		t.Fatalf("new timesheet status = %s, want draft", ts.Status)
	}

	// Drafts cannot be decided.
	if _, err := uc.Decide(ts.ID, "mgr-1", true, ""); !errors.Is(err, ErrNotDecidable) {
		t.Fatalf("decide on draft = %v, want ErrNotDecidable", err)
	}

	submitted, err := uc.Submit(ts.ID)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if submitted.Status != timesheetdomain.TimesheetSubmitted {
		t.Fatalf("status after submit = %s", submitted.Status)
	}

	// Submitted timesheets are frozen.
	hours := 45.0
	if _, err := uc.Update(ts.ID, &timesheetdto.UpdateTimesheetRequest{TotalHours: &hours}); !errors.Is(err, ErrNotEditable) {
		t.Fatalf("update after submit = %v, want ErrNotEditable", err)
	}

	approved, err := uc.Decide(ts.ID, "mgr-1", true, "looks right")
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if approved.Status != timesheetdomain.TimesheetApproved {
		t.Fatalf("status after approval = %s", approved.Status)
	}

	stored, err := uc.Get(ts.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Status != timesheetdomain.TimesheetApproved {
		t.Fatalf("stored status = %s, want approved", stored.Status)
	}

	approvals, err := uc.Approvals(ts.ID)
	if err != nil {
		t.Fatalf("Approvals: %v", err)
	}
	if len(approvals) != 1 || approvals[0].ApproverID != "mgr-1" || approvals[0].Comments != "looks right" {
		t.Fatalf("unexpected approval audit: %+v", approvals)
	}
}

func TestRejectedTimesheetIsEditableAgain(t *testing.T) {
	uc := newTestUsecase(t)
	ts := createDraft(t, uc, "emp-1")

	if _, err := uc.Submit(ts.ID); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	rejected, err := uc.Decide(ts.ID, "mgr-1", false, "missing Friday")
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if rejected.Status != timesheetdomain.TimesheetRejected {
		t.Fatalf("status after rejection = %s", rejected.Status)
	}

	hours := 38.5
	updated, err := uc.Update(ts.ID, &timesheetdto.UpdateTimesheetRequest{TotalHours: &hours})
	if err != nil {
		t.Fatalf("update after rejection: %v", err)
	}
	if updated.TotalHours != 38.5 {
		t.Fatalf("total hours = %v", updated.TotalHours)
	}

	// Resubmission after fixing the rejection.
	resubmitted, err := uc.Submit(ts.ID)
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if resubmitted.Status != timesheetdomain.TimesheetSubmitted {
		t.Fatalf("status after resubmit = %s", resubmitted.Status)
	}

	if _, err := uc.Decide(ts.ID, "mgr-1", true, ""); err != nil {
		t.Fatalf("approve after resubmit: %v", err)
	}
	approvals, err := uc.Approvals(ts.ID)
	if err != nil {
		t.Fatalf("Approvals: %v", err)
	}
	if len(approvals) != 2 {
		t.Fatalf("approval count = %d, want 2", len(approvals))
	}
}

func TestDeleteOnlyWhileEditable(t *testing.T) {
	uc := newTestUsecase(t)
	ts := createDraft(t, uc, "emp-1")

	if _, err := uc.Submit(ts.ID); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := uc.Delete(ts.ID); err == nil {
		t.Fatal("expected delete of a submitted timesheet to fail")
	}

	draft := createDraft(t, uc, "emp-2")
	if err := uc.Delete(draft.ID); err != nil {
		t.Fatalf("delete draft: %v", err)
	}
	if _, err := uc.Get(draft.ID); !errors.Is(err, ErrTimesheetNotFound) {
		t.Fatalf("Get after delete = %v, want ErrTimesheetNotFound", err)
	}
}

func TestListFiltersByEmployeeAndStatus(t *testing.T) {
	uc := newTestUsecase(t)
	a := createDraft(t, uc, "emp-a")
	createDraft(t, uc, "emp-b")

	if _, err := uc.Submit(a.ID); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	rows, total, err := uc.List(repository.ListFilter{EmployeeID: "emp-a"})
	if err != nil || total != 1 {
		t.Fatalf("list by employee = (%d, %v), want 1", total, err)
	}
	if rows[0].ID != a.ID {
		t.Fatalf("listed wrong timesheet: %s", rows[0].ID)
	}

	_, total, err = uc.List(repository.ListFilter{Status: timesheetdomain.TimesheetDraft})
	if err != nil || total != 1 {
		t.Fatalf("list by status = (%d, %v), want 1", total, err)
	}
}
