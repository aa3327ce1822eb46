package usecase

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	employeedomain "timesheetpro-backend/internal/employee/domain"
	employeerepo "timesheetpro-backend/internal/employee/repository"
	uploaddomain "timesheetpro-backend/internal/upload/domain"
	uploadrepo "timesheetpro-backend/internal/upload/repository"
	"timesheetpro-backend/pkg/storage"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestUsecase(t *testing.T) (UploadUsecase, employeerepo.EmployeeRepository) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&employeedomain.Employee{}, &uploaddomain.TimesheetUpload{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	employees := employeerepo.NewEmployeeRepository(db)
	uploads := uploadrepo.NewUploadRepository(db)
	store := storage.NewStore(t.TempDir())
	return NewUploadUsecase(uploads, employees, store), employees
}

func addEmployee(t *testing.T, employees employeerepo.EmployeeRepository, email string) *employeedomain.Employee {
	t.Helper()
	emp := &employeedomain.Employee{
		Email:    email,
		FullName: email,
		Role:     employeedomain.RoleEmployee,
		IsActive: true,
	}
	if err := employees.Create(emp); err != nil {
		t.Fatalf("failed to create employee: %v", err)
	}
	return emp
}

func TestUploadManual(t *testing.T) {
	uc, employees := newTestUsecase(t)
	emp := addEmployee(t, employees, "dana@co.com")

	upload, err := uc.UploadManual([]byte("%PDF-1.4"), "March Timesheet.pdf", emp.ID, emp.ID)
	if err != nil {
		t.Fatalf("UploadManual: %v", err)
	}
	if upload.Source != uploaddomain.SourceManual || upload.Status != uploaddomain.StatusPending {
		t.Fatalf("unexpected upload row: %+v", upload)
	}
	if upload.FileFormat != "pdf" {
		t.Fatalf("format = %s, want pdf", upload.FileFormat)
	}
	if upload.UploadedBy == nil || *upload.UploadedBy != emp.ID {
		t.Fatal("uploaded_by not recorded")
	}
	// file_name carries the generated on-disk name; the original name only
	// lives in metadata.
	if upload.FileName != filepath.Base(upload.FilePath) {
		t.Fatalf("file_name %q does not match the stored file %q", upload.FileName, filepath.Base(upload.FilePath))
	}
	if upload.FileName == "March Timesheet.pdf" {
		t.Fatal("file_name kept the original filename instead of the stored one")
	}
	if !strings.Contains(upload.Metadata, "March Timesheet.pdf") {
		t.Fatalf("metadata lost the original name: %s", upload.Metadata)
	}
	if _, err := os.Stat(upload.FilePath); err != nil {
		t.Fatalf("landed file missing on disk: %v", err)
	}
}

func TestUploadManualUnsupportedFormat(t *testing.T) {
	uc, employees := newTestUsecase(t)
	emp := addEmployee(t, employees, "dana@co.com")

	_, err := uc.UploadManual([]byte("MZ"), "virus.exe", emp.ID, emp.ID)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestUploadManualUnknownEmployee(t *testing.T) {
	uc, _ := newTestUsecase(t)

	_, err := uc.UploadManual([]byte("%PDF-1.4"), "sheet.pdf", "missing-id", "missing-id")
	if !errors.Is(err, ErrUnknownEmployee) {
		t.Fatalf("err = %v, want ErrUnknownEmployee", err)
	}
}

func TestDeleteRemovesRowAndFile(t *testing.T) {
	uc, employees := newTestUsecase(t)
	emp := addEmployee(t, employees, "dana@co.com")

	upload, err := uc.UploadManual([]byte("day,hours"), "week.csv", emp.ID, emp.ID)
	if err != nil {
		t.Fatalf("UploadManual: %v", err)
	}

	if err := uc.Delete(upload.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(upload.FilePath); !os.IsNotExist(err) {
		t.Fatalf("file still on disk after delete: %v", err)
	}
	if _, err := uc.Get(upload.ID); !errors.Is(err, ErrUploadNotFound) {
		t.Fatalf("Get after delete = %v, want ErrUploadNotFound", err)
	}

	if err := uc.Delete(upload.ID); !errors.Is(err, ErrUploadNotFound) {
		t.Fatalf("second delete = %v, want ErrUploadNotFound", err)
	}
}
