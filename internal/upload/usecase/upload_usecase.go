package usecase

import (
	"encoding/json"
	"errors"
	"log"

	employeerepo "timesheetpro-backend/internal/employee/repository"
	uploaddomain "timesheetpro-backend/internal/upload/domain"
	"timesheetpro-backend/internal/upload/repository"
	"timesheetpro-backend/pkg/storage"
)

var (
	ErrUnknownEmployee   = errors.New("employee not found or inactive")
	ErrUploadNotFound    = errors.New("upload not found")
	ErrUnsupportedFormat = errors.New("unsupported file format (expected pdf, jpg, jpeg or csv)")
)

// UploadUsecase covers manual uploads and upload administration. Ingested
// uploads bypass this layer; they are created by the pipeline.
type UploadUsecase interface {
	UploadManual(content []byte, filename, employeeID, uploadedBy string) (*uploaddomain.TimesheetUpload, error)
	Get(id string) (*uploaddomain.TimesheetUpload, error)
	List(filter repository.ListFilter) ([]uploaddomain.TimesheetUpload, int64, error)
	Delete(id string) error
	Stats() (*uploaddomain.UploadStats, error)
}

type uploadUsecase struct {
	uploads   repository.UploadRepository
	employees employeerepo.EmployeeRepository
	store     *storage.Store
}

func NewUploadUsecase(uploads repository.UploadRepository, employees employeerepo.EmployeeRepository, store *storage.Store) UploadUsecase {
	return &uploadUsecase{
		uploads:   uploads,
		employees: employees,
		store:     store,
	}
}

func (u *uploadUsecase) UploadManual(content []byte, filename, employeeID, uploadedBy string) (*uploaddomain.TimesheetUpload, error) {
	format, ok := storage.ValidateFormat(filename)
	if !ok {
		return nil, ErrUnsupportedFormat
	}

	employee, err := u.employees.FindByID(employeeID)
	if err != nil {
		return nil, err
	}
	if employee == nil || !employee.IsActive {
		return nil, ErrUnknownEmployee
	}

	path, storedName, err := u.store.Save(content, filename, employeeID)
	if err != nil {
		return nil, err
	}

	metadata, _ := json.Marshal(map[string]interface{}{
		"original_name": filename,
		"size_bytes":    len(content),
	})

	upload := &uploaddomain.TimesheetUpload{
		EmployeeID: employeeID,
		FilePath:   path,
		FileName:   storedName,
		FileFormat: format,
		Source:     uploaddomain.SourceManual,
		Status:     uploaddomain.StatusPending,
		UploadedBy: &uploadedBy,
		Metadata:   string(metadata),
	}
	if err := u.uploads.Create(upload); err != nil {
		u.store.Delete(path)
		return nil, err
	}
	return upload, nil
}

func (u *uploadUsecase) Get(id string) (*uploaddomain.TimesheetUpload, error) {
	upload, err := u.uploads.FindByID(id)
	if err != nil {
		return nil, err
	}
	if upload == nil {
		return nil, ErrUploadNotFound
	}
	return upload, nil
}

// Delete removes the row and the landed file. A file already gone from
// disk is fine; the row is the source of truth.
func (u *uploadUsecase) Delete(id string) error {
	upload, err := u.uploads.FindByID(id)
	if err != nil {
		return err
	}
	if upload == nil {
		return ErrUploadNotFound
	}

	if err := u.uploads.Delete(id); err != nil {
		return err
	}

	removed, err := u.store.Delete(upload.FilePath)
	if err != nil {
		log.Printf("[Uploads] Failed to remove file %s: %v", upload.FilePath, err)
	} else if !removed {
		log.Printf("[Uploads] File %s was already gone", upload.FilePath)
	}
	return nil
}

func (u *uploadUsecase) List(filter repository.ListFilter) ([]uploaddomain.TimesheetUpload, int64, error) {
	return u.uploads.List(filter)
}

func (u *uploadUsecase) Stats() (*uploaddomain.UploadStats, error) {
	return u.uploads.Stats()
}
