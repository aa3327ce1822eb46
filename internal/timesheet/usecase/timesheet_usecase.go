package usecase

import (
	"errors"
	"fmt"

	timesheetdomain "timesheetpro-backend/internal/timesheet/domain"
	timesheetdto "timesheetpro-backend/internal/timesheet/dto"
	"timesheetpro-backend/internal/timesheet/repository"
)

var (
	ErrTimesheetNotFound = errors.New("timesheet not found")
	ErrInvalidPeriod     = errors.New("period end must be after period start")
	ErrNotEditable       = errors.New("only draft or rejected timesheets can be edited")
	ErrNotSubmittable    = errors.New("only draft or rejected timesheets can be submitted")
	ErrNotDecidable      = errors.New("only submitted timesheets can be approved or rejected")
)

// TimesheetUsecase runs the draft -> submitted -> approved/rejected workflow.
type TimesheetUsecase interface {
	Create(req *timesheetdto.CreateTimesheetRequest) (*timesheetdomain.Timesheet, error)
	Get(id string) (*timesheetdomain.Timesheet, error)
	List(filter repository.ListFilter) ([]timesheetdomain.Timesheet, int64, error)
	Update(id string, req *timesheetdto.UpdateTimesheetRequest) (*timesheetdomain.Timesheet, error)
	Delete(id string) error
	Submit(id string) (*timesheetdomain.Timesheet, error)
	Decide(id, approverID string, approve bool, comments string) (*timesheetdomain.Timesheet, error)
	Approvals(id string) ([]timesheetdomain.Approval, error)
}

type timesheetUsecase struct {
	timesheets repository.TimesheetRepository
}

func NewTimesheetUsecase(timesheets repository.TimesheetRepository) TimesheetUsecase {
	return &timesheetUsecase{
		timesheets: timesheets,
	}
}

func (u *timesheetUsecase) Create(req *timesheetdto.CreateTimesheetRequest) (*timesheetdomain.Timesheet, error) {
	if !req.PeriodEnd.After(req.PeriodStart) {
		return nil, ErrInvalidPeriod
	}

	timesheet := &timesheetdomain.Timesheet{
		EmployeeID:  req.EmployeeID,
		ClientID:    req.ClientID,
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
		TotalHours:  req.TotalHours,
		Status:      timesheetdomain.TimesheetDraft,
		Notes:       req.Notes,
		UploadID:    req.UploadID,
	}
	if err := u.timesheets.Create(timesheet); err != nil {
		return nil, err
	}
	return timesheet, nil
}

func (u *timesheetUsecase) Get(id string) (*timesheetdomain.Timesheet, error) {
	timesheet, err := u.timesheets.FindByID(id)
	if err != nil {
		return nil, err
	}
	if timesheet == nil {
		return nil, ErrTimesheetNotFound
	}
	return timesheet, nil
}

func (u *timesheetUsecase) List(filter repository.ListFilter) ([]timesheetdomain.Timesheet, int64, error) {
	return u.timesheets.List(filter)
}

func editable(status timesheetdomain.TimesheetStatus) bool {
	return status == timesheetdomain.TimesheetDraft || status == timesheetdomain.TimesheetRejected
}

func (u *timesheetUsecase) Update(id string, req *timesheetdto.UpdateTimesheetRequest) (*timesheetdomain.Timesheet, error) {
	timesheet, err := u.Get(id)
	if err != nil {
		return nil, err
	}
	if !editable(timesheet.Status) {
		return nil, ErrNotEditable
	}

	if req.PeriodStart != nil {
		timesheet.PeriodStart = *req.PeriodStart
	}
	if req.PeriodEnd != nil {
		timesheet.PeriodEnd = *req.PeriodEnd
	}
	if !timesheet.PeriodEnd.After(timesheet.PeriodStart) {
		return nil, ErrInvalidPeriod
	}
	if req.TotalHours != nil {
		timesheet.TotalHours = *req.TotalHours
	}
	if req.Notes != nil {
		timesheet.Notes = *req.Notes
	}
	if req.UploadID != nil {
		timesheet.UploadID = req.UploadID
	}

	if err := u.timesheets.Update(timesheet); err != nil {
		return nil, err
	}
	return timesheet, nil
}

func (u *timesheetUsecase) Delete(id string) error {
	timesheet, err := u.Get(id)
	if err != nil {
		return err
	}
	if !editable(timesheet.Status) {
		return fmt.Errorf("cannot delete a %s timesheet", timesheet.Status)
	}
	return u.timesheets.Delete(id)
}

func (u *timesheetUsecase) Submit(id string) (*timesheetdomain.Timesheet, error) {
	timesheet, err := u.Get(id)
	if err != nil {
		return nil, err
	}
	if !editable(timesheet.Status) {
		return nil, ErrNotSubmittable
	}

	timesheet.Status = timesheetdomain.TimesheetSubmitted
	if err := u.timesheets.Update(timesheet); err != nil {
		return nil, err
	}
	return timesheet, nil
}

func (u *timesheetUsecase) Decide(id, approverID string, approve bool, comments string) (*timesheetdomain.Timesheet, error) {
	timesheet, err := u.Get(id)
	if err != nil {
		return nil, err
	}
	if timesheet.Status != timesheetdomain.TimesheetSubmitted {
		return nil, ErrNotDecidable
	}

	status := timesheetdomain.TimesheetRejected
	if approve {
		status = timesheetdomain.TimesheetApproved
	}

	approval := &timesheetdomain.Approval{
		TimesheetID: id,
		ApproverID:  approverID,
		Status:      status,
		Comments:    comments,
	}
	if err := u.timesheets.RecordApproval(approval); err != nil {
		return nil, err
	}

	timesheet.Status = status
	return timesheet, nil
}

func (u *timesheetUsecase) Approvals(id string) ([]timesheetdomain.Approval, error) {
	if _, err := u.Get(id); err != nil {
		return nil, err
	}
	return u.timesheets.ApprovalsFor(id)
}
