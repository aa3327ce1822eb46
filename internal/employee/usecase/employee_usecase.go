package usecase

import (
	"errors"

	authrepo "timesheetpro-backend/internal/auth/repository"
	employeedomain "timesheetpro-backend/internal/employee/domain"
	employeedto "timesheetpro-backend/internal/employee/dto"
	"timesheetpro-backend/internal/employee/repository"
)

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrEmailTaken       = errors.New("email already registered")
	ErrClientNotFound   = errors.New("client not found")
	ErrCalendarNotFound = errors.New("calendar not found")
)

// EmployeeUsecase manages the employee directory, clients and calendars.
type EmployeeUsecase interface {
	CreateEmployee(req *employeedto.CreateEmployeeRequest) (*employeedomain.Employee, error)
	GetEmployee(id string) (*employeedomain.Employee, error)
	ListEmployees(activeOnly bool) ([]employeedomain.Employee, error)
	UpdateEmployee(id string, req *employeedto.UpdateEmployeeRequest) (*employeedomain.Employee, error)
	DeactivateEmployee(id string) error

	CreateClient(req *employeedto.ClientRequest) (*employeedomain.Client, error)
	ListClients(activeOnly bool) ([]employeedomain.Client, error)
	UpdateClient(id string, req *employeedto.ClientRequest) (*employeedomain.Client, error)
	DeactivateClient(id string) error

	CreateCalendar(req *employeedto.CreateCalendarRequest) (*employeedomain.Calendar, error)
	GetCalendar(id string) (*employeedomain.Calendar, error)
	ListCalendars(year int) ([]employeedomain.Calendar, error)
	DeleteCalendar(id string) error
	AddHoliday(calendarID string, req *employeedto.HolidayRequest) (*employeedomain.Holiday, error)
	RemoveHoliday(calendarID, holidayID string) error
}

type employeeUsecase struct {
	employees repository.EmployeeRepository
	clients   repository.ClientRepository
	calendars repository.CalendarRepository
}

func NewEmployeeUsecase(employees repository.EmployeeRepository, clients repository.ClientRepository, calendars repository.CalendarRepository) EmployeeUsecase {
	return &employeeUsecase{
		employees: employees,
		clients:   clients,
		calendars: calendars,
	}
}

func (u *employeeUsecase) CreateEmployee(req *employeedto.CreateEmployeeRequest) (*employeedomain.Employee, error) {
	existing, err := u.employees.FindByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hashed, err := authrepo.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	role := employeedomain.Role(req.Role)
	if role == "" {
		role = employeedomain.RoleEmployee
	}

	employee := &employeedomain.Employee{
		Email:          req.Email,
		FullName:       req.FullName,
		Role:           role,
		HashedPassword: hashed,
		ManagerID:      req.ManagerID,
		ClientID:       req.ClientID,
		HourlyRate:     req.HourlyRate,
		IsActive:       true,
		StartDate:      req.StartDate,
	}
	if err := u.employees.Create(employee); err != nil {
		return nil, err
	}
	return employee, nil
}

func (u *employeeUsecase) GetEmployee(id string) (*employeedomain.Employee, error) {
	employee, err := u.employees.FindByID(id)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		return nil, ErrEmployeeNotFound
	}
	return employee, nil
}

func (u *employeeUsecase) ListEmployees(activeOnly bool) ([]employeedomain.Employee, error) {
	return u.employees.List(activeOnly)
}

func (u *employeeUsecase) UpdateEmployee(id string, req *employeedto.UpdateEmployeeRequest) (*employeedomain.Employee, error) {
	employee, err := u.employees.FindByID(id)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		return nil, ErrEmployeeNotFound
	}

	if req.FullName != nil {
		employee.FullName = *req.FullName
	}
	if req.Role != nil {
		employee.Role = employeedomain.Role(*req.Role)
	}
	if req.ManagerID != nil {
		employee.ManagerID = req.ManagerID
	}
	if req.ClientID != nil {
		employee.ClientID = req.ClientID
	}
	if req.HourlyRate != nil {
		employee.HourlyRate = *req.HourlyRate
	}
	if req.StartDate != nil {
		employee.StartDate = req.StartDate
	}

	if err := u.employees.Update(employee); err != nil {
		return nil, err
	}
	return employee, nil
}

// DeactivateEmployee soft-disables the account. Rows and uploads stay; the
// employee just stops matching inbound timesheets and cannot log in.
func (u *employeeUsecase) DeactivateEmployee(id string) error {
	employee, err := u.employees.FindByID(id)
	if err != nil {
		return err
	}
	if employee == nil {
		return ErrEmployeeNotFound
	}
	return u.employees.Deactivate(id)
}

func (u *employeeUsecase) CreateClient(req *employeedto.ClientRequest) (*employeedomain.Client, error) {
	client := &employeedomain.Client{
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		Address:      req.Address,
		IsActive:     true,
	}
	if err := u.clients.Create(client); err != nil {
		return nil, err
	}
	return client, nil
}

func (u *employeeUsecase) ListClients(activeOnly bool) ([]employeedomain.Client, error) {
	return u.clients.List(activeOnly)
}

func (u *employeeUsecase) UpdateClient(id string, req *employeedto.ClientRequest) (*employeedomain.Client, error) {
	client, err := u.clients.FindByID(id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, ErrClientNotFound
	}

	client.Name = req.Name
	client.ContactEmail = req.ContactEmail
	client.Address = req.Address
	if err := u.clients.Update(client); err != nil {
		return nil, err
	}
	return client, nil
}

func (u *employeeUsecase) DeactivateClient(id string) error {
	client, err := u.clients.FindByID(id)
	if err != nil {
		return err
	}
	if client == nil {
		return ErrClientNotFound
	}
	return u.clients.Deactivate(id)
}

func (u *employeeUsecase) CreateCalendar(req *employeedto.CreateCalendarRequest) (*employeedomain.Calendar, error) {
	calendar := &employeedomain.Calendar{
		Name: req.Name,
		Year: req.Year,
	}
	for _, h := range req.Holidays {
		calendar.Holidays = append(calendar.Holidays, employeedomain.Holiday{
			Date: h.Date,
			Name: h.Name,
		})
	}
	if err := u.calendars.Create(calendar); err != nil {
		return nil, err
	}
	return calendar, nil
}

func (u *employeeUsecase) GetCalendar(id string) (*employeedomain.Calendar, error) {
	calendar, err := u.calendars.FindByID(id)
	if err != nil {
		return nil, err
	}
	if calendar == nil {
		return nil, ErrCalendarNotFound
	}
	return calendar, nil
}

func (u *employeeUsecase) ListCalendars(year int) ([]employeedomain.Calendar, error) {
	return u.calendars.List(year)
}

func (u *employeeUsecase) DeleteCalendar(id string) error {
	calendar, err := u.calendars.FindByID(id)
	if err != nil {
		return err
	}
	if calendar == nil {
		return ErrCalendarNotFound
	}
	return u.calendars.Delete(id)
}

func (u *employeeUsecase) AddHoliday(calendarID string, req *employeedto.HolidayRequest) (*employeedomain.Holiday, error) {
	calendar, err := u.calendars.FindByID(calendarID)
	if err != nil {
		return nil, err
	}
	if calendar == nil {
		return nil, ErrCalendarNotFound
	}

	holiday := &employeedomain.Holiday{
		CalendarID: calendarID,
		Date:       req.Date,
		Name:       req.Name,
	}
	if err := u.calendars.AddHoliday(holiday); err != nil {
		return nil, err
	}
	return holiday, nil
}

func (u *employeeUsecase) RemoveHoliday(calendarID, holidayID string) error {
	calendar, err := u.calendars.FindByID(calendarID)
	if err != nil {
		return err
	}
	if calendar == nil {
		return ErrCalendarNotFound
	}
	return u.calendars.RemoveHoliday(holidayID)
}
