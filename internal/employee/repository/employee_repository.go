package repository

import (
	"errors"
	"strings"
	"time"

	employeedomain "timesheetpro-backend/internal/employee/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EmployeeRepository persists the employee directory.
type EmployeeRepository interface {
	Create(employee *employeedomain.Employee) error
	FindByID(id string) (*employeedomain.Employee, error)
	FindByEmail(email string) (*employeedomain.Employee, error)
	List(activeOnly bool) ([]employeedomain.Employee, error)
	Update(employee *employeedomain.Employee) error
	Deactivate(id string) error
	EmailDirectory() (map[string]string, error)
}

// employeeRepository implements EmployeeRepository
type employeeRepository struct {
	db *gorm.DB
}

// NewEmployeeRepository creates a new instance of employeeRepository
func NewEmployeeRepository(db *gorm.DB) EmployeeRepository {
	return &employeeRepository{
		db: db,
	}
}

func (r *employeeRepository) Create(employee *employeedomain.Employee) error {
	employee.ID = uuid.New().String()
	employee.Email = strings.ToLower(employee.Email)
	now := time.Now()
	employee.CreatedAt = now
	employee.UpdatedAt = now
	return r.db.Create(employee).Error
}

func (r *employeeRepository) FindByID(id string) (*employeedomain.Employee, error) {
	var employee employeedomain.Employee
	err := r.db.Where("id = ?", id).First(&employee).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &employee, nil
}

func (r *employeeRepository) FindByEmail(email string) (*employeedomain.Employee, error) {
	var employee employeedomain.Employee
	err := r.db.Where("email = ?", strings.ToLower(email)).First(&employee).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &employee, nil
}

func (r *employeeRepository) List(activeOnly bool) ([]employeedomain.Employee, error) {
	query := r.db.Order("full_name")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var employees []employeedomain.Employee
	err := query.Find(&employees).Error
	return employees, err
}

func (r *employeeRepository) Update(employee *employeedomain.Employee) error {
	employee.Email = strings.ToLower(employee.Email)
	employee.UpdatedAt = time.Now()
	return r.db.Save(employee).Error
}

func (r *employeeRepository) Deactivate(id string) error {
	return r.db.Model(&employeedomain.Employee{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": false, "updated_at": time.Now()}).Error
}

// EmailDirectory snapshots active employees as a lowercase email -> id map.
// Ingestion engines take one snapshot per run so a scan sees a consistent
// directory.
func (r *employeeRepository) EmailDirectory() (map[string]string, error) {
	var employees []employeedomain.Employee
	if err := r.db.Select("id", "email").Where("is_active = ?", true).Find(&employees).Error; err != nil {
		return nil, err
	}

	directory := make(map[string]string, len(employees))
	for _, e := range employees {
		directory[strings.ToLower(e.Email)] = e.ID
	}
	return directory, nil
}
