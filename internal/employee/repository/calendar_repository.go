package repository

import (
	"errors"
	"time"

	employeedomain "timesheetpro-backend/internal/employee/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CalendarRepository persists working calendars and their holidays.
type CalendarRepository interface {
	Create(calendar *employeedomain.Calendar) error
	FindByID(id string) (*employeedomain.Calendar, error)
	List(year int) ([]employeedomain.Calendar, error)
	Delete(id string) error
	AddHoliday(holiday *employeedomain.Holiday) error
	RemoveHoliday(id string) error
}

type calendarRepository struct {
	db *gorm.DB
}

func NewCalendarRepository(db *gorm.DB) CalendarRepository {
	return &calendarRepository{
		db: db,
	}
}

func (r *calendarRepository) Create(calendar *employeedomain.Calendar) error {
	calendar.ID = uuid.New().String()
	now := time.Now()
	calendar.CreatedAt = now
	calendar.UpdatedAt = now
	for i := range calendar.Holidays {
		calendar.Holidays[i].ID = uuid.New().String()
		calendar.Holidays[i].CalendarID = calendar.ID
	}
	return r.db.Create(calendar).Error
}

func (r *calendarRepository) FindByID(id string) (*employeedomain.Calendar, error) {
	var calendar employeedomain.Calendar
	err := r.db.Preload("Holidays").Where("id = ?", id).First(&calendar).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &calendar, nil
}

func (r *calendarRepository) List(year int) ([]employeedomain.Calendar, error) {
	query := r.db.Preload("Holidays").Order("name")
	if year > 0 {
		query = query.Where("year = ?", year)
	}
	var calendars []employeedomain.Calendar
	err := query.Find(&calendars).Error
	return calendars, err
}

func (r *calendarRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("calendar_id = ?", id).Delete(&employeedomain.Holiday{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&employeedomain.Calendar{}).Error
	})
}

func (r *calendarRepository) AddHoliday(holiday *employeedomain.Holiday) error {
	holiday.ID = uuid.New().String()
	return r.db.Create(holiday).Error
}

func (r *calendarRepository) RemoveHoliday(id string) error {
	return r.db.Where("id = ?", id).Delete(&employeedomain.Holiday{}).Error
}
