package repository

import (
	"errors"
	"time"

	employeedomain "timesheetpro-backend/internal/employee/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClientRepository persists billing clients.
type ClientRepository interface {
	Create(client *employeedomain.Client) error
	FindByID(id string) (*employeedomain.Client, error)
	List(activeOnly bool) ([]employeedomain.Client, error)
	Update(client *employeedomain.Client) error
	Deactivate(id string) error
}

type clientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{
		db: db,
	}
}

func (r *clientRepository) Create(client *employeedomain.Client) error {
	client.ID = uuid.New().String()
	now := time.Now()
	client.CreatedAt = now
	client.UpdatedAt = now
	return r.db.Create(client).Error
}

func (r *clientRepository) FindByID(id string) (*employeedomain.Client, error) {
	var client employeedomain.Client
	err := r.db.Where("id = ?", id).First(&client).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) List(activeOnly bool) ([]employeedomain.Client, error) {
	query := r.db.Order("name")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var clients []employeedomain.Client
	err := query.Find(&clients).Error
	return clients, err
}

func (r *clientRepository) Update(client *employeedomain.Client) error {
	client.UpdatedAt = time.Now()
	return r.db.Save(client).Error
}

func (r *clientRepository) Deactivate(id string) error {
	return r.db.Model(&employeedomain.Client{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": false, "updated_at": time.Now()}).Error
}
