package repository

import (
	"time"

	authdomain "timesheetpro-backend/internal/auth/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FCMTokenRepository defines the interface for FCM token operations
type FCMTokenRepository interface {
	SaveToken(employeeID, token string) error
	GetTokensByEmployeeID(employeeID string) ([]authdomain.FCMToken, error)
	DeleteToken(token string) error
	DeleteTokensByEmployeeID(employeeID string) error
}

// fcmTokenRepository implements FCMTokenRepository interface
type fcmTokenRepository struct {
	db *gorm.DB
}

// NewFCMTokenRepository creates a new instance of fcmTokenRepository
func NewFCMTokenRepository(db *gorm.DB) FCMTokenRepository {
	return &fcmTokenRepository{
		db: db,
	}
}

// SaveToken saves or re-binds an FCM token (atomic upsert on the token value,
// so a device handed to another employee moves with it).
func (r *fcmTokenRepository) SaveToken(employeeID, token string) error {
	fcmToken := &authdomain.FCMToken{
		ID:         uuid.New().String(),
		EmployeeID: employeeID,
		Token:      token,
		CreatedAt:  time.Now(),
	}

	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"employee_id"}),
	}).Create(fcmToken).Error
}

// GetTokensByEmployeeID returns all FCM tokens for an employee
func (r *fcmTokenRepository) GetTokensByEmployeeID(employeeID string) ([]authdomain.FCMToken, error) {
	var tokens []authdomain.FCMToken
	err := r.db.Where("employee_id = ?", employeeID).Find(&tokens).Error
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

// DeleteToken removes a specific FCM token
func (r *fcmTokenRepository) DeleteToken(token string) error {
	return r.db.Where("token = ?", token).Delete(&authdomain.FCMToken{}).Error
}

// DeleteTokensByEmployeeID removes all FCM tokens for an employee
func (r *fcmTokenRepository) DeleteTokensByEmployeeID(employeeID string) error {
	return r.db.Where("employee_id = ?", employeeID).Delete(&authdomain.FCMToken{}).Error
}
