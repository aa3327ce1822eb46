package domain

import "time"

type RefreshToken struct {
	Token      string    `json:"token" gorm:"primaryKey"`
	EmployeeID string    `json:"employee_id" gorm:"index;not null"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// FCMToken is one registered push device for an employee.
type FCMToken struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	EmployeeID string    `json:"employee_id" gorm:"index;not null"`
	Token      string    `json:"token" gorm:"uniqueIndex;not null"`
	CreatedAt  time.Time `json:"created_at"`
}
