package domain

import "time"

// Role controls what an employee can reach through the API.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
	RoleFinance  Role = "finance"
)

// Employee is both a directory entry for ingestion matching and an auth
// principal. Email is the join key for inbound timesheets, so it is unique
// and stored lowercase.
type Employee struct {
	ID             string     `json:"id" gorm:"primaryKey"`
	Email          string     `json:"email" gorm:"uniqueIndex;not null"`
	FullName       string     `json:"full_name" gorm:"not null"`
	Role           Role       `json:"role" gorm:"not null;default:employee"`
	HashedPassword string     `json:"-"`
	ManagerID      *string    `json:"manager_id,omitempty"`
	ClientID       *string    `json:"client_id,omitempty"`
	HourlyRate     float64    `json:"hourly_rate"`
	IsActive       bool       `json:"is_active" gorm:"default:true"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Client is a billing customer employees are assigned to.
type Client struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"uniqueIndex;not null"`
	ContactEmail string    `json:"contact_email,omitempty"`
	Address      string    `json:"address,omitempty"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Calendar is a named working calendar, e.g. per country or per client.
type Calendar struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null"`
	Year      int       `json:"year" gorm:"not null"`
	Holidays  []Holiday `json:"holidays,omitempty" gorm:"foreignKey:CalendarID"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Holiday is a non-working day inside a calendar.
type Holiday struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	CalendarID string    `json:"calendar_id" gorm:"index;not null"`
	Date       time.Time `json:"date" gorm:"not null"`
	Name       string    `json:"name" gorm:"not null"`
}
