package dto

import "time"

type CreateEmployeeRequest struct {
	Email      string     `json:"email" binding:"required,email"`
	FullName   string     `json:"full_name" binding:"required"`
	Password   string     `json:"password" binding:"required,min=6"`
	Role       string     `json:"role" binding:"omitempty,oneof=admin manager employee finance"`
	ManagerID  *string    `json:"manager_id,omitempty"`
	ClientID   *string    `json:"client_id,omitempty"`
	HourlyRate float64    `json:"hourly_rate"`
	StartDate  *time.Time `json:"start_date,omitempty"`
}

type UpdateEmployeeRequest struct {
	FullName   *string    `json:"full_name,omitempty"`
	Role       *string    `json:"role,omitempty" binding:"omitempty,oneof=admin manager employee finance"`
	ManagerID  *string    `json:"manager_id,omitempty"`
	ClientID   *string    `json:"client_id,omitempty"`
	HourlyRate *float64   `json:"hourly_rate,omitempty"`
	StartDate  *time.Time `json:"start_date,omitempty"`
}

type ClientRequest struct {
	Name         string `json:"name" binding:"required"`
	ContactEmail string `json:"contact_email" binding:"omitempty,email"`
	Address      string `json:"address"`
}

type HolidayRequest struct {
	Date time.Time `json:"date" binding:"required"`
	Name string    `json:"name" binding:"required"`
}

type CreateCalendarRequest struct {
	Name     string           `json:"name" binding:"required"`
	Year     int              `json:"year" binding:"required"`
	Holidays []HolidayRequest `json:"holidays"`
}
