package usecase

import (
	authdto "timesheetpro-backend/internal/auth/dto"
	employeedomain "timesheetpro-backend/internal/employee/domain"
)

// AuthUsecase defines the interface for authentication operations
type AuthUsecase interface {
	Login(req *authdto.LoginRequest) (*authdto.TokenResponse, error)
	RefreshToken(refreshToken string) (*authdto.TokenResponse, error)
	Logout(refreshToken string) error
	ValidateToken(tokenString string) (*employeedomain.Employee, error)
	ChangePassword(employeeID string, req *authdto.ChangePasswordRequest) error
	RegisterFCMToken(employeeID, token string) error
	UnregisterFCMToken(token string) error
}
