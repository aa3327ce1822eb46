package usecase

import (
	"errors"
	"time"

	authdomain "timesheetpro-backend/internal/auth/domain"
	authdto "timesheetpro-backend/internal/auth/dto"
	"timesheetpro-backend/internal/auth/repository"
	employeedomain "timesheetpro-backend/internal/employee/domain"
	employeerepo "timesheetpro-backend/internal/employee/repository"
	"timesheetpro-backend/pkg/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// authUsecase implements AuthUsecase interface
type authUsecase struct {
	employees employeerepo.EmployeeRepository
	tokens    repository.TokenRepository
	fcmTokens repository.FCMTokenRepository
	config    *config.Config
}

// NewAuthUsecase creates a new instance of authUsecase
func NewAuthUsecase(employees employeerepo.EmployeeRepository, tokens repository.TokenRepository, fcmTokens repository.FCMTokenRepository, cfg *config.Config) AuthUsecase {
	return &authUsecase{
		employees: employees,
		tokens:    tokens,
		fcmTokens: fcmTokens,
		config:    cfg,
	}
}

func (u *authUsecase) Login(req *authdto.LoginRequest) (*authdto.TokenResponse, error) {
	employee, err := u.employees.FindByEmail(req.Email)
	if err != nil {
		return nil, err
	}

	if employee == nil || !employee.IsActive {
		return nil, errors.New("invalid email or password")
	}

	if !repository.CheckPasswordHash(req.Password, employee.HashedPassword) {
		return nil, errors.New("invalid email or password")
	}

	return u.generateTokens(employee)
}

func (u *authUsecase) RefreshToken(refreshToken string) (*authdto.TokenResponse, error) {
	token, err := jwt.Parse(refreshToken, func(token *jwt.Token) (interface{}, error) {
		return []byte(u.config.JWTSecret), nil
	})

	if err != nil || !token.Valid {
		return nil, errors.New("invalid refresh token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	// The token must still be on record; logout revokes it.
	storedToken, err := u.tokens.FindRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	if storedToken == nil || storedToken.ExpiresAt.Before(time.Now()) {
		return nil, errors.New("refresh token expired")
	}

	employeeID, ok := claims["employee_id"].(string)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	employee, err := u.employees.FindByID(employeeID)
	if err != nil {
		return nil, err
	}

	if employee == nil || !employee.IsActive {
		return nil, errors.New("employee not found")
	}

	return u.generateTokens(employee)
}

func (u *authUsecase) Logout(refreshToken string) error {
	return u.tokens.DeleteRefreshToken(refreshToken)
}

func (u *authUsecase) ChangePassword(employeeID string, req *authdto.ChangePasswordRequest) error {
	employee, err := u.employees.FindByID(employeeID)
	if err != nil {
		return err
	}
	if employee == nil {
		return errors.New("employee not found")
	}

	if !repository.CheckPasswordHash(req.CurrentPassword, employee.HashedPassword) {
		return errors.New("current password is incorrect")
	}

	hashed, err := repository.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	employee.HashedPassword = hashed
	if err := u.employees.Update(employee); err != nil {
		return err
	}

	// Changing the password signs out every other session.
	return u.tokens.DeleteRefreshTokensByEmployee(employeeID)
}

func (u *authUsecase) RegisterFCMToken(employeeID, token string) error {
	return u.fcmTokens.SaveToken(employeeID, token)
}

func (u *authUsecase) UnregisterFCMToken(token string) error {
	return u.fcmTokens.DeleteToken(token)
}

func (u *authUsecase) generateTokens(employee *employeedomain.Employee) (*authdto.TokenResponse, error) {
	accessToken, err := u.generateAccessToken(employee)
	if err != nil {
		return nil, err
	}

	refreshToken, err := u.generateRefreshToken(employee)
	if err != nil {
		return nil, err
	}

	refreshTokenEntity := &authdomain.RefreshToken{
		Token:      refreshToken,
		EmployeeID: employee.ID,
		ExpiresAt:  time.Now().Add(u.config.JWTRefreshExpiry),
	}
	if err := u.tokens.SaveRefreshToken(refreshTokenEntity); err != nil {
		return nil, err
	}

	return &authdto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Employee:     employee,
	}, nil
}

func (u *authUsecase) generateAccessToken(employee *employeedomain.Employee) (string, error) {
	claims := jwt.MapClaims{
		"employee_id": employee.ID,
		"email":       employee.Email,
		"role":        string(employee.Role),
		"exp":         time.Now().Add(u.config.JWTAccessExpiry).Unix(),
		"iat":         time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(u.config.JWTSecret))
}

func (u *authUsecase) generateRefreshToken(employee *employeedomain.Employee) (string, error) {
	claims := jwt.MapClaims{
		"employee_id": employee.ID,
		"token_id":    uuid.New().String(),
		"exp":         time.Now().Add(u.config.JWTRefreshExpiry).Unix(),
		"iat":         time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(u.config.JWTSecret))
}

func (u *authUsecase) ValidateToken(tokenString string) (*employeedomain.Employee, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(u.config.JWTSecret), nil
	})

	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	employeeID, ok := claims["employee_id"].(string)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	employee, err := u.employees.FindByID(employeeID)
	if err != nil {
		return nil, err
	}

	if employee == nil || !employee.IsActive {
		return nil, errors.New("employee not found")
	}

	return employee, nil
}
