package service

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"repairshop/internal/model"
	"repairshop/internal/repository"
	"repairshop/pkg/response"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// DTOs for Request validation
type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

type CreateEmployeeRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"fullName" binding:"required"`
	RoleID   uint   `json:"roleId" binding:"required"`
}

// DTO for returning User without exposing sensitive data (e.g. password)
type UserResponse struct {
	ID          uint   `json:"id"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	CompanyName string `json:"companyName"`
	FullName    string `json:"fullName"`
	Role        string `json:"role"`
	TenantID    *uint  `json:"tenantId"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

type LoginResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

// UserService defines the interface for business logic related to User
type UserService interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Me(ctx context.Context, id uint) (*UserResponse, error)
	CreateEmployee(ctx context.Context, caller model.Identity, req CreateEmployeeRequest) (*UserResponse, error)
	// SeedAdmin creates the platform admin account when it does not exist yet.
	SeedAdmin(ctx context.Context, email, password string) error
}

type userService struct {
	users  repository.UserRepository
	roles  repository.RoleRepository
	tx     repository.TransactionManager
	secret []byte
	ttl    time.Duration
	logger *logrus.Logger
}

// NewUserService returns a new instance of UserService
func NewUserService(
	users repository.UserRepository,
	roles repository.RoleRepository,
	tx repository.TransactionManager,
	secret []byte,
	ttl time.Duration,
	logger *logrus.Logger,
) UserService {
	return &userService{users: users, roles: roles, tx: tx, secret: secret, ttl: ttl, logger: logger}
}

// IssueToken signs an HS256 access token carrying the caller identity claims
func IssueToken(secret []byte, ttl time.Duration, user model.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"id":   user.ID,
		"role": user.Type,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	if user.TenantID != nil {
		claims["tenantId"] = *user.TenantID
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// Helper: parse model to standard json API response
func mapToResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		Phone:       user.Phone,
		CompanyName: user.CompanyName,
		FullName:    user.FullName,
		Role:        user.Type,
		TenantID:    user.TenantID,
		CreatedAt:   user.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:   user.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// ensureUnique rejects an email or phone already used by another account
func ensureUnique(ctx context.Context, users repository.UserRepository, email, phone string) error {
	if _, err := users.GetByPhone(ctx, phone); err == nil {
		return conflict(response.MsgPhoneAlreadyExists)
	} else if !isNotFound(err) {
		return fmt.Errorf("failed to check phone: %w", err)
	}
	if _, err := users.GetByEmail(ctx, email); err == nil {
		return conflict(response.MsgEmailAlreadyExists)
	} else if !isNotFound(err) {
		return fmt.Errorf("failed to check email: %w", err)
	}
	return nil
}

// Login accepts either the email or the phone number as login
func (s *userService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if blank(req.Login) || len(req.Password) < 6 {
		return nil, validationError()
	}

	user, err := s.users.GetByEmail(ctx, req.Login)
	if isNotFound(err) {
		user, err = s.users.GetByPhone(ctx, req.Login)
	}
	if err != nil {
		if isNotFound(err) {
			return nil, newError(ErrValidation, response.MsgInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	if user.IsDeleted {
		return nil, newError(ErrValidation, response.MsgInvalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, newError(ErrValidation, response.MsgInvalidCredentials)
	}

	token, err := IssueToken(s.secret, s.ttl, *user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &LoginResponse{Token: token, User: mapToResponse(user)}, nil
}

func (s *userService) Me(ctx context.Context, id uint) (*UserResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, notFound(response.MsgNotFound)
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return mapToResponse(user), nil
}

// CreateEmployee adds an employee to the caller's tenant and links it to one of the tenant's roles
func (s *userService) CreateEmployee(ctx context.Context, caller model.Identity, req CreateEmployeeRequest) (*UserResponse, error) {
	if blank(req.Phone) || blank(req.FullName) || len(req.Password) < 6 || req.RoleID == 0 {
		return nil, validationError()
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return nil, validationError()
	}
	ownerID := caller.OwnerID()

	user := &model.User{
		Email:    req.Email,
		Phone:    req.Phone,
		FullName: req.FullName,
		Type:     model.TypeEmployee,
		TenantID: &ownerID,
	}
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		role, err := s.roles.FindByID(txCtx, req.RoleID)
		if err != nil {
			if isNotFound(err) {
				return notFound(response.MsgRoleNotFound)
			}
			return fmt.Errorf("failed to fetch role: %w", err)
		}
		if role.CreatedBy != ownerID || role.IsDeleted {
			return notFound(response.MsgRoleNotFound)
		}

		if err := ensureUnique(txCtx, s.users, req.Email, req.Phone); err != nil {
			return err
		}

		hashed, err := hashPassword(req.Password)
		if err != nil {
			return err
		}
		user.Password = hashed
		if err := s.users.Create(txCtx, user); err != nil {
			return fmt.Errorf("failed to create employee: %w", err)
		}
		if err := s.roles.LinkUser(txCtx, &model.UserRoleLink{UserID: user.ID, RoleID: role.ID}); err != nil {
			return fmt.Errorf("failed to link employee role: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mapToResponse(user), nil
}

func (s *userService) SeedAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !isNotFound(err) {
		return fmt.Errorf("failed to check admin: %w", err)
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return err
	}
	admin := &model.User{Email: email, Phone: "", Password: hashed, Type: model.TypeAdmin}
	if err := s.users.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	s.logger.WithField("email", email).Info("admin account seeded")
	return nil
}
