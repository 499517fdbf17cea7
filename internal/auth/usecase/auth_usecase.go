package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"deptsite/internal/auth/config"
	"deptsite/internal/auth/domain/model"
	"deptsite/internal/auth/domain/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email is already taken")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrInvalidRole        = errors.New("invalid role")
	ErrTokenInvalid       = errors.New("token is invalid")
	ErrWeakPassword       = errors.New("password does not meet strength requirements")
)

const (
	minPasswordLength = 8
	maxPasswordLength = 128
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// AuthUsecaseInterface defines the contract for authentication use cases.
type AuthUsecaseInterface interface {
	Register(ctx context.Context, req RegisterRequest) (*model.User, string, error)
	Login(ctx context.Context, req LoginRequest) (*model.User, string, error)
	ValidateToken(ctx context.Context, tokenString string) (*repository.Claims, error)
	GetUserFromToken(ctx context.Context, tokenString string) (*model.User, error)
	GetUserByID(ctx context.Context, userID string) (*model.User, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	ListUsers(ctx context.Context) ([]*model.User, error)
	DeleteUser(ctx context.Context, userID string) error
}

// RegisterRequest represents the registration request
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
	Role     string `json:"role,omitempty"`
}

// LoginRequest represents the login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthUsecase implements the authentication logic.
type AuthUsecase struct {
	repo     repository.AuthRepository
	tokenSvc repository.TokenService
	config   *config.Config
}

// NewAuthUsecase creates a new instance of AuthUsecase.
func NewAuthUsecase(repo repository.AuthRepository, tokenSvc repository.TokenService, cfg *config.Config) *AuthUsecase {
	return &AuthUsecase{
		repo:     repo,
		tokenSvc: tokenSvc,
		config:   cfg,
	}
}

func (uc *AuthUsecase) validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if !emailRegex.MatchString(email) {
		return ErrInvalidEmailFormat
	}
	return nil
}

func (uc *AuthUsecase) validatePassword(password string) error {
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// Register creates a new account. New accounts always start with the lowest
// role; elevation is a separate administrative action.
func (uc *AuthUsecase) Register(ctx context.Context, req RegisterRequest) (*model.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := uc.validateEmail(email); err != nil {
		return nil, "", err
	}
	if err := uc.validatePassword(req.Password); err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	role := model.RoleUser
	if req.Role != "" {
		role = model.Role(req.Role)
		if !role.IsValid() {
			return nil, "", ErrInvalidRole
		}
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(req.Name),
		Role:         role,
	}

	if err := uc.repo.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := uc.tokenSvc.GenerateToken(ctx, user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}

// Login verifies credentials and issues a fresh session token.
func (uc *AuthUsecase) Login(ctx context.Context, req LoginRequest) (*model.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := uc.validateEmail(email); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	user, err := uc.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := uc.tokenSvc.GenerateToken(ctx, user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}

// ValidateToken validates a session token and returns its claims.
func (uc *AuthUsecase) ValidateToken(ctx context.Context, tokenString string) (*repository.Claims, error) {
	claims, err := uc.tokenSvc.ValidateToken(ctx, tokenString)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// GetUserFromToken resolves the full user record behind a session token.
func (uc *AuthUsecase) GetUserFromToken(ctx context.Context, tokenString string) (*model.User, error) {
	claims, err := uc.ValidateToken(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	return uc.repo.GetUserByID(ctx, claims.UserID)
}

// GetUserByID retrieves a user by ID.
func (uc *AuthUsecase) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	return uc.repo.GetUserByID(ctx, userID)
}

// ChangePassword verifies the current password before setting the new one.
func (uc *AuthUsecase) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := uc.repo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}
	if err := uc.validatePassword(newPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = string(hash)
	return uc.repo.UpdateUser(ctx, user)
}

// ListUsers returns all accounts. Intended for the admin surface.
func (uc *AuthUsecase) ListUsers(ctx context.Context) ([]*model.User, error) {
	return uc.repo.ListUsers(ctx)
}

// DeleteUser removes an account by ID.
func (uc *AuthUsecase) DeleteUser(ctx context.Context, userID string) error {
	return uc.repo.DeleteUser(ctx, userID)
}
