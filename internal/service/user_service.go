package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/decisiontrace/decisiontrace/internal/domain"
	apperrors "github.com/decisiontrace/decisiontrace/internal/pkg/errors"
)

// UserRepository defines user repository operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdatePreferences(ctx context.Context, id uuid.UUID, prefs domain.Preferences) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// UserService handles operator account operations
type UserService struct {
	userRepo UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Create registers a new operator account
func (s *UserService) Create(ctx context.Context, email, fullName string, role domain.UserRole) (*domain.User, error) {
	if existing, err := s.userRepo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, apperrors.Conflict("email already registered")
	} else if err != nil && !apperrors.IsNotFound(err) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	user := &domain.User{
		ID:        uuid.New(),
		Email:     email,
		FullName:  fullName,
		Role:      role,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Get retrieves a user by ID
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// UpdatePreferences replaces a user's preference set. Unknown keys in
// the stored preferences survive the round trip.
func (s *UserService) UpdatePreferences(ctx context.Context, id uuid.UUID, prefs domain.Preferences) (*domain.User, error) {
	if err := s.userRepo.UpdatePreferences(ctx, id, prefs); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, id)
}

// RecordLogin stamps the user's last login time
func (s *UserService) RecordLogin(ctx context.Context, id uuid.UUID) error {
	return s.userRepo.UpdateLastLogin(ctx, id, time.Now().UTC())
}
