// Package identity handles local account creation and credential checks.
//
// An identity owns the credentials; the matching profile owns everything
// user facing. Both share one id so the profile can be looked up straight
// from the session.
package identity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/dashstarter/dashstarter/internal/authz"
	"github.com/dashstarter/dashstarter/internal/db/controller/role"
	"github.com/dashstarter/dashstarter/internal/db/models"
)

var (
	// ErrEmailExists is returned when the sign-up email is already registered.
	ErrEmailExists = errors.New("email is already registered")
	// ErrInvalidCredentials is returned for a wrong email or password. The two
	// cases are deliberately indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailEmpty is returned when the email is empty.
	ErrEmailEmpty = errors.New("email cannot be empty")
	// ErrPasswordEmpty is returned when the password is empty.
	ErrPasswordEmpty = errors.New("password cannot be empty")
)

// Service provides sign-up and credential verification.
type Service struct {
	db *gorm.DB
}

// NewService creates a new identity service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// SignUp creates an identity, its empty profile and the default role
// assignment in one transaction. A failure at any step rolls the whole
// bootstrap back so no identity is ever left without a profile.
func (s *Service) SignUp(email, password string) (*models.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrEmailEmpty
	}

	if password == "" {
		return nil, ErrPasswordEmpty
	}

	var existing models.Identity

	err := s.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, ErrEmailExists
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing identity: %w", err)
	}

	id := &models.Identity{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: models.HashPassword(password),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(id).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailExists
			}

			return fmt.Errorf("failed to create identity: %w", err)
		}

		if err := tx.Create(&models.Profile{ID: id.ID}).Error; err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}

		if err := role.AssignByName(tx, id.ID, authz.DefaultRoleName); err != nil {
			// a missing default role must not block sign-up
			if errors.Is(err, role.ErrRoleNotFound) {
				log.Warn().Str("role", authz.DefaultRoleName).
					Msg("default role missing, profile created without roles")

				return nil
			}

			return fmt.Errorf("failed to assign default role: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return id, nil
}

// Authenticate verifies the email and password and returns the identity.
func (s *Service) Authenticate(email, password string) (*models.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var id models.Identity

	err := s.db.Where("email = ?", email).First(&id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query identity: %w", err)
	}

	if !id.VerifyPassword(password) {
		return nil, ErrInvalidCredentials
	}

	return &id, nil
}

// Count returns the total number of identities.
func (s *Service) Count() (int64, error) {
	var count int64
	if err := s.db.Model(&models.Identity{}).Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}
