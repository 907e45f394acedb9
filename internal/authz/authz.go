// Package authz decides whether a signed in profile may use the admin area.
//
// Authorization is a flat role check: a profile either holds the admin role
// or it does not. There is no permission matrix and no role hierarchy; a
// profile can hold both the admin and the user role at once and the extra
// roles simply do not matter here.
package authz

import (
	"gorm.io/gorm"

	"github.com/dashstarter/dashstarter/internal/db/controller/role"
)

const (
	// AdminRoleName is the role granting access to the admin area.
	AdminRoleName = "admin"

	// DefaultRoleName is the role handed to every new profile at sign-up.
	DefaultRoleName = "user"
)

// Service answers admin authorization questions against the role store.
type Service struct {
	db *gorm.DB
}

// NewService creates a new authz service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// IsAdmin reports whether the profile currently holds the admin role.
// The check fails closed: any storage error denies access rather than
// granting it.
func (s *Service) IsAdmin(profileID string) bool {
	if s == nil || s.db == nil || profileID == "" {
		return false
	}

	roles, err := role.ListForProfile(s.db, profileID)
	if err != nil {
		return false
	}

	for _, r := range roles {
		if r.Name == AdminRoleName {
			return true
		}
	}

	return false
}
