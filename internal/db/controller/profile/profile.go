// Package profile provides storage operations for user profiles.
package profile

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/dashstarter/dashstarter/internal/db/controller/role"
	"github.com/dashstarter/dashstarter/internal/db/models"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrIDEmpty is returned when the profile id is empty.
	ErrIDEmpty = errors.New("profile id cannot be empty")
	// ErrProfileNotFound is returned when a profile cannot be found.
	// This is a normal outcome (e.g. the bootstrap has not run yet) and must
	// be distinguished from storage failures by callers.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrUsernameTaken is returned when an update would violate username uniqueness.
	ErrUsernameTaken = errors.New("username is already taken")
)

// WithRoles is a profile joined with its current role assignments.
// The join is read-only; mutations go through the role store.
type WithRoles struct {
	models.Profile
	Roles []models.Role
}

// Fields describes a partial profile update. A nil pointer leaves the field
// untouched; a pointer to the empty string clears it (username becomes NULL,
// text fields become empty).
type Fields struct {
	Username  *string
	FullName  *string
	AvatarURL *string
	Bio       *string
	Location  *string
	Website   *string
}

// Create inserts an empty profile for the given identity id.
// Called by the sign-up bootstrap; the id is owned by the identity record.
func Create(db *gorm.DB, id string) (*models.Profile, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if id == "" {
		return nil, ErrIDEmpty
	}

	p := &models.Profile{ID: id}

	result := db.Create(p)
	if result.Error != nil {
		return nil, result.Error
	}

	return p, nil
}

// Get retrieves a profile by id with its roles joined in.
func Get(db *gorm.DB, id string) (*WithRoles, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if id == "" {
		return nil, ErrIDEmpty
	}

	var p models.Profile
	result := db.First(&p, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, result.Error
	}

	roles, err := role.ListForProfile(db, id)
	if err != nil {
		return nil, err
	}

	return &WithRoles{Profile: p, Roles: roles}, nil
}

// Update applies a partial update and bumps updated_at. Only the supplied
// fields change. Returns the updated profile.
func Update(db *gorm.DB, id string, f Fields) (*models.Profile, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if id == "" {
		return nil, ErrIDEmpty
	}

	updates := map[string]interface{}{}

	if f.Username != nil {
		if *f.Username == "" {
			updates["username"] = nil
		} else {
			updates["username"] = *f.Username
		}
	}

	if f.FullName != nil {
		updates["full_name"] = *f.FullName
	}

	if f.AvatarURL != nil {
		updates["avatar_url"] = *f.AvatarURL
	}

	if f.Bio != nil {
		updates["bio"] = *f.Bio
	}

	if f.Location != nil {
		updates["location"] = *f.Location
	}

	if f.Website != nil {
		updates["website"] = *f.Website
	}

	if len(updates) > 0 {
		updates["updated_at"] = time.Now().UTC()

		result := db.Model(&models.Profile{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
				return nil, ErrUsernameTaken
			}
			return nil, result.Error
		}

		if result.RowsAffected == 0 {
			return nil, ErrProfileNotFound
		}
	}

	var p models.Profile
	result := db.First(&p, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, result.Error
	}

	return &p, nil
}

// Search returns all profiles (roles joined) whose full name, username, id
// or any assigned role name contains the query, case-insensitively. An empty
// query returns every profile. Matching happens in-process: at the expected
// scale (thousands of profiles) a scan-and-filter is acceptable, and each
// call re-executes the scan so results are always fresh.
func Search(db *gorm.DB, query string) ([]WithRoles, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var profiles []models.Profile
	result := db.Order("created_at DESC, id ASC").Find(&profiles)
	if result.Error != nil {
		return nil, result.Error
	}

	rolesByProfile, err := loadRolesByProfile(db)
	if err != nil {
		return nil, err
	}

	joined := make([]WithRoles, 0, len(profiles))
	for _, p := range profiles {
		joined = append(joined, WithRoles{Profile: p, Roles: rolesByProfile[p.ID]})
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return joined, nil
	}

	matched := make([]WithRoles, 0, len(joined))

	for _, p := range joined {
		if matches(p, q) {
			matched = append(matched, p)
		}
	}

	return matched, nil
}

// matches reports whether a profile matches the lowercased query.
func matches(p WithRoles, q string) bool {
	if strings.Contains(strings.ToLower(p.FullName), q) {
		return true
	}

	if p.Username != nil && strings.Contains(strings.ToLower(*p.Username), q) {
		return true
	}

	if strings.Contains(strings.ToLower(p.ID), q) {
		return true
	}

	for _, r := range p.Roles {
		if strings.Contains(strings.ToLower(r.Name), q) {
			return true
		}
	}

	return false
}

// loadRolesByProfile loads every role assignment with its role in one query.
func loadRolesByProfile(db *gorm.DB) (map[string][]models.Role, error) {
	var assignments []models.RoleAssignment
	result := db.Preload("Role").Find(&assignments)
	if result.Error != nil {
		return nil, result.Error
	}

	out := make(map[string][]models.Role, len(assignments))
	for _, a := range assignments {
		out[a.ProfileID] = append(out[a.ProfileID], a.Role)
	}

	return out, nil
}

// Count returns the total number of profiles.
func Count(db *gorm.DB) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var count int64
	result := db.Model(&models.Profile{}).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

// CountCreatedSince returns how many profiles were created at or after t.
func CountCreatedSince(db *gorm.DB, t time.Time) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var count int64
	result := db.Model(&models.Profile{}).Where("created_at >= ?", t).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}
