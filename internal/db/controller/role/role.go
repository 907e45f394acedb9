// Package role provides storage operations for roles and role assignments.
package role

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/dashstarter/dashstarter/internal/db/models"
)

const (
	nameQueryPattern    = "name = ?"
	profileQueryPattern = "profile_id = ?"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrNameEmpty is returned when attempting to create a role with an empty name.
	ErrNameEmpty = errors.New("role name cannot be empty")
	// ErrDuplicateName is returned when a role with the same name already exists.
	ErrDuplicateName = errors.New("role with this name already exists")
	// ErrRoleNotFound is returned when a role cannot be found.
	ErrRoleNotFound = errors.New("role not found")
	// ErrUnknownRole is returned when an assignment references a role id that does not exist.
	// It usually means the role set changed between page load and submission.
	ErrUnknownRole = errors.New("assignment references unknown role")
)

// Normalize canonicalizes a role name. Uniqueness is enforced on the
// normalized form so two roles differing only by case cannot coexist.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// List retrieves all roles ordered by creation time descending.
// The role count is expected to stay small, so there is no pagination.
func List(db *gorm.DB) ([]models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var roles []models.Role
	result := db.Order("created_at DESC, id DESC").Find(&roles)
	if result.Error != nil {
		return nil, result.Error
	}

	return roles, nil
}

// GetByName retrieves a role by its normalized name.
func GetByName(db *gorm.DB, name string) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	name = Normalize(name)
	if name == "" {
		return nil, ErrNameEmpty
	}

	var r models.Role
	result := db.Where(nameQueryPattern, name).First(&r)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, result.Error
	}

	return &r, nil
}

// Create creates a new role. The name is normalized before the uniqueness
// check so the check and the insert agree on the canonical form.
func Create(db *gorm.DB, name string) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	name = Normalize(name)
	if name == "" {
		return nil, ErrNameEmpty
	}

	var existing models.Role
	result := db.Where(nameQueryPattern, name).First(&existing)
	if result.Error == nil {
		return nil, ErrDuplicateName
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	r := &models.Role{Name: name}

	result = db.Create(r)
	if result.Error != nil {
		// a concurrent create can still trip the unique constraint
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateName
		}
		return nil, result.Error
	}

	return r, nil
}

// ListForProfile retrieves the roles currently assigned to a profile.
// An empty slice is a valid result, not an error: a freshly bootstrapped
// profile may exist before any assignment was made.
func ListForProfile(db *gorm.DB, profileID string) ([]models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var roles []models.Role
	result := db.Table("roles").
		Joins("JOIN role_assignments ON role_assignments.role_id = roles.id").
		Where("role_assignments.profile_id = ?", profileID).
		Order("roles.name ASC").
		Find(&roles)
	if result.Error != nil {
		return nil, result.Error
	}

	return roles, nil
}

// ReplaceAssignments atomically replaces all role assignments of a profile
// with exactly the supplied set. Callers supply the complete desired set;
// an empty set clears every assignment. The whole operation runs in a single
// transaction, so a failure leaves the previous assignments untouched.
// Returns ErrUnknownRole if any supplied role id does not exist.
func ReplaceAssignments(db *gorm.DB, profileID string, roleIDs []uint) error {
	if db == nil {
		return ErrDBNil
	}

	// dedupe so a repeated id cannot trip the composite primary key
	unique := make([]uint, 0, len(roleIDs))
	seen := make(map[uint]struct{}, len(roleIDs))

	for _, id := range roleIDs {
		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if len(unique) > 0 {
			var count int64
			if err := tx.Model(&models.Role{}).Where("id IN ?", unique).Count(&count).Error; err != nil {
				return err
			}

			if count != int64(len(unique)) {
				return ErrUnknownRole
			}
		}

		if err := tx.Where(profileQueryPattern, profileID).Delete(&models.RoleAssignment{}).Error; err != nil {
			return err
		}

		for _, id := range unique {
			assignment := models.RoleAssignment{
				ProfileID: profileID,
				RoleID:    id,
			}
			if err := tx.Create(&assignment).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// AssignByName adds a single role to a profile by role name without touching
// other assignments. Used by the sign-up bootstrap to hand out the default
// "user" role. Assigning an already held role is a no-op.
func AssignByName(db *gorm.DB, profileID, name string) error {
	if db == nil {
		return ErrDBNil
	}

	r, err := GetByName(db, name)
	if err != nil {
		return err
	}

	var count int64
	if err := db.Model(&models.RoleAssignment{}).
		Where("profile_id = ? AND role_id = ?", profileID, r.ID).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	assignment := models.RoleAssignment{
		ProfileID: profileID,
		RoleID:    r.ID,
	}

	return db.Create(&assignment).Error
}

// CountProfilesForRole returns how many profiles currently hold the role.
// Display purposes only, not security relevant.
func CountProfilesForRole(db *gorm.DB, roleID uint) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var count int64
	result := db.Model(&models.RoleAssignment{}).Where("role_id = ?", roleID).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

// Count returns the total number of roles.
func Count(db *gorm.DB) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var count int64
	result := db.Model(&models.Role{}).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}
