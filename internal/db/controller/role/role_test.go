package role

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dashstarter/dashstarter/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.Profile{}, &models.Role{}, &models.RoleAssignment{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// seedProfile inserts a profile row for assignment tests.
func seedProfile(t *testing.T, db *gorm.DB, id string) {
	t.Helper()

	err := db.Create(&models.Profile{ID: id}).Error
	require.NoError(t, err, "failed to seed profile")
}

func roleNames(roles []models.Role) []string {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
	}

	return names
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "admin", Normalize("  Admin "))
	assert.Equal(t, "moderator", Normalize("MODERATOR"))
	assert.Equal(t, "", Normalize("   "))
}

func TestCreate(t *testing.T) {
	db := setupTestDB(t)

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		roleName      string
		expectedError error
		expectedName  string
	}{
		{
			name:          "nil database",
			dbParam:       nil,
			roleName:      "viewer",
			expectedError: ErrDBNil,
		},
		{
			name:          "empty name",
			dbParam:       db,
			roleName:      "   ",
			expectedError: ErrNameEmpty,
		},
		{
			name:         "successful create",
			dbParam:      db,
			roleName:     "moderator",
			expectedName: "moderator",
		},
		{
			name:         "name is normalized",
			dbParam:      db,
			roleName:     "  Editor ",
			expectedName: "editor",
		},
		{
			name:          "exact duplicate",
			dbParam:       db,
			roleName:      "moderator",
			expectedError: ErrDuplicateName,
		},
		{
			name:          "duplicate differing only by case",
			dbParam:       db,
			roleName:      "Moderator",
			expectedError: ErrDuplicateName,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := Create(tc.dbParam, tc.roleName)

			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, r)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, r)
			assert.Equal(t, tc.expectedName, r.Name)
			assert.NotZero(t, r.ID)
		})
	}
}

func TestList(t *testing.T) {
	db := setupTestDB(t)

	roles, err := List(db)
	require.NoError(t, err)
	assert.Empty(t, roles)

	_, err = Create(db, "user")
	require.NoError(t, err)
	_, err = Create(db, "admin")
	require.NoError(t, err)

	roles, err = List(db)
	require.NoError(t, err)
	require.Len(t, roles, 2)

	_, err = List(nil)
	assert.ErrorIs(t, err, ErrDBNil)
}

func TestGetByName(t *testing.T) {
	db := setupTestDB(t)

	_, err := Create(db, "admin")
	require.NoError(t, err)

	r, err := GetByName(db, "Admin")
	require.NoError(t, err)
	assert.Equal(t, "admin", r.Name)

	_, err = GetByName(db, "nonexistent")
	assert.ErrorIs(t, err, ErrRoleNotFound)
}

func TestListForProfile(t *testing.T) {
	db := setupTestDB(t)
	seedProfile(t, db, "p-1")

	// zero assignments is a valid result, not an error
	roles, err := ListForProfile(db, "p-1")
	require.NoError(t, err)
	assert.Empty(t, roles)

	admin, err := Create(db, "admin")
	require.NoError(t, err)

	require.NoError(t, ReplaceAssignments(db, "p-1", []uint{admin.ID}))

	roles, err = ListForProfile(db, "p-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"admin"}, roleNames(roles))

	// referential consistency: every assigned role is present in List
	all, err := List(db)
	require.NoError(t, err)
	assert.Subset(t, roleNames(all), roleNames(roles))
}

func TestReplaceAssignments(t *testing.T) {
	db := setupTestDB(t)
	seedProfile(t, db, "p-1")
	seedProfile(t, db, "p-2")

	user, err := Create(db, "user")
	require.NoError(t, err)
	admin, err := Create(db, "admin")
	require.NoError(t, err)

	t.Run("full replace", func(t *testing.T) {
		require.NoError(t, ReplaceAssignments(db, "p-1", []uint{user.ID}))
		require.NoError(t, ReplaceAssignments(db, "p-1", []uint{admin.ID}))

		roles, errList := ListForProfile(db, "p-1")
		require.NoError(t, errList)
		assert.Equal(t, []string{"admin"}, roleNames(roles))
	})

	t.Run("idempotent for the same set", func(t *testing.T) {
		set := []uint{user.ID, admin.ID}
		require.NoError(t, ReplaceAssignments(db, "p-1", set))
		require.NoError(t, ReplaceAssignments(db, "p-1", set))

		roles, errList := ListForProfile(db, "p-1")
		require.NoError(t, errList)
		assert.ElementsMatch(t, []string{"admin", "user"}, roleNames(roles))

		var rows int64
		require.NoError(t, db.Model(&models.RoleAssignment{}).
			Where("profile_id = ?", "p-1").Count(&rows).Error)
		assert.EqualValues(t, 2, rows)
	})

	t.Run("duplicate ids in input are collapsed", func(t *testing.T) {
		require.NoError(t, ReplaceAssignments(db, "p-1", []uint{user.ID, user.ID}))

		roles, errList := ListForProfile(db, "p-1")
		require.NoError(t, errList)
		assert.Equal(t, []string{"user"}, roleNames(roles))
	})

	t.Run("empty set clears all assignments", func(t *testing.T) {
		require.NoError(t, ReplaceAssignments(db, "p-1", nil))

		roles, errList := ListForProfile(db, "p-1")
		require.NoError(t, errList)
		assert.Empty(t, roles)
	})

	t.Run("unknown role id rolls back", func(t *testing.T) {
		require.NoError(t, ReplaceAssignments(db, "p-1", []uint{user.ID}))

		err := ReplaceAssignments(db, "p-1", []uint{admin.ID, 9999})
		require.ErrorIs(t, err, ErrUnknownRole)

		// previous assignments must be untouched
		roles, errList := ListForProfile(db, "p-1")
		require.NoError(t, errList)
		assert.Equal(t, []string{"user"}, roleNames(roles))
	})

	t.Run("profiles do not interfere", func(t *testing.T) {
		require.NoError(t, ReplaceAssignments(db, "p-1", []uint{user.ID}))
		require.NoError(t, ReplaceAssignments(db, "p-2", []uint{admin.ID}))

		roles, errList := ListForProfile(db, "p-1")
		require.NoError(t, errList)
		assert.Equal(t, []string{"user"}, roleNames(roles))

		roles, errList = ListForProfile(db, "p-2")
		require.NoError(t, errList)
		assert.Equal(t, []string{"admin"}, roleNames(roles))
	})

	t.Run("nil database", func(t *testing.T) {
		assert.ErrorIs(t, ReplaceAssignments(nil, "p-1", nil), ErrDBNil)
	})
}

func TestAssignByName(t *testing.T) {
	db := setupTestDB(t)
	seedProfile(t, db, "p-1")

	_, err := Create(db, "user")
	require.NoError(t, err)

	require.NoError(t, AssignByName(db, "p-1", "user"))
	// assigning a held role again is a no-op
	require.NoError(t, AssignByName(db, "p-1", "user"))

	roles, err := ListForProfile(db, "p-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"user"}, roleNames(roles))

	assert.ErrorIs(t, AssignByName(db, "p-1", "missing"), ErrRoleNotFound)
}

func TestCountProfilesForRole(t *testing.T) {
	db := setupTestDB(t)
	seedProfile(t, db, "p-1")
	seedProfile(t, db, "p-2")

	admin, err := Create(db, "admin")
	require.NoError(t, err)

	count, err := CountProfilesForRole(db, admin.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	require.NoError(t, ReplaceAssignments(db, "p-1", []uint{admin.ID}))
	require.NoError(t, ReplaceAssignments(db, "p-2", []uint{admin.ID}))

	count, err = CountProfilesForRole(db, admin.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}
