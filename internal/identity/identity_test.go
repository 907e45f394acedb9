package identity

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dashstarter/dashstarter/internal/authz"
	"github.com/dashstarter/dashstarter/internal/db/controller/role"
	"github.com/dashstarter/dashstarter/internal/db/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.Identity{}, &models.Profile{}, &models.Role{}, &models.RoleAssignment{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func seedDefaultRole(t *testing.T, db *gorm.DB) {
	t.Helper()

	_, err := role.Create(db, authz.DefaultRoleName)
	require.NoError(t, err)
}

func TestSignUp(t *testing.T) {
	db := setupTestDB(t)
	seedDefaultRole(t, db)
	svc := NewService(db)

	id, err := svc.SignUp("Alice@Example.com ", "secret")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.NotEmpty(t, id.ID)
	assert.Equal(t, "alice@example.com", id.Email, "email must be normalized")
	assert.NotEqual(t, "secret", id.PasswordHash)

	// profile bootstrapped with the same id
	var p models.Profile
	require.NoError(t, db.First(&p, "id = ?", id.ID).Error)

	// default role assigned
	roles, err := role.ListForProfile(db, id.ID)
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, authz.DefaultRoleName, roles[0].Name)
}

func TestSignUpValidation(t *testing.T) {
	db := setupTestDB(t)
	seedDefaultRole(t, db)
	svc := NewService(db)

	_, err := svc.SignUp("", "secret")
	assert.ErrorIs(t, err, ErrEmailEmpty)

	_, err = svc.SignUp("a@b.com", "")
	assert.ErrorIs(t, err, ErrPasswordEmpty)
}

func TestSignUpDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	seedDefaultRole(t, db)
	svc := NewService(db)

	_, err := svc.SignUp("alice@example.com", "secret")
	require.NoError(t, err)

	_, err = svc.SignUp("alice@example.com", "other")
	assert.ErrorIs(t, err, ErrEmailExists)

	// case differences collapse to the same address
	_, err = svc.SignUp("ALICE@example.com", "other")
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestSignUpWithoutDefaultRole(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	// no roles seeded: sign-up must still succeed, just without assignments
	id, err := svc.SignUp("bob@example.com", "secret")
	require.NoError(t, err)

	roles, err := role.ListForProfile(db, id.ID)
	require.NoError(t, err)
	assert.Empty(t, roles)
}

func TestAuthenticate(t *testing.T) {
	db := setupTestDB(t)
	seedDefaultRole(t, db)
	svc := NewService(db)

	created, err := svc.SignUp("alice@example.com", "secret")
	require.NoError(t, err)

	testCases := []struct {
		name          string
		email         string
		password      string
		expectedError error
	}{
		{name: "valid credentials", email: "alice@example.com", password: "secret"},
		{name: "email case is ignored", email: "ALICE@example.com", password: "secret"},
		{name: "wrong password", email: "alice@example.com", password: "wrong", expectedError: ErrInvalidCredentials},
		{name: "unknown email", email: "ghost@example.com", password: "secret", expectedError: ErrInvalidCredentials},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			id, errAuth := svc.Authenticate(tc.email, tc.password)

			if tc.expectedError != nil {
				require.ErrorIs(t, errAuth, tc.expectedError)
				assert.Nil(t, id)

				return
			}

			require.NoError(t, errAuth)
			require.NotNil(t, id)
			assert.Equal(t, created.ID, id.ID)
		})
	}
}

func TestCount(t *testing.T) {
	db := setupTestDB(t)
	seedDefaultRole(t, db)
	svc := NewService(db)

	count, err := svc.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	_, err = svc.SignUp("alice@example.com", "secret")
	require.NoError(t, err)

	count, err = svc.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
