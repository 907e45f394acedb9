package models

import (
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
)

// Identity represents a local authentication record. The wider system treats
// the identity provider as an opaque service; this model is the local
// implementation of that service. Application code never joins against it for
// display purposes, the Profile carries everything user facing.
type Identity struct {
	// ID is the unique identifier (UUID string), shared with the Profile.
	ID string `gorm:"primaryKey;size:36"`
	// Email is the unique sign-in address.
	Email string `gorm:"unique;size:255;not null"`
	// PasswordHash is the Argon2id hash of the password.
	PasswordHash string `gorm:"size:255"`
	// CreatedAt is the timestamp when the identity was created (managed by GORM).
	CreatedAt time.Time
}

// TableName specifies the database table name for the Identity model.
// This overrides GORM's default pluralized table naming.
func (Identity) TableName() string {
	return "identities"
}

// HashPassword hashes a plaintext password using the Argon2id algorithm.
// It uses the default Argon2id parameters for secure password hashing.
func HashPassword(password string) string {
	hashedPassword, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		log.Fatal().Msgf("failed to hash password: %v", err)
	}

	return hashedPassword
}

// VerifyPassword verifies a plaintext password against the identity's stored hash.
// It uses constant-time comparison to prevent timing attacks.
// Returns true if the password matches, false otherwise.
func (i *Identity) VerifyPassword(password string) bool {
	match, err := argon2id.ComparePasswordAndHash(password, i.PasswordHash)
	if err != nil {
		log.Error().Msgf("failed to verify password: %v", err)
		return false
	}

	return match
}
