package daemon

import (
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/dashstarter/dashstarter/internal/authz"
	"github.com/dashstarter/dashstarter/internal/config"
	"github.com/dashstarter/dashstarter/internal/db/controller/role"
	"github.com/dashstarter/dashstarter/internal/db/models"
)

// seed makes sure the built-in roles exist and bootstraps the first admin
// account on an empty database. Rerunning it is harmless.
func seed(cfg *config.Config, db *gorm.DB) {
	for _, name := range []string{authz.DefaultRoleName, authz.AdminRoleName} {
		if _, err := role.Create(db, name); err != nil && !errors.Is(err, role.ErrDuplicateName) {
			log.Fatal().Err(err).Str("role", name).Msg("failed to seed role")
		}
	}

	var count int64
	if err := db.Model(&models.Identity{}).Count(&count).Error; err != nil {
		log.Fatal().Err(err).Msg("failed to count identities")
	}

	if count > 0 {
		return
	}

	if cfg.Seed.AdminEmail == "" || cfg.Seed.AdminPassword == "" {
		log.Warn().Msg("no seed admin configured, empty database stays without accounts")
		return
	}

	id := uuid.NewString()

	err := db.Transaction(func(tx *gorm.DB) error {
		identity := models.Identity{
			ID:           id,
			Email:        cfg.Seed.AdminEmail,
			PasswordHash: models.HashPassword(cfg.Seed.AdminPassword),
		}

		if err := tx.Create(&identity).Error; err != nil {
			return err
		}

		if err := tx.Create(&models.Profile{ID: id}).Error; err != nil {
			return err
		}

		for _, name := range []string{authz.DefaultRoleName, authz.AdminRoleName} {
			if err := role.AssignByName(tx, id, name); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed admin account")
	}

	log.Info().Str("email", cfg.Seed.AdminEmail).
		Msg("seeded initial admin account, change the password after first login")
}
