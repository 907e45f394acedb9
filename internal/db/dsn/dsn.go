// Package dsn builds the postgres connection string from config.
package dsn

import (
	"fmt"

	"github.com/dashstarter/dashstarter/internal/config"
)

// Create builds a postgres DSN from the DB config section.
func Create(cfg *config.Config) string {
	sslMode := cfg.DB.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	out := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DB.Host,
		cfg.DB.Port,
		cfg.DB.User,
		cfg.DB.Password,
		cfg.DB.Name,
		sslMode,
	)

	if cfg.DB.Extras != "" {
		out += " " + cfg.DB.Extras
	}

	return out
}
