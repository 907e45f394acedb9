// Package daemon wires configuration, database, storage and the web service
// into a running process.
package daemon

import (
	"fmt"

	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/rs/zerolog/log"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/dashstarter/dashstarter/internal/avatar"
	"github.com/dashstarter/dashstarter/internal/config"
	"github.com/dashstarter/dashstarter/internal/db/dsn"
	"github.com/dashstarter/dashstarter/internal/db/models"
	"github.com/dashstarter/dashstarter/internal/web"
	"github.com/dashstarter/dashstarter/internal/web/session"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start starts the Daemon's web service and blocks until it stops.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	dbDriver := gormpostgres.Open(dsn.Create(cfg))

	// TranslateError maps driver specific uniqueness violations onto
	// gorm.ErrDuplicatedKey, which the stores rely on
	db, err := gorm.Open(dbDriver, &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
		return nil
	}

	if err = db.AutoMigrate(
		&models.Identity{},
		&models.Profile{},
		&models.Role{},
		&models.RoleAssignment{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
		return nil
	}

	seed(cfg, db)

	// Initialize fiber session store
	sessionStorage := sessionpostgres.New(sessionpostgres.Config{
		ConnectionURI: dsn.Create(cfg),
		Table:         "sessions",
	})

	session.Init(sessionStorage)

	var avatarStore *avatar.Store

	if cfg.Avatar.Bucket != "" {
		avatarStore, err = avatar.NewStore(cfg.Avatar)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init avatar storage")
			return nil
		}
	} else {
		log.Warn().Msg("avatar storage not configured, uploads disabled")
	}

	return &Daemon{
		cfg:        cfg,
		webService: web.New(cfg, db, avatarStore),
	}
}
