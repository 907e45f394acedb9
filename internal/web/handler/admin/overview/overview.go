// Package overview provides the admin landing page with headline counts.
package overview

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/dashstarter/dashstarter/internal/authz"
	"github.com/dashstarter/dashstarter/internal/config"
	"github.com/dashstarter/dashstarter/internal/db/controller/profile"
	"github.com/dashstarter/dashstarter/internal/db/controller/role"
	"github.com/dashstarter/dashstarter/internal/web/handler"
	"github.com/dashstarter/dashstarter/internal/web/navigation"
)

const (
	// Path is the path to the admin overview page.
	Path = handler.RootPath + "admin"

	// TemplateName is the name of the overview template.
	TemplateName = "admin/overview"
)

// Service is the admin overview handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the admin overview handler.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *authz.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg

	app.Get(Path,
		authz.RequireAdmin(authService),
		s.Get,
	)
}

// Get handles the overview page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	nav := navigation.NewContext("Admin", "admin", "overview").
		AddBreadcrumb("Home", "/dashboard", false).
		AddBreadcrumb("Admin", Path, true)

	userCount, err := profile.Count(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to count profiles")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load stats")
	}

	newThisWeek, err := profile.CountCreatedSince(s.db, time.Now().AddDate(0, 0, -7))
	if err != nil {
		log.Error().Err(err).Msg("failed to count recent profiles")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load stats")
	}

	roleCount, err := role.Count(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to count roles")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load stats")
	}

	return c.Render(TemplateName, fiber.Map{
		"Title":       s.cfg.Title,
		"Navigation":  nav,
		"UserCount":   userCount,
		"NewThisWeek": newThisWeek,
		"RoleCount":   roleCount,
	}, handler.BaseLayout)
}
