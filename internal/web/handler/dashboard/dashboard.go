// Package dashboard provides the signed-in landing page.
package dashboard

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/dashstarter/dashstarter/internal/authz"
	"github.com/dashstarter/dashstarter/internal/config"
	"github.com/dashstarter/dashstarter/internal/db/controller/profile"
	"github.com/dashstarter/dashstarter/internal/web/handler"
	"github.com/dashstarter/dashstarter/internal/web/navigation"
	"github.com/dashstarter/dashstarter/internal/web/session"
)

const (
	// Path is the path to the dashboard page.
	Path = handler.RootPath + "dashboard"

	// TemplateName is the name of the dashboard template.
	TemplateName = "dashboard"
)

// Service is the dashboard handler service.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	authService *authz.Service
}

// Handler is the dashboard handler.
var Handler = Service{}

// Init initializes the dashboard handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *authz.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.authService = authService

	app.Get(Path, s.Get)
}

// Get handles the dashboard page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	profileID, ok := session.CurrentProfileID(c)
	if !ok {
		return c.Redirect("/login")
	}

	nav := navigation.NewContext("Dashboard", "dashboard", "dashboard").
		AddBreadcrumb("Home", Path, false).
		AddBreadcrumb("Dashboard", Path, true)

	p, err := profile.Get(s.db, profileID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			// identity without a profile, session is stale
			return c.Redirect("/login")
		}

		log.Error().Err(err).Str("profile_id", profileID).Msg("failed to load profile")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load profile")
	}

	return c.Render(TemplateName, fiber.Map{
		"Title":      s.cfg.Title,
		"Navigation": nav,
		"Profile":    p,
		"IsAdmin":    s.authService.IsAdmin(profileID),
	}, handler.BaseLayout)
}
