package login

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/dashstarter/dashstarter/internal/config"
	"github.com/dashstarter/dashstarter/internal/identity"
	"github.com/dashstarter/dashstarter/internal/web/handler"
	"github.com/dashstarter/dashstarter/internal/web/session"
)

const (
	// Path is the path to the login page.
	Path = "/login"

	// TemplateName is the name of the login template.
	TemplateName = "login"

	// DashboardPath is where a successful login lands.
	DashboardPath = "/dashboard"
)

// Service is the login handler service.
type Service struct {
	handler.Service
	cfg             *config.Config
	db              *gorm.DB
	identityService *identity.Service
}

// Handler is the login handler.
var Handler = Service{}

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New("app or db is nil")
	}

	s.db = db
	s.cfg = cfg
	s.identityService = identity.NewService(db)

	// register routes
	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RootPath, s.Get)
		router.Post(handler.RootPath, s.Post)
	})

	return nil
}

// Get handles the login page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	return c.Render(TemplateName, fiber.Map{
		"Title": s.cfg.Title,
	})
}

// Post handles the login form submission.
func (s *Service) Post(c *fiber.Ctx) error {
	var in struct {
		Email    string `form:"email"`
		Password string `form:"password"`
	}

	if err := c.BodyParser(&in); err != nil {
		return c.Render(TemplateName, fiber.Map{
			"Title": s.cfg.Title,
			"error": ErrInvalidFormData.Error(),
		})
	}

	id, err := s.identityService.Authenticate(in.Email, in.Password)
	if err != nil {
		if !errors.Is(err, identity.ErrInvalidCredentials) {
			log.Error().Err(err).Msg("authentication failed")
		}

		return c.Render(TemplateName, fiber.Map{
			"Title": s.cfg.Title,
			"error": ErrInvalidCredentials.Error(),
		})
	}

	sessionID, err := session.GenerateSessionID()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate session ID")

		return c.Render(TemplateName, fiber.Map{
			"Title": s.cfg.Title,
			"error": ErrInternalServerError.Error(),
		})
	}

	sessData := &session.Data{
		ProfileID: id.ID,
		Email:     id.Email,
	}

	if err = sessData.Write(sessionID, s.cfg.Webserver.Session.ExpiryTime); err != nil {
		log.Error().Err(err).Msg("failed to write session")

		return c.Render(TemplateName, fiber.Map{
			"Title": s.cfg.Title,
			"error": ErrInternalServerError.Error(),
		})
	}

	// set login cookie
	cookieSettings := &fiber.Cookie{
		Name:     session.CookieName,
		Value:    sessionID,
		MaxAge:   int(s.cfg.Webserver.Session.ExpiryTime.Seconds()),
		Secure:   true,
		HTTPOnly: true,
		SameSite: "Lax",
	}

	if s.cfg.DevMode {
		cookieSettings.Secure = false
	}

	c.Cookie(cookieSettings)

	return c.Redirect(DashboardPath)
}
