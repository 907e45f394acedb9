// Package signup provides handlers for creating a new account.
package signup

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/dashstarter/dashstarter/internal/config"
	"github.com/dashstarter/dashstarter/internal/identity"
	"github.com/dashstarter/dashstarter/internal/web/handler"
	"github.com/dashstarter/dashstarter/internal/web/session"
)

const (
	// Path is the path to the sign-up page.
	Path = "/signup"

	// TemplateName is the name of the sign-up template.
	TemplateName = "signup"

	// DashboardPath is where a fresh account lands.
	DashboardPath = "/dashboard"
)

// ErrInvalidFormData is returned when the submitted form cannot be parsed
// or fails validation.
var ErrInvalidFormData = errors.New("invalid form data")

// Service is the sign-up handler service.
type Service struct {
	handler.Service
	cfg             *config.Config
	db              *gorm.DB
	identityService *identity.Service
	validator       *validator.Validate
}

// Handler is the sign-up handler.
var Handler = Service{}

// Init initializes the sign-up handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New("app or db is nil")
	}

	s.db = db
	s.cfg = cfg
	s.identityService = identity.NewService(db)
	s.validator = validator.New()

	// register routes
	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RootPath, s.Get)
		router.Post(handler.RootPath, s.Post)
	})

	return nil
}

// Get handles the sign-up page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	return c.Render(TemplateName, fiber.Map{
		"Title": s.cfg.Title,
	})
}

// Post handles the sign-up form submission. A new account is bootstrapped
// with an empty profile and the default role, then signed in right away.
func (s *Service) Post(c *fiber.Ctx) error {
	var in struct {
		Email    string `form:"email"    validate:"required,email,max=255"`
		Password string `form:"password" validate:"required,min=8,max=72"`
	}

	if err := c.BodyParser(&in); err != nil {
		return c.Render(TemplateName, fiber.Map{
			"Title": s.cfg.Title,
			"error": ErrInvalidFormData.Error(),
		})
	}

	if err := s.validator.Struct(in); err != nil {
		return c.Render(TemplateName, fiber.Map{
			"Title": s.cfg.Title,
			"error": "Please provide a valid email and a password of at least 8 characters",
			"Email": in.Email,
		})
	}

	id, err := s.identityService.SignUp(in.Email, in.Password)
	if err != nil {
		if errors.Is(err, identity.ErrEmailExists) {
			return c.Render(TemplateName, fiber.Map{
				"Title": s.cfg.Title,
				"error": identity.ErrEmailExists.Error(),
				"Email": in.Email,
			})
		}

		log.Error().Err(err).Msg("sign-up failed")

		return c.Render(TemplateName, fiber.Map{
			"Title": s.cfg.Title,
			"error": "Internal server error",
			"Email": in.Email,
		})
	}

	sessionID, err := session.GenerateSessionID()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate session ID")

		// the account exists, let the user sign in manually
		return c.Redirect("/login")
	}

	sessData := &session.Data{
		ProfileID: id.ID,
		Email:     id.Email,
	}

	if err = sessData.Write(sessionID, s.cfg.Webserver.Session.ExpiryTime); err != nil {
		log.Error().Err(err).Msg("failed to write session")

		return c.Redirect("/login")
	}

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
