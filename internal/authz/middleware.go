package authz

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/dashstarter/dashstarter/internal/web/session"
)

// Redirect targets. Kept as local constants instead of importing the handler
// packages, which would create an import cycle through this middleware.
const (
	loginPath     = "/login"
	dashboardPath = "/dashboard"
)

// RequireAdmin creates Fiber middleware that only lets admins through.
// Anonymous requests go to the login page. Authenticated non-admins are
// silently redirected to their dashboard; the response carries no hint
// that the admin area exists.
func RequireAdmin(authService *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		profileID, ok := session.CurrentProfileID(c)
		if !ok {
			return c.Redirect(loginPath)
		}

		if !authService.IsAdmin(profileID) {
			log.Warn().Str("profile_id", profileID).Str("path", c.Path()).
				Msg("non-admin request to admin area")

			return c.Redirect(dashboardPath)
		}

		return c.Next()
	}
}
