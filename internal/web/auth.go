package web

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/dashstarter/dashstarter/internal/web/handler/login"
	"github.com/dashstarter/dashstarter/internal/web/handler/signup"
	"github.com/dashstarter/dashstarter/internal/web/session"
)

// AuthMiddleware is a Fiber middleware that checks for user authentication.
func AuthMiddleware(c *fiber.Ctx) error {
	var (
		isPublicPage  = IsPublicPage(c)
		sessDataValid bool
	)

	originalURL := strings.ToLower(c.OriginalURL())
	if strings.HasPrefix(originalURL, "/static") {
		return c.Next()
	}

	// get session cookie
	loginCookie := c.Cookies(session.CookieName)

	// if no session cookie, redirect to login page
	if loginCookie == "" && !isPublicPage {
		return c.Redirect(login.Path)
	}

	// check session validity
	sessData := new(session.Data)
	_ = sessData.Read(loginCookie)

	// valid data in session
	if sessData.ProfileID != "" {
		sessDataValid = true
	}

	if !sessDataValid && !isPublicPage {
		return c.Redirect(login.Path)
	}

	// a signed-in user has no business on the login or sign-up page
	if sessDataValid && isPublicPage {
		return c.Redirect("/dashboard")
	}

	return c.Next()
}

// IsPublicPage checks if the current request may be served without a session.
func IsPublicPage(c *fiber.Ctx) bool {
	originalURL := strings.ToLower(c.OriginalURL())

	return strings.HasPrefix(originalURL, login.Path) ||
		strings.HasPrefix(originalURL, signup.Path)
}
