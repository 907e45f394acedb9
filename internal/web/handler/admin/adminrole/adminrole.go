// Package adminrole provides handlers for managing roles in the admin area.
package adminrole

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/dashstarter/dashstarter/internal/authz"
	"github.com/dashstarter/dashstarter/internal/config"
	"github.com/dashstarter/dashstarter/internal/db/controller/role"
	"github.com/dashstarter/dashstarter/internal/web/handler"
	"github.com/dashstarter/dashstarter/internal/web/navigation"
)

const (
	// Path is the base path for role management.
	Path = handler.RootPath + "admin/role"

	// TemplateList is the template for listing roles.
	TemplateList = "admin/role/list"
)

// RoleRow is a role with its member count for the list template.
type RoleRow struct {
	ID           uint
	Name         string
	MemberCount  int64
	CreatedAtStr string
}

// Service provides admin operations on roles.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the exported instance.
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
		s.List,
	)
	app.Post(Path,
		authz.RequireAdmin(authService),
		s.Create,
	)
}

func listNav() *navigation.Context {
	return navigation.NewContext("Roles", "admin", "role").
		AddBreadcrumb("Home", "/dashboard", false).
		AddBreadcrumb("Admin", "/admin", false).
		AddBreadcrumb("Roles", Path, true)
}

func (s *Service) renderList(c *fiber.Ctx, extra fiber.Map) error {
	roles, err := role.List(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to load roles")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load roles")
	}

	rows := make([]RoleRow, 0, len(roles))

	for _, r := range roles {
		count, errCount := role.CountProfilesForRole(s.db, r.ID)
		if errCount != nil {
			log.Error().Err(errCount).Uint("role_id", r.ID).Msg("failed to count members")
		}

		rows = append(rows, RoleRow{
			ID:           r.ID,
			Name:         r.Name,
			MemberCount:  count,
			CreatedAtStr: r.CreatedAt.Format("2006-01-02"),
		})
	}

	data := fiber.Map{
		"Title":      s.cfg.Title,
		"Navigation": listNav(),
		"Roles":      rows,
	}

	for k, v := range extra {
		data[k] = v
	}

	return c.Render(TemplateList, data, handler.BaseLayout)
}

// List shows all roles with their member counts.
func (s *Service) List(c *fiber.Ctx) error {
	return s.renderList(c, nil)
}

// Create adds a new role. A duplicate name renders the list again with an
// inline error instead of a separate error page.
func (s *Service) Create(c *fiber.Ctx) error {
	name := c.FormValue("name")

	if _, err := role.Create(s.db, name); err != nil {
		switch {
		case errors.Is(err, role.ErrNameEmpty):
			return s.renderList(c, fiber.Map{
				"Error": "Role name cannot be empty",
				"Name":  name,
			})
		case errors.Is(err, role.ErrDuplicateName):
			return s.renderList(c, fiber.Map{
				"Error": "A role with this name already exists",
				"Name":  name,
			})
		}

		log.Error().Err(err).Str("name", name).Msg("failed to create role")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to create role")
	}

	return c.Redirect(Path)
}
