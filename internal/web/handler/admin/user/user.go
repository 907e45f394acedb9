// Package user provides handlers for managing users in the admin area.
package user

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/dashstarter/dashstarter/internal/authz"
	"github.com/dashstarter/dashstarter/internal/config"
	"github.com/dashstarter/dashstarter/internal/db/controller/profile"
	"github.com/dashstarter/dashstarter/internal/db/controller/role"
	"github.com/dashstarter/dashstarter/internal/web/handler"
	"github.com/dashstarter/dashstarter/internal/web/listview"
	"github.com/dashstarter/dashstarter/internal/web/navigation"
	"github.com/dashstarter/dashstarter/internal/web/session"
)

const (
	// Path is the base path for user management.
	Path = handler.RootPath + "admin/user"

	// TemplateList is the template for listing users.
	TemplateList = "admin/user/list"
	// TemplateForm is the template for editing a user's details.
	TemplateForm = "admin/user/form"
	// TemplateRoles is the template for editing a user's roles.
	TemplateRoles = "admin/user/roles"
)

// Service provides admin operations on user profiles.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
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
	s.validator = validator.New()

	// Routes
	app.Get(Path,
		authz.RequireAdmin(authService),
		s.List,
	)
	app.Get(Path+"/:id/edit",
		authz.RequireAdmin(authService),
		s.Edit,
	)
	app.Post(Path+"/:id",
		authz.RequireAdmin(authService),
		s.Update,
	)
	app.Get(Path+"/:id/roles",
		authz.RequireAdmin(authService),
		s.EditRoles,
	)
	app.Post(Path+"/:id/roles",
		authz.RequireAdmin(authService),
		s.UpdateRoles,
	)
}

func listNav() *navigation.Context {
	return navigation.NewContext("Users", "admin", "user").
		AddBreadcrumb("Home", "/dashboard", false).
		AddBreadcrumb("Admin", "/admin", false).
		AddBreadcrumb("Users", Path, true)
}

// List shows users with search and pagination. Search runs over the full
// user set and pagination applies to the filtered result, so submitting a
// query implicitly returns to the first page.
func (s *Service) List(c *fiber.Ctx) error {
	nav := listNav()

	state := listview.NewState(
		c.Query("search", ""),
		c.QueryInt("page", 1),
		c.QueryInt("pageSize", listview.DefaultPageSize),
	)

	// the search form posts without a page parameter, but a hand-built URL
	// can pair a fresh query with a stale page index
	if q := c.Query("q"); q != "" {
		state = state.ApplySearch(q)
	}

	profiles, err := profile.Search(s.db, state.Query)
	if err != nil {
		log.Error().Err(err).Msg("user search failed")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateList, fiber.Map{
			"Title":      s.cfg.Title,
			"Navigation": nav,
			"Error":      "Failed to load users",
			"Search":     state.Query,
		}, handler.BaseLayout)
	}

	page := listview.Paginate(profiles, state)

	// current admin's own id, the list highlights it
	currentProfileID, _ := session.CurrentProfileID(c)

	return c.Render(TemplateList, fiber.Map{
		"Title":            s.cfg.Title,
		"Navigation":       nav,
		"Page":             page,
		"Search":           state.Query,
		"CurrentProfileID": currentProfileID,
	}, handler.BaseLayout)
}

// Edit shows the user detail form.
func (s *Service) Edit(c *fiber.Ctx) error {
	profileID := c.Params("id")

	p, err := profile.Get(s.db, profileID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			return c.Status(fiber.StatusNotFound).SendString("User not found")
		}

		log.Error().Err(err).Str("profile_id", profileID).Msg("failed to load user")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load user")
	}

	nav := navigation.NewContext("Edit User", "admin", "user").
		AddBreadcrumb("Home", "/dashboard", false).
		AddBreadcrumb("Admin", "/admin", false).
		AddBreadcrumb("Users", Path, false).
		AddBreadcrumb("Edit", Path+"/"+profileID+"/edit", true)

	return c.Render(TemplateForm, fiber.Map{
		"Title":      s.cfg.Title,
		"Navigation": nav,
		"Profile":    p,
	}, handler.BaseLayout)
}

// Update saves the user detail form.
func (s *Service) Update(c *fiber.Ctx) error {
	profileID := c.Params("id")

	var in struct {
		Username string `form:"username" validate:"omitempty,min=3,max=30,alphanum"`
		FullName string `form:"full_name" validate:"max=100"`
		Bio      string `form:"bio"       validate:"max=500"`
		Location string `form:"location"  validate:"max=100"`
		Website  string `form:"website"   validate:"omitempty,url,max=255"`
	}

	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid form data")
	}

	if err := s.validator.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Please correct the highlighted fields")
	}

	_, err := profile.Update(s.db, profileID, profile.Fields{
		Username: &in.Username,
		FullName: &in.FullName,
		Bio:      &in.Bio,
		Location: &in.Location,
		Website:  &in.Website,
	})
	if err != nil {
		switch {
		case errors.Is(err, profile.ErrProfileNotFound):
			return c.Status(fiber.StatusNotFound).SendString("User not found")
		case errors.Is(err, profile.ErrUsernameTaken):
			return c.Status(fiber.StatusConflict).SendString("This username is already taken")
		}

		log.Error().Err(err).Str("profile_id", profileID).Msg("failed to update user")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to update user")
	}

	return c.Redirect(Path)
}

// EditRoles shows the role assignment form for a user.
func (s *Service) EditRoles(c *fiber.Ctx) error {
	profileID := c.Params("id")

	p, err := profile.Get(s.db, profileID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			return c.Status(fiber.StatusNotFound).SendString("User not found")
		}

		log.Error().Err(err).Str("profile_id", profileID).Msg("failed to load user")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load user")
	}

	allRoles, err := role.List(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to load roles")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load roles")
	}

	held := make(map[uint]bool, len(p.Roles))
	for _, r := range p.Roles {
		held[r.ID] = true
	}

	nav := navigation.NewContext("Edit Roles", "admin", "user").
		AddBreadcrumb("Home", "/dashboard", false).
		AddBreadcrumb("Admin", "/admin", false).
		AddBreadcrumb("Users", Path, false).
		AddBreadcrumb("Roles", Path+"/"+profileID+"/roles", true)

	return c.Render(TemplateRoles, fiber.Map{
		"Title":      s.cfg.Title,
		"Navigation": nav,
		"Profile":    p,
		"Roles":      allRoles,
		"Held":       held,
	}, handler.BaseLayout)
}

// UpdateRoles replaces the user's role set with the checked boxes. The form
// posts the complete desired set; unchecking everything clears all roles.
func (s *Service) UpdateRoles(c *fiber.Ctx) error {
	profileID := c.Params("id")

	// existence check first so a bad id is a 404, not a silent clear
	if _, err := profile.Get(s.db, profileID); err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			return c.Status(fiber.StatusNotFound).SendString("User not found")
		}

		log.Error().Err(err).Str("profile_id", profileID).Msg("failed to load user")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load user")
	}

	var rawIDs []string

	if form, errForm := c.MultipartForm(); errForm == nil && form != nil {
		rawIDs = form.Value["role_ids"]
	} else {
		// urlencoded checkbox group
		for _, v := range c.Request().PostArgs().PeekMulti("role_ids") {
			rawIDs = append(rawIDs, string(v))
		}
	}

	roleIDs := make([]uint, 0, len(rawIDs))

	for _, raw := range rawIDs {
		id, errConv := strconv.ParseUint(raw, 10, 32)
		if errConv != nil {
			return c.Status(fiber.StatusBadRequest).SendString("Invalid role id")
		}

		roleIDs = append(roleIDs, uint(id))
	}

	if err := role.ReplaceAssignments(s.db, profileID, roleIDs); err != nil {
		if errors.Is(err, role.ErrUnknownRole) {
			// the role list changed under the form
			return c.Status(fiber.StatusBadRequest).
				SendString("The role list changed, please refresh and retry")
		}

		log.Error().Err(err).Str("profile_id", profileID).Msg("failed to replace role assignments")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to update roles")
	}

	return c.Redirect(Path)
}
