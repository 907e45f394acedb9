// Package profilepage provides handlers for viewing and editing the
// requester's own profile, including the avatar.
package profilepage

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/dashstarter/dashstarter/internal/avatar"
	"github.com/dashstarter/dashstarter/internal/config"
	"github.com/dashstarter/dashstarter/internal/db/controller/profile"
	"github.com/dashstarter/dashstarter/internal/web/handler"
	"github.com/dashstarter/dashstarter/internal/web/navigation"
	"github.com/dashstarter/dashstarter/internal/web/session"
)

const (
	// Path is the base path for the profile page.
	Path = handler.RootPath + "profile"

	// TemplateName is the name of the profile template.
	TemplateName = "profile"
)

// Service is the profile page handler service.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	avatarStore *avatar.Store
	validator   *validator.Validate
}

// Handler is the profile page handler.
var Handler = Service{}

// Init initializes the profile page handler. The avatar store may be nil;
// avatar routes then reject uploads instead of failing at startup.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, avatarStore *avatar.Store) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.avatarStore = avatarStore
	s.validator = validator.New()

	app.Get(Path, s.Get)
	app.Post(Path, s.Update)
	app.Post(Path+"/avatar", s.UploadAvatar)
	app.Post(Path+"/avatar/delete", s.DeleteAvatar)
}

func (s *Service) nav() *navigation.Context {
	return navigation.NewContext("My Profile", "profile", "profile").
		AddBreadcrumb("Home", "/dashboard", false).
		AddBreadcrumb("Profile", Path, true)
}

func (s *Service) render(c *fiber.Ctx, profileID string, extra fiber.Map) error {
	p, err := profile.Get(s.db, profileID)
	if err != nil {
		log.Error().Err(err).Str("profile_id", profileID).Msg("failed to load profile")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load profile")
	}

	data := fiber.Map{
		"Title":      s.cfg.Title,
		"Navigation": s.nav(),
		"Profile":    p,
	}

	for k, v := range extra {
		data[k] = v
	}

	return c.Render(TemplateName, data, handler.BaseLayout)
}

// Get handles the profile page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	profileID, ok := session.CurrentProfileID(c)
	if !ok {
		return c.Redirect("/login")
	}

	return s.render(c, profileID, nil)
}

// Update handles the profile form submission. Every field of the form is
// submitted on each save; an empty value clears the field.
func (s *Service) Update(c *fiber.Ctx) error {
	profileID, ok := session.CurrentProfileID(c)
	if !ok {
		return c.Redirect("/login")
	}

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
		return s.render(c, profileID, fiber.Map{
			"Error": "Please correct the highlighted fields",
		})
	}

	_, err := profile.Update(s.db, profileID, profile.Fields{
		Username: &in.Username,
		FullName: &in.FullName,
		Bio:      &in.Bio,
		Location: &in.Location,
		Website:  &in.Website,
	})
	if err != nil {
		if errors.Is(err, profile.ErrUsernameTaken) {
			return s.render(c, profileID, fiber.Map{
				"Error": "This username is already taken",
			})
		}

		log.Error().Err(err).Str("profile_id", profileID).Msg("failed to update profile")

		return s.render(c, profileID, fiber.Map{
			"Error": "Failed to save profile",
		})
	}

	return s.render(c, profileID, fiber.Map{
		"Success": "Profile saved",
	})
}

// UploadAvatar stores a new profile picture and points the profile at it.
func (s *Service) UploadAvatar(c *fiber.Ctx) error {
	profileID, ok := session.CurrentProfileID(c)
	if !ok {
		return c.Redirect("/login")
	}

	if s.avatarStore == nil {
		return s.render(c, profileID, fiber.Map{
			"Error": "Avatar storage is not configured",
		})
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return s.render(c, profileID, fiber.Map{
			"Error": "Please choose an image to upload",
		})
	}

	if fileHeader.Size > avatar.MaxUploadSize {
		return s.render(c, profileID, fiber.Map{
			"Error": "Image is too large (2 MiB max)",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Error().Err(err).Msg("failed to open upload")

		return s.render(c, profileID, fiber.Map{
			"Error": "Failed to read upload",
		})
	}

	defer func() {
		_ = file.Close()
	}()

	previous, err := profile.Get(s.db, profileID)
	if err != nil {
		log.Error().Err(err).Str("profile_id", profileID).Msg("failed to load profile")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load profile")
	}

	url, err := s.avatarStore.Upload(c.Context(), profileID, fileHeader.Filename, file)
	if err != nil {
		if errors.Is(err, avatar.ErrUnsupportedType) {
			return s.render(c, profileID, fiber.Map{
				"Error": "Unsupported image type",
			})
		}

		log.Error().Err(err).Str("profile_id", profileID).Msg("avatar upload failed")

		return s.render(c, profileID, fiber.Map{
			"Error": "Failed to upload avatar",
		})
	}

	if _, err = profile.Update(s.db, profileID, profile.Fields{AvatarURL: &url}); err != nil {
		log.Error().Err(err).Str("profile_id", profileID).Msg("failed to store avatar url")

		return s.render(c, profileID, fiber.Map{
			"Error": "Failed to save avatar",
		})
	}

	// the old object is unreferenced now, drop it
	if previous.AvatarURL != "" {
		if err = s.avatarStore.Remove(c.Context(), previous.AvatarURL); err != nil {
			log.Warn().Err(err).Str("profile_id", profileID).Msg("failed to remove previous avatar")
		}
	}

	return c.Redirect(Path)
}

// DeleteAvatar clears the profile picture.
func (s *Service) DeleteAvatar(c *fiber.Ctx) error {
	profileID, ok := session.CurrentProfileID(c)
	if !ok {
		return c.Redirect("/login")
	}

	p, err := profile.Get(s.db, profileID)
	if err != nil {
		log.Error().Err(err).Str("profile_id", profileID).Msg("failed to load profile")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load profile")
	}

	empty := ""
	if _, err = profile.Update(s.db, profileID, profile.Fields{AvatarURL: &empty}); err != nil {
		log.Error().Err(err).Str("profile_id", profileID).Msg("failed to clear avatar url")

		return s.render(c, profileID, fiber.Map{
			"Error": "Failed to remove avatar",
		})
	}

	if s.avatarStore != nil && p.AvatarURL != "" {
		if err = s.avatarStore.Remove(c.Context(), p.AvatarURL); err != nil {
			log.Warn().Err(err).Str("profile_id", profileID).Msg("failed to remove avatar object")
		}
	}

	return c.Redirect(Path)
}
