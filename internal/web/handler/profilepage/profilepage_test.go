package profilepage

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage"
	"gorm.io/gorm"

	"github.com/dashstarter/dashstarter/internal/config"
	"github.com/dashstarter/dashstarter/internal/db/controller/profile"
	"github.com/dashstarter/dashstarter/internal/db/models"
	websess "github.com/dashstarter/dashstarter/internal/web/session"
)

type noOpViews struct{}

func (noOpViews) Load() error { return nil }

func (noOpViews) Render(w io.Writer, name string, data interface{}, _ ...string) error {
	if m, ok := data.(fiber.Map); ok {
		if v, exists := m["Error"]; exists && v != nil {
			_, _ = io.WriteString(w, v.(string))
			return nil
		}
	}

	_, _ = io.WriteString(w, name)

	return nil
}

type testStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ storage.Storage = (*testStorage)(nil)

func (s *testStorage) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := s.data[key]
	out := make([]byte, len(v))
	copy(out, v)

	return out, nil
}

func (s *testStorage) Set(key string, val []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string][]byte)
	}

	buf := make([]byte, len(val))
	copy(buf, val)
	s.data[key] = buf

	return nil
}

func (s *testStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)

	return nil
}

func (s *testStorage) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string][]byte)

	return nil
}

func (s *testStorage) Close() error { return nil }

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open sqlite in-memory db: %v", err)
	}

	err = db.AutoMigrate(&models.Profile{}, &models.Role{}, &models.RoleAssignment{})
	if err != nil {
		t.Fatalf("failed to migrate models: %v", err)
	}

	return db
}

func newTestService(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	app := fiber.New(fiber.Config{Views: noOpViews{}})

	websess.Init(&testStorage{data: make(map[string][]byte)})

	cfg := &config.Config{
		Title: "dashstarter",
		Webserver: config.Webserver{
			Session: config.Session{ExpiryTime: time.Minute},
		},
	}

	var s Service
	s.Init(app, cfg, db, nil)

	return app, db
}

// signIn creates a profile and a session for it, returning the cookie value.
func signIn(t *testing.T, db *gorm.DB, profileID string) string {
	t.Helper()

	if _, err := profile.Create(db, profileID); err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}

	sessionID, err := websess.GenerateSessionID()
	if err != nil {
		t.Fatalf("failed to generate session id: %v", err)
	}

	sessData := &websess.Data{ProfileID: profileID, Email: profileID + "@example.com"}
	if err := sessData.Write(sessionID, time.Minute); err != nil {
		t.Fatalf("failed to write session: %v", err)
	}

	return sessionID
}

func postForm(t *testing.T, app *fiber.App, target, sessionID string, form url.Values) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: websess.CookieName, Value: sessionID})
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}

	return resp
}

func TestGet_Anonymous_RedirectsToLogin(t *testing.T) {
	app, _ := newTestService(t)

	req := httptest.NewRequest(http.MethodGet, Path, nil)

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected 302 Found, got %d", resp.StatusCode)
	}

	if loc := resp.Header.Get("Location"); loc != "/login" {
		t.Fatalf("expected redirect to /login, got %s", loc)
	}
}

func TestUpdate_SavesFields(t *testing.T) {
	app, db := newTestService(t)
	sessionID := signIn(t, db, "p-1")

	form := url.Values{
		"username":  {"alice"},
		"full_name": {"Alice Doe"},
		"bio":       {"hello"},
		"location":  {"Berlin"},
		"website":   {"https://alice.example.com"},
	}
	resp := postForm(t, app, Path, sessionID, form)

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", resp.StatusCode)
	}

	p, err := profile.Get(db, "p-1")
	if err != nil {
		t.Fatalf("failed to load profile: %v", err)
	}

	if p.Username == nil || *p.Username != "alice" {
		t.Fatalf("expected username alice, got %v", p.Username)
	}

	if p.FullName != "Alice Doe" || p.Bio != "hello" || p.Location != "Berlin" {
		t.Fatalf("unexpected profile fields: %+v", p)
	}
}

func TestUpdate_EmptyUsernameClears(t *testing.T) {
	app, db := newTestService(t)
	sessionID := signIn(t, db, "p-1")

	name := "alice"
	if _, err := profile.Update(db, "p-1", profile.Fields{Username: &name}); err != nil {
		t.Fatalf("failed to seed username: %v", err)
	}

	form := url.Values{
		"username":  {""},
		"full_name": {"Alice Doe"},
	}
	resp := postForm(t, app, Path, sessionID, form)

	defer func() {
		_ = resp.Body.Close()
	}()

	p, err := profile.Get(db, "p-1")
	if err != nil {
		t.Fatalf("failed to load profile: %v", err)
	}

	if p.Username != nil {
		t.Fatalf("expected username to be cleared, got %q", *p.Username)
	}
}

func TestUpdate_UsernameTaken_RendersError(t *testing.T) {
	app, db := newTestService(t)
	sessionID := signIn(t, db, "p-1")

	if _, err := profile.Create(db, "p-2"); err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}

	name := "alice"
	if _, err := profile.Update(db, "p-2", profile.Fields{Username: &name}); err != nil {
		t.Fatalf("failed to seed username: %v", err)
	}

	form := url.Values{
		"username": {"alice"},
	}
	resp := postForm(t, app, Path, sessionID, form)

	defer func() {
		_ = resp.Body.Close()
	}()

	bodyBytes, _ := io.ReadAll(resp.Body)

	if !strings.Contains(string(bodyBytes), "already taken") {
		t.Fatalf("expected username taken error, got %q", string(bodyBytes))
	}
}

func TestUpdate_Validation_RejectsWithoutSaving(t *testing.T) {
	testCases := []struct {
		name string
		form url.Values
	}{
		{name: "username too short", form: url.Values{"username": {"ab"}}},
		{name: "username not alphanumeric", form: url.Values{"username": {"bad name!"}}},
		{name: "website not a url", form: url.Values{"website": {"not a url"}}},
		{name: "bio too long", form: url.Values{"bio": {strings.Repeat("x", 501)}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			app, db := newTestService(t)
			sessionID := signIn(t, db, "p-1")

			resp := postForm(t, app, Path, sessionID, tc.form)

			defer func() {
				_ = resp.Body.Close()
			}()

			bodyBytes, _ := io.ReadAll(resp.Body)

			if !strings.Contains(string(bodyBytes), "correct the highlighted") {
				t.Fatalf("expected validation error, got %q", string(bodyBytes))
			}

			p, err := profile.Get(db, "p-1")
			if err != nil {
				t.Fatalf("failed to load profile: %v", err)
			}

			if p.Username != nil || p.Bio != "" {
				t.Fatalf("expected profile unchanged, got %+v", p)
			}
		})
	}
}

func TestDeleteAvatar_ClearsReference(t *testing.T) {
	app, db := newTestService(t)
	sessionID := signIn(t, db, "p-1")

	avatarURL := "https://cdn.example.com/avatars/p-1/123.png"
	if _, err := profile.Update(db, "p-1", profile.Fields{AvatarURL: &avatarURL}); err != nil {
		t.Fatalf("failed to seed avatar url: %v", err)
	}

	resp := postForm(t, app, Path+"/avatar/delete", sessionID, url.Values{})

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected 302 Found, got %d", resp.StatusCode)
	}

	p, err := profile.Get(db, "p-1")
	if err != nil {
		t.Fatalf("failed to load profile: %v", err)
	}

	if p.AvatarURL != "" {
		t.Fatalf("expected avatar url cleared, got %q", p.AvatarURL)
	}
}
