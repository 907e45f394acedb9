// Package session holds the server side session store and its data format.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage"
)

// CookieName is the name of the session cookie.
const CookieName = "session"

// Store is the global session store instance.
var Store *session.Store

// Data represents the session data structure. Only the identity reference is
// stored; profile and roles are loaded fresh on every request so role changes
// take effect without a re-login.
type Data struct {
	ProfileID string
	Email     string
}

// Write writes the session data for the given session ID with an expiration duration.
func (s *Data) Write(sessionID string, exp time.Duration) error {
	out, err := json.Marshal(s)
	if err != nil {
		return err
	}

	return Store.Storage.Set(sessionID, out, exp)
}

// Read reads the session data for the given session ID.
func (s *Data) Read(sessionID string) error {
	byteData, err := Store.Storage.Get(sessionID)
	if err != nil {
		return err
	}

	return json.Unmarshal(byteData, s)
}

// Init initializes the session store with the provided storage backend.
func Init(storage storage.Storage) {
	if storage == nil {
		panic("storage is nil")
	}

	Store = session.New(session.Config{
		Storage: storage,
	})
}

// GenerateSessionID generates a new secure random session ID.
func GenerateSessionID() (string, error) {
	// 32 bytes = 256 bits
	b := make([]byte, 32) //nolint:mnd
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// CurrentProfileID returns the profile id of the requester's session, if any.
func CurrentProfileID(c *fiber.Ctx) (string, bool) {
	sessionID := c.Cookies(CookieName)
	if sessionID == "" {
		return "", false
	}

	sessData := new(Data)
	if err := sessData.Read(sessionID); err != nil {
		return "", false
	}

	if sessData.ProfileID == "" {
		return "", false
	}

	return sessData.ProfileID, true
}
