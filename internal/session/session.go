package session

import (
	"crypto/sha256"
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	CookieName = "carvalue-session"
	keyUserID  = "userId"
)

// Manager keeps the signed-in user id in an encrypted, signed cookie.
type Manager struct {
	store *sessions.CookieStore
}

func NewManager(secret string, maxAgeSeconds int, secure bool) *Manager {
	// separate keys for HMAC signing and AES encryption
	authKey := sha256.Sum256([]byte(secret + "auth"))
	encKey := sha256.Sum256([]byte(secret + "encryption"))

	store := sessions.NewCookieStore(authKey[:], encKey[:])
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAgeSeconds,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	store.MaxAge(maxAgeSeconds)

	return &Manager{store: store}
}

// get never fails: a missing or tampered cookie yields a fresh, empty session.
func (m *Manager) get(r *http.Request) *sessions.Session {
	s, _ := m.store.Get(r, CookieName)
	return s
}

// UserID returns 0 when no user is signed in.
func (m *Manager) UserID(r *http.Request) int64 {
	id, _ := m.get(r).Values[keyUserID].(int64)
	return id
}

func (m *Manager) SetUserID(w http.ResponseWriter, r *http.Request, id int64) error {
	s := m.get(r)
	s.Values[keyUserID] = id
	return s.Save(r, w)
}

// Clear drops the user id but keeps the cookie itself.
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) error {
	s := m.get(r)
	delete(s.Values, keyUserID)
	return s.Save(r, w)
}
