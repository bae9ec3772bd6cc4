package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func carryCookies(t *testing.T, w *httptest.ResponseRecorder) *http.Request {
	t.Helper()

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	return r
}

func TestSessionRoundTrip(t *testing.T) {
	m := NewManager("test-secret", 3600, false)

	w := httptest.NewRecorder()
	require.NoError(t, m.SetUserID(w, httptest.NewRequest(http.MethodGet, "/", nil), 42))

	cookie := w.Result().Cookies()[0]
	assert.Equal(t, CookieName, cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	r := carryCookies(t, w)
	assert.Equal(t, int64(42), m.UserID(r))

	w2 := httptest.NewRecorder()
	require.NoError(t, m.Clear(w2, r))

	assert.Equal(t, int64(0), m.UserID(carryCookies(t, w2)))
}

func TestUserID_NoCookie(t *testing.T) {
	m := NewManager("test-secret", 3600, false)

	assert.Equal(t, int64(0), m.UserID(httptest.NewRequest(http.MethodGet, "/", nil)))
}

func TestUserID_ForeignSecretRejected(t *testing.T) {
	issuer := NewManager("secret-one", 3600, false)
	verifier := NewManager("secret-two", 3600, false)

	w := httptest.NewRecorder()
	require.NoError(t, issuer.SetUserID(w, httptest.NewRequest(http.MethodGet, "/", nil), 7))

	assert.Equal(t, int64(0), verifier.UserID(carryCookies(t, w)))
}

func TestUserID_TamperedCookie(t *testing.T) {
	m := NewManager("test-secret", 3600, false)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "not-a-real-cookie"})

	assert.Equal(t, int64(0), m.UserID(r))
}
