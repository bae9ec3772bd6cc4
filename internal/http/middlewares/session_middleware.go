package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/carvalue/internal/actorctx"
	"github.com/geocoder89/carvalue/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// Keep these small so tests can fake them easily.
type SessionStore interface {
	UserID(r *http.Request) int64
	Clear(w http.ResponseWriter, r *http.Request) error
}

type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*user.User, error)
}

type SessionAuth struct {
	sessions SessionStore
	users    UserFinder
}

func NewSessionAuth(sessions SessionStore, users UserFinder) *SessionAuth {
	return &SessionAuth{sessions: sessions, users: users}
}

// CurrentUser resolves the session's user id and attaches the user to the
// request. A session pointing at a deleted user is cleared and the request
// continues signed out.
func (m *SessionAuth) CurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := m.sessions.UserID(c.Request)

		if id == 0 {
			c.Next()
			return
		}

		u, err := m.users.FindByID(c.Request.Context(), id)

		switch {
		case errors.Is(err, user.ErrNotFound):
			slog.Default().WarnContext(c.Request.Context(), "session references missing user, clearing",
				"session_user_id", id,
			)
			if err := m.sessions.Clear(c.Writer, c.Request); err != nil {
				c.Error(err)
				abortWithError(c, http.StatusInternalServerError, "internal_error", "Could not reset session")
				return
			}
		case err != nil:
			c.Error(err)
			abortWithError(c, http.StatusInternalServerError, "internal_error", "Could not load current user")
			return
		case u != nil:
			c.Set(CtxCurrentUser, *u)
			c.Request = c.Request.WithContext(actorctx.WithUserID(c.Request.Context(), u.ID))
		}

		c.Next()
	}
}

// RequireAuth only checks that the session carries a user id.
func (m *SessionAuth) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.sessions.UserID(c.Request) == 0 {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "Not signed in")
			return
		}

		c.Next()
	}
}

// RequireAdmin needs CurrentUser to have run first.
func (m *SessionAuth) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUserFrom(c)

		if !ok {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "Not signed in")
			return
		}

		if !u.Admin {
			abortWithError(c, http.StatusForbidden, "forbidden", "Admin role required")
			return
		}

		c.Next()
	}
}

func CurrentUserFrom(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(CtxCurrentUser)
	if !ok {
		return user.User{}, false
	}
	u, ok := v.(user.User)
	return u, ok
}
