package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/carvalue/internal/auth"
	"github.com/geocoder89/carvalue/internal/domain/user"
	"github.com/geocoder89/carvalue/internal/http/middlewares"
	"github.com/geocoder89/carvalue/internal/observability"
	"github.com/geocoder89/carvalue/internal/security"
	"github.com/gin-gonic/gin"
)

type Authenticator interface {
	Signup(ctx context.Context, email, password string) (user.User, error)
	Signin(ctx context.Context, email, password string) (user.User, error)
}

type UserStore interface {
	FindByID(ctx context.Context, id int64) (*user.User, error)
	FindByEmail(ctx context.Context, email string) ([]user.User, error)
	Update(ctx context.Context, id int64, attrs user.Attrs) (user.User, error)
	Remove(ctx context.Context, id int64) (user.User, error)
}

type SessionWriter interface {
	SetUserID(w http.ResponseWriter, r *http.Request, id int64) error
	Clear(w http.ResponseWriter, r *http.Request) error
}

type UsersHandler struct {
	auth     Authenticator
	users    UserStore
	sessions SessionWriter
	prom     *observability.Prom
}

// prom may be nil.
func NewUsersHandler(authn Authenticator, users UserStore, sessions SessionWriter, prom *observability.Prom) *UsersHandler {
	return &UsersHandler{auth: authn, users: users, sessions: sessions, prom: prom}
}

func (h *UsersHandler) Signup(ctx *gin.Context) {
	var req user.CredentialsRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	u, err := h.auth.Signup(cctx, req.Email, req.Password)
	h.prom.AuthAttempt("signup", err)

	if err != nil {
		if errors.Is(err, auth.ErrEmailInUse) {
			RespondBadCredential(ctx, "Email in use")
			return
		}

		RespondInternal(ctx, "Could not create user", err)
		return
	}

	if err := h.sessions.SetUserID(ctx.Writer, ctx.Request, u.ID); err != nil {
		RespondInternal(ctx, "Could not start session", err)
		return
	}

	ctx.JSON(http.StatusCreated, user.ToResponse(u))
}

func (h *UsersHandler) Signin(ctx *gin.Context) {
	var req user.CredentialsRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	u, err := h.auth.Signin(cctx, req.Email, req.Password)
	h.prom.AuthAttempt("signin", err)

	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			RespondNotFound(ctx, "User not found")
		case errors.Is(err, auth.ErrBadPassword):
			RespondBadCredential(ctx, "Bad password")
		default:
			RespondInternal(ctx, "Could not sign in", err)
		}
		return
	}

	if err := h.sessions.SetUserID(ctx.Writer, ctx.Request, u.ID); err != nil {
		RespondInternal(ctx, "Could not start session", err)
		return
	}

	ctx.JSON(http.StatusOK, user.ToResponse(u))
}

func (h *UsersHandler) Signout(ctx *gin.Context) {
	if err := h.sessions.Clear(ctx.Writer, ctx.Request); err != nil {
		RespondInternal(ctx, "Could not end session", err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *UsersHandler) WhoAmI(ctx *gin.Context) {
	u, ok := middlewares.CurrentUserFrom(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Not signed in")
		return
	}

	ctx.JSON(http.StatusOK, user.ToResponse(u))
}

func (h *UsersHandler) GetUser(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	u, err := h.users.FindByID(cctx, id)

	if err != nil && !errors.Is(err, user.ErrNotFound) {
		RespondInternal(ctx, "Could not fetch user", err)
		return
	}

	if u == nil {
		RespondNotFound(ctx, "User not found")
		return
	}

	ctx.JSON(http.StatusOK, user.ToResponse(*u))
}

func (h *UsersHandler) FindUsers(ctx *gin.Context) {
	var q user.FindByEmailQuery

	if !BindQuery(ctx, &q) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	users, err := h.users.FindByEmail(cctx, q.Email)

	if err != nil {
		RespondInternal(ctx, "Could not list users", err)
		return
	}

	ctx.JSON(http.StatusOK, user.ToResponses(users))
}

func (h *UsersHandler) UpdateUser(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var req user.UpdateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	attrs := user.Attrs{Email: req.Email}

	if req.Password != nil {
		hash, err := security.HashPassword(*req.Password)
		if err != nil {
			RespondInternal(ctx, "Could not update user", err)
			return
		}
		attrs.Password = &hash
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	u, err := h.users.Update(cctx, id, attrs)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not update user", err)
		return
	}

	ctx.JSON(http.StatusOK, user.ToResponse(u))
}

func (h *UsersHandler) RemoveUser(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	u, err := h.users.Remove(cctx, id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not remove user", err)
		return
	}

	ctx.JSON(http.StatusOK, user.ToResponse(u))
}

// pathID parses the :id segment, writing a 400 when it is not an integer.
func pathID(ctx *gin.Context) (int64, bool) {
	raw := ctx.Param("id")

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		RespondBadRequest(ctx, "Invalid id", gin.H{
			"fields": []FieldError{{Field: "id", Rule: "int", Message: "must be an integer"}},
		})
		return 0, false
	}

	return id, true
}
