package user

import "errors"

type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Password string `json:"-"` // salt.hash, never exposed
	Admin    bool   `json:"-"`
}

var ErrNotFound = errors.New("user not found")

// Attrs is a partial update; nil fields are left untouched.
type Attrs struct {
	Email    *string
	Password *string
	Admin    *bool
}

// Apply merges the non-nil attributes into u.
func (a Attrs) Apply(u *User) {
	if a.Email != nil {
		u.Email = *a.Email
	}
	if a.Password != nil {
		u.Password = *a.Password
	}
	if a.Admin != nil {
		u.Admin = *a.Admin
	}
}

type CredentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateUserRequest deliberately has no admin field: it cannot be granted over the API.
type UpdateUserRequest struct {
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=1"`
}

type FindByEmailQuery struct {
	Email string `form:"email" binding:"required,email"`
}

// Response is the only user shape written to clients.
type Response struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

func ToResponse(u User) Response {
	return Response{ID: u.ID, Email: u.Email}
}

func ToResponses(users []User) []Response {
	out := make([]Response, 0, len(users))

	for _, u := range users {
		out = append(out, ToResponse(u))
	}

	return out
}
