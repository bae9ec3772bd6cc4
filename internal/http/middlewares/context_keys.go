package middlewares

type ctxKey string

// gin context keys
const (
	CtxRequestID   ctxKey = "request_id"
	CtxCurrentUser ctxKey = "current_user"
)
