package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/carvalue/internal/domain/user"
	"github.com/geocoder89/carvalue/internal/http/handlers"
	"github.com/geocoder89/carvalue/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)

	if err := handlers.RegisterValidators(); err != nil {
		panic(err)
	}
}

type errorResponse struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"requestId"`
		Details   struct {
			JSON   string                `json:"json"`
			Field  string                `json:"field"`
			Fields []handlers.FieldError `json:"fields"`
		} `json:"details"`
	} `json:"error"`
}

// setupRouter mounts one handler; a non-nil current user is bound the way
// the session middleware would.
func setupRouter(method, path string, current *user.User, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Use(middlewares.RequestID())
	if current != nil {
		r.Use(func(c *gin.Context) {
			c.Set(middlewares.CtxCurrentUser, *current)
			c.Next()
		})
	}

	r.Handle(method, path, h)

	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorResponse {
	t.Helper()

	var resp errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal error response: %v body=%s", err, w.Body.String())
	}

	return resp
}

func fieldRules(resp errorResponse) map[string]string {
	out := make(map[string]string, len(resp.Error.Details.Fields))
	for _, f := range resp.Error.Details.Fields {
		out[f.Field] = f.Rule
	}
	return out
}
