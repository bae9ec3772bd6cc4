package http

import (
	"context"
	"fmt"

	"github.com/geocoder89/carvalue/internal/auth"
	"github.com/geocoder89/carvalue/internal/config"
	"github.com/geocoder89/carvalue/internal/http/handlers"
	"github.com/geocoder89/carvalue/internal/http/middlewares"
	"github.com/geocoder89/carvalue/internal/observability"
	"github.com/geocoder89/carvalue/internal/repo"
	"github.com/geocoder89/carvalue/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type Deps struct {
	Config   config.Config
	Users    repo.UserStore
	Reports  repo.ReportStore
	Sessions *session.Manager
	// Limiter guards signup and signin; nil falls back to an in-process limiter.
	Limiter middlewares.Limiter
	// Prom and Gatherer are optional; without them /metrics is not mounted.
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
}

func NewRouter(d Deps) (*gin.Engine, error) {
	if d.Config.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := handlers.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}

	r := gin.New()

	// ClientIP must come from the socket unless a proxy is configured explicitly.
	if err := r.SetTrustedProxies(nil); err != nil {
		return nil, err
	}

	sessionAuth := middlewares.NewSessionAuth(d.Sessions, d.Users)

	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(observability.ServiceName))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Config.CORSOrigins))
	r.Use(middlewares.MaxBodyBytes(d.Config.MaxBodyBytes))
	r.Use(middlewares.RequireJSON())
	r.Use(sessionAuth.CurrentUser())

	// health
	h := handlers.NewHealthHandler(func(ctx context.Context) error {
		return d.Users.Ping(ctx)
	})
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	limiter := d.Limiter
	if limiter == nil {
		limiter = middlewares.NewMemoryLimiter(d.Config.AuthRateLimit, d.Config.AuthRateWindow)
	}
	rateLimit := middlewares.RateLimit(limiter, middlewares.KeyByIP, d.Prom.RateLimited)

	usersHandler := handlers.NewUsersHandler(auth.NewService(d.Users), d.Users, d.Sessions, d.Prom)
	reportsHandler := handlers.NewReportsHandler(d.Reports, d.Prom)

	users := r.Group("/auth")
	{
		users.POST("/signup", rateLimit, usersHandler.Signup)
		users.POST("/signin", rateLimit, usersHandler.Signin)
		users.POST("/signout", usersHandler.Signout)
		users.GET("/whoami", sessionAuth.RequireAuth(), usersHandler.WhoAmI)
		users.GET("/:id", usersHandler.GetUser)
		users.GET("", usersHandler.FindUsers)
		users.PATCH("/:id", usersHandler.UpdateUser)
		users.DELETE("/:id", usersHandler.RemoveUser)
	}

	reports := r.Group("/reports")
	{
		reports.POST("", sessionAuth.RequireAuth(), reportsHandler.CreateReport)
		reports.PATCH("/:id", sessionAuth.RequireAdmin(), reportsHandler.ApproveReport)
		reports.GET("", reportsHandler.GetEstimate)
	}

	return r, nil
}
