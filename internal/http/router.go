package http

import (
	"log/slog"
	"time"

	"github.com/geocoder89/webtwist/internal/auth"
	"github.com/geocoder89/webtwist/internal/config"
	"github.com/geocoder89/webtwist/internal/domain/account"
	"github.com/geocoder89/webtwist/internal/http/handlers"
	"github.com/geocoder89/webtwist/internal/http/middlewares"
	"github.com/geocoder89/webtwist/internal/jobs"
	"github.com/geocoder89/webtwist/internal/observability"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const ServiceName = "webtwist-api"

// Deps is everything the API needs, already constructed by cmd/api or a test.
type Deps struct {
	Config   config.Config
	Log      *slog.Logger
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer

	Auth      *auth.Service
	Blogs     handlers.BlogsRepo
	About     handlers.AboutRepo
	Contacts  handlers.ContactsRepo
	Captcha   handlers.CaptchaService
	Enqueuer  jobs.Enqueuer
	Presigner handlers.CoverPresigner // nil disables uploads

	Checks map[string]handlers.Check
}

func NewRouter(d Deps) *gin.Engine {
	if d.Config.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	if d.Config.OTelEnabled {
		r.Use(otelgin.Middleware(ServiceName))
	}
	r.Use(middlewares.RequestLogger(d.Log))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))
	r.Use(middlewares.SecurityHeaders(d.Config.IsProduction()))
	r.Use(middlewares.CORSMiddleware(d.Config.CORSOrigins))
	r.Use(middlewares.MaxBodyBytes(d.Config.MaxBodyBytes))
	r.Use(middlewares.RequireJSON())

	// health, metrics, docs
	health := handlers.NewHealthHandler(d.Checks)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	r.GET("/docs", handlers.SwaggerUI)
	r.GET("/docs/openapi.yaml", handlers.OpenAPISpec)

	// wire up handlers
	var failures middlewares.FailureObserver
	if d.Prom != nil {
		failures = d.Prom
	}

	authMW := middlewares.NewAuthMiddleware(d.Auth, failures, d.Log)
	authHandler := handlers.NewAuthHandler(d.Auth, d.Config.AllowSignup, failures, d.Log)
	var metrics handlers.ContentMetrics
	if d.Prom != nil {
		metrics = d.Prom
	}

	blogsHandler := handlers.NewBlogsHandler(d.Blogs, d.Log).WithMetrics(metrics)
	aboutHandler := handlers.NewAboutHandler(d.About, d.Log)
	contactHandler := handlers.NewContactHandler(d.Contacts, d.Captcha, d.Enqueuer, d.Log).WithMetrics(metrics)
	uploadsHandler := handlers.NewUploadsHandler(d.Presigner, d.Log)

	limiter := middlewares.NewRateLimiter(d.Config.RateLimitPerMinute, time.Minute)
	limited := limiter.Middleware(middlewares.KeyByRouteAndIP)

	adminOnly := []gin.HandlerFunc{authMW.RequireAuth(), authMW.RequireRole(account.RoleAdmin)}

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/signup", limited, authHandler.SignUp)
		authGroup.POST("/login", limited, authHandler.Login)
		authGroup.GET("/verify", authMW.RequireAuth(), authHandler.Verify)
	}

	blogGroup := api.Group("/blog")
	{
		blogGroup.GET("", blogsHandler.List)
		blogGroup.GET("/featured", blogsHandler.Featured)
		blogGroup.GET("/:slug", blogsHandler.GetBySlug)

		admin := blogGroup.Group("/admin", adminOnly...)
		admin.GET("/all", blogsHandler.ListAll)
		admin.POST("", blogsHandler.Create)
		admin.POST("/uploads", uploadsHandler.PresignCover)
		admin.PUT("/:id", blogsHandler.Update)
		admin.DELETE("/:id", blogsHandler.Delete)
		admin.PATCH("/:id/publish", blogsHandler.TogglePublished)
		admin.PATCH("/:id/featured", blogsHandler.ToggleFeatured)
	}

	api.GET("/about", aboutHandler.Get)
	api.PUT("/about", append(adminOnly, aboutHandler.Update)...)

	contactGroup := api.Group("/contact")
	{
		contactGroup.GET("/captcha", limited, contactHandler.Captcha)
		contactGroup.POST("", limited, contactHandler.Create)

		admin := contactGroup.Group("", adminOnly...)
		admin.GET("", contactHandler.List)
		admin.PUT("/:id", contactHandler.Update)
		admin.DELETE("/:id", contactHandler.Delete)
	}

	return r
}
