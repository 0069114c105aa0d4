package http

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/geocoder89/hospitalhub/internal/auth"
	"github.com/geocoder89/hospitalhub/internal/blobstore"
	"github.com/geocoder89/hospitalhub/internal/cache"
	"github.com/geocoder89/hospitalhub/internal/config"
	"github.com/geocoder89/hospitalhub/internal/domain/identity"
	"github.com/geocoder89/hospitalhub/internal/http/handlers"
	"github.com/geocoder89/hospitalhub/internal/http/middlewares"
	"github.com/geocoder89/hospitalhub/internal/observability"
	"github.com/geocoder89/hospitalhub/internal/redisclient"
	"github.com/geocoder89/hospitalhub/internal/repo/postgres"
)

// Body limit that still lets a full-size profile image through.
const maxRequestBody = int64(blobstore.MaxImageSize) + 1<<20

const doctorsDirectoryTTL = 30 * time.Second

type RouterDeps struct {
	Cfg      config.Config
	Pool     *pgxpool.Pool
	Redis    *redisclient.Client
	Prom     *observability.Prom
	Registry *prometheus.Registry
	Blobs    blobstore.Store
}

func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(deps.Cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(maxRequestBody))
	r.Use(otelgin.Middleware("hospitalhub"))

	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}

	// health
	pingDB := func() error {
		if deps.Pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return deps.Pool.Ping(ctx)
	}

	var pingRedis func() error

	if deps.Redis != nil {
		pingRedis = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
			defer cancel()

			return deps.Redis.Ping(ctx)
		}
	}

	h := handlers.NewHealthHandler(pingDB, pingRedis)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	// wire up repositories
	identitiesRepo := postgres.NewIdentitiesRepo(deps.Pool)
	patientsRepo := postgres.NewPatientsRepo(deps.Pool, identitiesRepo)
	doctorsRepo := postgres.NewDoctorsRepo(deps.Pool, identitiesRepo)
	departmentsRepo := postgres.NewDepartmentsRepo(deps.Pool)
	appointmentsRepo := postgres.NewAppointmentsRepo(deps.Pool, deps.Prom)
	statsRepo := postgres.NewStatsRepo(deps.Pool, deps.Prom)
	refreshRepo := postgres.NewRefreshTokensRepo(deps.Pool)

	jwtManager := auth.NewManager(deps.Cfg.JWTSecret, deps.Cfg.AccessTTL(), deps.Cfg.RefreshTTL())
	throttle := redisclient.NewLoginThrottle(deps.Redis, 10, time.Minute)
	authMW := middlewares.NewAuthMiddleware(jwtManager)

	directoryCache := cache.New(doctorsDirectoryTTL)

	// wire up handlers
	authHandler := handlers.NewAuthHandler(
		identitiesRepo, patientsRepo, identitiesRepo,
		jwtManager, refreshRepo, throttle, deps.Prom, deps.Cfg,
	)
	appointmentsHandler := handlers.NewAppointmentsHandler(appointmentsRepo, deps.Prom)
	doctorsHandler := handlers.NewDoctorsHandler(doctorsRepo, departmentsRepo, directoryCache)
	departmentsHandler := handlers.NewDepartmentsHandler(departmentsRepo)
	patientsHandler := handlers.NewPatientsHandler(patientsRepo)
	dashboardHandler := handlers.NewDashboardHandler(statsRepo, patientsRepo, doctorsRepo, appointmentsRepo)
	profileHandler := handlers.NewProfileHandler(identitiesRepo, deps.Blobs)

	// public doctor directory for the booking page
	r.GET("/doctors", doctorsHandler.Directory)

	// auth endpoints, rate limited by caller IP
	authLimiter := middlewares.NewRateLimiter(20, time.Minute)
	authGroup := r.Group("/auth", authLimiter.RateLimiterMiddleware(middlewares.KeyByIP))

	register := authGroup.Group("", middlewares.RequireJSON())
	register.POST("/patients/register", authHandler.RegisterPatient)
	register.POST("/patients/login", authHandler.LoginPatient)
	register.POST("/doctors/login", authHandler.LoginDoctor)
	register.POST("/admins/register", authHandler.RegisterAdmin)
	register.POST("/admins/login", authHandler.LoginAdmin)

	// cookie-driven, no JSON body
	authGroup.POST("/refresh", authHandler.Refresh)
	authGroup.POST("/logout", authHandler.Logout)

	authed := r.Group("", authMW.RequireAuth())

	// common profile endpoints, any role
	me := authed.Group("/me")
	me.GET("", profileHandler.Get)
	me.PUT("", middlewares.RequireJSON(), profileHandler.Update)
	me.POST("/image", profileHandler.UploadImage)

	// patient surface
	patientOnly := authed.Group("", authMW.RequireRole(identity.RolePatient))
	patientOnly.GET("/me/dashboard", dashboardHandler.Patient)
	patientOnly.POST("/appointments", middlewares.RequireJSON(), appointmentsHandler.Book)
	patientOnly.GET("/appointments", appointmentsHandler.ListMine)

	// doctor surface
	doctorOnly := authed.Group("/doctor", authMW.RequireRole(identity.RoleDoctor))
	doctorOnly.GET("/dashboard", dashboardHandler.Doctor)
	doctorOnly.GET("/appointments", appointmentsHandler.ListForDoctor)

	// admin surface
	adminOnly := authed.Group("/admin", authMW.RequireRole(identity.RoleAdmin))
	adminOnly.GET("/dashboard", dashboardHandler.Admin)
	adminOnly.POST("/doctors", middlewares.RequireJSON(), doctorsHandler.Create)
	adminOnly.GET("/doctors", doctorsHandler.List)
	adminOnly.POST("/departments", middlewares.RequireJSON(), departmentsHandler.Create)
	adminOnly.GET("/departments", departmentsHandler.List)
	adminOnly.POST("/patients", middlewares.RequireJSON(), patientsHandler.Create)
	adminOnly.GET("/patients", patientsHandler.List)
	adminOnly.GET("/appointments", appointmentsHandler.ListAll)

	return r
}
