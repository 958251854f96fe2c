package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/farhan-labs/mobicash/internal/auth"
	"github.com/farhan-labs/mobicash/internal/cache"
	"github.com/farhan-labs/mobicash/internal/config"
	"github.com/farhan-labs/mobicash/internal/domain/user"
	"github.com/farhan-labs/mobicash/internal/http/handlers"
	"github.com/farhan-labs/mobicash/internal/http/middlewares"
	"github.com/farhan-labs/mobicash/internal/notifications"
	"github.com/farhan-labs/mobicash/internal/observability"
	"github.com/farhan-labs/mobicash/internal/redisclient"
	"github.com/farhan-labs/mobicash/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, rdb *redisclient.Client, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" && cfg.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// metrics
	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	// middleware

	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("mobicash"))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(prom.GinHandleMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(1 << 20))

	// health + banner
	pingDB := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}
	pingRedis := func() error {
		if rdb == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return rdb.Ping(ctx)
	}

	h := handlers.NewHealthHandler(pingDB, pingRedis)
	r.GET("/", h.Root)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool, prom)
	pendingRepo := postgres.NewPendingUsersRepo(pool, prom)
	cashInRepo := postgres.NewCashInRepo(pool, prom)

	// token manager + auth middleware
	jwtManager := auth.NewManager(cfg.JWTSecret, time.Duration(cfg.JWTTTLMinutes)*time.Minute)
	authMw := middlewares.NewAuthMiddleware(jwtManager)

	// role -> initial balance policy
	policy := user.BalancePolicy{
		user.RoleUser:  cfg.BalanceUser,
		user.RoleAgent: cfg.BalanceAgent,
	}

	notifier := notifications.NewProtectedNotifier(notifications.NewLogNotifier(log), notifications.ProtectedNotifierConfig{})

	agentsCache := cache.New(5 * time.Second)

	// handlers
	identityHandler := handlers.NewIdentityHandler(pendingRepo, usersRepo, jwtManager, policy, notifier, log)
	usersHandler := handlers.NewUsersHandler(usersRepo, agentsCache, log)
	cashInHandler := handlers.NewCashInHandler(cashInRepo, usersRepo, cfg.StrictCashIn, log)

	// rate limiting on the unauthenticated credential endpoints
	window := time.Duration(cfg.RateWindowSeconds) * time.Second
	var limitMw gin.HandlerFunc

	if rdb != nil {
		limitMw = middlewares.NewRedisRateLimiter(rdb.Raw(), cfg.RateLimit, window).Middleware(middlewares.KeyByIP)
	} else {
		limitMw = middlewares.NewRateLimiter(cfg.RateLimit, window).Middleware(middlewares.KeyByIP)
	}

	r.POST("/register", limitMw, identityHandler.Register)
	r.POST("/login", limitMw, identityHandler.Login)

	// admin surface; the open variant matches the historically
	// unauthenticated deployment
	admin := r.Group("/")

	if !cfg.AdminRoutesOpen {
		admin.Use(authMw.RequireAuth(), authMw.RequireRole(usersRepo, user.RoleAdmin))
	}

	admin.GET("/pending-users", identityHandler.ListPending)
	admin.POST("/approve-user", identityHandler.ApproveUser)
	admin.DELETE("/pending-users/:id", identityHandler.DeletePending)

	// authenticated surface
	authed := r.Group("/", authMw.RequireAuth())

	authed.GET("/profile", usersHandler.Profile)
	authed.GET("/user", usersHandler.GetUser)
	authed.GET("/agents", usersHandler.ListAgents)
	authed.POST("/cash-in-request", cashInHandler.Create)

	return r
}
