package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/repairlab/repairhub/internal/cache"
	"github.com/repairlab/repairhub/internal/config"
	"github.com/repairlab/repairhub/internal/domain/user"
	"github.com/repairlab/repairhub/internal/http/handlers"
	"github.com/repairlab/repairhub/internal/http/middlewares"
	"github.com/repairlab/repairhub/internal/jobs"
	"github.com/repairlab/repairhub/internal/observability"
	"github.com/repairlab/repairhub/internal/queue/redisclient"
	"github.com/repairlab/repairhub/internal/repo/postgres"
	"github.com/repairlab/repairhub/internal/service"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// UsersStore is everything the HTTP layer needs from the users repository.
// Both the postgres and the in-memory implementations satisfy it.
type UsersStore interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByID(ctx context.Context, id int64) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
	Update(ctx context.Context, id int64, req user.UpdateUserRequest) (user.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	SoftDelete(ctx context.Context, id int64) error
}

// TokenManager issues and verifies access tokens.
type TokenManager interface {
	Issue(userID int64) (string, error)
	Verify(token string) (int64, error)
}

type RouterDeps struct {
	Log      *slog.Logger
	Cfg      config.Config
	Users    UsersStore
	Repairs  handlers.RepairsStore
	Tokens   TokenManager
	Queue    service.JobEnqueuer // may be nil
	Ping     func(ctx context.Context) error
	Prom     *observability.Prom
	Registry *prometheus.Registry
}

// NewRouter wires the production stack on top of postgres and redis.
func NewRouter(log *slog.Logger, pool *pgxpool.Pool, rdb *redisclient.Client, tokens TokenManager, cfg config.Config, prom *observability.Prom, reg *prometheus.Registry) *gin.Engine {
	usersRepo := postgres.NewUsersRepo(pool, prom)
	repairsRepo := postgres.NewRepairsRepo(pool, prom)
	jobsRepo := postgres.NewJobsRepo(pool, prom)

	var waker jobs.Waker
	if rdb != nil {
		waker = rdb
	}

	enqueuer := jobs.NewEnqueuer(jobsRepo, waker, log)

	ping := func(ctx context.Context) error {
		if pool == nil {
			return nil
		}
		return pool.Ping(ctx)
	}

	return NewRouterWith(RouterDeps{
		Log:      log,
		Cfg:      cfg,
		Users:    usersRepo,
		Repairs:  repairsRepo,
		Tokens:   tokens,
		Queue:    enqueuer,
		Ping:     ping,
		Prom:     prom,
		Registry: reg,
	})
}

// NewRouterWith builds the engine from explicit dependencies so tests can
// swap in memory stores.
func NewRouterWith(deps RouterDeps) *gin.Engine {
	if deps.Cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(deps.Cfg.AllowedOrigins))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(1 << 20))
	r.Use(otelgin.Middleware("repairhub"))

	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}

	healthHandler := handlers.NewHealthHandler(deps.Ping)
	r.GET("/healthz", healthHandler.Healthz)
	r.GET("/readyz", healthHandler.Readyz)

	if deps.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	authService := service.NewAuthService(deps.Users, deps.Tokens, deps.Queue, deps.Cfg.RejectDisabledLogin, deps.Log)

	authHandler := handlers.NewAuthHandler(authService)
	usersHandler := handlers.NewUsersHandler(deps.Users, cache.New(5*time.Second))
	repairsHandler := handlers.NewRepairsHandler(deps.Repairs, deps.Queue, deps.Log)

	authMw := middlewares.NewAuthMiddleware(deps.Tokens, deps.Users)

	api := r.Group("/api/v1")

	api.POST("/users", authHandler.Register)
	api.POST("/users/login", authHandler.Login)

	authed := api.Group("", authMw.RequireAuth())

	authed.PATCH("/users/password", authHandler.ChangePassword)
	authed.GET("/users", authMw.RequireRole(user.RoleEmployee), usersHandler.List)
	authed.GET("/users/:id", usersHandler.Get)
	authed.PATCH("/users/:id", usersHandler.Update)
	authed.DELETE("/users/:id", usersHandler.Delete)

	authed.POST("/repairs", repairsHandler.Create)

	employee := authed.Group("", authMw.RequireRole(user.RoleEmployee))

	employee.GET("/repairs", repairsHandler.List)
	employee.GET("/repairs/:id", repairsHandler.Get)
	employee.PATCH("/repairs/:id", repairsHandler.Complete)
	employee.DELETE("/repairs/:id", repairsHandler.Cancel)

	return r
}
