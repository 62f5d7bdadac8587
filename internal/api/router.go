package api

import (
	"context"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sirpyerre/portfolio-api/internal/api/handler"
	"github.com/sirpyerre/portfolio-api/internal/api/middleware"
	"github.com/sirpyerre/portfolio-api/internal/core/domain"
	"github.com/sirpyerre/portfolio-api/internal/core/forms"
	"github.com/sirpyerre/portfolio-api/internal/core/service"
	"github.com/sirpyerre/portfolio-api/internal/infrastructure/config"
	mongodb "github.com/sirpyerre/portfolio-api/internal/infrastructure/db/mongo"
	redisdb "github.com/sirpyerre/portfolio-api/internal/infrastructure/db/redis"
	healthhandlers "github.com/sirpyerre/portfolio-api/internal/infrastructure/http/handlers"
	"github.com/sirpyerre/portfolio-api/internal/infrastructure/ws"
)

// NewRouter builds the Echo instance with all routes registered. The
// returned cleanup func tears down the live comment streams; call it before
// process exit.
func NewRouter(ctx context.Context, cfg *config.Config, db *mongo.Database, rdb *redis.Client, log zerolog.Logger) (*echo.Echo, func(context.Context)) {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("portfolio"))

	// --- Store client ---
	userRepo := mongodb.NewUserRepository(db)
	profileRepo := mongodb.NewProfileRepository(db)
	projectRepo := mongodb.NewProjectRepository(db)
	articleRepo := mongodb.NewArticleRepository(db)
	commentRepo := mongodb.NewCommentRepository(db)
	commentWatcher := mongodb.NewCommentWatcher(db)

	denylist := redisdb.NewTokenDenylist(rdb)
	dedup := redisdb.NewCommentDedup(rdb)

	// --- Core services ---
	authService := service.NewAuthService(userRepo, profileRepo, denylist, cfg.JWTSecret, 24*time.Hour, log)
	projectService := service.NewProjectService(projectRepo, forms.CheckProject, log)
	articleService := service.NewArticleService(articleRepo, forms.CheckArticle, commentRepo.DeleteByArticle, log)
	commentService := service.NewCommentService(commentRepo, log)

	hub := ws.NewHub()
	streams := service.NewStreamManager(ctx, commentRepo, commentWatcher, dedup,
		func(articleID string, comment domain.Comment) {
			hub.Broadcast(articleID, handler.LiveCommentPayload(comment))
		}, log)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	projectHandler := handler.NewProjectHandler(projectService)
	articleHandler := handler.NewArticleHandler(articleService)
	commentHandler := handler.NewCommentHandler(commentService)
	feedHandler := handler.NewCommentFeedHandler(streams, hub, log)

	authRequired := middleware.Auth(cfg.JWTSecret, denylist)
	adminGate := middleware.AdminGate(cfg.AdminGate, profileRepo)
	// Comment deletion is admin-only by store policy, regardless of the
	// configured gate mode.
	strictGate := middleware.AdminGate(config.GateStrict, profileRepo)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout, authRequired)

	// --- Public site routes ---
	v1 := e.Group("/v1")
	v1.GET("/projects", projectHandler.ListPublic)
	v1.GET("/articles", articleHandler.ListPublic)
	v1.GET("/articles/:id", articleHandler.Get)
	v1.GET("/articles/:id/comments", commentHandler.List)
	v1.POST("/articles/:id/comments", commentHandler.Submit)
	v1.GET("/articles/:id/comments/live", feedHandler.Live)

	// --- Management surface ---
	admin := v1.Group("/admin", authRequired, adminGate)
	admin.GET("/me", authHandler.Me)
	admin.GET("/projects", projectHandler.List)
	admin.POST("/projects", projectHandler.Create)
	admin.PUT("/projects/:id", projectHandler.Update)
	admin.DELETE("/projects/:id", projectHandler.Delete)
	admin.GET("/articles", articleHandler.List)
	admin.POST("/articles", articleHandler.Create)
	admin.PUT("/articles/:id", articleHandler.Update)
	admin.DELETE("/articles/:id", articleHandler.Delete)
	v1.DELETE("/admin/comments/:id", commentHandler.Delete, authRequired, strictGate)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := healthhandlers.NewHealthHandler()
	healthDepsHandler := healthhandlers.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	cleanup := func(shutdownCtx context.Context) {
		streams.Shutdown(shutdownCtx)
		projectService.Close()
		articleService.Close()
	}
	return e, cleanup
}
