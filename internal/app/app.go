package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"modulegate_backend/internal/config"
	"modulegate_backend/internal/controller"
	"modulegate_backend/internal/repository"
	"modulegate_backend/internal/service"
	"modulegate_backend/pkg/configwatcher"
	"modulegate_backend/pkg/database"
	"modulegate_backend/pkg/logger"
	"modulegate_backend/pkg/monitoring"
	"modulegate_backend/pkg/security"
	"modulegate_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	ConfigDir       string
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	configCallbacks []func(*config.Config)
	tracerProvider  *sdktrace.TracerProvider
}

// stores are the persistence backends behind the services. NewApp uses the
// gorm and redis repositories; tests swap in testutil stores.
type stores struct {
	modules  service.ModuleStore
	cache    service.ModuleCache
	consents service.ConsentStore
}

type services struct {
	module  *service.ModuleService
	consent *service.ConsentService
}

type controllers struct {
	student *controller.StudentController
	consent *controller.ConsentController
	module  *controller.ModuleController
	health  *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *stores {
	return &stores{
		modules:  repository.NewModuleRepository(db),
		cache:    repository.NewModuleCache(rdb, cfg.Admission.ModuleCacheTTL()),
		consents: repository.NewConsentRepository(db),
	}
}

func (a *App) initServices(st *stores, cfg *config.Config) *services {
	moduleService := service.NewModuleService(st.modules, st.cache, cfg.Admission.CodeGenerationAttempts)
	return &services{
		module:  moduleService,
		consent: service.NewConsentService(st.consents, moduleService),
	}
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		student: controller.NewStudentController(s.module, s.consent),
		consent: controller.NewConsentController(s.consent),
		module:  controller.NewModuleController(s.module),
		health:  controller.NewHealthController(a.DB, a.Redis),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter("global", cfg.RateLimit.MaxRequests, cfg.RateLimit.RateWindow()))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// assemble wires services and routes on top of already opened backends.
func assemble(cfg *config.Config, db *gorm.DB, rdb *redis.Client, st *stores) *App {
	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	app.services = app.initServices(st, cfg)
	controllers := app.initControllers(app.services)

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		app.services.module.SetCacheTTL(newCfg.Admission.ModuleCacheTTL())
		logger.Log.Info("Module cache TTL updated", zap.Duration("ttl", newCfg.Admission.ModuleCacheTTL()))
	})

	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	return app
}

func NewApp(cfg *config.Config, configDir string) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	migrate := cfg.ForceMigrate || cfg.Server.Mode != gin.ReleaseMode
	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode, migrate)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	// the cache only speeds up re-entry reads, so run without it rather than fail
	rdb, err := database.InitRedis(context.Background(), &cfg.Redis)
	if err != nil {
		logger.Log.Warn("Redis unavailable, module cache disabled", zap.Error(err))
		rdb = nil
	}

	monitoring.Init()

	var tp *sdktrace.TracerProvider
	if cfg.Tracing.Enabled {
		tp, err = tracing.InitTracer("module-gate", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app := assemble(cfg, db, rdb, initRepositories(db, rdb, cfg))
	app.ConfigDir = configDir
	app.tracerProvider = tp
	return app
}

func (a *App) watchConfig(ctx context.Context) {
	if a.ConfigDir == "" {
		return
	}
	go func() {
		err := configwatcher.WatchConfig(ctx, a.ConfigDir, func(cfg *config.Config) {
			for _, callback := range a.configCallbacks {
				callback(cfg)
			}
		})
		if err != nil {
			logger.Log.Error("Config watcher stopped", zap.Error(err))
		}
	}()
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	watchCtx, stopWatching := context.WithCancel(context.Background())
	defer stopWatching()
	a.watchConfig(watchCtx)

	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Log.Info("Server exiting")
}
