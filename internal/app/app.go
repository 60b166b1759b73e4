package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/studykit/core/internal/config"
	"github.com/studykit/core/internal/middleware"
	"github.com/studykit/core/internal/modules/processing/extract"
	"github.com/studykit/core/internal/modules/processing/study"
	pkgcron "github.com/studykit/core/internal/pkg/cron"
	"github.com/studykit/core/internal/pkg/gemini"
)

// App holds all application dependencies.
type App struct {
	cfg    *config.AppConfig
	router *gin.Engine
	logger *zap.Logger
	cancel context.CancelFunc
	sched  *pkgcron.Scheduler
}

// New initializes the application: runtime settings → services → routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := applyRuntimeSettings(cfg); err != nil {
		return nil, err
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(cors.New(corsConfig(cfg)))

	extractor, err := extract.NewService(cfg.UploadDir(), logger)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	generator := gemini.New(gemini.Config{
		Endpoint: cfg.Gemini.Endpoint,
		Model:    cfg.Gemini.Model,
		APIKey:   cfg.Gemini.APIKey,
		Timeout:  cfg.GeminiTimeout(),
	}, logger)
	studySvc := study.NewService(extractor, generator, study.Options{
		MaxUploadSizeMB: cfg.Study.MaxUploadSizeMB,
		PromptMaxChars:  cfg.Study.PromptMaxChars,
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())

	sched := pkgcron.New(logger)
	registerCronJobs(sched, extractor)
	go sched.Start(ctx)
	// sweep once at startup so leftovers from a crash don't wait out the
	// first interval
	go func() { _ = sched.Run(ctx, sweepStaleJobName) }()

	app := &App{cfg: cfg, router: router, logger: logger, cancel: cancel, sched: sched}
	app.registerRoutes(studySvc)

	return app, nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return a.cfg.Addr() }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown stops background goroutines.
func (a *App) Shutdown() { a.cancel() }

var processStart = time.Now()
