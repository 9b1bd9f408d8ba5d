package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	arbormodels "github.com/ternarybob/arbor/models"
	"github.com/ternarybob/arbor/services/logviewer"
	"github.com/ternarybob/fundscope/internal/common"
	"github.com/ternarybob/fundscope/internal/handlers"
	"github.com/ternarybob/fundscope/internal/interfaces"
	"github.com/ternarybob/fundscope/internal/market"
	"github.com/ternarybob/fundscope/internal/services/auth"
	"github.com/ternarybob/fundscope/internal/services/mailer"
	"github.com/ternarybob/fundscope/internal/services/scheduler"
	"github.com/ternarybob/fundscope/internal/services/watchlist"
	"github.com/ternarybob/fundscope/internal/storage/badger"
	"github.com/ternarybob/fundscope/pages"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Market data
	Gateway  interfaces.MarketGateway
	Analyzer *market.Analyzer

	// Services
	Mailer           *mailer.Service
	AuthService      *auth.Service
	WatchlistService *watchlist.Service
	SchedulerService *scheduler.Service

	// HTTP handlers
	Sessions         *handlers.SessionManager
	PageHandler      *handlers.PageHandler
	AuthHandler      *handlers.AuthHandler
	DashboardHandler *handlers.DashboardHandler
	AdminHandler     *handlers.AdminHandler
	LogsHandler      *handlers.LogsHandler
	APIHandler       *handlers.APIHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initServices(); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := app.initHandlers(); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	return app, nil
}

func (a *App) initDatabase() error {
	storageManager, err := badger.NewManager(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Bool("in_memory", a.Config.Storage.Badger.InMemory).
		Msg("Storage layer initialized")

	return nil
}

// initServices initializes business services in dependency order:
// gateway -> analyzer -> mailer -> auth -> watchlist -> scheduler
func (a *App) initServices() error {
	gateway, err := NewGateway(a.Config, a.Logger)
	if err != nil {
		return err
	}
	a.Gateway = gateway
	a.Analyzer = market.NewAnalyzer(gateway, a.Config.Market, a.Logger)

	a.Mailer = mailer.NewService(a.Config.Mail, a.Logger)
	if !a.Config.Mail.DevMode && !a.Mailer.IsConfigured() {
		a.Logger.Warn().Msg("Mail is not configured: account emails will fail to send")
	}

	a.AuthService = auth.NewService(
		a.StorageManager.UserStorage(),
		a.StorageManager.SessionStorage(),
		a.Mailer,
		a.Config,
		a.Logger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := a.AuthService.EnsureAdmin(ctx); err != nil {
		return fmt.Errorf("failed to bootstrap admin account: %w", err)
	}

	a.WatchlistService = watchlist.NewService(
		a.StorageManager.WatchlistStorage(),
		a.StorageManager.UserStorage(),
		gateway,
		a.Analyzer.Normalizer(),
		a.Logger,
	)

	a.SchedulerService = scheduler.NewService(a.AuthService, a.Logger)
	if a.Config.Scheduler.CleanupSchedule != "" {
		if err := a.SchedulerService.Start(a.Config.Scheduler.CleanupSchedule); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
	}

	return nil
}

func (a *App) initHandlers() error {
	pageHandler, err := handlers.NewPageHandler(a.Logger, pages.FS)
	if err != nil {
		return err
	}
	a.PageHandler = pageHandler

	secure := strings.HasPrefix(a.Config.PublicBaseURL(), "https://")
	a.Sessions = handlers.NewSessionManager(a.AuthService, a.Config.Auth.CookieName, secure, a.Logger)

	a.AuthHandler = handlers.NewAuthHandler(a.AuthService, a.Sessions, pageHandler, a.Logger)
	a.DashboardHandler = handlers.NewDashboardHandler(
		a.Analyzer,
		a.Gateway,
		a.WatchlistService,
		pageHandler,
		a.Config.Market.ChartRange,
		a.Logger,
	)
	a.AdminHandler = handlers.NewAdminHandler(a.AuthService, a.WatchlistService, pageHandler, a.Logger)

	// The viewer reads the same file the logger writes to
	logViewer := logviewer.NewService(arbormodels.WriterConfiguration{
		Type:       arbormodels.LogWriterTypeFile,
		FileName:   common.LogFilePath(),
		TimeFormat: a.Config.Logging.TimeFormat,
	})
	a.LogsHandler = handlers.NewLogsHandler(logViewer, a.Logger)
	a.APIHandler = handlers.NewAPIHandler(a.Analyzer, a.Logger)

	return nil
}

// Close stops background work and closes storage
func (a *App) Close() error {
	if a.SchedulerService != nil {
		a.SchedulerService.Stop()
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
