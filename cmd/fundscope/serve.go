package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fundscope/internal/app"
	"github.com/ternarybob/fundscope/internal/common"
	"github.com/ternarybob/fundscope/internal/server"
)

type serveCmd struct {
	config configFlags
	port   int
	host   string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the web application" }
func (*serveCmd) Usage() string {
	return `fundscope serve [-config <file>]... [-port <port>] [-host <host>]

  Starts the web dashboard, the JSON API and the housekeeping scheduler.
`
}

func (s *serveCmd) SetFlags(f *flag.FlagSet) {
	s.config.register(f)
	f.IntVar(&s.port, "port", 0, "Server port (overrides config)")
	f.IntVar(&s.port, "p", 0, "Server port (shorthand, overrides config)")
	f.StringVar(&s.host, "host", "", "Server host (overrides config)")
}

func (s *serveCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	// Startup sequence (REQUIRED ORDER):
	// 1. Load config (defaults -> file1 -> file2 -> ... -> env)
	// 2. Apply CLI overrides (highest priority)
	// 3. Initialize logger
	// 4. Print banner
	config, err := s.config.load()
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Error().Strs("paths", s.config.files).Err(err).Msg("Failed to load configuration")
		return subcommands.ExitFailure
	}

	common.ApplyFlagOverrides(config, s.port, s.host)

	logger := common.SetupLogger(config)
	common.InstallCrashHandler(common.LogsDirectory())
	defer common.RecoverWithCrashFile()

	common.PrintBanner(config, logger)

	logger.Debug().
		Str("provider", config.Market.Provider).
		Str("badger_path", config.Storage.Badger.Path).
		Str("log_level", config.Logging.Level).
		Strs("log_output", config.Logging.Output).
		Bool("mail_dev_mode", config.Mail.DevMode).
		Msg("Resolved configuration (sanitized)")

	logger.Info().
		Strs("config_files", s.config.files).
		Int("port", config.Server.Port).
		Str("host", config.Server.Host).
		Msg("Application configuration loaded")

	application, err := app.New(config, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize application")
		return subcommands.ExitFailure
	}
	defer application.Close()

	srv := server.New(application)

	serverErr := make(chan error, 1)
	go func() {
		defer common.RecoverWithCrashFile()
		serverErr <- srv.Start()
	}()

	logger.Info().
		Str("url", config.PublicBaseURL()).
		Msg("Server ready - Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info().Msg("Interrupt signal received")
	case err := <-serverErr:
		if err != nil {
			logger.Error().Err(err).Msg("Server failed")
			return subcommands.ExitFailure
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
	}

	logger.Info().Msg("Server stopped")
	return subcommands.ExitSuccess
}
