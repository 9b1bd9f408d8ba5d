package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	arbor_models "github.com/ternarybob/arbor/models"
	"github.com/ternarybob/fundscope/internal/app"
	"github.com/ternarybob/fundscope/internal/common"
	"github.com/ternarybob/fundscope/internal/market"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	var paths []string
	configPath := os.Getenv("FUNDSCOPE_CONFIG")
	if configPath == "" {
		if _, err := os.Stat("fundscope.toml"); err == nil {
			paths = append(paths, "fundscope.toml")
		}
	} else {
		paths = append(paths, configPath)
	}

	config, err := common.LoadFromFiles(paths...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Minimal logging to avoid cluttering MCP stdio
	logger := arbor.NewLogger().WithConsoleWriter(arbor_models.WriterConfiguration{
		Type:             arbor_models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	}).WithLevelFromString("warn")

	gateway, err := app.NewGateway(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize market gateway")
	}
	analyzer := market.NewAnalyzer(gateway, config.Market, logger)

	// Create MCP server
	mcpServer := server.NewMCPServer(
		"fundscope",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(createAnalyzeTickerTool(), handleAnalyzeTicker(analyzer, logger))
	mcpServer.AddTool(createNormalizeTickerTool(), handleNormalizeTicker(analyzer.Normalizer(), logger))

	// Start server (blocks on stdio)
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
