package main

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fundscope/internal/market"
	"github.com/ternarybob/fundscope/internal/report"
)

// tickerAnalyzer produces an analysis for a raw ticker
type tickerAnalyzer interface {
	Analyze(ctx context.Context, rawTicker string) (*market.AnalysisResult, error)
}

// tickerNormalizer resolves a raw ticker to a listed symbol
type tickerNormalizer interface {
	Normalize(ctx context.Context, raw string) string
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

// handleAnalyzeTicker implements the analyze_ticker tool
func handleAnalyzeTicker(analyzer tickerAnalyzer, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ticker, err := request.RequireString("ticker")
		if err != nil || strings.TrimSpace(ticker) == "" {
			return textResult("Error: ticker parameter is required"), nil
		}

		format := strings.ToLower(request.GetString("format", report.FormatMarkdown))
		if format == report.FormatPDF {
			return textResult("Error: pdf is not available over MCP"), nil
		}

		result, err := analyzer.Analyze(ctx, ticker)
		if err != nil {
			logger.Error().Err(err).Str("ticker", ticker).Msg("Analysis failed")
			return textResult(fmt.Sprintf("Analysis error: %v", err)), nil
		}

		var buf bytes.Buffer
		if err := report.Write(&buf, format, result); err != nil {
			return textResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return textResult(buf.String()), nil
	}
}

// handleNormalizeTicker implements the normalize_ticker tool
func handleNormalizeTicker(normalizer tickerNormalizer, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ticker, err := request.RequireString("ticker")
		if err != nil || strings.TrimSpace(ticker) == "" {
			return textResult("Error: ticker parameter is required"), nil
		}

		symbol := normalizer.Normalize(ctx, ticker)
		logger.Debug().Str("ticker", ticker).Str("symbol", symbol).Msg("Ticker normalized")
		return textResult(symbol), nil
	}
}
