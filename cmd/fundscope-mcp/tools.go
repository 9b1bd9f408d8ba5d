package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createAnalyzeTickerTool returns the analyze_ticker tool definition
func createAnalyzeTickerTool() mcp.Tool {
	return mcp.NewTool("analyze_ticker",
		mcp.WithDescription("Fundamental snapshot of a listed stock: price, market cap, PER, PBV, ROE, DER, dividend yield and net income growth"),
		mcp.WithString("ticker",
			mcp.Required(),
			mcp.Description("Ticker as typed by a user (BBCA, AAPL, 7203.T). Bare tickers are resolved against exchange suffixes"),
		),
		mcp.WithString("format",
			mcp.Description("Report format: markdown (default), text, json or yaml"),
			mcp.Enum("markdown", "text", "json", "yaml"),
		),
	)
}

// createNormalizeTickerTool returns the normalize_ticker tool definition
func createNormalizeTickerTool() mcp.Tool {
	return mcp.NewTool("normalize_ticker",
		mcp.WithDescription("Resolve a user-typed ticker to the listed symbol used for market data"),
		mcp.WithString("ticker",
			mcp.Required(),
			mcp.Description("Ticker as typed by a user"),
		),
	)
}
