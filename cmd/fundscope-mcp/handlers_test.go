package main

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fundscope/internal/market"
)

type mockAnalyzer struct {
	err error
}

func (m *mockAnalyzer) Analyze(ctx context.Context, raw string) (*market.AnalysisResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	per := "9.50"
	return &market.AnalysisResult{
		InputTicker: raw,
		UsedTicker:  "BBCA.JK",
		Name:        "Bank Central Asia",
		Ratios:      market.RatioView{PERStr: &per},
	}, nil
}

type suffixNormalizer struct{}

func (suffixNormalizer) Normalize(ctx context.Context, raw string) string {
	return raw + ".JK"
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) string {
	t.Helper()
	var request mcp.CallToolRequest
	request.Params.Arguments = args

	result, err := handler(context.Background(), request)
	require.NoError(t, err)
	require.Len(t, result.Content, 1)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestHandleAnalyzeTicker(t *testing.T) {
	logger := arbor.NewLogger()
	handler := handleAnalyzeTicker(&mockAnalyzer{}, logger)

	out := callTool(t, handler, map[string]any{"ticker": "bbca"})
	assert.Contains(t, out, "# Bank Central Asia (BBCA.JK)")
	assert.Contains(t, out, "| PER | 9.50 |")

	out = callTool(t, handler, map[string]any{"ticker": "bbca", "format": "json"})
	assert.Contains(t, out, `"used_ticker": "BBCA.JK"`)

	out = callTool(t, handler, map[string]any{"ticker": "bbca", "format": "pdf"})
	assert.Contains(t, out, "Error")

	out = callTool(t, handler, map[string]any{})
	assert.Equal(t, "Error: ticker parameter is required", out)

	failing := handleAnalyzeTicker(&mockAnalyzer{err: errors.New("upstream down")}, logger)
	out = callTool(t, failing, map[string]any{"ticker": "bbca"})
	assert.Equal(t, "Analysis error: upstream down", out)
}

func TestHandleNormalizeTicker(t *testing.T) {
	handler := handleNormalizeTicker(suffixNormalizer{}, arbor.NewLogger())

	assert.Equal(t, "TLKM.JK", callTool(t, handler, map[string]any{"ticker": "TLKM"}))
	assert.Equal(t, "Error: ticker parameter is required", callTool(t, handler, map[string]any{"ticker": "  "}))
}
