package handlers

import (
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fundscope/internal/market"
	"github.com/ternarybob/fundscope/internal/report"
	"github.com/ternarybob/fundscope/internal/services/watchlist"
)

// DashboardHandler serves the analysis dashboard and watchlist actions
type DashboardHandler struct {
	analyzer   Analyzer
	history    PriceHistorySource
	watchlist  WatchlistService
	pages      *PageHandler
	chartRange string
	logger     arbor.ILogger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(
	analyzer Analyzer,
	history PriceHistorySource,
	watchlist WatchlistService,
	pages *PageHandler,
	chartRange string,
	logger arbor.ILogger,
) *DashboardHandler {
	if chartRange == "" {
		chartRange = "6mo"
	}
	return &DashboardHandler{
		analyzer:   analyzer,
		history:    history,
		watchlist:  watchlist,
		pages:      pages,
		chartRange: chartRange,
		logger:     logger,
	}
}

// DashboardHandler renders the watchlist; POST runs an analysis for the submitted ticker
func (h *DashboardHandler) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	data := map[string]interface{}{}

	if r.Method == http.MethodPost {
		ticker := strings.TrimSpace(r.FormValue("ticker"))
		data["TickerInput"] = ticker

		if ticker != "" {
			result, chart, err := h.analyze(r, ticker)
			if err != nil {
				h.logger.Error().
					Err(err).
					Str("ticker", ticker).
					Msg("Dashboard analysis failed")
				AddFlash(w, r, FlashDanger, "Failed to analyze the stock. Please try again.")
			} else {
				data["Result"] = result
				data["Chart"] = chart
			}
		}
	}

	entries, err := h.watchlist.ListWithPrices(r.Context(), user.ID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", user.ID).Msg("Failed to load watchlist")
		AddFlash(w, r, FlashDanger, "Failed to load your watchlist.")
	}
	data["Watchlist"] = entries

	h.pages.Render(w, r, http.StatusOK, "dashboard.html", data)
}

func (h *DashboardHandler) analyze(r *http.Request, ticker string) (*market.AnalysisResult, template.HTML, error) {
	result, err := h.analyzer.Analyze(r.Context(), ticker)
	if err != nil {
		return nil, "", err
	}

	if h.history == nil {
		return result, "", nil
	}

	points, err := h.history.GetPriceHistory(r.Context(), result.UsedTicker, h.chartRange)
	if err != nil {
		h.logger.Debug().
			Err(err).
			Str("symbol", result.UsedTicker).
			Msg("Price history unavailable, chart skipped")
		return result, "", nil
	}
	return result, report.PriceChartSVG(result.UsedTicker, points), nil
}

// AddWatchlistHandler saves a ticker to the user's watchlist
func (h *DashboardHandler) AddWatchlistHandler(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	item, err := h.watchlist.Add(r.Context(), user.ID, r.FormValue("ticker_watchlist"), r.FormValue("note"))
	switch {
	case errors.Is(err, watchlist.ErrEmptyTicker):
		AddFlash(w, r, FlashDanger, "Ticker must not be empty.")
	case err != nil:
		h.logger.Error().Err(err).Str("user_id", user.ID).Msg("Failed to add watchlist item")
		AddFlash(w, r, FlashDanger, "Failed to add the ticker to your watchlist.")
	default:
		AddFlash(w, r, FlashSuccess, item.Ticker+" added to watchlist.")
	}
	redirect(w, r, "/dashboard")
}

// DeleteWatchlistHandler removes one of the user's watchlist items
func (h *DashboardHandler) DeleteWatchlistHandler(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	if _, err := h.watchlist.Delete(r.Context(), user.ID, r.PathValue("id")); err != nil {
		h.logger.Error().Err(err).Str("user_id", user.ID).Msg("Failed to delete watchlist item")
		AddFlash(w, r, FlashDanger, "Failed to delete the watchlist item.")
	} else {
		AddFlash(w, r, FlashInfo, "Watchlist item deleted.")
	}
	redirect(w, r, "/dashboard")
}
