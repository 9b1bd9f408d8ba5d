package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/fundscope/internal/market"
)

func TestDashboardHandler_EmptyWatchlist(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "hunter22")
	b := env.browser(t)
	b.login("alice", "hunter22")

	rec := b.get("/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)

	doc := parseHTML(t, rec)
	assert.Equal(t, 1, doc.Find(".empty-watchlist").Length())
	assert.Equal(t, 0, doc.Find("#analysis").Length())
}

func TestDashboardHandler_Analyze(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "hunter22")
	b := env.browser(t)
	b.login("alice", "hunter22")
	b.get("/dashboard")

	rec := b.post("/dashboard", url.Values{"ticker": {"bbca"}})
	require.Equal(t, http.StatusOK, rec.Code)

	doc := parseHTML(t, rec)
	assert.Equal(t, "12.34", doc.Find("#ratio-per").Text())
	assert.Equal(t, "N/A", doc.Find("#ratio-pbv").Text())
	assert.Equal(t, "N/A", doc.Find("#ratio-dy").Text())
	assert.Equal(t, 2, doc.Find("table.growth tbody tr").Length())
	assert.Contains(t, doc.Find(".cagr").Text(), "12.75% per year")
	assert.Contains(t, doc.Find(".analysis h2").Text(), "BBCA.JK")

	value, _ := doc.Find(`input[name="ticker"]`).Attr("value")
	assert.Equal(t, "bbca", value)

	href, _ := doc.Find(".downloads a").First().Attr("href")
	assert.Equal(t, "/api/report?ticker=BBCA.JK&format=markdown", href)
}

func TestDashboardHandler_AnalyzeFailure(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "hunter22")
	env.analyzer.analyzeFunc = func(ctx context.Context, raw string) (*market.AnalysisResult, error) {
		return nil, errors.New("upstream down")
	}
	b := env.browser(t)
	b.login("alice", "hunter22")
	b.get("/dashboard")

	rec := b.post("/dashboard", url.Values{"ticker": {"XXXX"}})
	require.Equal(t, http.StatusOK, rec.Code)

	doc := parseHTML(t, rec)
	assert.Equal(t, []string{"Failed to analyze the stock. Please try again."}, alerts(doc, FlashDanger))
	assert.Equal(t, 0, doc.Find("#analysis").Length())
}

func TestDashboardHandler_BlankTickerIgnored(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "hunter22")
	called := false
	env.analyzer.analyzeFunc = func(ctx context.Context, raw string) (*market.AnalysisResult, error) {
		called = true
		return sampleResult(raw), nil
	}
	b := env.browser(t)
	b.login("alice", "hunter22")

	rec := b.post("/dashboard", url.Values{"ticker": {"   "}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, called)
}

func TestWatchlistHandlers(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "hunter22")
	env.createUser(t, "bob", "hunter22")

	alice := env.browser(t)
	alice.login("alice", "hunter22")
	alice.get("/dashboard")

	rec := alice.post("/watchlist/add", url.Values{"ticker_watchlist": {" tlkm "}, "note": {"telco"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	doc := parseHTML(t, alice.get("/dashboard"))
	assert.Equal(t, []string{"TLKM added to watchlist."}, alerts(doc, FlashSuccess))
	rows := doc.Find("table.watchlist tbody tr")
	require.Equal(t, 1, rows.Length())
	assert.Equal(t, "TLKM", rows.Find(".ticker").Text())
	assert.Equal(t, "-", rows.Find(".last-price").Text())
	itemID, _ := rows.Attr("data-id")
	require.NotEmpty(t, itemID)

	// Empty ticker
	alice.post("/watchlist/add", url.Values{"ticker_watchlist": {"  "}})
	doc = parseHTML(t, alice.get("/dashboard"))
	assert.Equal(t, []string{"Ticker must not be empty."}, alerts(doc, FlashDanger))

	// Another user cannot delete it
	bob := env.browser(t)
	bob.login("bob", "hunter22")
	bob.post("/watchlist/delete/"+itemID, nil)
	doc = parseHTML(t, alice.get("/dashboard"))
	assert.Equal(t, 1, doc.Find("table.watchlist tbody tr").Length())

	alice.post("/watchlist/delete/"+itemID, nil)
	doc = parseHTML(t, alice.get("/dashboard"))
	assert.Equal(t, []string{"Watchlist item deleted."}, alerts(doc, FlashInfo))
	assert.Equal(t, 1, doc.Find(".empty-watchlist").Length())
}

func TestWatchlistHandlers_RequireLogin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.browser(t).post("/watchlist/add", url.Values{"ticker_watchlist": {"BBCA"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	entries, err := env.watchlist.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStaticFileHandler(t *testing.T) {
	env := newTestEnv(t)

	rec := env.browser(t).get("/static/style.css")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/css"))
}
