package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fundscope/internal/common"
	"github.com/ternarybob/fundscope/internal/market"
	"github.com/ternarybob/fundscope/internal/models"
	"github.com/ternarybob/fundscope/internal/services/auth"
	"github.com/ternarybob/fundscope/internal/services/watchlist"
	badgerstore "github.com/ternarybob/fundscope/internal/storage/badger"
	"github.com/ternarybob/fundscope/pages"
)

// mockAnalyzer implements Analyzer for testing
type mockAnalyzer struct {
	analyzeFunc func(ctx context.Context, rawTicker string) (*market.AnalysisResult, error)
}

func (m *mockAnalyzer) Analyze(ctx context.Context, rawTicker string) (*market.AnalysisResult, error) {
	if m.analyzeFunc != nil {
		return m.analyzeFunc(ctx, rawTicker)
	}
	return sampleResult(rawTicker), nil
}

// mockHistory implements PriceHistorySource for testing
type mockHistory struct {
	points []models.PricePoint
	err    error
}

func (m *mockHistory) GetPriceHistory(ctx context.Context, symbol string, rangeName string) ([]models.PricePoint, error) {
	return m.points, m.err
}

type nopMailer struct {
	mu   sync.Mutex
	sent int
}

func (m *nopMailer) Send(ctx context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent++
	return nil
}

func strPtr(s string) *string { return &s }

func sampleResult(raw string) *market.AnalysisResult {
	used := strings.ToUpper(strings.TrimSpace(raw))
	if !strings.Contains(used, ".") {
		used += ".JK"
	}
	per := 12.34
	return &market.AnalysisResult{
		InputTicker:  raw,
		UsedTicker:   used,
		Name:         "Bank Central Asia",
		Sector:       "Financial Services",
		Industry:     "Banks - Regional",
		Currency:     "IDR",
		PriceStr:     "Rp 9.875",
		MarketCapStr: "Rp 1.217,35 T",
		SharesOutStr: "123.28 B",
		Ratios: market.RatioView{
			PER:    &per,
			PERStr: strPtr("12.34"),
		},
		GrowthList: []market.GrowthEntry{
			{Period: "2023-12-31", ValueStr: "Rp 48,64 T"},
			{Period: "2024-12-31", ValueStr: "Rp 54,84 T"},
		},
		GrowthCAGRStr: strPtr("12.75"),
	}
}

// testEnv wires real auth and watchlist services over in-memory storage
type testEnv struct {
	config    *common.Config
	accounts  *auth.Service
	watchlist *watchlist.Service
	analyzer  *mockAnalyzer
	sessions  *SessionManager
	handler   http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := arbor.NewLogger()

	storage, err := badgerstore.NewManager(logger, &common.BadgerConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })

	config := common.NewDefaultConfig()
	config.Auth.AdminPassword = "admin-pass"

	accounts := auth.NewService(storage.UserStorage(), storage.SessionStorage(), &nopMailer{}, config, logger)
	require.NoError(t, accounts.EnsureAdmin(context.Background()))

	items := watchlist.NewService(storage.WatchlistStorage(), storage.UserStorage(), nil, nil, logger)

	pageHandler, err := NewPageHandler(logger, pages.FS)
	require.NoError(t, err)

	analyzer := &mockAnalyzer{}
	sessions := NewSessionManager(accounts, "", false, logger)
	authHandler := NewAuthHandler(accounts, sessions, pageHandler, logger)
	dashboard := NewDashboardHandler(analyzer, &mockHistory{points: []models.PricePoint{}}, items, pageHandler, "", logger)
	admin := NewAdminHandler(accounts, items, pageHandler, logger)
	api := NewAPIHandler(analyzer, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /static/", pageHandler.StaticFileHandler)
	mux.HandleFunc("GET /{$}", authHandler.IndexHandler)
	mux.HandleFunc("/register", authHandler.RegisterHandler)
	mux.HandleFunc("/login", authHandler.LoginHandler)
	mux.HandleFunc("GET /logout", authHandler.LogoutHandler)
	mux.HandleFunc("GET /verify/{token}", authHandler.VerifyHandler)
	mux.HandleFunc("/forgot-password", authHandler.ForgotPasswordHandler)
	mux.HandleFunc("/reset/{token}", authHandler.ResetPasswordHandler)
	mux.HandleFunc("/dashboard", sessions.RequireLogin(dashboard.DashboardHandler))
	mux.HandleFunc("POST /watchlist/add", sessions.RequireLogin(dashboard.AddWatchlistHandler))
	mux.HandleFunc("POST /watchlist/delete/{id}", sessions.RequireLogin(dashboard.DeleteWatchlistHandler))
	mux.HandleFunc("GET /admin", sessions.RequireAdmin(admin.IndexHandler))
	mux.HandleFunc("GET /admin/users", sessions.RequireAdmin(admin.UsersHandler))
	mux.HandleFunc("GET /admin/watchlist", sessions.RequireAdmin(admin.WatchlistHandler))
	mux.HandleFunc("/api/analyze", sessions.RequireAPILogin(api.AnalyzeHandler))
	mux.HandleFunc("/api/report", sessions.RequireAPILogin(api.ReportHandler))

	return &testEnv{
		config:    config,
		accounts:  accounts,
		watchlist: items,
		analyzer:  analyzer,
		sessions:  sessions,
		handler:   sessions.LoadUser(mux),
	}
}

// browser replays cookies between requests like a user agent
type browser struct {
	t       *testing.T
	env     *testEnv
	cookies map[string]*http.Cookie
}

func (e *testEnv) browser(t *testing.T) *browser {
	return &browser{t: t, env: e, cookies: make(map[string]*http.Cookie)}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	b.t.Helper()
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	b.env.handler.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 || c.Value == "" {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return rec
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

// createUser registers and verifies an account
func (e *testEnv) createUser(t *testing.T, username, password string) *models.User {
	t.Helper()
	user, err := e.accounts.Register(context.Background(), auth.RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: password,
		Confirm:  password,
	})
	require.NoError(t, err)
	_, err = e.accounts.Verify(context.Background(), user.VerifyToken)
	require.NoError(t, err)
	return user
}

// login signs the browser in through the login form
func (b *browser) login(username, password string) {
	b.t.Helper()
	rec := b.post("/login", url.Values{"username": {username}, "password": {password}})
	require.Equal(b.t, http.StatusSeeOther, rec.Code)
	require.Equal(b.t, "/dashboard", rec.Header().Get("Location"))
}

func parseHTML(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	return doc
}

func alerts(doc *goquery.Document, category string) []string {
	var messages []string
	doc.Find(".alert-" + category).Each(func(_ int, s *goquery.Selection) {
		messages = append(messages, strings.TrimSpace(s.Text()))
	})
	return messages
}
