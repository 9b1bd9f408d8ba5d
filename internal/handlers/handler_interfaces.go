package handlers

import (
	"context"

	"github.com/ternarybob/fundscope/internal/market"
	"github.com/ternarybob/fundscope/internal/models"
	"github.com/ternarybob/fundscope/internal/services/auth"
)

// AccountService defines the account operations used by the web handlers.
type AccountService interface {
	Register(ctx context.Context, input auth.RegisterInput) (*models.User, error)
	Verify(ctx context.Context, token string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*models.Session, *models.User, error)
	Logout(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (*models.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	CheckResetToken(ctx context.Context, token string) (*models.User, error)
	ResetPassword(ctx context.Context, token, password, confirm string) error
	ListUsers(ctx context.Context) ([]*models.User, error)
}

// WatchlistService defines the watchlist operations used by the web handlers.
type WatchlistService interface {
	Add(ctx context.Context, userID, ticker, note string) (*models.WatchlistItem, error)
	Delete(ctx context.Context, userID, itemID string) (bool, error)
	ListWithPrices(ctx context.Context, userID string) ([]models.WatchlistEntry, error)
	ListAll(ctx context.Context) ([]models.WatchlistEntry, error)
}

// Analyzer produces a presentation-ready analysis for a raw ticker.
type Analyzer interface {
	Analyze(ctx context.Context, rawTicker string) (*market.AnalysisResult, error)
}

// PriceHistorySource supplies daily closes for the dashboard chart.
type PriceHistorySource interface {
	GetPriceHistory(ctx context.Context, symbol string, rangeName string) ([]models.PricePoint, error)
}
