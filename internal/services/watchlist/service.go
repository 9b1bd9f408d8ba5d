// -----------------------------------------------------------------------
// Watchlist Service - per-user saved tickers with last close prices
// -----------------------------------------------------------------------

package watchlist

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fundscope/internal/interfaces"
	"github.com/ternarybob/fundscope/internal/models"
	"golang.org/x/sync/errgroup"
)

// ErrEmptyTicker is returned when an item is added without a ticker
var ErrEmptyTicker = errors.New("ticker must not be empty")

// priceLookups bounds concurrent upstream calls when decorating a list
const priceLookups = 4

// SymbolResolver maps a stored ticker to the provider symbol used for prices
type SymbolResolver interface {
	Normalize(ctx context.Context, raw string) string
}

// Service manages watchlists
type Service struct {
	items    interfaces.WatchlistStorage
	users    interfaces.UserStorage
	gateway  interfaces.MarketGateway
	resolver SymbolResolver
	logger   arbor.ILogger
	now      func() time.Time
}

// NewService creates a new watchlist service
func NewService(
	items interfaces.WatchlistStorage,
	users interfaces.UserStorage,
	gateway interfaces.MarketGateway,
	resolver SymbolResolver,
	logger arbor.ILogger,
) *Service {
	return &Service{
		items:    items,
		users:    users,
		gateway:  gateway,
		resolver: resolver,
		logger:   logger,
		now:      time.Now,
	}
}

// Add saves a ticker to the user's watchlist. The ticker is stored upper-cased.
func (s *Service) Add(ctx context.Context, userID, ticker, note string) (*models.WatchlistItem, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, ErrEmptyTicker
	}

	item := &models.WatchlistItem{
		ID:        uuid.NewString(),
		UserID:    userID,
		Ticker:    ticker,
		Note:      strings.TrimSpace(note),
		CreatedAt: s.now(),
	}
	if err := s.items.AddItem(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("user_id", userID).
		Str("ticker", ticker).
		Msg("Watchlist item added")
	return item, nil
}

// Delete removes one of the user's items. Items owned by other users are left alone.
func (s *Service) Delete(ctx context.Context, userID, itemID string) (bool, error) {
	removed, err := s.items.DeleteItem(ctx, userID, itemID)
	if err != nil {
		return false, err
	}
	if !removed {
		s.logger.Debug().
			Str("user_id", userID).
			Str("item_id", itemID).
			Msg("Watchlist delete ignored: not found or not owner")
	}
	return removed, nil
}

// ListWithPrices returns the user's items, newest first, each with its latest close.
// A failed price lookup leaves LastPrice nil.
func (s *Service) ListWithPrices(ctx context.Context, userID string) ([]models.WatchlistEntry, error) {
	items, err := s.items.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries := make([]models.WatchlistEntry, len(items))
	for i, item := range items {
		entries[i] = models.WatchlistEntry{WatchlistItem: *item}
	}

	var group errgroup.Group
	group.SetLimit(priceLookups)
	for i := range entries {
		entry := &entries[i]
		group.Go(func() error {
			entry.LastPrice = s.lastPrice(ctx, entry.Ticker)
			return nil
		})
	}
	_ = group.Wait()

	return entries, nil
}

func (s *Service) lastPrice(ctx context.Context, ticker string) *float64 {
	if s.gateway == nil {
		return nil
	}

	symbol := ticker
	if s.resolver != nil {
		symbol = s.resolver.Normalize(ctx, ticker)
	}

	price, err := s.gateway.GetLatestClose(ctx, symbol)
	if err != nil {
		s.logger.Debug().
			Err(err).
			Str("ticker", ticker).
			Str("symbol", symbol).
			Msg("Watchlist price lookup failed")
		return nil
	}
	return price
}

// ListAll returns every user's items with the owner's username, newest first
func (s *Service) ListAll(ctx context.Context) ([]models.WatchlistEntry, error) {
	items, err := s.items.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	usernames := make(map[string]string)
	entries := make([]models.WatchlistEntry, len(items))
	for i, item := range items {
		name, ok := usernames[item.UserID]
		if !ok {
			if user, err := s.users.GetUser(ctx, item.UserID); err == nil {
				name = user.Username
			}
			usernames[item.UserID] = name
		}
		entries[i] = models.WatchlistEntry{WatchlistItem: *item, Username: name}
	}
	return entries, nil
}
