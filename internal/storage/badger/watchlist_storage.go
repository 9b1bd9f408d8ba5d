package badger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fundscope/internal/interfaces"
	"github.com/ternarybob/fundscope/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// WatchlistStorage implements the WatchlistStorage interface for Badger
type WatchlistStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewWatchlistStorage creates a new WatchlistStorage instance
func NewWatchlistStorage(db *BadgerDB, logger arbor.ILogger) interfaces.WatchlistStorage {
	return &WatchlistStorage{
		db:     db,
		logger: logger,
	}
}

func (s *WatchlistStorage) AddItem(ctx context.Context, item *models.WatchlistItem) error {
	if item.ID == "" {
		return fmt.Errorf("watchlist item ID is required")
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}

	if err := s.db.Store().Upsert(item.ID, item); err != nil {
		return fmt.Errorf("failed to add watchlist item: %w", err)
	}
	return nil
}

func (s *WatchlistStorage) DeleteItem(ctx context.Context, userID, itemID string) (bool, error) {
	var item models.WatchlistItem
	if err := s.db.Store().Get(itemID, &item); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get watchlist item: %w", err)
	}

	// Only the owner may remove an item
	if item.UserID != userID {
		return false, nil
	}

	if err := s.db.Store().Delete(itemID, &models.WatchlistItem{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return false, nil // Already deleted
		}
		return false, fmt.Errorf("failed to delete watchlist item: %w", err)
	}
	return true, nil
}

func (s *WatchlistStorage) ListByUser(ctx context.Context, userID string) ([]*models.WatchlistItem, error) {
	var items []models.WatchlistItem
	if err := s.db.Store().Find(&items, badgerhold.Where("UserID").Eq(userID).Index("UserID")); err != nil {
		return nil, fmt.Errorf("failed to list watchlist: %w", err)
	}
	return newestFirst(items), nil
}

func (s *WatchlistStorage) ListAll(ctx context.Context) ([]*models.WatchlistItem, error) {
	var items []models.WatchlistItem
	if err := s.db.Store().Find(&items, nil); err != nil {
		return nil, fmt.Errorf("failed to list watchlist: %w", err)
	}
	return newestFirst(items), nil
}

func newestFirst(items []models.WatchlistItem) []*models.WatchlistItem {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	result := make([]*models.WatchlistItem, len(items))
	for i := range items {
		result[i] = &items[i]
	}
	return result
}
