package models

import "time"

// WatchlistItem is a ticker saved by a user.
type WatchlistItem struct {
	ID        string    `json:"id" badgerhold:"key"`
	UserID    string    `json:"user_id" badgerhold:"index"`
	Ticker    string    `json:"ticker"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

// WatchlistEntry is a watchlist item decorated for display.
type WatchlistEntry struct {
	WatchlistItem
	Username  string   `json:"username,omitempty"`
	LastPrice *float64 `json:"last_price"`
}
