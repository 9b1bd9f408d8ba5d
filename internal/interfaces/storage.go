package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/ternarybob/fundscope/internal/models"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a unique field is already taken
var ErrDuplicate = errors.New("duplicate record")

// UserStorage - interface for user account persistence
type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByVerifyToken(ctx context.Context, token string) (*models.User, error)
	GetUserByResetToken(ctx context.Context, token string) (*models.User, error)

	// ListUsers returns all users ordered by created_at DESC
	ListUsers(ctx context.Context) ([]*models.User, error)

	// ClearExpiredResetTokens removes reset tokens whose expiry is before now
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int, error)
}

// WatchlistStorage - interface for watchlist persistence
type WatchlistStorage interface {
	AddItem(ctx context.Context, item *models.WatchlistItem) error

	// DeleteItem removes an item only when it belongs to userID.
	// Returns false when nothing was removed.
	DeleteItem(ctx context.Context, userID, itemID string) (bool, error)

	// ListByUser returns the user's items ordered by created_at DESC
	ListByUser(ctx context.Context, userID string) ([]*models.WatchlistItem, error)

	// ListAll returns every item ordered by created_at DESC
	ListAll(ctx context.Context) ([]*models.WatchlistItem, error)
}

// SessionStorage - interface for login session persistence
type SessionStorage interface {
	SaveSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, token string) (*models.Session, error)
	DeleteSession(ctx context.Context, token string) error

	// DeleteExpired removes sessions whose expiry is before now
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// StorageManager - interface for managing all storage backends
type StorageManager interface {
	UserStorage() UserStorage
	WatchlistStorage() WatchlistStorage
	SessionStorage() SessionStorage
	Close() error
}
