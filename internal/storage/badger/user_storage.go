package badger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fundscope/internal/interfaces"
	"github.com/ternarybob/fundscope/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// UserStorage implements the UserStorage interface for Badger
type UserStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewUserStorage creates a new UserStorage instance
func NewUserStorage(db *BadgerDB, logger arbor.ILogger) interfaces.UserStorage {
	return &UserStorage{
		db:     db,
		logger: logger,
	}
}

func (s *UserStorage) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		return fmt.Errorf("user ID is required")
	}

	if _, err := s.GetUserByUsername(ctx, user.Username); err == nil {
		return fmt.Errorf("username %q: %w", user.Username, interfaces.ErrDuplicate)
	}
	if _, err := s.GetUserByEmail(ctx, user.Email); err == nil {
		return fmt.Errorf("email %q: %w", user.Email, interfaces.ErrDuplicate)
	}

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	if err := s.db.Store().Insert(user.ID, user); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return fmt.Errorf("user %s: %w", user.ID, interfaces.ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *UserStorage) UpdateUser(ctx context.Context, user *models.User) error {
	if err := s.db.Store().Update(user.ID, user); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return interfaces.ErrNotFound
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (s *UserStorage) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.Store().Get(id, &user); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// findOne returns the first user matching field == value
func (s *UserStorage) findOne(field, value string) (*models.User, error) {
	if value == "" {
		return nil, interfaces.ErrNotFound
	}

	var users []models.User
	if err := s.db.Store().Find(&users, badgerhold.Where(field).Eq(value)); err != nil {
		return nil, fmt.Errorf("failed to find user by %s: %w", strings.ToLower(field), err)
	}
	if len(users) == 0 {
		return nil, interfaces.ErrNotFound
	}
	return &users[0], nil
}

func (s *UserStorage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findOne("Username", username)
}

func (s *UserStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne("Email", email)
}

func (s *UserStorage) GetUserByVerifyToken(ctx context.Context, token string) (*models.User, error) {
	return s.findOne("VerifyToken", token)
}

func (s *UserStorage) GetUserByResetToken(ctx context.Context, token string) (*models.User, error) {
	return s.findOne("ResetToken", token)
}

func (s *UserStorage) ListUsers(ctx context.Context) ([]*models.User, error) {
	var users []models.User
	if err := s.db.Store().Find(&users, nil); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})

	result := make([]*models.User, len(users))
	for i := range users {
		result[i] = &users[i]
	}
	return result, nil
}

func (s *UserStorage) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int, error) {
	var users []models.User
	if err := s.db.Store().Find(&users, badgerhold.Where("ResetToken").Ne("")); err != nil {
		return 0, fmt.Errorf("failed to find reset tokens: %w", err)
	}

	cleared := 0
	for i := range users {
		user := &users[i]
		if !user.ResetTokenExpired(now) {
			continue
		}
		user.ResetToken = ""
		user.ResetExpires = nil
		if err := s.db.Store().Update(user.ID, user); err != nil {
			return cleared, fmt.Errorf("failed to clear reset token for %s: %w", user.ID, err)
		}
		cleared++
	}
	return cleared, nil
}
