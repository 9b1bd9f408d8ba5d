package models

import "time"

// User is a registered account. Stored in badger keyed by ID.
type User struct {
	ID           string     `json:"id" badgerhold:"key"`
	Username     string     `json:"username" badgerhold:"index"`
	Email        string     `json:"email" badgerhold:"index"`
	PasswordHash string     `json:"-"`
	IsAdmin      bool       `json:"is_admin"`
	IsVerified   bool       `json:"is_verified"`
	VerifyToken  string     `json:"-"`
	ResetToken   string     `json:"-"`
	ResetExpires *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ResetTokenExpired reports whether the pending reset token is past its expiry.
func (u *User) ResetTokenExpired(now time.Time) bool {
	return u.ResetExpires == nil || !now.Before(*u.ResetExpires)
}

// Session binds a browser cookie token to a user.
type Session struct {
	Token     string    `json:"token" badgerhold:"key"`
	UserID    string    `json:"user_id" badgerhold:"index"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is no longer valid.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
