// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"time"
)

// User represents a registered account in the system.
type User struct {
	ID             int64
	Username       string
	Email          string
	PasswordHash   string
	EmergencyPhone string
	CreatedAt      time.Time
}

// Session represents an active user session.
type Session struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// UserPatch carries the optional fields of a partial profile update. Only
// non-nil fields are written.
type UserPatch struct {
	Username       *string
	Email          *string
	PasswordHash   *string
	EmergencyPhone *string
}

// Empty reports whether the patch carries no fields.
func (p UserPatch) Empty() bool {
	return p.Username == nil && p.Email == nil && p.PasswordHash == nil && p.EmergencyPhone == nil
}

// UserRepository defines the port for account persistence operations.
// Create and Update fail with ErrDuplicateEmail when the email is taken;
// the GetBy* methods return (nil, nil) for unknown users.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, username, email, passwordHash, emergencyPhone string) (*User, error)
	Update(ctx context.Context, id int64, patch UserPatch) error
}

// SessionRepository defines the port for session persistence operations.
type SessionRepository interface {
	Create(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	GetByToken(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) error
}
