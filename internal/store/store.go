// Package store defines the persistence contracts and records shared by the
// hub and the account API.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable reports that the durable backend could not be reached or
// refused the operation. Callers degrade (notice to the sender, empty history)
// instead of crashing.
var ErrUnavailable = errors.New("store unavailable")

// ErrAccountNotFound is returned when no account matches the lookup.
var ErrAccountNotFound = errors.New("account not found")

// Role is the permission level attached to an account.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleDeveloper Role = "developer"
)

// Account represents a registered chat user.
type Account struct {
	ID           int64
	Username     string
	PasswordHash string
	DisplayName  string
	Avatar       string // reference to an externally stored image
	Role         Role
	Bio          string
	CreatedAt    time.Time
}

// Message is a persisted chat message. Immutable once appended.
type Message struct {
	ID         int64
	AuthorID   int64 // 0 when the author had no account
	AuthorName string
	Body       string
	CreatedAt  time.Time
}

// MessageStore is the append-only message log.
type MessageStore interface {
	// AppendMessage persists one message with a server-assigned id and
	// timestamp and returns the stored record.
	AppendMessage(ctx context.Context, authorID int64, authorName, body string) (*Message, error)

	// RecentMessages returns up to limit of the most recently appended
	// messages, reordered oldest first. Ties on created_at are broken by id
	// so the result never contradicts append order.
	RecentMessages(ctx context.Context, limit int) ([]*Message, error)
}

// AccountStore handles account persistence.
type AccountStore interface {
	// CreateAccount inserts a new account. The display name defaults to the
	// username and the role to RoleUser.
	CreateAccount(ctx context.Context, username, passwordHash string) (*Account, error)

	// GetAccountByID retrieves an account by id.
	GetAccountByID(ctx context.Context, id int64) (*Account, error)

	// GetAccountByUsername retrieves an account by username.
	GetAccountByUsername(ctx context.Context, username string) (*Account, error)

	// UpdateProfile replaces the display name and bio of an account.
	UpdateProfile(ctx context.Context, id int64, displayName, bio string) error

	// UpdateAvatar replaces the avatar reference of an account.
	UpdateAvatar(ctx context.Context, id int64, avatar string) error
}

// Store aggregates all storage interfaces.
type Store interface {
	MessageStore
	AccountStore

	// Close closes the underlying database connection.
	Close() error
}
