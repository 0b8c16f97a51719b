/*
Package directory is the user directory: a registry of users addressable by email
and by id, stored as one JSON collection in the key-value store.

Every call waits a fixed latency before it touches storage so that callers are
written against the timing of a remote service.
*/
package directory

import (
	"context"
	"time"

	"bookfinder/internal/app/book"
	"bookfinder/internal/app/user"
)

// Service defines the operations of the user directory.
type Service interface {
	Register(ctx context.Context, in RegisterInput) (*user.Session, error)
	Login(ctx context.Context, in Credentials) (*user.Session, error)
	GetUser(ctx context.Context, userID string) (*user.Session, error)
	UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (*user.Session, error)
	UpdateFavorites(ctx context.Context, userID string, favorites []book.Book) (*user.Session, error)
}

// RegisterInput is the data needed to create an account.
type RegisterInput struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Credentials identify an existing account.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdate holds the fields to change. Nil fields are left as they are.
type ProfileUpdate struct {
	Name     *string             `json:"name,omitempty"`
	Email    *string             `json:"email,omitempty"`
	Password *string             `json:"password,omitempty"`
	History  []book.HistoryEntry `json:"history,omitempty"`
}

// Options tunes a directory Service.
type Options struct {
	// UsersKey is the key holding the user collection.
	UsersKey string

	// Latency delays register, login and profile calls; FavoritesLatency delays
	// UpdateFavorites. Zero disables the wait.
	Latency          time.Duration
	FavoritesLatency time.Duration

	// BcryptCost is the cost of new password hashes. Zero uses bcrypt.DefaultCost.
	BcryptCost int

	// Now returns the current time. Nil uses time.Now.
	Now func() time.Time
}
