/*
Package user contains the user record kept by the directory and the session
form of it that the rest of the application handles.
*/
package user

import (
	"time"

	"bookfinder/internal/app/book"
)

// Record is a stored user, including credentials.
// It never leaves the directory package's storage path; use Session instead.
type Record struct {
	ID           string              `json:"id"`
	Email        string              `json:"email"`
	Name         string              `json:"name"`
	PasswordHash string              `json:"passwordHash,omitempty"`
	Favorites    []book.Book         `json:"favorites"`
	History      []book.HistoryEntry `json:"history"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    *time.Time          `json:"updatedAt,omitempty"`

	// LegacyPassword is the plaintext password of records written before hashing.
	// It is cleared once the record is upgraded.
	LegacyPassword string `json:"password,omitempty"`
}

// Session is a user without any credential field.
type Session struct {
	ID        string              `json:"id"`
	Email     string              `json:"email"`
	Name      string              `json:"name"`
	Favorites []book.Book         `json:"favorites"`
	History   []book.HistoryEntry `json:"history"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt *time.Time          `json:"updatedAt,omitempty"`
}

// Session strips the credentials from r. Slices are copied.
func (r *Record) Session() *Session {
	return &Session{
		ID:        r.ID,
		Email:     r.Email,
		Name:      r.Name,
		Favorites: append([]book.Book{}, r.Favorites...),
		History:   append([]book.HistoryEntry{}, r.History...),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
