/*
Package state holds the application state of BookFinder and the only way to change it.

State changes are described by Actions and computed by Reduce, a pure function.
A Store serializes dispatches and notifies subscribers; a Persister is one such
subscriber and keeps favorites, history and the current user in the key-value store.
*/
package state

import (
	"bookfinder/internal/app/book"
	"bookfinder/internal/app/user"
)

// HistoryLimit is the maximum number of entries kept in the search history.
const HistoryLimit = 10

// State is a snapshot of everything the user interface shows.
// Slices in a State are shared between snapshots and must be treated as read-only.
type State struct {
	Books         []book.Book         `json:"books"`
	Loading       bool                `json:"loading"`
	Error         *string             `json:"error"`
	TotalResults  int                 `json:"totalResults"`
	CurrentParams *book.SearchParams  `json:"currentParams"`
	HasMore       bool                `json:"hasMore"`
	Favorites     []book.Book         `json:"favorites"`
	History       []book.HistoryEntry `json:"history"`
	CurrentUser   *user.Session       `json:"currentUser"`
}

// Initial returns the state the application starts with.
func Initial() State {
	return State{
		Books:     []book.Book{},
		Favorites: []book.Book{},
		History:   []book.HistoryEntry{},
	}
}

// IsFavorite reports whether a book with key is among the favorites.
func (s State) IsFavorite(key string) bool {
	return book.IndexOf(s.Favorites, key) >= 0
}
