package state

import (
	"bookfinder/internal/app/book"
	"bookfinder/internal/app/user"
)

// Reduce returns the state that follows s after a.
// It never modifies the slices of s. Unknown actions and payloads of the wrong
// type leave the state unchanged.
func Reduce(s State, a Action) State {
	switch a.Type {
	case ActionSetBooks:
		if books, ok := a.Payload.([]book.Book); ok {
			s.Books = nonNilBooks(books)
			s.TotalResults = a.TotalResults
		}

	case ActionAppendBooks:
		if books, ok := a.Payload.([]book.Book); ok {
			s.Books = concat(s.Books, books)
		}

	case ActionSetLoading:
		if loading, ok := a.Payload.(bool); ok {
			s.Loading = loading
		}

	case ActionSetError:
		switch v := a.Payload.(type) {
		case nil:
			s.Error = nil
		case string:
			s.Error = &v
		case *string:
			s.Error = v
		}

	case ActionSetSearchParams:
		switch v := a.Payload.(type) {
		case nil:
			s.CurrentParams = nil
		case book.SearchParams:
			s.CurrentParams = &v
		case *book.SearchParams:
			s.CurrentParams = v
		}

	case ActionSetHasMore:
		if hasMore, ok := a.Payload.(bool); ok {
			s.HasMore = hasMore
		}

	case ActionAddToFavorites:
		if b, ok := a.Payload.(book.Book); ok {
			s.Favorites = concat(s.Favorites, []book.Book{b})
		}

	case ActionRemoveFromFavorites:
		if b, ok := a.Payload.(book.Book); ok {
			kept := make([]book.Book, 0, len(s.Favorites))
			for _, f := range s.Favorites {
				if f.Key != b.Key {
					kept = append(kept, f)
				}
			}
			s.Favorites = kept
		}

	case ActionAddToHistory:
		if entry, ok := a.Payload.(book.HistoryEntry); ok {
			if historyHasQuery(s.History, entry.Query) {
				return s
			}
			history := make([]book.HistoryEntry, 0, min(len(s.History)+1, HistoryLimit))
			history = append(history, entry)
			for _, h := range s.History {
				if len(history) == HistoryLimit {
					break
				}
				history = append(history, h)
			}
			s.History = history
		}

	case ActionSetHistory:
		if history, ok := a.Payload.([]book.HistoryEntry); ok {
			s.History = normalizeHistory(history)
		}

	case ActionSetFavorites:
		if favorites, ok := a.Payload.([]book.Book); ok {
			s.Favorites = dedupeBooks(favorites)
		}

	case ActionSetUser:
		switch v := a.Payload.(type) {
		case nil:
			s.CurrentUser = nil
		case *user.Session:
			s.CurrentUser = v
		case user.Session:
			s.CurrentUser = &v
		}

	case ActionLogout:
		s.CurrentUser = nil
		s.Favorites = []book.Book{}
	}

	return s
}

// concat returns a new slice holding a followed by b.
func concat[T any](a, b []T) []T {
	out := make([]T, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

func nonNilBooks(books []book.Book) []book.Book {
	if books == nil {
		return []book.Book{}
	}
	return books
}

func historyHasQuery(history []book.HistoryEntry, query string) bool {
	for _, h := range history {
		if h.Query == query {
			return true
		}
	}
	return false
}

// normalizeHistory drops later duplicates of a query and keeps at most HistoryLimit entries.
func normalizeHistory(history []book.HistoryEntry) []book.HistoryEntry {
	out := make([]book.HistoryEntry, 0, min(len(history), HistoryLimit))
	seen := make(map[string]struct{}, len(history))
	for _, h := range history {
		if len(out) == HistoryLimit {
			break
		}
		if _, dup := seen[h.Query]; dup {
			continue
		}
		seen[h.Query] = struct{}{}
		out = append(out, h)
	}
	return out
}

// dedupeBooks keeps the first book for each key.
func dedupeBooks(books []book.Book) []book.Book {
	out := make([]book.Book, 0, len(books))
	seen := make(map[string]struct{}, len(books))
	for _, b := range books {
		if _, dup := seen[b.Key]; dup {
			continue
		}
		seen[b.Key] = struct{}{}
		out = append(out, b)
	}
	return out
}
