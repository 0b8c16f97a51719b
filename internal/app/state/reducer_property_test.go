package state

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"bookfinder/internal/app/book"
	"bookfinder/internal/app/user"
)

func genBook() *rapid.Generator[book.Book] {
	return rapid.Custom(func(t *rapid.T) book.Book {
		return book.Book{
			Key:   rapid.SampledFrom([]string{"/works/OL1W", "/works/OL2W", "/works/OL3W", "/works/OL4W"}).Draw(t, "key"),
			Title: rapid.StringN(0, 8, -1).Draw(t, "title"),
		}
	})
}

func genEntry() *rapid.Generator[book.HistoryEntry] {
	return rapid.Custom(func(t *rapid.T) book.HistoryEntry {
		return book.HistoryEntry{
			Query:       rapid.StringMatching(`q[0-9]{1,2}`).Draw(t, "query"),
			SearchType:  rapid.SampledFrom([]book.SearchType{book.SearchGeneral, book.SearchTitle, book.SearchAuthor}).Draw(t, "searchType"),
			Timestamp:   time.Unix(rapid.Int64Range(0, 1<<31).Draw(t, "ts"), 0).UTC(),
			ResultCount: rapid.IntRange(0, 1000).Draw(t, "count"),
		}
	})
}

func genAction() *rapid.Generator[Action] {
	return rapid.Custom(func(t *rapid.T) Action {
		switch rapid.IntRange(0, 13).Draw(t, "kind") {
		case 0:
			return SetBooks(rapid.SliceOfN(genBook(), 0, 5).Draw(t, "books"), rapid.IntRange(0, 500).Draw(t, "total"))
		case 1:
			return AppendBooks(rapid.SliceOfN(genBook(), 0, 5).Draw(t, "books"))
		case 2:
			return SetLoading(rapid.Bool().Draw(t, "loading"))
		case 3:
			return SetError(rapid.StringN(0, 8, -1).Draw(t, "message"))
		case 4:
			return SetHasMore(rapid.Bool().Draw(t, "hasMore"))
		case 5:
			return AddToFavorites(genBook().Draw(t, "book"))
		case 6:
			return RemoveFromFavorites(genBook().Draw(t, "book"))
		case 7:
			return AddToHistory(genEntry().Draw(t, "entry"))
		case 8:
			return SetHistory(rapid.SliceOfN(genEntry(), 0, 15).Draw(t, "history"))
		case 9:
			return SetFavorites(rapid.SliceOfN(genBook(), 0, 6).Draw(t, "favorites"))
		case 10:
			return SetUser(&user.Session{ID: rapid.StringMatching(`u[0-9]`).Draw(t, "id")})
		case 11:
			return Logout()
		case 12:
			return SetSearchParams(&book.SearchParams{Query: "q", Page: rapid.IntRange(1, 5).Draw(t, "page"), Limit: 20})
		default:
			return Action{Type: ActionType(rapid.StringMatching(`[A-Z_]{3,10}`).Draw(t, "type")), Payload: 1}
		}
	})
}

// genState builds a reachable state by folding random actions over Initial.
func genState() *rapid.Generator[State] {
	return rapid.Custom(func(t *rapid.T) State {
		s := Initial()
		for _, a := range rapid.SliceOfN(genAction(), 0, 20).Draw(t, "actions") {
			s = Reduce(s, a)
		}
		return s
	})
}

func cloneState(s State) State {
	c := s
	c.Books = slices.Clone(s.Books)
	c.Favorites = slices.Clone(s.Favorites)
	c.History = slices.Clone(s.History)
	return c
}

func TestPropertyReduceDoesNotMutateInput(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := genState().Draw(t, "state")
		a := genAction().Draw(t, "action")

		before := cloneState(s)
		_ = Reduce(s, a)

		if !assert.ObjectsAreEqual(before, s) {
			t.Fatalf("Reduce modified its input for %s", a.Type)
		}
	})
}

func TestPropertyHistoryInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := genState().Draw(t, "state")

		if len(s.History) > HistoryLimit {
			t.Fatalf("history has %d entries", len(s.History))
		}
		seen := map[string]bool{}
		for _, h := range s.History {
			if seen[h.Query] {
				t.Fatalf("duplicate query %q in history", h.Query)
			}
			seen[h.Query] = true
		}
	})
}

func TestPropertyLogoutClearsSession(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := Reduce(genState().Draw(t, "state"), Logout())

		if s.CurrentUser != nil || len(s.Favorites) != 0 {
			t.Fatalf("logout left user=%v favorites=%d", s.CurrentUser, len(s.Favorites))
		}
	})
}

func TestPropertyFavoriteRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := genState().Draw(t, "state")
		b := genBook().Draw(t, "book")
		s = Reduce(s, RemoveFromFavorites(b))

		after := Reduce(Reduce(s, AddToFavorites(b)), RemoveFromFavorites(b))
		if !assert.ObjectsAreEqual(s.Favorites, after.Favorites) {
			t.Fatalf("favorites changed: %v -> %v", s.Favorites, after.Favorites)
		}
	})
}

func TestPropertyUnknownActionIsIdentity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := genState().Draw(t, "state")
		name := rapid.StringMatching(`UNKNOWN_[A-Z]{1,6}`).Draw(t, "type")

		if !assert.ObjectsAreEqual(s, Reduce(s, Action{Type: ActionType(name), Payload: "x"})) {
			t.Fatalf("unknown action %s changed state", name)
		}
	})
}
