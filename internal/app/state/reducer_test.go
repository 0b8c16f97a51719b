package state

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookfinder/internal/app/book"
	"bookfinder/internal/app/user"
)

func entry(query string) book.HistoryEntry {
	return book.HistoryEntry{Query: query, SearchType: book.SearchGeneral, Timestamp: time.Unix(0, 0).UTC()}
}

func TestInitial(t *testing.T) {
	s := Initial()

	assert.NotNil(t, s.Books)
	assert.NotNil(t, s.Favorites)
	assert.NotNil(t, s.History)
	assert.False(t, s.Loading)
	assert.False(t, s.HasMore)
	assert.Nil(t, s.Error)
	assert.Nil(t, s.CurrentParams)
	assert.Nil(t, s.CurrentUser)
	assert.Zero(t, s.TotalResults)
}

func TestReduceSearchActions(t *testing.T) {
	dune := book.Book{Key: "/works/OL1W", Title: "Dune"}
	emma := book.Book{Key: "/works/OL2W", Title: "Emma"}

	s := Reduce(Initial(), SetBooks([]book.Book{dune}, 42))
	assert.Equal(t, []book.Book{dune}, s.Books)
	assert.Equal(t, 42, s.TotalResults)

	s = Reduce(s, AppendBooks([]book.Book{emma}))
	assert.Equal(t, []book.Book{dune, emma}, s.Books)
	assert.Equal(t, 42, s.TotalResults)

	s = Reduce(s, Action{Type: ActionSetBooks, Payload: []book.Book{emma}})
	assert.Zero(t, s.TotalResults)

	s = Reduce(s, SetLoading(true))
	assert.True(t, s.Loading)

	s = Reduce(s, SetHasMore(true))
	assert.True(t, s.HasMore)

	s = Reduce(s, SetError("network down"))
	require.NotNil(t, s.Error)
	assert.Equal(t, "network down", *s.Error)
	s = Reduce(s, ClearError())
	assert.Nil(t, s.Error)

	params := book.SearchParams{Query: "dune", SearchType: book.SearchTitle, Page: 1, Limit: 20}
	s = Reduce(s, SetSearchParams(&params))
	require.NotNil(t, s.CurrentParams)
	assert.Equal(t, params, *s.CurrentParams)
	s = Reduce(s, SetSearchParams(nil))
	assert.Nil(t, s.CurrentParams)
}

func TestReduceFavorites(t *testing.T) {
	dune := book.Book{Key: "/works/OL1W", Title: "Dune"}
	emma := book.Book{Key: "/works/OL2W", Title: "Emma"}

	s := Reduce(Initial(), AddToFavorites(dune))
	s = Reduce(s, AddToFavorites(emma))
	assert.Equal(t, []book.Book{dune, emma}, s.Favorites)

	// No duplicate check at this layer.
	s = Reduce(s, AddToFavorites(dune))
	assert.Len(t, s.Favorites, 3)

	s = Reduce(s, RemoveFromFavorites(book.Book{Key: dune.Key}))
	assert.Equal(t, []book.Book{emma}, s.Favorites)
}

func TestAddThenRemoveFavoriteRoundTrip(t *testing.T) {
	start := Reduce(Initial(), AddToFavorites(book.Book{Key: "a"}))
	b := book.Book{Key: "b"}

	s := Reduce(Reduce(start, AddToFavorites(b)), RemoveFromFavorites(b))
	assert.Equal(t, start.Favorites, s.Favorites)
}

func TestAddToHistoryDuplicateKeepsPosition(t *testing.T) {
	s := Reduce(Initial(), AddToHistory(entry("dune")))
	s = Reduce(s, AddToHistory(entry("emma")))
	before := s

	s = Reduce(s, AddToHistory(entry("dune")))
	assert.Equal(t, before.History, s.History)
	assert.Equal(t, []string{"emma", "dune"}, queries(s.History))
}

func TestAddToHistoryCapsAtTen(t *testing.T) {
	s := Initial()
	for i := range 11 {
		s = Reduce(s, AddToHistory(entry(fmt.Sprintf("q%d", i))))
	}

	require.Len(t, s.History, HistoryLimit)
	assert.Equal(t, "q10", s.History[0].Query)
	assert.Equal(t, "q1", s.History[HistoryLimit-1].Query)
}

func TestSetHistoryNormalizes(t *testing.T) {
	var history []book.HistoryEntry
	for i := range 12 {
		history = append(history, entry(fmt.Sprintf("q%d", i)))
	}
	history = append([]book.HistoryEntry{entry("q3")}, history...)

	s := Reduce(Initial(), SetHistory(history))
	require.Len(t, s.History, HistoryLimit)
	assert.Equal(t, "q3", s.History[0].Query)
	assert.Equal(t, []string{"q3", "q0", "q1", "q2", "q4", "q5", "q6", "q7", "q8", "q9"}, queries(s.History))
}

func TestSetFavoritesDedupes(t *testing.T) {
	s := Reduce(Initial(), SetFavorites([]book.Book{
		{Key: "a", Title: "first"},
		{Key: "b"},
		{Key: "a", Title: "second"},
	}))

	require.Len(t, s.Favorites, 2)
	assert.Equal(t, "first", s.Favorites[0].Title)
}

func TestSetUserAndLogout(t *testing.T) {
	session := &user.Session{ID: "u-1", Email: "a@x.com"}

	s := Reduce(Initial(), SetUser(session))
	assert.Same(t, session, s.CurrentUser)

	s = Reduce(s, AddToFavorites(book.Book{Key: "a"}))
	s = Reduce(s, Logout())
	assert.Nil(t, s.CurrentUser)
	assert.Empty(t, s.Favorites)
	assert.NotNil(t, s.Favorites)

	s = Reduce(Reduce(Initial(), SetUser(session)), SetUser(nil))
	assert.Nil(t, s.CurrentUser)
}

func TestReduceIgnoresUnknownAndMistypedActions(t *testing.T) {
	s := Reduce(Initial(), AddToFavorites(book.Book{Key: "a"}))

	assert.Equal(t, s, Reduce(s, Action{Type: "NOT_AN_ACTION", Payload: 1}))
	assert.Equal(t, s, Reduce(s, Action{Type: ActionSetLoading, Payload: "yes"}))
	assert.Equal(t, s, Reduce(s, Action{Type: ActionAddToFavorites, Payload: "a"}))
	assert.Equal(t, s, Reduce(s, Action{Type: ActionSetBooks}))
	assert.Equal(t, s, Reduce(s, Action{Type: ActionSetUser, Payload: 42}))
}

func queries(history []book.HistoryEntry) []string {
	out := make([]string, len(history))
	for i, h := range history {
		out[i] = h.Query
	}
	return out
}
