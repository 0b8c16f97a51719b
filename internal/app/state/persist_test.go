package state

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookfinder/internal/app/book"
	"bookfinder/internal/app/kv"
	"bookfinder/internal/app/user"
	"bookfinder/internal/pkg/errs"
)

var testKeys = kv.KeysFor("")

func get(t *testing.T, store kv.Store, key string) (string, bool) {
	t.Helper()
	v, ok, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	return v, ok
}

func TestHydrateRestoresPersistedData(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	require.NoError(t, mem.Set(ctx, testKeys.Favorites, `[{"key":"/works/OL1W","title":"Dune"},{"key":"/works/OL1W","title":"Dune again"}]`))
	require.NoError(t, mem.Set(ctx, testKeys.History, `[{"query":"dune","searchType":"title","timestamp":"2024-01-01T00:00:00Z","resultCount":3}]`))
	require.NoError(t, mem.Set(ctx, testKeys.User, `{"id":"u-1","email":"a@x.com","name":"A","favorites":[],"history":[],"createdAt":"2024-01-01T00:00:00Z"}`))

	store := NewStore()
	NewPersister(mem, testKeys).Hydrate(ctx, store)

	s := store.State()
	require.Len(t, s.Favorites, 1)
	assert.Equal(t, "Dune", s.Favorites[0].Title)
	assert.Empty(t, s.Books)
	require.Len(t, s.History, 1)
	assert.Equal(t, "dune", s.History[0].Query)
	require.NotNil(t, s.CurrentUser)
	assert.Equal(t, "u-1", s.CurrentUser.ID)
}

func TestHydrateWithMalformedDataKeepsDefaults(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	require.NoError(t, mem.Set(ctx, testKeys.Favorites, `{broken`))
	require.NoError(t, mem.Set(ctx, testKeys.History, `"not a list"`))
	require.NoError(t, mem.Set(ctx, testKeys.User, `[1,2,3]`))

	store := NewStore()
	require.NotPanics(t, func() {
		NewPersister(mem, testKeys).Hydrate(ctx, store)
	})

	assert.Equal(t, Initial(), store.State())
}

func TestHydrateWithEmptyStore(t *testing.T) {
	store := NewStore()
	NewPersister(kv.NewMemory(), testKeys).Hydrate(context.Background(), store)

	assert.Equal(t, Initial(), store.State())
}

func TestAttachPersistsChanges(t *testing.T) {
	mem := kv.NewMemory()
	store := NewStore()
	NewPersister(mem, testKeys).Attach(store)

	store.Dispatch(AddToFavorites(book.Book{Key: "/works/OL1W", Title: "Dune"}))
	store.Dispatch(SetUser(&user.Session{ID: "u-1", Email: "a@x.com"}))

	favorites, ok := get(t, mem, testKeys.Favorites)
	require.True(t, ok)
	assert.JSONEq(t, `[{"key":"/works/OL1W","title":"Dune"}]`, favorites)

	history, ok := get(t, mem, testKeys.History)
	require.True(t, ok)
	assert.JSONEq(t, `[]`, history)

	current, ok := get(t, mem, testKeys.User)
	require.True(t, ok)
	assert.Contains(t, current, `"id":"u-1"`)
	assert.NotContains(t, current, "password")

	store.Dispatch(Logout())

	_, ok = get(t, mem, testKeys.User)
	assert.False(t, ok)
	favorites, _ = get(t, mem, testKeys.Favorites)
	assert.JSONEq(t, `[]`, favorites)
}

type countingStore struct {
	kv.Store
	sets int
}

func (c *countingStore) Set(ctx context.Context, key, value string) error {
	c.sets++
	return c.Store.Set(ctx, key, value)
}

func TestAttachSkipsUnrelatedActions(t *testing.T) {
	counting := &countingStore{Store: kv.NewMemory()}
	store := NewStore()
	NewPersister(counting, testKeys).Attach(store)

	store.Dispatch(SetLoading(true))
	store.Dispatch(SetBooks([]book.Book{{Key: "k"}}, 1))
	assert.Zero(t, counting.sets)

	store.Dispatch(AddToHistory(book.HistoryEntry{Query: "dune"}))
	assert.Equal(t, 2, counting.sets)
}

func TestDetachStopsPersisting(t *testing.T) {
	mem := kv.NewMemory()
	store := NewStore()
	detach := NewPersister(mem, testKeys).Attach(store)
	detach()

	store.Dispatch(AddToFavorites(book.Book{Key: "k"}))
	_, ok := get(t, mem, testKeys.Favorites)
	assert.False(t, ok)
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("io error")
}
func (brokenStore) Set(context.Context, string, string) error { return errors.New("io error") }
func (brokenStore) Remove(context.Context, string) error      { return errors.New("io error") }
func (brokenStore) Close() error                              { return nil }

func TestStorageFailuresDoNotReachDispatch(t *testing.T) {
	p := NewPersister(brokenStore{}, testKeys)
	store := NewStore()
	p.Hydrate(context.Background(), store)
	p.Attach(store)

	require.NotPanics(t, func() {
		store.Dispatch(AddToFavorites(book.Book{Key: "k"}))
	})
	assert.True(t, store.State().IsFavorite("k"))

	err := p.Save(context.Background(), store.State())
	assert.True(t, errs.Is(err, errs.ErrStorageWrite))
}
