package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"bookfinder/internal/app/book"
	"bookfinder/internal/app/kv"
	"bookfinder/internal/app/user"
	"bookfinder/internal/pkg/errs"
	"bookfinder/internal/pkg/logx"
)

// saveTimeout bounds the writes made after a dispatch.
const saveTimeout = 5 * time.Second

// Persister mirrors favorites, history and the current user into a kv.Store.
type Persister struct {
	store  kv.Store
	keys   kv.Keys
	logger zerolog.Logger
}

// NewPersister creates a Persister writing under keys.
func NewPersister(store kv.Store, keys kv.Keys) *Persister {
	return &Persister{
		store:  store,
		keys:   keys,
		logger: logx.Component("persister"),
	}
}

// Hydrate loads the persisted favorites, history and current user into s.
// Missing keys are skipped; unreadable or malformed values are logged and skipped.
func (p *Persister) Hydrate(ctx context.Context, s *Store) {
	var favorites []book.Book
	if p.read(ctx, p.keys.Favorites, &favorites) {
		s.Dispatch(SetFavorites(favorites))
	}

	var history []book.HistoryEntry
	if p.read(ctx, p.keys.History, &history) {
		s.Dispatch(SetHistory(history))
	}

	var session *user.Session
	if p.read(ctx, p.keys.User, &session) {
		s.Dispatch(SetUser(session))
	}
}

// read decodes key into dst and reports whether it succeeded.
func (p *Persister) read(ctx context.Context, key string, dst any) bool {
	raw, ok, err := p.store.Get(ctx, key)
	if err != nil {
		p.logger.Error().Err(errs.Wrap(errs.ErrStorageRead, err)).Str("key", key).Msg("Error loading data from storage")
		return false
	}
	if !ok {
		return false
	}

	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		p.logger.Error().Err(errs.Wrap(errs.ErrStorageRead, err)).Str("key", key).Msg("Error parsing stored data")
		return false
	}
	return true
}

// Attach subscribes p to s. After each change to favorites, history or the
// current user the persisted copies are rewritten. Write failures are logged.
func (p *Persister) Attach(s *Store) (detach func()) {
	return s.Subscribe(func(prev, next State, a Action) {
		if !persistedFieldsChanged(prev, next) {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()

		if err := p.Save(ctx, next); err != nil {
			p.logger.Error().Err(err).Str("action", string(a.Type)).Msg("Error saving data to storage")
		}
	})
}

// Save writes the favorites and history of st, and writes or removes the current user.
func (p *Persister) Save(ctx context.Context, st State) error {
	var failures []error

	if err := p.write(ctx, p.keys.Favorites, nonNilBooks(st.Favorites)); err != nil {
		failures = append(failures, err)
	}

	history := st.History
	if history == nil {
		history = []book.HistoryEntry{}
	}
	if err := p.write(ctx, p.keys.History, history); err != nil {
		failures = append(failures, err)
	}

	if st.CurrentUser != nil {
		if err := p.write(ctx, p.keys.User, st.CurrentUser); err != nil {
			failures = append(failures, err)
		}
	} else if err := p.store.Remove(ctx, p.keys.User); err != nil {
		failures = append(failures, fmt.Errorf("remove %s: %w", p.keys.User, err))
	}

	if len(failures) > 0 {
		return errs.Wrap(errs.ErrStorageWrite, errors.Join(failures...))
	}
	return nil
}

func (p *Persister) write(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := p.store.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// persistedFieldsChanged compares by identity; Reduce allocates a new slice or
// pointer whenever it changes one of these fields.
func persistedFieldsChanged(prev, next State) bool {
	return !sameSlice(prev.Favorites, next.Favorites) ||
		!sameSlice(prev.History, next.History) ||
		prev.CurrentUser != next.CurrentUser
}

func sameSlice[T any](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}
