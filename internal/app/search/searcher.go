package search

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"bookfinder/internal/app/book"
	"bookfinder/internal/app/state"
	"bookfinder/internal/pkg/errs"
	"bookfinder/internal/pkg/logx"
)

// DefaultPageSize is the number of results requested per page.
const DefaultPageSize = 20

// Searcher runs searches and dispatches their progress and results to a state.Store.
// Calls are serialized: a Search or LoadMore reads the current params, queries the
// provider and dispatches its results before the next call starts.
type Searcher struct {
	sem *semaphore.Weighted

	provider Provider
	store    *state.Store
	pageSize int
	now      func() time.Time
	logger   zerolog.Logger
}

// NewSearcher creates a Searcher. A pageSize of zero or less uses DefaultPageSize.
func NewSearcher(provider Provider, store *state.Store, pageSize int) *Searcher {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Searcher{
		sem:      semaphore.NewWeighted(1),
		provider: provider,
		store:    store,
		pageSize: pageSize,
		now:      time.Now,
		logger:   logx.Component("search"),
	}
}

// Search runs a new query and replaces the current results with its first page.
func (s *Searcher) Search(ctx context.Context, query string, searchType book.SearchType) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return errs.NewError(errs.ErrInvalidParams)
	}
	if searchType == "" {
		searchType = book.SearchGeneral
	}
	if !searchType.Valid() {
		return errs.NewError(errs.ErrInvalidParams)
	}

	if err := s.lock(ctx); err != nil {
		return err
	}
	defer s.unlock()

	params := book.SearchParams{Query: query, SearchType: searchType, Page: 1, Limit: s.pageSize}

	s.store.Dispatch(state.SetLoading(true))
	s.store.Dispatch(state.ClearError())
	s.store.Dispatch(state.SetSearchParams(&params))

	page, err := s.provider.Search(ctx, params)
	if err != nil {
		return s.fail(err)
	}

	s.store.Dispatch(state.SetBooks(page.Books, page.Total))
	s.store.Dispatch(state.SetHasMore(params.Page*params.Limit < page.Total))
	s.store.Dispatch(state.AddToHistory(book.HistoryEntry{
		Query:       query,
		SearchType:  searchType,
		Timestamp:   s.now().UTC(),
		ResultCount: page.Total,
	}))
	s.store.Dispatch(state.SetLoading(false))

	s.logger.Debug().Str("query", query).Str("search_type", string(searchType)).Int("total", page.Total).Msg("Search completed")
	return nil
}

// LoadMore appends the next page of the current query. It does nothing when no more results exist.
func (s *Searcher) LoadMore(ctx context.Context) error {
	if err := s.lock(ctx); err != nil {
		return err
	}
	defer s.unlock()

	current := s.store.State()
	if !current.HasMore || current.CurrentParams == nil {
		return nil
	}

	params := *current.CurrentParams
	params.Page++

	s.store.Dispatch(state.SetLoading(true))

	page, err := s.provider.Search(ctx, params)
	if err != nil {
		return s.fail(err)
	}

	s.store.Dispatch(state.AppendBooks(page.Books))
	s.store.Dispatch(state.SetSearchParams(&params))
	s.store.Dispatch(state.SetHasMore(params.Page*params.Limit < page.Total))
	s.store.Dispatch(state.SetLoading(false))

	return nil
}

func (s *Searcher) lock(ctx context.Context) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return errs.Wrap(errs.ErrRequestTimeout, err)
	}
	return nil
}

func (s *Searcher) unlock() {
	s.sem.Release(1)
}

func (s *Searcher) fail(err error) error {
	customErr := errs.From(err)
	if !errs.Is(err, errs.ErrSearchUnavailable) && !errs.Is(err, errs.ErrInvalidParams) {
		customErr = errs.Wrap(errs.ErrSearchUnavailable, err)
	}

	s.logger.Warn().Err(err).Msg("Search failed")
	s.store.Dispatch(state.SetError(customErr.Message))
	s.store.Dispatch(state.SetLoading(false))
	return customErr
}
