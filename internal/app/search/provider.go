/*
Package search runs book queries against an external catalogue and records the
outcome in the application state.
*/
package search

import (
	"context"

	"bookfinder/internal/app/book"
)

// Page is one page of search results.
type Page struct {
	Books []book.Book
	Total int
}

// Provider looks books up in an external catalogue.
type Provider interface {
	Search(ctx context.Context, params book.SearchParams) (Page, error)
}
