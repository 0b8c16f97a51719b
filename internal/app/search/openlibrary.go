package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"bookfinder/internal/app/book"
	"bookfinder/internal/pkg/errs"
)

// OpenLibrary queries the Open Library search API.
type OpenLibrary struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewOpenLibrary creates a provider for baseURL (e.g. https://openlibrary.org).
// Outbound requests are limited to rps per second with the given burst.
func NewOpenLibrary(baseURL string, rps rate.Limit, burst int) *OpenLibrary {
	return &OpenLibrary{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(rps, burst),
	}
}

type openLibraryResponse struct {
	NumFound int         `json:"numFound"`
	Docs     []book.Book `json:"docs"`
}

// queryField maps a search type to the Open Library query parameter.
func queryField(t book.SearchType) string {
	switch t {
	case book.SearchTitle:
		return "title"
	case book.SearchAuthor:
		return "author"
	case book.SearchSubject:
		return "subject"
	case book.SearchISBN:
		return "isbn"
	default:
		return "q"
	}
}

func (o *OpenLibrary) Search(ctx context.Context, params book.SearchParams) (Page, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return Page{}, err
	}

	query := url.Values{}
	query.Set(queryField(params.SearchType), params.Query)
	query.Set("page", strconv.Itoa(params.Page))
	query.Set("limit", strconv.Itoa(params.Limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/search.json?"+query.Encode(), nil)
	if err != nil {
		return Page{}, errs.Wrap(errs.ErrSearchUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return Page{}, errs.Wrap(errs.ErrSearchUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Page{}, errs.Wrap(errs.ErrSearchUnavailable, fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	var body openLibraryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Page{}, errs.Wrap(errs.ErrSearchUnavailable, fmt.Errorf("decode search response: %w", err))
	}

	if body.Docs == nil {
		body.Docs = []book.Book{}
	}
	return Page{Books: body.Docs, Total: body.NumFound}, nil
}
