package handler

import (
	"net/http"

	"bookfinder/internal/app/book"
	"bookfinder/internal/pkg/req"
	"bookfinder/internal/pkg/resp"
)

type searchInput struct {
	Query      string          `json:"query"`
	SearchType book.SearchType `json:"searchType"`
}

// HandleSearch runs a new search and returns the resulting state.
func HandleSearch(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input searchInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if err := deps.Searcher.Search(r.Context(), input.Query, input.SearchType); err != nil {
			resp.RespondError(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, deps.Store.State())
	}
}

// HandleLoadMore appends the next page of the current search.
func HandleLoadMore(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Searcher.LoadMore(r.Context()); err != nil {
			resp.RespondError(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, deps.Store.State())
	}
}
