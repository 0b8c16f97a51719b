package handler

import (
	"encoding/json"
	"net/http"

	"bookfinder/internal/app/book"
	"bookfinder/internal/app/state"
	"bookfinder/internal/pkg/errs"
	"bookfinder/internal/pkg/req"
	"bookfinder/internal/pkg/resp"
)

type actionInput struct {
	Type         string          `json:"type"`
	Payload      json.RawMessage `json:"payload,omitempty"`
	TotalResults int             `json:"totalResults,omitempty"`
}

type toggleInput struct {
	Book book.Book `json:"book"`
}

// HandleGetState returns the current state snapshot.
func HandleGetState(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, deps.Store.State())
	}
}

// HandleDispatchAction dispatches one action and returns the resulting state.
func HandleDispatchAction(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input actionInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		action, err := state.DecodeAction(input.Type, input.Payload, input.TotalResults)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}
		if !action.Type.Dispatchable() {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		resp.RespondSuccess(w, r, deps.Store.Dispatch(action))
	}
}

// HandleToggleFavorite adds or removes a book from the favorites.
func HandleToggleFavorite(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input toggleInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		if input.Book.Key == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		favorite := deps.Store.ToggleFavorite(input.Book)
		resp.RespondSuccess(w, r, map[string]any{
			"favorite":  favorite,
			"favorites": deps.Store.State().Favorites,
		})
	}
}
