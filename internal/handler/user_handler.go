package handler

import (
	"net/http"

	"bookfinder/internal/app/book"
	"bookfinder/internal/app/directory"
	"bookfinder/internal/app/state"
	"bookfinder/internal/app/user"
	"bookfinder/internal/pkg/auth/jwt"
	"bookfinder/internal/pkg/req"
	"bookfinder/internal/pkg/resp"
)

// HandleGetUserProfile returns the directory record of the token holder.
func HandleGetUserProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)

		session, err := deps.Directory.GetUser(r.Context(), identity.UserID)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"user": session})
	}
}

// HandleUpdateUserProfile merges the given fields into the token holder's record.
func HandleUpdateUserProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)

		var input directory.ProfileUpdate
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		session, err := deps.Directory.UpdateProfile(r.Context(), identity.UserID, input)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		refreshCurrentUser(deps.Store, session)
		resp.RespondSuccess(w, r, map[string]any{"user": session})
	}
}

type syncFavoritesInput struct {
	Favorites []book.Book `json:"favorites"`
}

// HandleSyncFavorites replaces the token holder's favorites with the given list,
// or with the favorites held in the state when the body is empty.
func HandleSyncFavorites(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)

		var input syncFavoritesInput
		if customErr := req.BindOptionalJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		favorites := input.Favorites
		if favorites == nil {
			favorites = deps.Store.State().Favorites
		}

		session, err := deps.Directory.UpdateFavorites(r.Context(), identity.UserID, favorites)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		refreshCurrentUser(deps.Store, session)
		resp.RespondSuccess(w, r, map[string]any{"user": session})
	}
}

// refreshCurrentUser replaces the current user when session belongs to it.
func refreshCurrentUser(store *state.Store, session *user.Session) {
	current := store.State().CurrentUser
	if current == nil || current.ID != session.ID {
		return
	}
	store.Dispatch(state.SetUser(session))
}
