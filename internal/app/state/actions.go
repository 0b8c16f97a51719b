package state

import (
	"encoding/json"
	"fmt"

	"bookfinder/internal/app/book"
	"bookfinder/internal/app/user"
	"bookfinder/internal/pkg/errs"
)

// ActionType names a state transition.
type ActionType string

const (
	ActionSetBooks            ActionType = "SET_BOOKS"
	ActionAppendBooks         ActionType = "APPEND_BOOKS"
	ActionSetLoading          ActionType = "SET_LOADING"
	ActionSetError            ActionType = "SET_ERROR"
	ActionSetSearchParams     ActionType = "SET_SEARCH_PARAMS"
	ActionSetHasMore          ActionType = "SET_HAS_MORE"
	ActionAddToFavorites      ActionType = "ADD_TO_FAVORITES"
	ActionRemoveFromFavorites ActionType = "REMOVE_FROM_FAVORITES"
	ActionAddToHistory        ActionType = "ADD_TO_HISTORY"
	ActionSetHistory          ActionType = "SET_HISTORY"
	ActionSetFavorites        ActionType = "SET_FAVORITES"
	ActionSetUser             ActionType = "SET_USER"
	ActionLogout              ActionType = "LOGOUT"
)

// Known reports whether Reduce handles t.
func (t ActionType) Known() bool {
	switch t {
	case ActionSetBooks, ActionAppendBooks, ActionSetLoading, ActionSetError, ActionSetSearchParams,
		ActionSetHasMore, ActionAddToFavorites, ActionRemoveFromFavorites, ActionAddToHistory,
		ActionSetHistory, ActionSetFavorites, ActionSetUser, ActionLogout:
		return true
	}
	return false
}

// Dispatchable reports whether clients may send t directly. SET_USER is only
// produced from directory results.
func (t ActionType) Dispatchable() bool {
	return t.Known() && t != ActionSetUser
}

// Action is a request to change the state.
// Payload holds the value listed for each type; TotalResults is only read by SET_BOOKS.
type Action struct {
	Type         ActionType `json:"type"`
	Payload      any        `json:"payload,omitempty"`
	TotalResults int        `json:"totalResults,omitempty"`
}

// SetBooks replaces the results and records the total number of matches.
func SetBooks(books []book.Book, totalResults int) Action {
	return Action{Type: ActionSetBooks, Payload: books, TotalResults: totalResults}
}

// AppendBooks adds a further page of results.
func AppendBooks(books []book.Book) Action {
	return Action{Type: ActionAppendBooks, Payload: books}
}

// SetLoading marks a search as in flight or finished.
func SetLoading(loading bool) Action {
	return Action{Type: ActionSetLoading, Payload: loading}
}

// SetError sets the error message. An empty message clears it.
func SetError(message string) Action {
	if message == "" {
		return ClearError()
	}
	return Action{Type: ActionSetError, Payload: message}
}

// ClearError removes the error message.
func ClearError() Action {
	return Action{Type: ActionSetError}
}

// SetSearchParams records the current query. Nil clears it.
func SetSearchParams(params *book.SearchParams) Action {
	if params == nil {
		return Action{Type: ActionSetSearchParams}
	}
	return Action{Type: ActionSetSearchParams, Payload: *params}
}

// SetHasMore records whether another page can be loaded.
func SetHasMore(hasMore bool) Action {
	return Action{Type: ActionSetHasMore, Payload: hasMore}
}

// AddToFavorites appends b to the favorites.
func AddToFavorites(b book.Book) Action {
	return Action{Type: ActionAddToFavorites, Payload: b}
}

// RemoveFromFavorites drops the favorite with the key of b.
func RemoveFromFavorites(b book.Book) Action {
	return Action{Type: ActionRemoveFromFavorites, Payload: b}
}

// AddToHistory puts entry at the front of the history unless its query is already there.
func AddToHistory(entry book.HistoryEntry) Action {
	return Action{Type: ActionAddToHistory, Payload: entry}
}

// SetHistory replaces the search history.
func SetHistory(history []book.HistoryEntry) Action {
	return Action{Type: ActionSetHistory, Payload: history}
}

// SetFavorites replaces the favorites.
func SetFavorites(favorites []book.Book) Action {
	return Action{Type: ActionSetFavorites, Payload: favorites}
}

// SetUser replaces the current user. Nil clears it.
func SetUser(session *user.Session) Action {
	if session == nil {
		return Action{Type: ActionSetUser}
	}
	return Action{Type: ActionSetUser, Payload: session}
}

// Logout clears the current user and their favorites.
func Logout() Action {
	return Action{Type: ActionLogout}
}

// DecodeAction builds an Action from its wire form.
// Unknown types decode to an Action that Reduce ignores.
func DecodeAction(actionType string, payload json.RawMessage, totalResults int) (Action, error) {
	t := ActionType(actionType)
	a := Action{Type: t}

	isNull := len(payload) == 0 || string(payload) == "null"

	var err error
	switch t {
	case ActionSetBooks, ActionAppendBooks, ActionSetFavorites:
		var books []book.Book
		if err = decodeRequired(payload, isNull, &books); err == nil {
			if books == nil {
				books = []book.Book{}
			}
			a.Payload = books
		}
		if t == ActionSetBooks {
			a.TotalResults = totalResults
		}

	case ActionSetLoading, ActionSetHasMore:
		var flag bool
		if err = decodeRequired(payload, isNull, &flag); err == nil {
			a.Payload = flag
		}

	case ActionSetError:
		if !isNull {
			var message string
			if err = json.Unmarshal(payload, &message); err == nil {
				a.Payload = message
			}
		}

	case ActionSetSearchParams:
		if !isNull {
			var params book.SearchParams
			if err = json.Unmarshal(payload, &params); err == nil {
				a.Payload = params
			}
		}

	case ActionAddToFavorites, ActionRemoveFromFavorites:
		var b book.Book
		if err = decodeRequired(payload, isNull, &b); err == nil {
			if b.Key == "" {
				err = fmt.Errorf("book key is required")
			}
			a.Payload = b
		}

	case ActionAddToHistory:
		var entry book.HistoryEntry
		if err = decodeRequired(payload, isNull, &entry); err == nil {
			a.Payload = entry
		}

	case ActionSetHistory:
		var history []book.HistoryEntry
		if err = decodeRequired(payload, isNull, &history); err == nil {
			if history == nil {
				history = []book.HistoryEntry{}
			}
			a.Payload = history
		}

	case ActionSetUser:
		if !isNull {
			var session user.Session
			if err = json.Unmarshal(payload, &session); err == nil {
				a.Payload = &session
			}
		}
	}

	if err != nil {
		return Action{}, errs.Wrap(errs.ErrInvalidParams, fmt.Errorf("decode %s payload: %w", actionType, err))
	}
	return a, nil
}

func decodeRequired(payload json.RawMessage, isNull bool, dst any) error {
	if isNull {
		return fmt.Errorf("payload is required")
	}
	return json.Unmarshal(payload, dst)
}
