package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"bookfinder/internal/app/book"
	"bookfinder/internal/app/directory"
	"bookfinder/internal/app/kv"
	"bookfinder/internal/app/search"
	"bookfinder/internal/app/state"
	"bookfinder/internal/pkg/auth/jwt"
	"bookfinder/internal/pkg/errs"
)

const testSecret = "test-secret"

type staticProvider struct {
	books []book.Book
}

func (p staticProvider) Search(_ context.Context, params book.SearchParams) (search.Page, error) {
	return search.Page{Books: p.books, Total: len(p.books)}, nil
}

type received struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func newTestHub(t *testing.T) (*Manager, *state.Store, string) {
	t.Helper()

	store := state.NewStore()
	deps := Deps{
		Store:     store,
		Directory: directory.NewService(kv.NewMemory(), directory.Options{BcryptCost: bcrypt.MinCost}),
		Searcher:  search.NewSearcher(staticProvider{books: []book.Book{{Key: "/works/OL1W", Title: "Dune"}}}, store, 20),
		JWTSecret: testSecret,
	}
	m := NewManager(deps)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		m.Connect(conn)
	}))

	t.Cleanup(func() {
		m.Shutdown()
		srv.Close()
	})

	return m, store, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	readUntil(t, conn, isType(TypeInit))
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msgType MessageType, payload any) {
	t.Helper()
	body := map[string]any{"type": msgType}
	if payload != nil {
		body["payload"] = payload
	}
	require.NoError(t, conn.WriteJSON(body))
}

// readUntil reads messages until match accepts one, failing after a few seconds.
func readUntil(t *testing.T, conn *websocket.Conn, match func(received) bool) received {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var msg received
		require.NoError(t, conn.ReadJSON(&msg))
		if match(msg) {
			return msg
		}
	}
}

func isState(action state.ActionType) func(received) bool {
	return func(m received) bool {
		if m.Type != TypeState {
			return false
		}
		var p StatePayload
		return json.Unmarshal(m.Payload, &p) == nil && p.Action == action
	}
}

func isType(t MessageType) func(received) bool {
	return func(m received) bool { return m.Type == t }
}

func TestInitCarriesCurrentState(t *testing.T) {
	_, store, url := newTestHub(t)
	store.Dispatch(state.SetHistory([]book.HistoryEntry{{Query: "dune", SearchType: book.SearchTitle}}))

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	msg := readUntil(t, conn, isType(TypeInit))
	var payload StatePayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	require.Len(t, payload.State.History, 1)
	assert.Equal(t, "dune", payload.State.History[0].Query)
}

func TestActionsAreDispatchedAndBroadcast(t *testing.T) {
	_, store, url := newTestHub(t)
	a := dial(t, url)
	b := dial(t, url)

	send(t, a, MessageType(state.ActionSetLoading), true)

	for _, conn := range []*websocket.Conn{a, b} {
		msg := readUntil(t, conn, isState(state.ActionSetLoading))
		var payload StatePayload
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))
		assert.True(t, payload.State.Loading)
	}
	assert.True(t, store.State().Loading)
}

func TestUnknownTypeAnswersError(t *testing.T) {
	_, _, url := newTestHub(t)
	conn := dial(t, url)

	send(t, conn, "FLY_TO_MOON", nil)

	msg := readUntil(t, conn, isType(TypeError))
	var payload ErrorPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, errs.ErrInvalidParams, payload.Code)
}

func TestSetUserFromClientAnswersError(t *testing.T) {
	_, store, url := newTestHub(t)
	conn := dial(t, url)

	session := map[string]any{"id": "1712345678901", "email": "mallory@x.com", "name": "Mallory", "favorites": []any{}, "history": []any{}}
	send(t, conn, MessageType(state.ActionSetUser), session)

	msg := readUntil(t, conn, isType(TypeError))
	var payload ErrorPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, errs.ErrInvalidParams, payload.Code)
	assert.Nil(t, store.State().CurrentUser)
}

func TestRegisterSetsUserAndIssuesToken(t *testing.T) {
	_, store, url := newTestHub(t)
	conn := dial(t, url)

	send(t, conn, TypeRegister, directory.RegisterInput{Email: "a@x.com", Name: "A", Password: "p"})

	msg := readUntil(t, conn, isType(TypeAuth))
	var auth AuthPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &auth))
	require.NotNil(t, auth.User)
	assert.Equal(t, "a@x.com", auth.User.Email)

	claims, err := jwt.ParseToken(auth.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, auth.User.ID, claims.UserID)

	require.NotNil(t, store.State().CurrentUser)
	assert.Equal(t, auth.User.ID, store.State().CurrentUser.ID)
}

func TestLoginFailureAnswersError(t *testing.T) {
	_, store, url := newTestHub(t)
	conn := dial(t, url)

	send(t, conn, TypeLogin, directory.Credentials{Email: "nobody@x.com", Password: "p"})

	msg := readUntil(t, conn, isType(TypeError))
	var payload ErrorPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, errs.ErrInvalidCredentials, payload.Code)
	assert.Nil(t, store.State().CurrentUser)
}

func TestSearchAndToggleFavorite(t *testing.T) {
	_, store, url := newTestHub(t)
	conn := dial(t, url)

	send(t, conn, TypeSearch, SearchPayload{Query: "dune", SearchType: book.SearchTitle})
	readUntil(t, conn, isState(state.ActionAddToHistory))

	st := store.State()
	require.Len(t, st.Books, 1)
	assert.Equal(t, "dune", st.History[0].Query)

	send(t, conn, TypeToggleFavorite, st.Books[0])
	readUntil(t, conn, isState(state.ActionAddToFavorites))
	assert.True(t, store.State().IsFavorite("/works/OL1W"))

	send(t, conn, TypeToggleFavorite, st.Books[0])
	readUntil(t, conn, isState(state.ActionRemoveFromFavorites))
	assert.False(t, store.State().IsFavorite("/works/OL1W"))
}

func TestShutdownDisconnectsClients(t *testing.T) {
	m, _, url := newTestHub(t)
	conn := dial(t, url)

	require.Eventually(t, func() bool { return m.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	m.Shutdown()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	assert.Equal(t, 0, m.ClientCount())
}
