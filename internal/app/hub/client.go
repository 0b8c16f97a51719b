package hub

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"bookfinder/internal/app/book"
	"bookfinder/internal/app/directory"
	"bookfinder/internal/app/state"
	"bookfinder/internal/app/user"
	"bookfinder/internal/pkg/auth/jwt"
	"bookfinder/internal/pkg/errs"
	"bookfinder/internal/pkg/logx"
	"bookfinder/internal/pkg/task"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a message sent by the client.
	maxMessageSize = 64 * 1024

	sendBufferSize = 256
)

// Client is one websocket connection attached to a Manager.
type Client struct {
	manager *Manager
	conn    *websocket.Conn
	id      string

	// send queues outbound messages. Only the manager's run loop sends on or closes it.
	send chan []byte

	// ctx is cancelled when the connection goes away.
	ctx    context.Context
	cancel context.CancelFunc

	logger zerolog.Logger
}

// inboundMessage is the envelope of every message a client sends.
type inboundMessage struct {
	Type         MessageType     `json:"type"`
	Payload      json.RawMessage `json:"payload,omitempty"`
	TotalResults int             `json:"totalResults,omitempty"`
}

func newClient(m *Manager, conn *websocket.Conn, id string) *Client {
	ctx, cancel := context.WithCancel(m.ctx)

	return &Client{
		manager: m,
		conn:    conn,
		id:      id,
		send:    make(chan []byte, sendBufferSize),
		ctx:     ctx,
		cancel:  cancel,
		logger:  logx.Logger().With().Str("client_id", id).Logger(),
	}
}

// ReadPump reads messages from the connection until it fails or closes.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (Client close/going away)")
			}
			break
		}

		c.processInboundMessage(messageBytes)
	}
}

func (c *Client) cleanupOnDisconnect() {
	c.cancel()

	select {
	case c.manager.unregister <- c:
	case <-c.manager.stopChan:
	}

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Client connection close error")
	}
}

func (c *Client) processInboundMessage(messageBytes []byte) {
	var in inboundMessage
	if err := json.Unmarshal(messageBytes, &in); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid JSON")
		c.SendError(errs.NewError(errs.ErrInvalidJSONFormat))
		return
	}

	switch in.Type {
	case TypeRegister:
		var input directory.RegisterInput
		if !c.decode(in.Payload, &input) {
			return
		}
		c.authenticate(func(ctx context.Context) (*user.Session, error) {
			return c.manager.deps.Directory.Register(ctx, input)
		})

	case TypeLogin:
		var creds directory.Credentials
		if !c.decode(in.Payload, &creds) {
			return
		}
		c.authenticate(func(ctx context.Context) (*user.Session, error) {
			return c.manager.deps.Directory.Login(ctx, creds)
		})

	case TypeSearch:
		var p SearchPayload
		if !c.decode(in.Payload, &p) {
			return
		}
		c.runSearch(func(ctx context.Context) (struct{}, error) {
			return struct{}{}, c.manager.deps.Searcher.Search(ctx, p.Query, p.SearchType)
		})

	case TypeLoadMore:
		c.runSearch(func(ctx context.Context) (struct{}, error) {
			return struct{}{}, c.manager.deps.Searcher.LoadMore(ctx)
		})

	case TypeToggleFavorite:
		var b book.Book
		if !c.decode(in.Payload, &b) {
			return
		}
		if b.Key == "" {
			c.SendError(errs.NewError(errs.ErrInvalidParams))
			return
		}
		c.manager.deps.Store.ToggleFavorite(b)

	default:
		action, err := state.DecodeAction(string(in.Type), in.Payload, in.TotalResults)
		if err != nil {
			c.SendError(err)
			return
		}
		if !action.Type.Dispatchable() {
			c.logger.Warn().Str("msg_type", string(in.Type)).Msg("Client sent an action it may not dispatch")
			c.SendError(errs.NewError(errs.ErrInvalidParams))
			return
		}
		c.manager.deps.Store.Dispatch(action)
	}
}

func (c *Client) decode(payload json.RawMessage, dst any) bool {
	if err := json.Unmarshal(payload, dst); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid payload")
		c.SendError(errs.NewError(errs.ErrInvalidParams))
		return false
	}
	return true
}

// authenticate runs a directory call in the background. On success the session
// becomes the current user and the client receives a signed token.
func (c *Client) authenticate(fn func(ctx context.Context) (*user.Session, error)) {
	future := task.Go(c.ctx, func(ctx context.Context) (*user.Session, error) {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		return fn(ctx)
	})

	go awaitResult(c, future, func(session *user.Session) {
		c.manager.deps.Store.Dispatch(state.SetUser(session))

		token, err := jwt.IssueSessionToken(session.ID, session.Email, c.manager.deps.JWTSecret)
		if err != nil {
			c.SendError(errs.Wrap(errs.ErrUnknown, err))
			return
		}
		c.sendMessage(NewMessage(TypeAuth, AuthPayload{Token: token, User: session}))
	})
}

// runSearch runs a searcher call in the background. Its progress reaches the
// client through the store; only a failure is answered directly.
func (c *Client) runSearch(fn func(ctx context.Context) (struct{}, error)) {
	future := task.Go(c.ctx, func(ctx context.Context) (struct{}, error) {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		return fn(ctx)
	})

	go awaitResult(c, future, func(struct{}) {})
}

// awaitResult waits for f and hands its value to onSuccess, or reports its error to c.
func awaitResult[T any](c *Client, f *task.Future[T], onSuccess func(T)) {
	v, err := f.Await(c.manager.ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		c.SendError(err)
		return
	}
	onSuccess(v)
}

// WritePump writes queued messages and keep-alive pings to the connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !c.writeQueuedMessage(message, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedMessage returns false when the write loop should stop.
func (c *Client) writeQueuedMessage(message []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		c.logger.Error().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Error().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}

// sendMessage marshals msg and routes it to this client through the manager.
func (c *Client) sendMessage(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error().Err(err).Str("msg_type", string(msg.Type)).Msg("Error marshaling data for client")
		return
	}
	c.manager.sendTo(c, data)
}

// SendError sends an ERROR message describing err.
func (c *Client) SendError(err error) {
	customErr := errs.From(err)
	if customErr.Status >= 500 {
		c.logger.Error().Err(err).Int("code", customErr.Code).Msg("Request failed")
	}

	c.sendMessage(NewMessage(TypeError, ErrorPayload{Code: customErr.Code, Message: customErr.Message}))
}
