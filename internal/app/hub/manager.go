package hub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"bookfinder/internal/app/directory"
	"bookfinder/internal/app/search"
	"bookfinder/internal/app/state"
	"bookfinder/internal/pkg/logx"
	"bookfinder/internal/pkg/randx"
)

const (
	broadcastChannelBuffer = 1024

	// requestTimeout bounds a background directory or search call started by a client.
	requestTimeout = 30 * time.Second
)

// Deps are the services a Manager hands to its clients.
type Deps struct {
	Store     *state.Store
	Directory directory.Service
	Searcher  *search.Searcher
	JWTSecret string
}

// outbound is a message addressed to a single client.
type outbound struct {
	client *Client
	data   []byte
}

// Manager tracks the connected clients and fans state changes out to them.
type Manager struct {
	deps Deps

	// clients is owned by the run loop; mu guards reads from other goroutines.
	clients map[string]*Client
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	direct     chan outbound

	// ctx is cancelled on Shutdown and parents every background call.
	ctx      context.Context
	cancel   context.CancelFunc
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	unsubscribe func()
	logger      zerolog.Logger
}

// NewManager subscribes to deps.Store and starts the run loop.
func NewManager(deps Deps) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	m := &Manager{
		deps:       deps,
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, broadcastChannelBuffer),
		direct:     make(chan outbound, broadcastChannelBuffer),
		ctx:        ctx,
		cancel:     cancel,
		stopChan:   make(chan struct{}),
		logger:     logx.Component("hub"),
	}

	m.unsubscribe = deps.Store.Subscribe(m.onDispatch)

	m.wg.Add(1)
	go m.run()

	return m
}

// onDispatch queues a STATE message. It runs inside Store.Dispatch and never blocks.
func (m *Manager) onDispatch(_, next state.State, a state.Action) {
	data, err := json.Marshal(NewMessage(TypeState, StatePayload{State: next, Action: a.Type}))
	if err != nil {
		m.logger.Error().Err(err).Str("action", string(a.Type)).Msg("Error marshaling state for broadcast")
		return
	}

	select {
	case m.broadcast <- data:
	default:
		m.logger.Warn().Str("action", string(a.Type)).Msg("Broadcast channel full, dropping state update")
	}
}

// Connect attaches conn as a new client and serves it until the connection closes.
func (m *Manager) Connect(conn *websocket.Conn) {
	id, err := randx.ClientID()
	if err != nil {
		m.logger.Error().Err(err).Msg("Failed to generate client id")
		conn.Close()
		return
	}

	client := newClient(m, conn, id)

	select {
	case m.register <- client:
	case <-m.stopChan:
		conn.Close()
		return
	}

	go client.WritePump()
	client.ReadPump()
}

// ClientCount returns the number of connected clients.
func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

func (m *Manager) run() {
	defer m.wg.Done()

	m.logger.Info().Msg("Hub run loop started.")

	for {
		select {
		case client := <-m.register:
			m.mu.Lock()
			m.clients[client.id] = client
			total := len(m.clients)
			m.mu.Unlock()

			m.logger.Info().Str("client_id", client.id).Int("total_clients", total).Msg("Client connected.")

			data, err := json.Marshal(NewMessage(TypeInit, StatePayload{State: m.deps.Store.State()}))
			if err != nil {
				m.logger.Error().Err(err).Msg("Failed to build INIT message.")
				continue
			}
			m.deliver(client, data)

		case client := <-m.unregister:
			m.remove(client)

		case data := <-m.broadcast:
			m.mu.RLock()
			targets := make([]*Client, 0, len(m.clients))
			for _, c := range m.clients {
				targets = append(targets, c)
			}
			m.mu.RUnlock()

			for _, c := range targets {
				m.deliver(c, data)
			}

		case out := <-m.direct:
			m.mu.RLock()
			current, ok := m.clients[out.client.id]
			m.mu.RUnlock()

			if ok && current == out.client {
				m.deliver(out.client, out.data)
			}

		case <-m.stopChan:
			m.mu.Lock()
			for id, c := range m.clients {
				close(c.send)
				delete(m.clients, id)
			}
			m.mu.Unlock()

			m.logger.Info().Msg("Hub run loop stopped.")
			return
		}
	}
}

// deliver queues data for c, dropping c when its queue is full. Run loop only.
func (m *Manager) deliver(c *Client, data []byte) {
	select {
	case c.send <- data:
	default:
		m.logger.Warn().Str("client_id", c.id).Msg("Client send channel full, disconnecting.")
		m.remove(c)
	}
}

// remove forgets c and closes its send channel. Run loop only.
func (m *Manager) remove(c *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.clients[c.id]
	if !ok || current != c {
		return
	}

	delete(m.clients, c.id)
	close(c.send)

	m.logger.Info().Str("client_id", c.id).Int("total_clients", len(m.clients)).Msg("Client disconnected.")
}

// sendTo queues data for a single client through the run loop.
func (m *Manager) sendTo(c *Client, data []byte) {
	select {
	case m.direct <- outbound{client: c, data: data}:
	case <-m.stopChan:
	}
}

// Shutdown disconnects every client, cancels background calls and stops the run loop.
func (m *Manager) Shutdown() {
	m.stopOnce.Do(func() {
		m.logger.Info().Msg("Shutting down hub...")

		m.unsubscribe()
		m.cancel()
		close(m.stopChan)
		m.wg.Wait()

		m.logger.Info().Msg("Hub shutdown complete.")
	})
}
