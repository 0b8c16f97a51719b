/*
Package hub pushes the application state to websocket clients and accepts actions from them.

Every connected client receives an INIT snapshot on connect and a STATE message
after each dispatch. Clients send {type, payload} messages: state actions are
dispatched directly, while REGISTER, LOGIN, SEARCH and LOAD_MORE run in the
background and answer when they finish.
*/
package hub

import (
	"time"

	"bookfinder/internal/app/book"
	"bookfinder/internal/app/state"
	"bookfinder/internal/app/user"
	"bookfinder/internal/pkg/randx"
)

// MessageType identifies a websocket message.
type MessageType string

const (
	// Outbound
	TypeInit  MessageType = "INIT"
	TypeState MessageType = "STATE"
	TypeAuth  MessageType = "AUTH"
	TypeError MessageType = "ERROR"

	// Inbound, in addition to every state action type
	TypeRegister       MessageType = "REGISTER"
	TypeLogin          MessageType = "LOGIN"
	TypeSearch         MessageType = "SEARCH"
	TypeLoadMore       MessageType = "LOAD_MORE"
	TypeToggleFavorite MessageType = "TOGGLE_FAVORITE"
)

// Message is the envelope of every outbound websocket message.
type Message struct {
	ID        string      `json:"id"`
	Type      MessageType `json:"type"`
	Payload   any         `json:"payload,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// NewMessage stamps payload with an id and the current time.
func NewMessage(t MessageType, payload any) Message {
	return Message{
		ID:        randx.MessageID(),
		Type:      t,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	}
}

// StatePayload carries a snapshot and the action that produced it.
type StatePayload struct {
	State  state.State      `json:"state"`
	Action state.ActionType `json:"action,omitempty"`
}

// AuthPayload answers a successful REGISTER or LOGIN.
type AuthPayload struct {
	Token string        `json:"token"`
	User  *user.Session `json:"user"`
}

// ErrorPayload describes a failed request.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// SearchPayload is the payload of an inbound SEARCH message.
type SearchPayload struct {
	Query      string          `json:"query"`
	SearchType book.SearchType `json:"searchType"`
}
