package wsrouter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
)

type message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type HandlerFunc func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error

type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler is called when a handler returns an error. The connection is
// kept open.
type ErrorHandler func(ctx context.Context, conn *websocket.Conn, err error)

type WSRouter struct {
	routes       map[string]HandlerFunc
	middlewares  []Middleware
	errorHandler ErrorHandler
}

func New() *WSRouter {
	return &WSRouter{routes: make(map[string]HandlerFunc)}
}

func (r *WSRouter) Use(mw Middleware) {
	r.middlewares = append(r.middlewares, mw)
}

func (r *WSRouter) OnError(h ErrorHandler) {
	r.errorHandler = h
}

func (r *WSRouter) HandleRaw(messageType string, handler HandlerFunc) {
	r.routes[messageType] = handler
}

// Handle registers a handler with a typed payload. The payload is decoded
// from the message before the handler is called.
func Handle[T any](r *WSRouter, messageType string, handler func(ctx context.Context, conn *websocket.Conn, payload T) error) {
	r.HandleRaw(messageType, func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
		var decoded T
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &decoded); err != nil {
				return fmt.Errorf("decode %s payload: %w", messageType, err)
			}
		}

		return handler(ctx, conn, decoded)
	})
}

// ServeConn reads messages from the connection until it fails and routes each
// one to its registered handler. Handler errors are reported to the error
// handler, not returned, so one bad message does not kill the connection.
func (r *WSRouter) ServeConn(ctx context.Context, conn *websocket.Conn) error {
	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}

		handler, ok := r.routes[msg.Type]
		if !ok {
			r.reportError(ctx, conn, fmt.Errorf("unknown message type %q", msg.Type))
			continue
		}

		for i := len(r.middlewares) - 1; i >= 0; i-- {
			handler = r.middlewares[i](handler)
		}

		msgCtx := context.WithValue(ctx, messageTypeKey, msg.Type)
		if err := handler(msgCtx, conn, msg.Payload); err != nil {
			r.reportError(msgCtx, conn, err)
		}
	}
}

func (r *WSRouter) reportError(ctx context.Context, conn *websocket.Conn, err error) {
	if r.errorHandler != nil {
		r.errorHandler(ctx, conn, err)
	}
}
