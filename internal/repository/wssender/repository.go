package wssender

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// client wraps a websocket connection with a write lock, since gorilla
// connections allow only one concurrent writer.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(out *Output) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conn.WriteJSON(out)
}

type Repo struct {
	mu       sync.RWMutex
	clients  map[string]*client
	channels map[string]map[string]struct{}
}

func NewRepo() *Repo {
	return &Repo{
		clients:  make(map[string]*client),
		channels: make(map[string]map[string]struct{}),
	}
}

func (r *Repo) Add(conn *websocket.Conn, clientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clients[clientID]; ok {
		return ErrAlreadyExists
	}

	r.clients[clientID] = &client{conn: conn}

	return nil
}

// RemoveByClientID drops the client's connection and removes it from every
// channel it joined.
func (r *Repo) RemoveByClientID(clientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.clients[clientID]
	if !ok {
		return ErrNotFound
	}
	c.conn.Close()

	delete(r.clients, clientID)
	for roomID, members := range r.channels {
		delete(members, clientID)
		if len(members) == 0 {
			delete(r.channels, roomID)
		}
	}

	return nil
}

func (r *Repo) JoinChannel(clientID string, roomID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clients[clientID]; !ok {
		return ErrNotFound
	}

	members, ok := r.channels[roomID]
	if !ok {
		members = make(map[string]struct{})
		r.channels[roomID] = members
	}
	members[clientID] = struct{}{}

	return nil
}

func (r *Repo) LeaveChannel(clientID string, roomID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.channels[roomID]
	if !ok {
		return ErrNotFound
	}

	delete(members, clientID)
	if len(members) == 0 {
		delete(r.channels, roomID)
	}

	return nil
}

// Broadcast sends the event to every client in the room's channel.
func (r *Repo) Broadcast(roomID string, event string, payload any) {
	r.mu.RLock()
	clients := make([]*client, 0, len(r.channels[roomID]))
	for clientID := range r.channels[roomID] {
		if c, ok := r.clients[clientID]; ok {
			clients = append(clients, c)
		}
	}
	r.mu.RUnlock()

	r.send(clients, &Output{Type: event, Payload: payload})
}

// BroadcastGlobal sends the event to every connected client, used for room
// creation and closure announcements.
func (r *Repo) BroadcastGlobal(event string, payload any) {
	r.mu.RLock()
	clients := make([]*client, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}
	r.mu.RUnlock()

	r.send(clients, &Output{Type: event, Payload: payload})
}

func (r *Repo) SendTo(clientID string, event string, payload any) error {
	r.mu.RLock()
	c, ok := r.clients[clientID]
	r.mu.RUnlock()

	if !ok {
		return ErrNotFound
	}

	return c.write(&Output{Type: event, Payload: payload})
}

func (r *Repo) send(clients []*client, out *Output) {
	for _, c := range clients {
		if err := c.write(out); err != nil {
			slog.Debug("wssender: failed to write to conn", "error", err)
		}
	}
}
