package controller

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/soundroom/server/pkg/ctxlogger"
	"github.com/soundroom/server/pkg/wsrouter"
)

func (c controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()

	mux.Use(c.loggingWSMw)
	mux.OnError(c.handleWSError)

	wsrouter.Handle(mux, "ALIVE", c.handleAlive)

	// room
	wsrouter.Handle(mux, "CREATE_ROOM", c.handleCreateRoom)
	wsrouter.Handle(mux, "JOIN_ROOM", c.handleJoinRoom)
	wsrouter.Handle(mux, "LEAVE_ROOM", c.handleLeaveRoom)
	wsrouter.Handle(mux, "CLOSE_ROOM", c.handleCloseRoom)

	// queue
	wsrouter.Handle(mux, "ADD_SONG", c.handleAddSong)
	wsrouter.Handle(mux, "REMOVE_SONG", c.handleRemoveSong)
	wsrouter.Handle(mux, "CHANGE_SONG_RANK", c.handleChangeSongRank)

	// player
	wsrouter.Handle(mux, "PLAY_SONG", c.handlePlaySong)
	wsrouter.Handle(mux, "CLEAR_CURRENT_SONG", c.handleClearCurrentSong)
	wsrouter.Handle(mux, "SONG_SEARCH", c.handleSongSearch)
	wsrouter.Handle(mux, "GET_DEVICES", c.handleGetDevices)

	return mux
}

// serveWS upgrades the request and pumps intents for one client until the
// connection drops.
func (c controller) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}

	clientID := uuid.NewString()
	if err := c.conns.Add(conn, clientID); err != nil {
		c.logger.WarnContext(r.Context(), "failed to register conn", "error", err)
		conn.Close()
		return
	}
	defer c.conns.RemoveByClientID(clientID)

	ctx := context.WithValue(r.Context(), clientIDCtxKey, clientID)
	ctx = ctxlogger.AppendCtx(ctx, slog.String("client_id", clientID))

	if err := c.wsmux.ServeConn(ctx, conn); err != nil {
		c.logger.DebugContext(ctx, "websocket connection closed", "error", err)
	}
}

func (c controller) loggingWSMw(next wsrouter.HandlerFunc) wsrouter.HandlerFunc {
	return func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
		ctx = ctxlogger.AppendCtx(ctx, slog.String("intent", wsrouter.GetMessageTypeFromCtx(ctx)))
		c.logger.InfoContext(ctx, "websocket intent received")

		start := time.Now()
		err := next(ctx, conn, payload)
		c.logger.InfoContext(ctx, "websocket intent handled",
			"processing_time_us", time.Since(start).Microseconds(),
			"error", err,
		)

		return err
	}
}

// handleWSError surfaces handler failures to the originating client only.
func (c controller) handleWSError(ctx context.Context, conn *websocket.Conn, err error) {
	clientID := c.getClientIDFromCtx(ctx)
	if clientID == "" {
		return
	}

	c.sendError(ctx, clientID, err.Error())
}

func (c controller) sendError(ctx context.Context, clientID string, message any) {
	if err := c.conns.SendTo(clientID, "ERROR", map[string]any{"error": message}); err != nil {
		c.logger.DebugContext(ctx, "failed to send error to client", "client_id", clientID, "error", err)
	}
}
