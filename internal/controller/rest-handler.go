package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/soundroom/server/internal/service/room"
	"github.com/soundroom/server/pkg/rest"
)

func (c controller) getRooms(w http.ResponseWriter, r *http.Request) {
	// ?room-id= keeps compatibility with clients that fetch a single room
	// through the collection endpoint
	if roomID := r.URL.Query().Get("room-id"); roomID != "" {
		c.writeRoom(w, r, roomID)
		return
	}

	rooms, err := c.roomService.GetRooms(r.Context())
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to get rooms", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "failed to get rooms"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": rooms})
}

func (c controller) getRoom(w http.ResponseWriter, r *http.Request) {
	c.writeRoom(w, r, chi.URLParam(r, "room-id"))
}

func (c controller) writeRoom(w http.ResponseWriter, r *http.Request, roomID string) {
	foundRoom, err := c.roomService.GetRoom(r.Context(), roomID)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "room not found"})
			return
		}
		c.logger.WarnContext(r.Context(), "failed to get room", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "failed to get room"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": foundRoom})
}

func (c controller) createRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomInput
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	createRoomResponse, err := c.roomService.CreateRoom(r.Context(), &room.CreateRoomParams{
		RoomName:        req.RoomName,
		RoomType:        req.RoomType,
		HostName:        req.HostName,
		ExplicitAllowed: req.ExplicitAllowed,
		Password:        req.Password,
		MinVotesToPlay:  req.MinVotesToPlay,
		DownVoteLimit:   req.DownVoteLimit,
		AccessToken:     req.AccessToken,
		RefreshToken:    req.RefreshToken,
	})
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to create room", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "failed to create room"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": map[string]any{
		"room":       createRoomResponse.Room,
		"host_token": createRoomResponse.HostToken,
	}})
}

func (c controller) closeRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "room-id")

	hostToken, ok := bearerToken(r)
	if !ok {
		rest.WriteJSON(w, http.StatusUnauthorized, rest.Envelope{"error": "missing host token"})
		return
	}

	if err := c.roomService.VerifyHostToken(hostToken, roomID); err != nil {
		if errors.Is(err, room.ErrNotHost) {
			rest.WriteJSON(w, http.StatusForbidden, rest.Envelope{"error": "host token does not match room"})
			return
		}
		rest.WriteJSON(w, http.StatusUnauthorized, rest.Envelope{"error": "invalid host token"})
		return
	}

	if err := c.roomService.CloseRoom(r.Context(), roomID); err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "room not found"})
			return
		}
		c.logger.WarnContext(r.Context(), "failed to close room", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "failed to close room"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": "OK"})
}

func (c controller) addSong(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "room-id")

	var req SongInput
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	entry, err := c.roomService.AddSong(r.Context(), &room.AddSongParams{
		RoomID: roomID,
		Song:   req.toSong(),
	})
	if err != nil {
		switch {
		case errors.Is(err, room.ErrRoomNotFound):
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "room not found"})
		case errors.Is(err, room.ErrQueueLimitReached):
			rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": "queue limit reached"})
		default:
			c.logger.WarnContext(r.Context(), "failed to add song", "error", err)
			rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "failed to add song"})
		}
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": entry})
}

func (c controller) removeSong(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "room-id")
	songID := chi.URLParam(r, "song-id")

	if err := c.roomService.RemoveSong(r.Context(), &room.RemoveSongParams{
		RoomID: roomID,
		SongID: songID,
	}); err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "room not found"})
			return
		}
		c.logger.WarnContext(r.Context(), "failed to remove song", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "failed to remove song"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": "OK"})
}

type changeSongRankRequest struct {
	Direction string `json:"direction" validate:"required,oneof=inc dec"`
}

func (c controller) changeSongRank(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "room-id")
	songID := chi.URLParam(r, "song-id")

	var req changeSongRankRequest
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	if err := c.roomService.ChangeSongRank(r.Context(), &room.ChangeSongRankParams{
		RoomID:    roomID,
		SongID:    songID,
		Direction: req.Direction,
	}); err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "room not found"})
			return
		}
		c.logger.WarnContext(r.Context(), "failed to change song rank", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "failed to change song rank"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": "OK"})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", false
	}

	return token, true
}
