package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/soundroom/server/internal/service/room"
)

type EmptyInput struct{}

func (c controller) handleAlive(_ context.Context, _ *websocket.Conn, _ EmptyInput) error {
	return nil
}

type SongInput struct {
	SongID     string `json:"song_id" validate:"required"`
	SongName   string `json:"song_name"`
	ArtistName string `json:"artist_name"`
	CoverArt   string `json:"cover_art"`
	URI        string `json:"uri"`
}

func (i SongInput) toSong() room.Song {
	return room.Song{
		SongID:     i.SongID,
		SongName:   i.SongName,
		ArtistName: i.ArtistName,
		CoverArt:   i.CoverArt,
		URI:        i.URI,
	}
}

type CreateRoomInput struct {
	RoomName        string `json:"room_name" validate:"required,max=64"`
	RoomType        string `json:"room_type" validate:"required,oneof=public private"`
	HostName        string `json:"host_name" validate:"required,max=64"`
	ExplicitAllowed bool   `json:"explicit_allowed"`
	Password        string `json:"password"`
	MinVotesToPlay  int    `json:"min_votes_to_play" validate:"gte=0"`
	DownVoteLimit   int    `json:"down_vote_limit" validate:"gte=0"`
	AccessToken     string `json:"access_token"`
	RefreshToken    string `json:"refresh_token"`
}

func (c controller) handleCreateRoom(ctx context.Context, _ *websocket.Conn, input CreateRoomInput) error {
	clientID := c.getClientIDFromCtx(ctx)

	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.sendError(ctx, clientID, validationErrors)
		return nil
	}

	createRoomResponse, err := c.roomService.CreateRoom(ctx, &room.CreateRoomParams{
		RoomName:        input.RoomName,
		RoomType:        input.RoomType,
		HostName:        input.HostName,
		ExplicitAllowed: input.ExplicitAllowed,
		Password:        input.Password,
		MinVotesToPlay:  input.MinVotesToPlay,
		DownVoteLimit:   input.DownVoteLimit,
		AccessToken:     input.AccessToken,
		RefreshToken:    input.RefreshToken,
	})
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	// the host token goes to the creator only
	return c.conns.SendTo(clientID, "HOST_TOKEN", map[string]any{
		"room_id":    createRoomResponse.Room.ID,
		"host_token": createRoomResponse.HostToken,
	})
}

type JoinRoomInput struct {
	RoomID string `json:"room_id" validate:"required"`
}

func (c controller) handleJoinRoom(ctx context.Context, _ *websocket.Conn, input JoinRoomInput) error {
	clientID := c.getClientIDFromCtx(ctx)

	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.sendError(ctx, clientID, validationErrors)
		return nil
	}

	joinedRoom, err := c.roomService.JoinRoom(ctx, &room.JoinRoomParams{
		ClientID: clientID,
		RoomID:   input.RoomID,
	})
	if err != nil {
		return fmt.Errorf("failed to join room: %w", err)
	}

	return c.conns.SendTo(clientID, "ROOM_STATE", joinedRoom)
}

type LeaveRoomInput struct {
	RoomID string `json:"room_id" validate:"required"`
}

func (c controller) handleLeaveRoom(ctx context.Context, _ *websocket.Conn, input LeaveRoomInput) error {
	clientID := c.getClientIDFromCtx(ctx)

	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.sendError(ctx, clientID, validationErrors)
		return nil
	}

	if err := c.roomService.LeaveRoom(ctx, &room.LeaveRoomParams{
		ClientID: clientID,
		RoomID:   input.RoomID,
	}); err != nil {
		return fmt.Errorf("failed to leave room: %w", err)
	}

	return nil
}

type CloseRoomInput struct {
	RoomID    string `json:"room_id" validate:"required"`
	HostToken string `json:"host_token" validate:"required"`
}

func (c controller) handleCloseRoom(ctx context.Context, _ *websocket.Conn, input CloseRoomInput) error {
	clientID := c.getClientIDFromCtx(ctx)

	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.sendError(ctx, clientID, validationErrors)
		return nil
	}

	if err := c.roomService.VerifyHostToken(input.HostToken, input.RoomID); err != nil {
		c.sendError(ctx, clientID, "only the host can close the room")
		return nil
	}

	if err := c.roomService.CloseRoom(ctx, input.RoomID); err != nil {
		return fmt.Errorf("failed to close room: %w", err)
	}

	return nil
}

type AddSongInput struct {
	RoomID string    `json:"room_id" validate:"required"`
	Song   SongInput `json:"song"`
}

func (c controller) handleAddSong(ctx context.Context, _ *websocket.Conn, input AddSongInput) error {
	clientID := c.getClientIDFromCtx(ctx)

	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.sendError(ctx, clientID, validationErrors)
		return nil
	}

	if _, err := c.roomService.AddSong(ctx, &room.AddSongParams{
		RoomID: input.RoomID,
		Song:   input.Song.toSong(),
	}); err != nil {
		if errors.Is(err, room.ErrQueueLimitReached) {
			c.sendError(ctx, clientID, "queue limit reached")
			return nil
		}
		return fmt.Errorf("failed to add song: %w", err)
	}

	return nil
}

type RemoveSongInput struct {
	RoomID string `json:"room_id" validate:"required"`
	SongID string `json:"song_id" validate:"required"`
}

func (c controller) handleRemoveSong(ctx context.Context, _ *websocket.Conn, input RemoveSongInput) error {
	clientID := c.getClientIDFromCtx(ctx)

	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.sendError(ctx, clientID, validationErrors)
		return nil
	}

	if err := c.roomService.RemoveSong(ctx, &room.RemoveSongParams{
		RoomID: input.RoomID,
		SongID: input.SongID,
	}); err != nil {
		return fmt.Errorf("failed to remove song: %w", err)
	}

	return nil
}

type ChangeSongRankInput struct {
	RoomID    string `json:"room_id" validate:"required"`
	SongID    string `json:"song_id" validate:"required"`
	Direction string `json:"direction" validate:"required,oneof=inc dec"`
}

func (c controller) handleChangeSongRank(ctx context.Context, _ *websocket.Conn, input ChangeSongRankInput) error {
	clientID := c.getClientIDFromCtx(ctx)

	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.sendError(ctx, clientID, validationErrors)
		return nil
	}

	if err := c.roomService.ChangeSongRank(ctx, &room.ChangeSongRankParams{
		RoomID:    input.RoomID,
		SongID:    input.SongID,
		Direction: input.Direction,
	}); err != nil {
		return fmt.Errorf("failed to change song rank: %w", err)
	}

	return nil
}

type PlaySongInput struct {
	RoomID string     `json:"room_id" validate:"required"`
	Song   *SongInput `json:"song"`
}

func (c controller) handlePlaySong(ctx context.Context, _ *websocket.Conn, input PlaySongInput) error {
	clientID := c.getClientIDFromCtx(ctx)

	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.sendError(ctx, clientID, validationErrors)
		return nil
	}

	params := room.PlaySongParams{RoomID: input.RoomID}
	if input.Song != nil {
		song := input.Song.toSong()
		params.Song = &song
	}

	if _, err := c.roomService.PlaySong(ctx, &params); err != nil {
		if errors.Is(err, room.ErrEmptyQueue) {
			c.sendError(ctx, clientID, "queue is empty")
			return nil
		}
		return fmt.Errorf("failed to play song: %w", err)
	}

	return nil
}

type ClearCurrentSongInput struct {
	RoomID string `json:"room_id" validate:"required"`
}

func (c controller) handleClearCurrentSong(ctx context.Context, _ *websocket.Conn, input ClearCurrentSongInput) error {
	clientID := c.getClientIDFromCtx(ctx)

	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.sendError(ctx, clientID, validationErrors)
		return nil
	}

	if _, err := c.roomService.ClearCurrentSong(ctx, input.RoomID); err != nil {
		return fmt.Errorf("failed to clear current song: %w", err)
	}

	return nil
}

type SongSearchInput struct {
	RoomID string `json:"room_id" validate:"required"`
	Query  string `json:"query" validate:"required"`
}

func (c controller) handleSongSearch(ctx context.Context, _ *websocket.Conn, input SongSearchInput) error {
	clientID := c.getClientIDFromCtx(ctx)

	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.sendError(ctx, clientID, validationErrors)
		return nil
	}

	tracks, err := c.roomService.SongSearch(ctx, &room.SongSearchParams{
		RoomID: input.RoomID,
		Query:  input.Query,
	})
	if err != nil {
		return fmt.Errorf("failed to search songs: %w", err)
	}

	// search results go to the requester only
	return c.conns.SendTo(clientID, "SEARCH_RESULTS", map[string]any{"tracks": tracks})
}

type GetDevicesInput struct {
	RoomID string `json:"room_id" validate:"required"`
}

func (c controller) handleGetDevices(ctx context.Context, _ *websocket.Conn, input GetDevicesInput) error {
	clientID := c.getClientIDFromCtx(ctx)

	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.sendError(ctx, clientID, validationErrors)
		return nil
	}

	devices, err := c.roomService.GetDevices(ctx, input.RoomID)
	if err != nil {
		return fmt.Errorf("failed to get devices: %w", err)
	}

	return c.conns.SendTo(clientID, "DEVICES", map[string]any{"devices": devices})
}
