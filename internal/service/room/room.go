package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	storeroom "github.com/soundroom/server/internal/repository/room"
)

type CreateRoomParams struct {
	RoomName        string
	RoomType        string
	HostName        string
	ExplicitAllowed bool
	Password        string
	MinVotesToPlay  int
	DownVoteLimit   int
	AccessToken     string
	RefreshToken    string
}

type CreateRoomResponse struct {
	Room      Room
	HostToken string
}

// CreateRoom upserts a room keyed by (name, type, host): creating the same
// triple again reuses the stored identity and resets the live state.
func (s *Service) CreateRoom(ctx context.Context, params *CreateRoomParams) (CreateRoomResponse, error) {
	roomID, err := s.store.GetRoomIDByAttrs(ctx, &storeroom.GetRoomIDByAttrsParams{
		RoomName: params.RoomName,
		RoomType: params.RoomType,
		HostName: params.HostName,
	})
	if err != nil {
		if !errors.Is(err, storeroom.ErrRoomNotFound) {
			s.logger.Warn("failed to look up room identity", "error", err)
		}
		roomID = uuid.NewString()
	}

	st := newRoomState(roomID, params)

	hostToken, err := s.generateHostToken(roomID, params.HostName)
	if err != nil {
		return CreateRoomResponse{}, fmt.Errorf("failed to generate host token: %w", err)
	}

	// creation is persisted synchronously: the identity index must be
	// durable before this returns, or a repeat create for the same
	// (name, type, host) would mint a second id
	if err := s.store.SetRoom(ctx, &storeroom.SetRoomParams{
		ID:              roomID,
		RoomName:        params.RoomName,
		RoomType:        params.RoomType,
		HostName:        params.HostName,
		ExplicitAllowed: params.ExplicitAllowed,
		Password:        params.Password,
		MinVotesToPlay:  params.MinVotesToPlay,
		DownVoteLimit:   params.DownVoteLimit,
		AudienceSize:    0,
		AccessToken:     params.AccessToken,
		RefreshToken:    params.RefreshToken,
		CurrentSong:     toStoreSong(st.currentSong),
		Queue:           []storeroom.QueueEntry{},
	}); err != nil {
		return CreateRoomResponse{}, fmt.Errorf("failed to persist room: %w", err)
	}

	h := s.registry.put(roomID, st)

	h.mu.Lock()
	defer h.mu.Unlock()

	snapshot := st.snapshot()
	s.bus.BroadcastGlobal(EventRoomCreated, snapshot)

	s.logger.InfoContext(ctx, "room created", "room_id", roomID, "room_name", params.RoomName)

	return CreateRoomResponse{Room: snapshot, HostToken: hostToken}, nil
}

type JoinRoomParams struct {
	ClientID string
	RoomID   string
}

func (s *Service) JoinRoom(ctx context.Context, params *JoinRoomParams) (Room, error) {
	h, err := s.getHandle(params.RoomID)
	if err != nil {
		return Room{}, err
	}

	if err := s.bus.JoinChannel(params.ClientID, params.RoomID); err != nil {
		return Room{}, fmt.Errorf("failed to join channel: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	d := delta{kind: deltaJoin}
	ev, err := h.state.apply(d)
	if err != nil {
		return Room{}, err
	}
	s.bus.Broadcast(params.RoomID, ev.Name, ev.Payload)
	s.mirrorDelta(h.state, d)

	return h.state.snapshot(), nil
}

type LeaveRoomParams struct {
	ClientID string
	RoomID   string
}

func (s *Service) LeaveRoom(ctx context.Context, params *LeaveRoomParams) error {
	h, err := s.getHandle(params.RoomID)
	if err != nil {
		return err
	}

	h.mu.Lock()
	d := delta{kind: deltaLeave}
	ev, err := h.state.apply(d)
	if err != nil {
		h.mu.Unlock()
		return err
	}
	s.bus.Broadcast(params.RoomID, ev.Name, ev.Payload)
	s.mirrorDelta(h.state, d)
	h.mu.Unlock()

	if err := s.bus.LeaveChannel(params.ClientID, params.RoomID); err != nil {
		s.logger.DebugContext(ctx, "failed to leave channel", "client_id", params.ClientID, "error", err)
	}

	return nil
}

// CloseRoom stops the room's poller, removes the persisted document, evicts
// the live state and announces the closure to everyone.
func (s *Service) CloseRoom(ctx context.Context, roomID string) error {
	h, err := s.getHandle(roomID)
	if err != nil {
		return err
	}

	h.mu.Lock()
	s.stopPoller(h)
	ev, err := h.state.apply(delta{kind: deltaClose})
	if err != nil {
		h.mu.Unlock()
		return err
	}
	h.mu.Unlock()

	s.registry.remove(roomID)
	s.bus.BroadcastGlobal(ev.Name, ev.Payload)

	s.mirror(roomID, func(ctx context.Context) error {
		err := s.store.RemoveRoom(ctx, roomID)
		if errors.Is(err, storeroom.ErrRoomNotFound) {
			return nil
		}
		return err
	})

	s.logger.InfoContext(ctx, "room closed", "room_id", roomID)

	return nil
}

// GetRoom prefers the live state; rooms only present in the store (from a
// previous process) are served from the mirror.
func (s *Service) GetRoom(ctx context.Context, roomID string) (Room, error) {
	if h, ok := s.registry.get(roomID); ok {
		h.mu.Lock()
		defer h.mu.Unlock()
		return h.state.snapshot(), nil
	}

	stored, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, storeroom.ErrRoomNotFound) {
			return Room{}, ErrRoomNotFound
		}
		return Room{}, fmt.Errorf("failed to get room: %w", err)
	}

	return fromStoreRoom(stored), nil
}

func (s *Service) GetRooms(ctx context.Context) ([]Room, error) {
	ids := s.registry.ids()
	seen := make(map[string]struct{}, len(ids))

	rooms := make([]Room, 0, len(ids))
	for _, roomID := range ids {
		room, err := s.GetRoom(ctx, roomID)
		if err != nil {
			continue
		}
		rooms = append(rooms, room)
		seen[roomID] = struct{}{}
	}

	storedIDs, err := s.store.GetRoomIDs(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to list stored rooms", "error", err)
		return rooms, nil
	}

	for _, roomID := range storedIDs {
		if _, ok := seen[roomID]; ok {
			continue
		}
		room, err := s.GetRoom(ctx, roomID)
		if err != nil {
			continue
		}
		rooms = append(rooms, room)
	}

	return rooms, nil
}
