package room

import (
	"context"
	"slices"
)

type AddSongParams struct {
	RoomID string
	Song   Song
}

func (s *Service) AddSong(ctx context.Context, params *AddSongParams) (QueueEntry, error) {
	h, err := s.getHandle(params.RoomID)
	if err != nil {
		return QueueEntry{}, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state.queue.len() >= s.queueLimit {
		return QueueEntry{}, ErrQueueLimitReached
	}

	d := delta{kind: deltaAddSong, song: params.Song}
	ev, err := h.state.apply(d)
	if err != nil {
		return QueueEntry{}, err
	}
	s.bus.Broadcast(params.RoomID, ev.Name, ev.Payload)
	s.mirrorDelta(h.state, d)

	return QueueEntry{Song: params.Song, Rank: 0}, nil
}

type RemoveSongParams struct {
	RoomID string
	SongID string
}

// RemoveSong is idempotent: removing a song that is not queued succeeds and
// leaves the queue unchanged.
func (s *Service) RemoveSong(ctx context.Context, params *RemoveSongParams) error {
	h, err := s.getHandle(params.RoomID)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	d := delta{kind: deltaRemoveSong, songID: params.SongID}
	ev, err := h.state.apply(d)
	if err != nil {
		return err
	}
	s.bus.Broadcast(params.RoomID, ev.Name, ev.Payload)
	s.mirrorDelta(h.state, d)

	return nil
}

const (
	RankDirectionInc = "inc"
	RankDirectionDec = "dec"
)

type ChangeSongRankParams struct {
	RoomID    string
	SongID    string
	Direction string
}

// ChangeSongRank votes a queued song up or down and re-sorts the queue.
// Voting for a song that is no longer queued is a no-op, so a vote racing a
// removal still succeeds.
func (s *Service) ChangeSongRank(ctx context.Context, params *ChangeSongRankParams) error {
	h, err := s.getHandle(params.RoomID)
	if err != nil {
		return err
	}

	direction := 1
	if params.Direction == RankDirectionDec {
		direction = -1
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	d := delta{kind: deltaVote, songID: params.SongID, direction: direction}
	ev, err := h.state.apply(d)
	if err != nil {
		return err
	}
	s.bus.Broadcast(params.RoomID, ev.Name, ev.Payload)
	s.mirrorDelta(h.state, d)

	return nil
}

// Queue returns the room's pending songs ordered by descending rank.
func (s *Service) Queue(ctx context.Context, roomID string) ([]QueueEntry, error) {
	h, err := s.getHandle(roomID)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	return slices.Collect(h.state.queue.sorted()), nil
}
