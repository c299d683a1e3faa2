package room

import (
	"context"
	"errors"
	"fmt"
)

type PlaySongParams struct {
	RoomID string
	// Song to play. Nil advances the queue: the highest-ranked entry is
	// popped and played, or playback resumes if the queue is empty and a
	// current song is set.
	Song *Song
}

type PlaySongResponse struct {
	CurrentSong Song
	Queue       []QueueEntry
}

func (s *Service) PlaySong(ctx context.Context, params *PlaySongParams) (PlaySongResponse, error) {
	h, err := s.getHandle(params.RoomID)
	if err != nil {
		return PlaySongResponse{}, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	st := h.state

	var song Song
	switch {
	case params.Song != nil:
		song = *params.Song

	default:
		// sort first so a vote that just landed still decides what plays
		st.queue.sort()
		entry, err := st.queue.front()
		if err != nil {
			if st.currentSong.URI != "" {
				return s.resumeSong(ctx, h)
			}
			return PlaySongResponse{}, err
		}
		song = entry.Song
	}

	if err := s.callWithToken(ctx, h, func(accessToken string) error {
		return s.provider.Play(ctx, accessToken, []string{song.URI})
	}); err != nil {
		return PlaySongResponse{}, fmt.Errorf("failed to play song: %w", err)
	}

	// dequeue only once the provider accepted the play, so a failed call
	// leaves the queue exactly as every member last saw it
	st.queue.remove(song.SongID)

	d := delta{kind: deltaSetCurrentSong, song: song}
	ev, err := st.apply(d)
	if err != nil {
		return PlaySongResponse{}, err
	}
	s.bus.Broadcast(params.RoomID, ev.Name, ev.Payload)
	s.mirrorDelta(st, d)

	s.startPoller(h)

	return PlaySongResponse{CurrentSong: st.currentSong, Queue: st.queue.list()}, nil
}

// resumeSong restarts provider playback of the current song without touching
// the queue. The room lock must be held.
func (s *Service) resumeSong(ctx context.Context, h *roomHandle) (PlaySongResponse, error) {
	st := h.state

	if err := s.callWithToken(ctx, h, func(accessToken string) error {
		return s.provider.Play(ctx, accessToken, nil)
	}); err != nil {
		return PlaySongResponse{}, fmt.Errorf("failed to resume song: %w", err)
	}

	s.bus.Broadcast(st.id, EventSongPlayed, map[string]any{
		"room_id":      st.id,
		"current_song": st.currentSong,
		"queue":        st.queue.list(),
	})

	s.startPoller(h)

	return PlaySongResponse{CurrentSong: st.currentSong, Queue: st.queue.list()}, nil
}

func (s *Service) ClearCurrentSong(ctx context.Context, roomID string) (Song, error) {
	h, err := s.getHandle(roomID)
	if err != nil {
		return Song{}, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	d := delta{kind: deltaClearCurrentSong}
	ev, err := h.state.apply(d)
	if err != nil {
		return Song{}, err
	}
	s.bus.Broadcast(roomID, ev.Name, ev.Payload)
	s.mirrorDelta(h.state, d)

	return h.state.currentSong, nil
}

// advanceQueue plays the next queued song after the current one ended, or
// stops playback when the queue is empty. The room lock must be held.
func (s *Service) advanceQueue(ctx context.Context, h *roomHandle) {
	st := h.state

	st.queue.sort()
	entry, err := st.queue.front()
	if err != nil {
		if !errors.Is(err, ErrEmptyQueue) {
			s.logger.WarnContext(ctx, "failed to advance queue", "room_id", st.id, "error", err)
			return
		}

		d := delta{kind: deltaClearCurrentSong}
		ev, err := st.apply(d)
		if err != nil {
			return
		}
		s.bus.Broadcast(st.id, ev.Name, ev.Payload)
		s.bus.Broadcast(st.id, EventMusicStopped, map[string]any{"room_id": st.id})
		s.mirrorDelta(st, d)
		return
	}

	if err := s.callWithToken(ctx, h, func(accessToken string) error {
		return s.provider.Play(ctx, accessToken, []string{entry.URI})
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to play next song", "room_id", st.id, "error", err)
		return
	}

	st.queue.remove(entry.SongID)

	d := delta{kind: deltaSetCurrentSong, song: entry.Song}
	ev, err := st.apply(d)
	if err != nil {
		return
	}
	s.bus.Broadcast(st.id, ev.Name, ev.Payload)
	s.mirrorDelta(st, d)

	s.startPoller(h)
}
