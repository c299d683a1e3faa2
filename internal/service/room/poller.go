package room

import (
	"context"
	"time"
)

// playbackSession is the transient per-room poller state. One session exists
// per room with active playback; starting a new one replaces and cancels the
// previous session, so a scheduled poll can never outlive its room.
type playbackSession struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// startPoller begins polling provider playback state for the room. The room
// lock must be held.
func (s *Service) startPoller(h *roomHandle) {
	s.stopPoller(h)

	ctx, cancel := context.WithCancel(context.Background())
	session := &playbackSession{cancel: cancel, done: make(chan struct{})}
	h.session = session

	go s.pollLoop(ctx, h.state.id, session)
}

// stopPoller cancels the room's playback session, if any. The room lock must
// be held.
func (s *Service) stopPoller(h *roomHandle) {
	if h.session != nil {
		h.session.cancel()
		h.session = nil
	}
}

// pollLoop waits FirstPollDelay once, then polls on PollInterval while the
// provider reports playback. A progress reset to zero means the song ended;
// not-playing without the reset means it was paused.
func (s *Service) pollLoop(ctx context.Context, roomID string, session *playbackSession) {
	defer close(session.done)

	timer := time.NewTimer(s.firstPollDelay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if !s.pollOnce(ctx, roomID, session) {
			return
		}

		timer.Reset(s.pollInterval)
	}
}

// pollOnce applies a single poll result under the room lock and reports
// whether polling should continue. The session is re-checked against the
// handle after the lock is taken: a poll whose session was cancelled or
// replaced while it waited must not mutate the room.
func (s *Service) pollOnce(ctx context.Context, roomID string, session *playbackSession) bool {
	h, ok := s.registry.get(roomID)
	if !ok {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.session != session || ctx.Err() != nil {
		return false
	}

	var state playbackState
	err := s.callWithToken(ctx, h, func(accessToken string) error {
		providerState, err := s.provider.GetPlaybackState(ctx, accessToken)
		if err != nil {
			return err
		}
		state = playbackState{isPlaying: providerState.IsPlaying, progressMs: providerState.ProgressMs}
		return nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "playback poll failed", "room_id", roomID, "error", err)
		// playback is no longer tracked; members hear about it
		h.session = nil
		s.bus.Broadcast(roomID, EventMusicPaused, map[string]any{"room_id": roomID})
		return false
	}

	if h.session != session || ctx.Err() != nil {
		return false
	}

	switch {
	case state.isPlaying:
		return true

	case state.progressMs == 0:
		// song ended
		h.session = nil
		s.advanceQueue(ctx, h)
		return false

	default:
		// paused mid-song
		h.session = nil
		s.bus.Broadcast(roomID, EventMusicPaused, map[string]any{"room_id": roomID})
		return false
	}
}

type playbackState struct {
	isPlaying  bool
	progressMs int
}
