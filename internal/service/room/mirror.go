package room

import (
	"context"

	storeroom "github.com/soundroom/server/internal/repository/room"
)

// The store holds a durable mirror of the live room state. Mirror writes run
// on a detached context after the broadcast so a slow or failing store never
// blocks coordination; failures are logged and the live state stays
// authoritative.

func (s *Service) mirror(roomID string, write func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.mirrorTimeout)
		defer cancel()

		if err := write(ctx); err != nil {
			s.logger.Warn("failed to mirror room state", "room_id", roomID, "error", err)
		}
	}()
}

func (s *Service) mirrorDelta(st *roomState, d delta) {
	roomID := st.id

	switch d.kind {
	case deltaJoin, deltaLeave:
		audienceSize := st.audienceSize
		s.mirror(roomID, func(ctx context.Context) error {
			return s.store.UpdateAudienceSize(ctx, roomID, audienceSize)
		})

	case deltaAddSong, deltaRemoveSong, deltaVote:
		queue := toStoreQueue(st.queue.list())
		s.mirror(roomID, func(ctx context.Context) error {
			return s.store.SetQueue(ctx, roomID, queue)
		})

	case deltaSetCurrentSong, deltaClearCurrentSong:
		currentSong := toStoreSong(st.currentSong)
		queue := toStoreQueue(st.queue.list())
		s.mirror(roomID, func(ctx context.Context) error {
			if err := s.store.UpdateCurrentSong(ctx, roomID, currentSong); err != nil {
				return err
			}
			return s.store.SetQueue(ctx, roomID, queue)
		})
	}
}

func toStoreSong(song Song) storeroom.Song {
	return storeroom.Song{
		SongID:     song.SongID,
		SongName:   song.SongName,
		ArtistName: song.ArtistName,
		CoverArt:   song.CoverArt,
		URI:        song.URI,
	}
}

func fromStoreSong(song storeroom.Song) Song {
	return Song{
		SongID:     song.SongID,
		SongName:   song.SongName,
		ArtistName: song.ArtistName,
		CoverArt:   song.CoverArt,
		URI:        song.URI,
	}
}

func toStoreQueue(queue []QueueEntry) []storeroom.QueueEntry {
	entries := make([]storeroom.QueueEntry, 0, len(queue))
	for _, entry := range queue {
		entries = append(entries, storeroom.QueueEntry{Song: toStoreSong(entry.Song), Rank: entry.Rank})
	}

	return entries
}

func fromStoreRoom(stored storeroom.Room) Room {
	queue := make([]QueueEntry, 0, len(stored.Queue))
	for _, entry := range stored.Queue {
		queue = append(queue, QueueEntry{Song: fromStoreSong(entry.Song), Rank: entry.Rank})
	}

	return Room{
		ID:       stored.ID,
		RoomName: stored.RoomName,
		RoomType: stored.RoomType,
		HostName: stored.HostName,
		Settings: Settings{
			ExplicitAllowed: stored.ExplicitAllowed,
			Password:        stored.Password,
			MinVotesToPlay:  stored.MinVotesToPlay,
			DownVoteLimit:   stored.DownVoteLimit,
		},
		AudienceSize: stored.AudienceSize,
		CurrentSong:  fromStoreSong(stored.CurrentSong),
		Queue:        queue,
	}
}
