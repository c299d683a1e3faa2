package room

import "fmt"

// Broadcast event types. Room-scoped unless noted.
const (
	EventRoomCreated         = "ROOM_CREATED" // global
	EventRoomClosed          = "ROOM_CLOSED"  // global
	EventAudienceSizeChanged = "AUDIENCE_SIZE_CHANGED"
	EventSongAdded           = "SONG_ADDED"
	EventSongRemoved         = "SONG_REMOVED"
	EventSongRankChanged     = "SONG_RANK_CHANGED"
	EventSongPlayed          = "SONG_PLAYED"
	EventCurrentSongCleared  = "CURRENT_SONG_CLEARED"
	EventTokenUpdated        = "TOKEN_UPDATED"
	EventMusicStopped        = "MUSIC_STOPPED"
	EventMusicPaused         = "MUSIC_PAUSED"
)

const noCurrentSong = "no current song"

func placeholderSong() Song {
	return Song{
		SongName:   noCurrentSong,
		ArtistName: noCurrentSong,
	}
}

type deltaKind int

const (
	deltaJoin deltaKind = iota
	deltaLeave
	deltaAddSong
	deltaRemoveSong
	deltaVote
	deltaSetCurrentSong
	deltaClearCurrentSong
	deltaClose
)

type delta struct {
	kind      deltaKind
	song      Song
	songID    string
	direction int
}

// Event is the outward shape of an applied delta. Persistence and broadcast
// both observe the event's payload, never diverging copies of the state.
type Event struct {
	Name    string
	Payload any
}

// roomState is the authoritative in-memory representation of one room.
// All access goes through the owning roomHandle's lock.
type roomState struct {
	id           string
	roomName     string
	roomType     string
	hostName     string
	settings     Settings
	audienceSize int
	currentSong  Song
	queue        rankedQueue
	creds        Credentials
}

func newRoomState(id string, params *CreateRoomParams) *roomState {
	return &roomState{
		id:       id,
		roomName: params.RoomName,
		roomType: params.RoomType,
		hostName: params.HostName,
		settings: Settings{
			ExplicitAllowed: params.ExplicitAllowed,
			Password:        params.Password,
			MinVotesToPlay:  params.MinVotesToPlay,
			DownVoteLimit:   params.DownVoteLimit,
		},
		currentSong: placeholderSong(),
		creds: Credentials{
			AccessToken:  params.AccessToken,
			RefreshToken: params.RefreshToken,
		},
	}
}

func (st *roomState) snapshot() Room {
	return Room{
		ID:           st.id,
		RoomName:     st.roomName,
		RoomType:     st.roomType,
		HostName:     st.hostName,
		Settings:     st.settings,
		AudienceSize: st.audienceSize,
		CurrentSong:  st.currentSong,
		Queue:        st.queue.list(),
	}
}

// apply is the single mutation entry point for a room. It either fully
// commits the delta and returns the event to broadcast, or leaves the state
// untouched and returns an error.
func (st *roomState) apply(d delta) (Event, error) {
	switch d.kind {
	case deltaJoin:
		st.audienceSize++
		return Event{
			Name:    EventAudienceSizeChanged,
			Payload: map[string]any{"room_id": st.id, "audience_size": st.audienceSize},
		}, nil

	case deltaLeave:
		if st.audienceSize > 0 {
			st.audienceSize--
		}
		return Event{
			Name:    EventAudienceSizeChanged,
			Payload: map[string]any{"room_id": st.id, "audience_size": st.audienceSize},
		}, nil

	case deltaAddSong:
		entry := st.queue.add(d.song)
		return Event{
			Name:    EventSongAdded,
			Payload: map[string]any{"room_id": st.id, "song": entry, "queue": st.queue.list()},
		}, nil

	case deltaRemoveSong:
		st.queue.remove(d.songID)
		return Event{
			Name:    EventSongRemoved,
			Payload: map[string]any{"room_id": st.id, "song_id": d.songID, "queue": st.queue.list()},
		}, nil

	case deltaVote:
		st.queue.adjustRank(d.songID, d.direction)
		return Event{
			Name:    EventSongRankChanged,
			Payload: map[string]any{"room_id": st.id, "song_id": d.songID, "queue": st.queue.list()},
		}, nil

	case deltaSetCurrentSong:
		st.currentSong = d.song
		return Event{
			Name:    EventSongPlayed,
			Payload: map[string]any{"room_id": st.id, "current_song": st.currentSong, "queue": st.queue.list()},
		}, nil

	case deltaClearCurrentSong:
		st.currentSong = placeholderSong()
		return Event{
			Name:    EventCurrentSongCleared,
			Payload: map[string]any{"room_id": st.id, "current_song": st.currentSong},
		}, nil

	case deltaClose:
		return Event{
			Name:    EventRoomClosed,
			Payload: map[string]any{"room_id": st.id},
		}, nil
	}

	return Event{}, fmt.Errorf("unknown delta kind %d", d.kind)
}
