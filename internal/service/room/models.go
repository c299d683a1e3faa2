package room

type Song struct {
	SongID     string `json:"song_id"`
	SongName   string `json:"song_name"`
	ArtistName string `json:"artist_name"`
	CoverArt   string `json:"cover_art"`
	URI        string `json:"uri"`
}

type QueueEntry struct {
	Song
	Rank int `json:"rank"`
}

type Settings struct {
	ExplicitAllowed bool   `json:"explicit_allowed"`
	Password        string `json:"password,omitempty"`
	MinVotesToPlay  int    `json:"min_votes_to_play"`
	DownVoteLimit   int    `json:"down_vote_limit"`
}

type Credentials struct {
	AccessToken  string
	RefreshToken string
}

// Room is the outward snapshot of a room, shared by broadcasts and the REST
// surface.
type Room struct {
	ID           string       `json:"id"`
	RoomName     string       `json:"room_name"`
	RoomType     string       `json:"room_type"`
	HostName     string       `json:"host_name"`
	Settings     Settings     `json:"settings"`
	AudienceSize int          `json:"audience_size"`
	CurrentSong  Song         `json:"current_song"`
	Queue        []QueueEntry `json:"queue"`
}

const (
	RoomTypePublic  = "public"
	RoomTypePrivate = "private"
)
