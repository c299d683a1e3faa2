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

type Room struct {
	ID              string
	RoomName        string
	RoomType        string
	HostName        string
	ExplicitAllowed bool
	Password        string
	MinVotesToPlay  int
	DownVoteLimit   int
	AudienceSize    int
	AccessToken     string
	RefreshToken    string
	CurrentSong     Song
	Queue           []QueueEntry
}
