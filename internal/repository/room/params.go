package room

type SetRoomParams struct {
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

type GetRoomIDByAttrsParams struct {
	RoomName string
	RoomType string
	HostName string
}
