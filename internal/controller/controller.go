package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/soundroom/server/internal/service/room"
	"github.com/soundroom/server/pkg/spotify"
	"github.com/soundroom/server/pkg/validator"
	"github.com/soundroom/server/pkg/wsrouter"
)

type iRoomService interface {
	CreateRoom(context.Context, *room.CreateRoomParams) (room.CreateRoomResponse, error)
	JoinRoom(context.Context, *room.JoinRoomParams) (room.Room, error)
	LeaveRoom(context.Context, *room.LeaveRoomParams) error
	CloseRoom(ctx context.Context, roomID string) error
	AddSong(context.Context, *room.AddSongParams) (room.QueueEntry, error)
	RemoveSong(context.Context, *room.RemoveSongParams) error
	ChangeSongRank(context.Context, *room.ChangeSongRankParams) error
	PlaySong(context.Context, *room.PlaySongParams) (room.PlaySongResponse, error)
	ClearCurrentSong(ctx context.Context, roomID string) (room.Song, error)
	SongSearch(context.Context, *room.SongSearchParams) ([]spotify.Track, error)
	GetDevices(ctx context.Context, roomID string) ([]spotify.Device, error)
	GetRoom(ctx context.Context, roomID string) (room.Room, error)
	GetRooms(context.Context) ([]room.Room, error)
	VerifyHostToken(tokenString string, roomID string) error
}

type iConnRepo interface {
	Add(conn *websocket.Conn, clientID string) error
	RemoveByClientID(clientID string) error
	SendTo(clientID string, event string, payload any) error
}

type controller struct {
	roomService iRoomService
	conns       iConnRepo
	upgrader    websocket.Upgrader
	validate    *validator.Validator
	wsmux       *wsrouter.WSRouter
	logger      *slog.Logger
}

func NewController(roomService iRoomService, conns iConnRepo, logger *slog.Logger) *controller {
	c := controller{
		roomService: roomService,
		conns:       conns,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		validate: validator.NewValidator(),
		logger:   logger,
	}
	c.wsmux = c.getWSRouter()

	return &c
}
