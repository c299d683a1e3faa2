package room

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	storeroom "github.com/soundroom/server/internal/repository/room"
	"github.com/soundroom/server/pkg/spotify"
)

type iRoomStore interface {
	SetRoom(context.Context, *storeroom.SetRoomParams) error
	GetRoom(context.Context, string) (storeroom.Room, error)
	GetRoomIDByAttrs(context.Context, *storeroom.GetRoomIDByAttrsParams) (string, error)
	GetRoomIDs(context.Context) ([]string, error)
	RemoveRoom(context.Context, string) error
	SetQueue(ctx context.Context, roomID string, queue []storeroom.QueueEntry) error
	UpdateAudienceSize(ctx context.Context, roomID string, audienceSize int) error
	UpdateAccessToken(ctx context.Context, roomID string, accessToken string) error
	UpdateCurrentSong(ctx context.Context, roomID string, currentSong storeroom.Song) error
}

type iRoomBus interface {
	Broadcast(roomID string, event string, payload any)
	BroadcastGlobal(event string, payload any)
	JoinChannel(clientID string, roomID string) error
	LeaveChannel(clientID string, roomID string) error
}

type iMusicProvider interface {
	Search(ctx context.Context, accessToken string, query string) ([]spotify.Track, error)
	ListDevices(ctx context.Context, accessToken string) ([]spotify.Device, error)
	Play(ctx context.Context, accessToken string, uris []string) error
	GetPlaybackState(ctx context.Context, accessToken string) (spotify.PlaybackState, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, error)
}

type Config struct {
	Secret     string
	QueueLimit int
	// PollInterval is the cadence of playback polls while a song is playing.
	PollInterval time.Duration
	// FirstPollDelay is the one-time delay between issuing a play command and
	// the first poll, so the provider's state has settled.
	FirstPollDelay time.Duration
	MirrorTimeout  time.Duration
}

type Service struct {
	store    iRoomStore
	bus      iRoomBus
	provider iMusicProvider
	logger   *slog.Logger

	registry     *registry
	refreshGroup singleflight.Group

	secret         string
	queueLimit     int
	pollInterval   time.Duration
	firstPollDelay time.Duration
	mirrorTimeout  time.Duration
}

func NewService(store iRoomStore, bus iRoomBus, provider iMusicProvider, logger *slog.Logger, cfg *Config) *Service {
	s := Service{
		store:          store,
		bus:            bus,
		provider:       provider,
		logger:         logger,
		registry:       newRegistry(),
		secret:         cfg.Secret,
		queueLimit:     cfg.QueueLimit,
		pollInterval:   cfg.PollInterval,
		firstPollDelay: cfg.FirstPollDelay,
		mirrorTimeout:  cfg.MirrorTimeout,
	}

	if s.queueLimit <= 0 {
		s.queueLimit = 50
	}
	if s.pollInterval <= 0 {
		s.pollInterval = time.Second
	}
	if s.firstPollDelay <= 0 {
		s.firstPollDelay = 500 * time.Millisecond
	}
	if s.mirrorTimeout <= 0 {
		s.mirrorTimeout = 5 * time.Second
	}

	return &s
}

// getHandle resolves a room id to its handle.
func (s *Service) getHandle(roomID string) (*roomHandle, error) {
	h, ok := s.registry.get(roomID)
	if !ok {
		return nil, ErrRoomNotFound
	}

	return h, nil
}
