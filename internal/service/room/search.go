package room

import (
	"context"
	"fmt"

	"github.com/soundroom/server/pkg/spotify"
)

type SongSearchParams struct {
	RoomID string
	Query  string
}

// SongSearch queries the provider for tracks. Results go back to the
// requester only, they are never broadcast.
func (s *Service) SongSearch(ctx context.Context, params *SongSearchParams) ([]spotify.Track, error) {
	h, err := s.getHandle(params.RoomID)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	var tracks []spotify.Track
	if err := s.callWithToken(ctx, h, func(accessToken string) error {
		result, err := s.provider.Search(ctx, accessToken, params.Query)
		if err != nil {
			return err
		}
		tracks = result
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to search songs: %w", err)
	}

	return tracks, nil
}

func (s *Service) GetDevices(ctx context.Context, roomID string) ([]spotify.Device, error) {
	h, err := s.getHandle(roomID)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	var devices []spotify.Device
	if err := s.callWithToken(ctx, h, func(accessToken string) error {
		result, err := s.provider.ListDevices(ctx, accessToken)
		if err != nil {
			return err
		}
		devices = result
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	return devices, nil
}
