package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/soundroom/server/pkg/spotify"
)

// callWithToken runs fn with the room's current access token. When the
// provider signals an expired token it refreshes exactly once: the new token
// replaces the room's credentials, is mirrored to the store, is broadcast to
// the room so client-held copies stay consistent, and fn is retried once.
// A failure after the retry is terminal (ErrProviderFatal).
//
// Callers must hold the room's lock.
func (s *Service) callWithToken(ctx context.Context, h *roomHandle, fn func(accessToken string) error) error {
	st := h.state
	if st.creds.AccessToken == "" {
		return ErrNoAccessToken
	}

	err := fn(st.creds.AccessToken)
	if err == nil || !errors.Is(err, spotify.ErrExpiredToken) {
		return err
	}

	s.logger.InfoContext(ctx, "access token expired, refreshing", "room_id", st.id)

	accessToken, err := s.refreshAccessToken(ctx, st.id, st.creds.RefreshToken)
	if err != nil {
		return fmt.Errorf("%w: refresh failed: %v", ErrProviderFatal, err)
	}

	st.creds.AccessToken = accessToken
	s.bus.Broadcast(st.id, EventTokenUpdated, map[string]any{"room_id": st.id, "access_token": accessToken})
	roomID := st.id
	s.mirror(roomID, func(ctx context.Context) error {
		return s.store.UpdateAccessToken(ctx, roomID, accessToken)
	})

	if err := fn(accessToken); err != nil {
		if errors.Is(err, spotify.ErrExpiredToken) {
			return fmt.Errorf("%w: token rejected after refresh", ErrProviderFatal)
		}
		return err
	}

	return nil
}

// refreshAccessToken exchanges the refresh token for a new access token.
// Concurrent refreshes for the same room collapse into one provider call;
// late callers wait for the in-flight result instead of refreshing again.
func (s *Service) refreshAccessToken(ctx context.Context, roomID string, refreshToken string) (string, error) {
	v, err, _ := s.refreshGroup.Do(roomID, func() (any, error) {
		return s.provider.RefreshAccessToken(ctx, refreshToken)
	})
	if err != nil {
		return "", err
	}

	return v.(string), nil
}
