package spotify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(apiURL, accountsURL string) *Client {
	return NewClient(&Config{
		ClientID:        "client-id",
		ClientSecret:    "client-secret",
		APIBaseURL:      apiURL,
		AccountsBaseURL: accountsURL,
	})
}

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/search", r.URL.Path)
		assert.Equal(t, "track:daft punk", r.URL.Query().Get("q"))
		assert.Equal(t, "track", r.URL.Query().Get("type"))
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]any{
			"tracks": map[string]any{
				"items": []map[string]any{
					{
						"id":   "t1",
						"name": "One More Time",
						"uri":  "spotify:track:t1",
						"artists": []map[string]any{
							{"name": "Daft Punk"},
							{"name": "Romanthony"},
						},
						"album": map[string]any{
							"images": []map[string]any{
								{"url": "https://img/640"},
								{"url": "https://img/300"},
							},
						},
					},
					{
						"id":   "t2",
						"name": "Instrumental",
						"uri":  "spotify:track:t2",
					},
				},
			},
		})
	}))
	defer srv.Close()

	c := testClient(srv.URL, "")

	tracks, err := c.Search(context.Background(), "token", "daft punk")
	require.NoError(t, err)
	require.Len(t, tracks, 2)

	assert.Equal(t, Track{
		ID:       "t1",
		Name:     "One More Time",
		Artist:   "Daft Punk",
		CoverArt: "https://img/640",
		URI:      "spotify:track:t1",
	}, tracks[0])

	// missing artists and images must not panic
	assert.Empty(t, tracks[1].Artist)
	assert.Empty(t, tracks[1].CoverArt)
}

func TestUnauthorizedMapsToExpiredToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := testClient(srv.URL, "")

	_, err := c.Search(context.Background(), "stale", "query")
	assert.ErrorIs(t, err, ErrExpiredToken)

	err = c.Play(context.Background(), "stale", []string{"spotify:track:t1"})
	assert.ErrorIs(t, err, ErrExpiredToken)

	_, err = c.GetPlaybackState(context.Background(), "stale")
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestPlay(t *testing.T) {
	var gotBody map[string]any
	var gotMethod, gotPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotBody = nil
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := testClient(srv.URL, "")

	err := c.Play(context.Background(), "token", []string{"spotify:track:t1"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/v1/me/player/play", gotPath)
	assert.Equal(t, map[string]any{"uris": []any{"spotify:track:t1"}}, gotBody)

	// resume sends no body
	err = c.Play(context.Background(), "token", nil)
	require.NoError(t, err)
	assert.Nil(t, gotBody)
}

func TestGetPlaybackState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/me/player", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"is_playing": true, "progress_ms": 42000})
	}))
	defer srv.Close()

	c := testClient(srv.URL, "")

	state, err := c.GetPlaybackState(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, PlaybackState{IsPlaying: true, ProgressMs: 42000}, state)
}

func TestListDevices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/me/player/devices", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"devices": []map[string]any{
				{"id": "d1", "name": "Kitchen", "type": "Speaker", "is_active": true},
			},
		})
	}))
	defer srv.Close()

	c := testClient(srv.URL, "")

	devices, err := c.ListDevices(context.Background(), "token")
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, Device{ID: "d1", Name: "Kitchen", Type: "Speaker", IsActive: true}, devices[0])
}

func TestRefreshAccessToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/token", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		// Basic auth carries the app credentials, not the user token
		assert.Equal(t, "Basic Y2xpZW50LWlkOmNsaWVudC1zZWNyZXQ=", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "refresh-me", r.PostForm.Get("refresh_token"))

		json.NewEncoder(w).Encode(map[string]any{"access_token": "fresh-token"})
	}))
	defer srv.Close()

	c := testClient("", srv.URL)

	token, err := c.RefreshAccessToken(context.Background(), "refresh-me")
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)
}

func TestRefreshAccessTokenFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := testClient("", srv.URL)

	_, err := c.RefreshAccessToken(context.Background(), "revoked")
	assert.Error(t, err)
}
