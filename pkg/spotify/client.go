package spotify

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultAPIBaseURL      = "https://api.spotify.com"
	defaultAccountsBaseURL = "https://accounts.spotify.com"
)

// ErrExpiredToken signals that the access token was rejected and has to be
// refreshed before the call can be retried.
var ErrExpiredToken = errors.New("spotify: access token expired or invalid")

type Config struct {
	ClientID     string
	ClientSecret string
	// APIBaseURL and AccountsBaseURL override the Spotify endpoints, used in tests.
	APIBaseURL      string
	AccountsBaseURL string
	HTTPClient      *http.Client
}

type Client struct {
	clientID        string
	clientSecret    string
	apiBaseURL      string
	accountsBaseURL string
	httpClient      *http.Client
}

func NewClient(cfg *Config) *Client {
	c := Client{
		clientID:        cfg.ClientID,
		clientSecret:    cfg.ClientSecret,
		apiBaseURL:      cfg.APIBaseURL,
		accountsBaseURL: cfg.AccountsBaseURL,
		httpClient:      cfg.HTTPClient,
	}
	if c.apiBaseURL == "" {
		c.apiBaseURL = defaultAPIBaseURL
	}
	if c.accountsBaseURL == "" {
		c.accountsBaseURL = defaultAccountsBaseURL
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &c
}

type Track struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Artist   string `json:"artist"`
	CoverArt string `json:"cover_art"`
	URI      string `json:"uri"`
}

type Device struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	IsActive bool   `json:"is_active"`
}

type PlaybackState struct {
	IsPlaying  bool `json:"is_playing"`
	ProgressMs int  `json:"progress_ms"`
}

func (c *Client) Search(ctx context.Context, accessToken string, query string) ([]Track, error) {
	q := url.Values{}
	q.Set("q", "track:"+query)
	q.Set("type", "track")

	var body struct {
		Tracks struct {
			Items []struct {
				ID      string `json:"id"`
				Name    string `json:"name"`
				URI     string `json:"uri"`
				Artists []struct {
					Name string `json:"name"`
				} `json:"artists"`
				Album struct {
					Images []struct {
						URL string `json:"url"`
					} `json:"images"`
				} `json:"album"`
			} `json:"items"`
		} `json:"tracks"`
	}
	if err := c.doAPI(ctx, http.MethodGet, "/v1/search?"+q.Encode(), accessToken, nil, &body); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	tracks := make([]Track, 0, len(body.Tracks.Items))
	for _, item := range body.Tracks.Items {
		track := Track{
			ID:   item.ID,
			Name: item.Name,
			URI:  item.URI,
		}
		if len(item.Artists) > 0 {
			track.Artist = item.Artists[0].Name
		}
		if len(item.Album.Images) > 0 {
			track.CoverArt = item.Album.Images[0].URL
		}
		tracks = append(tracks, track)
	}

	return tracks, nil
}

func (c *Client) ListDevices(ctx context.Context, accessToken string) ([]Device, error) {
	var body struct {
		Devices []Device `json:"devices"`
	}
	if err := c.doAPI(ctx, http.MethodGet, "/v1/me/player/devices", accessToken, nil, &body); err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}

	return body.Devices, nil
}

// Play starts playback of the given track URIs on the active device. With no
// URIs it resumes whatever the player was paused on.
func (c *Client) Play(ctx context.Context, accessToken string, uris []string) error {
	var reqBody any
	if len(uris) > 0 {
		reqBody = map[string]any{"uris": uris}
	}

	if err := c.doAPI(ctx, http.MethodPut, "/v1/me/player/play", accessToken, reqBody, nil); err != nil {
		return fmt.Errorf("play: %w", err)
	}

	return nil
}

func (c *Client) GetPlaybackState(ctx context.Context, accessToken string) (PlaybackState, error) {
	var state PlaybackState
	if err := c.doAPI(ctx, http.MethodGet, "/v1/me/player", accessToken, nil, &state); err != nil {
		return PlaybackState{}, fmt.Errorf("get playback state: %w", err)
	}

	return state, nil
}

func (c *Client) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.accountsBaseURL+"/api/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("refresh access token: %w", err)
	}
	basic := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("refresh access token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("refresh access token: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("refresh access token: %w", err)
	}
	if body.AccessToken == "" {
		return "", errors.New("refresh access token: empty access token in response")
	}

	return body.AccessToken, nil
}

func (c *Client) doAPI(ctx context.Context, method, path, accessToken string, reqBody, respBody any) error {
	var reader *bytes.Reader
	if reqBody != nil {
		raw, err := json.Marshal(reqBody)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiBaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrExpiredToken
	case resp.StatusCode == http.StatusNoContent:
		return nil
	case resp.StatusCode >= 400:
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if respBody == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(respBody)
}
