package room

import "errors"

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrEmptyQueue        = errors.New("queue is empty")
	ErrQueueLimitReached = errors.New("queue limit reached")
	ErrNoAccessToken     = errors.New("room has no access token")
	// ErrProviderFatal marks a provider call that still failed after the
	// single refresh-and-retry pass. Callers must not retry it.
	ErrProviderFatal = errors.New("provider request failed after token refresh")
)
