package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundroom/server/internal/repository/room"
)

func newTestRepo(t *testing.T) *repo {
	t.Helper()

	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rc.Close() })

	return NewRepo(rc, time.Hour)
}

func testRoomParams() *room.SetRoomParams {
	return &room.SetRoomParams{
		ID:              "r1",
		RoomName:        "friday",
		RoomType:        "public",
		HostName:        "dj",
		ExplicitAllowed: true,
		Password:        "hunter2",
		MinVotesToPlay:  2,
		DownVoteLimit:   3,
		AudienceSize:    5,
		AccessToken:     "access-token",
		RefreshToken:    "refresh-token",
		CurrentSong:     room.Song{SongID: "s0", SongName: "intro", URI: "spotify:track:s0"},
		Queue: []room.QueueEntry{
			{Song: room.Song{SongID: "s1", URI: "spotify:track:s1"}, Rank: 2},
			{Song: room.Song{SongID: "s2", URI: "spotify:track:s2"}, Rank: 0},
		},
	}
}

func TestSetGetRoom(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	params := testRoomParams()
	require.NoError(t, r.SetRoom(ctx, params))

	got, err := r.GetRoom(ctx, params.ID)
	require.NoError(t, err)

	assert.Equal(t, params.ID, got.ID)
	assert.Equal(t, params.RoomName, got.RoomName)
	assert.Equal(t, params.RoomType, got.RoomType)
	assert.Equal(t, params.HostName, got.HostName)
	assert.Equal(t, params.ExplicitAllowed, got.ExplicitAllowed)
	assert.Equal(t, params.Password, got.Password)
	assert.Equal(t, params.MinVotesToPlay, got.MinVotesToPlay)
	assert.Equal(t, params.DownVoteLimit, got.DownVoteLimit)
	assert.Equal(t, params.AudienceSize, got.AudienceSize)
	assert.Equal(t, params.AccessToken, got.AccessToken)
	assert.Equal(t, params.RefreshToken, got.RefreshToken)
	assert.Equal(t, params.CurrentSong, got.CurrentSong)
	assert.Equal(t, params.Queue, got.Queue)
}

func TestGetRoomNotFound(t *testing.T) {
	r := newTestRepo(t)

	_, err := r.GetRoom(context.Background(), "missing")
	assert.ErrorIs(t, err, room.ErrRoomNotFound)
}

func TestGetRoomIDByAttrs(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	params := testRoomParams()
	require.NoError(t, r.SetRoom(ctx, params))

	roomID, err := r.GetRoomIDByAttrs(ctx, &room.GetRoomIDByAttrsParams{
		RoomName: params.RoomName,
		RoomType: params.RoomType,
		HostName: params.HostName,
	})
	require.NoError(t, err)
	assert.Equal(t, params.ID, roomID)

	_, err = r.GetRoomIDByAttrs(ctx, &room.GetRoomIDByAttrsParams{
		RoomName: "other",
		RoomType: params.RoomType,
		HostName: params.HostName,
	})
	assert.ErrorIs(t, err, room.ErrRoomNotFound)
}

func TestGetRoomIDs(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	first := testRoomParams()
	require.NoError(t, r.SetRoom(ctx, first))

	second := testRoomParams()
	second.ID = "r2"
	second.RoomName = "saturday"
	require.NoError(t, r.SetRoom(ctx, second))

	ids, err := r.GetRoomIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"r1", "r2"}, ids)
}

func TestRemoveRoom(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	params := testRoomParams()
	require.NoError(t, r.SetRoom(ctx, params))
	require.NoError(t, r.RemoveRoom(ctx, params.ID))

	_, err := r.GetRoom(ctx, params.ID)
	assert.ErrorIs(t, err, room.ErrRoomNotFound)

	// the identity index goes with the room
	_, err = r.GetRoomIDByAttrs(ctx, &room.GetRoomIDByAttrsParams{
		RoomName: params.RoomName,
		RoomType: params.RoomType,
		HostName: params.HostName,
	})
	assert.ErrorIs(t, err, room.ErrRoomNotFound)

	ids, err := r.GetRoomIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	assert.ErrorIs(t, r.RemoveRoom(ctx, params.ID), room.ErrRoomNotFound)
}

func TestSetQueueReplacesQueue(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	params := testRoomParams()
	require.NoError(t, r.SetRoom(ctx, params))

	newQueue := []room.QueueEntry{
		{Song: room.Song{SongID: "s3", URI: "spotify:track:s3"}, Rank: 1},
	}
	require.NoError(t, r.SetQueue(ctx, params.ID, newQueue))

	got, err := r.GetQueue(ctx, params.ID)
	require.NoError(t, err)
	assert.Equal(t, newQueue, got)

	require.NoError(t, r.SetQueue(ctx, params.ID, nil))
	got, err = r.GetQueue(ctx, params.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUpdateRoomFields(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	params := testRoomParams()
	require.NoError(t, r.SetRoom(ctx, params))

	require.NoError(t, r.UpdateAudienceSize(ctx, params.ID, 7))
	require.NoError(t, r.UpdateAccessToken(ctx, params.ID, "new-token"))
	require.NoError(t, r.UpdateCurrentSong(ctx, params.ID, room.Song{SongID: "s9", SongName: "encore"}))

	got, err := r.GetRoom(ctx, params.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.AudienceSize)
	assert.Equal(t, "new-token", got.AccessToken)
	assert.Equal(t, "s9", got.CurrentSong.SongID)

	assert.ErrorIs(t, r.UpdateAudienceSize(ctx, "missing", 1), room.ErrRoomNotFound)
	assert.ErrorIs(t, r.UpdateAccessToken(ctx, "missing", "t"), room.ErrRoomNotFound)
	assert.ErrorIs(t, r.UpdateCurrentSong(ctx, "missing", room.Song{}), room.ErrRoomNotFound)
}
