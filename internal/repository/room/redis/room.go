package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/soundroom/server/internal/repository/room"
)

const roomsKey = "rooms"

func (r repo) getRoomKey(roomID string) string {
	return "room:" + roomID
}

func (r repo) getQueueKey(roomID string) string {
	return "room:" + roomID + ":queue"
}

func (r repo) getAttrsKey(roomName, roomType, hostName string) string {
	return "room-id:" + roomName + ":" + roomType + ":" + hostName
}

func (r repo) SetRoom(ctx context.Context, params *room.SetRoomParams) error {
	currentSong, err := json.Marshal(params.CurrentSong)
	if err != nil {
		return fmt.Errorf("failed to marshal current song: %w", err)
	}

	pipe := r.rc.TxPipeline()

	roomKey := r.getRoomKey(params.ID)
	pipe.HSet(ctx, roomKey,
		"room_name", params.RoomName,
		"room_type", params.RoomType,
		"host_name", params.HostName,
		"explicit_allowed", r.boolToField(params.ExplicitAllowed),
		"password", params.Password,
		"min_votes_to_play", params.MinVotesToPlay,
		"down_vote_limit", params.DownVoteLimit,
		"audience_size", params.AudienceSize,
		"access_token", params.AccessToken,
		"refresh_token", params.RefreshToken,
		"current_song", string(currentSong),
	)
	pipe.Expire(ctx, roomKey, r.expireDuration)
	pipe.Set(ctx, r.getAttrsKey(params.RoomName, params.RoomType, params.HostName), params.ID, r.expireDuration)
	pipe.SAdd(ctx, roomsKey, params.ID)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to set room: %w", err)
	}

	return r.SetQueue(ctx, params.ID, params.Queue)
}

func (r repo) GetRoom(ctx context.Context, roomID string) (room.Room, error) {
	fields, err := r.rc.HGetAll(ctx, r.getRoomKey(roomID)).Result()
	if err != nil {
		return room.Room{}, fmt.Errorf("failed to get room: %w", err)
	}
	if len(fields) == 0 {
		return room.Room{}, room.ErrRoomNotFound
	}

	var currentSong room.Song
	if raw := fields["current_song"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &currentSong); err != nil {
			return room.Room{}, fmt.Errorf("failed to unmarshal current song: %w", err)
		}
	}

	queue, err := r.GetQueue(ctx, roomID)
	if err != nil {
		return room.Room{}, err
	}

	return room.Room{
		ID:              roomID,
		RoomName:        fields["room_name"],
		RoomType:        fields["room_type"],
		HostName:        fields["host_name"],
		ExplicitAllowed: r.fieldToBool(fields["explicit_allowed"]),
		Password:        fields["password"],
		MinVotesToPlay:  r.fieldToInt(fields["min_votes_to_play"]),
		DownVoteLimit:   r.fieldToInt(fields["down_vote_limit"]),
		AudienceSize:    r.fieldToInt(fields["audience_size"]),
		AccessToken:     fields["access_token"],
		RefreshToken:    fields["refresh_token"],
		CurrentSong:     currentSong,
		Queue:           queue,
	}, nil
}

func (r repo) GetRoomIDByAttrs(ctx context.Context, params *room.GetRoomIDByAttrsParams) (string, error) {
	roomID, err := r.rc.Get(ctx, r.getAttrsKey(params.RoomName, params.RoomType, params.HostName)).Result()
	if err == redis.Nil {
		return "", room.ErrRoomNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get room id by attrs: %w", err)
	}

	return roomID, nil
}

func (r repo) GetRoomIDs(ctx context.Context) ([]string, error) {
	roomIDs, err := r.rc.SMembers(ctx, roomsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get room ids: %w", err)
	}

	return roomIDs, nil
}

func (r repo) RemoveRoom(ctx context.Context, roomID string) error {
	roomKey := r.getRoomKey(roomID)
	fields, err := r.rc.HGetAll(ctx, roomKey).Result()
	if err != nil {
		return fmt.Errorf("failed to remove room: %w", err)
	}
	if len(fields) == 0 {
		return room.ErrRoomNotFound
	}

	pipe := r.rc.TxPipeline()
	pipe.Del(ctx, roomKey)
	pipe.Del(ctx, r.getQueueKey(roomID))
	pipe.Del(ctx, r.getAttrsKey(fields["room_name"], fields["room_type"], fields["host_name"]))
	pipe.SRem(ctx, roomsKey, roomID)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to remove room: %w", err)
	}

	return nil
}

func (r repo) SetQueue(ctx context.Context, roomID string, queue []room.QueueEntry) error {
	if queue == nil {
		queue = []room.QueueEntry{}
	}
	raw, err := json.Marshal(queue)
	if err != nil {
		return fmt.Errorf("failed to marshal queue: %w", err)
	}

	if err := r.rc.Set(ctx, r.getQueueKey(roomID), raw, r.expireDuration).Err(); err != nil {
		return fmt.Errorf("failed to set queue: %w", err)
	}

	return nil
}

func (r repo) GetQueue(ctx context.Context, roomID string) ([]room.QueueEntry, error) {
	raw, err := r.rc.Get(ctx, r.getQueueKey(roomID)).Result()
	if err == redis.Nil {
		return []room.QueueEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get queue: %w", err)
	}

	var queue []room.QueueEntry
	if err := json.Unmarshal([]byte(raw), &queue); err != nil {
		return nil, fmt.Errorf("failed to unmarshal queue: %w", err)
	}

	return queue, nil
}

func (r repo) UpdateAudienceSize(ctx context.Context, roomID string, audienceSize int) error {
	return r.updateRoomField(ctx, roomID, "audience_size", audienceSize)
}

func (r repo) UpdateAccessToken(ctx context.Context, roomID string, accessToken string) error {
	return r.updateRoomField(ctx, roomID, "access_token", accessToken)
}

func (r repo) UpdateCurrentSong(ctx context.Context, roomID string, currentSong room.Song) error {
	raw, err := json.Marshal(currentSong)
	if err != nil {
		return fmt.Errorf("failed to marshal current song: %w", err)
	}

	return r.updateRoomField(ctx, roomID, "current_song", string(raw))
}

func (r repo) updateRoomField(ctx context.Context, roomID string, field string, value any) error {
	roomKey := r.getRoomKey(roomID)
	cmd := r.rc.Exists(ctx, roomKey)
	if err := cmd.Err(); err != nil {
		return fmt.Errorf("failed to update room %s: %w", field, err)
	}
	if cmd.Val() == 0 {
		return room.ErrRoomNotFound
	}

	if err := r.rc.HSet(ctx, roomKey, field, value).Err(); err != nil {
		return fmt.Errorf("failed to update room %s: %w", field, err)
	}

	r.rc.Expire(ctx, roomKey, r.expireDuration)

	return nil
}
