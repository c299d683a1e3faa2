package room

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queueIDs(entries []QueueEntry) []string {
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.SongID)
	}

	return ids
}

func TestRankedQueueAddDefaultsRankToZero(t *testing.T) {
	var q rankedQueue

	entry := q.add(Song{SongID: "s1"})
	assert.Equal(t, 0, entry.Rank)
	assert.Equal(t, 1, q.len())
}

func TestRankedQueueStableOrder(t *testing.T) {
	var q rankedQueue

	q.add(Song{SongID: "s1"})
	q.add(Song{SongID: "s2"})
	q.add(Song{SongID: "s3"})

	// all ranks equal: insertion order must survive sorting
	q.sort()
	assert.Equal(t, []string{"s1", "s2", "s3"}, queueIDs(q.list()))

	// two up-votes move s3 to the front, s1 and s2 keep their order
	q.adjustRank("s3", 1)
	q.adjustRank("s3", 1)
	assert.Equal(t, []string{"s3", "s1", "s2"}, queueIDs(q.list()))

	// a down-vote on s1 drops it below s2
	q.adjustRank("s1", -1)
	assert.Equal(t, []string{"s3", "s2", "s1"}, queueIDs(q.list()))
}

func TestRankedQueuePopFront(t *testing.T) {
	var q rankedQueue

	q.add(Song{SongID: "s1"})
	q.add(Song{SongID: "s2"})
	q.adjustRank("s2", 1)

	front, err := q.popFront()
	require.NoError(t, err)
	assert.Equal(t, "s2", front.SongID)

	front, err = q.popFront()
	require.NoError(t, err)
	assert.Equal(t, "s1", front.SongID)

	_, err = q.popFront()
	assert.ErrorIs(t, err, ErrEmptyQueue)
}

func TestRankedQueueRemoveUnknownIsNoop(t *testing.T) {
	var q rankedQueue

	q.add(Song{SongID: "s1"})

	assert.False(t, q.remove("missing"))
	assert.Equal(t, 1, q.len())

	assert.True(t, q.remove("s1"))
	assert.Equal(t, 0, q.len())
}

func TestRankedQueueAdjustRankUnknownIsNoop(t *testing.T) {
	var q rankedQueue

	q.add(Song{SongID: "s1"})

	assert.False(t, q.adjustRank("missing", 1))
	assert.Equal(t, []string{"s1"}, queueIDs(q.list()))
}

func TestRankedQueueSortedDoesNotMutate(t *testing.T) {
	var q rankedQueue

	q.add(Song{SongID: "s1"})
	q.add(Song{SongID: "s2"})
	q.adjustRank("s2", 1)

	collected := slices.Collect(q.sorted())
	assert.Equal(t, []string{"s2", "s1"}, queueIDs(collected))
	assert.Equal(t, 2, q.len())
}
