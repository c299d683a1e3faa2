package room

import (
	"iter"
	"sort"
)

// rankedQueue holds a room's pending songs ordered by vote-derived rank.
// It is not safe for concurrent use; callers hold the room lock.
type rankedQueue struct {
	entries []QueueEntry
}

func (q *rankedQueue) add(song Song) QueueEntry {
	entry := QueueEntry{Song: song, Rank: 0}
	q.entries = append(q.entries, entry)

	return entry
}

// remove deletes the first entry with the given song id. Removing an unknown
// id is a no-op so votes and removals can interleave safely.
func (q *rankedQueue) remove(songID string) bool {
	for i, entry := range q.entries {
		if entry.SongID == songID {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return true
		}
	}

	return false
}

func (q *rankedQueue) adjustRank(songID string, delta int) bool {
	for i := range q.entries {
		if q.entries[i].SongID == songID {
			q.entries[i].Rank += delta
			q.sort()
			return true
		}
	}

	return false
}

// sort orders entries by descending rank. The sort is stable: entries with
// equal rank keep their insertion order.
func (q *rankedQueue) sort() {
	sort.SliceStable(q.entries, func(i, j int) bool {
		return q.entries[i].Rank > q.entries[j].Rank
	})
}

// front returns the highest-ranked entry without removing it.
func (q *rankedQueue) front() (QueueEntry, error) {
	if len(q.entries) == 0 {
		return QueueEntry{}, ErrEmptyQueue
	}

	return q.entries[0], nil
}

// popFront removes and returns the highest-ranked entry.
func (q *rankedQueue) popFront() (QueueEntry, error) {
	if len(q.entries) == 0 {
		return QueueEntry{}, ErrEmptyQueue
	}

	front := q.entries[0]
	q.entries = q.entries[1:]

	return front, nil
}

func (q *rankedQueue) len() int {
	return len(q.entries)
}

// sorted yields the entries ordered by descending rank without mutating the
// queue. The sequence is restartable.
func (q *rankedQueue) sorted() iter.Seq[QueueEntry] {
	ordered := q.list()

	return func(yield func(QueueEntry) bool) {
		for _, entry := range ordered {
			if !yield(entry) {
				return
			}
		}
	}
}

// list returns a rank-ordered copy of the entries.
func (q *rankedQueue) list() []QueueEntry {
	ordered := make([]QueueEntry, len(q.entries))
	copy(ordered, q.entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Rank > ordered[j].Rank
	})

	return ordered
}
