// Package inbox holds the pure parts of the message sync loop: filtering a
// poll snapshot to the selected category, diffing it against the rendered
// set, and tracking which ids have already produced a "new message"
// notification this session.
package inbox

import "inboxpilot/internal/domain"

// Filter returns the messages belonging to one dashboard category, in
// snapshot order. The backend gives no ordering guarantee between polls, so
// callers must treat the result as a full replacement, never an append.
func Filter(msgs []domain.Message, cat domain.Category) []domain.Message {
	out := make([]domain.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Category() == cat {
			out = append(out, m)
		}
	}
	return out
}

// Diff compares the previously rendered id set with a fresh snapshot.
type Diff struct {
	Added   []int64
	Removed []int64
}

// DiffIDs computes which cards to append and which to drop so the rendered
// set always equals exactly the latest snapshot.
func DiffIDs(rendered []int64, snapshot []domain.Message) Diff {
	have := make(map[int64]struct{}, len(rendered))
	for _, id := range rendered {
		have[id] = struct{}{}
	}
	next := make(map[int64]struct{}, len(snapshot))

	var d Diff
	for _, m := range snapshot {
		next[m.ID] = struct{}{}
		if _, ok := have[m.ID]; !ok {
			d.Added = append(d.Added, m.ID)
		}
	}
	for _, id := range rendered {
		if _, ok := next[id]; !ok {
			d.Removed = append(d.Removed, id)
		}
	}
	return d
}

// SeenSet remembers every message id observed during the session. It is
// never pruned, so each id triggers at most one notification no matter how
// often it reappears in later polls.
type SeenSet struct {
	ids map[int64]struct{}
}

func NewSeenSet() *SeenSet {
	return &SeenSet{ids: make(map[int64]struct{})}
}

// MarkNew records the snapshot and returns the ids seen for the first time.
func (s *SeenSet) MarkNew(msgs []domain.Message) []int64 {
	var fresh []int64
	for _, m := range msgs {
		if _, ok := s.ids[m.ID]; ok {
			continue
		}
		s.ids[m.ID] = struct{}{}
		fresh = append(fresh, m.ID)
	}
	return fresh
}

// Len reports how many ids have been observed this session.
func (s *SeenSet) Len() int { return len(s.ids) }
