package inbox

import (
	"reflect"
	"testing"

	"inboxpilot/internal/domain"
)

func TestFilterCategories(t *testing.T) {
	msgs := []domain.Message{
		{ID: 1, IsImportant: true},
		{ID: 2, IsImportant: false, IsToxic: false},
		{ID: 3, IsToxic: true},
		{ID: 4, IsImportant: true, IsToxic: true},
	}

	if got := idsOf(Filter(msgs, domain.CategoryImportant)); !reflect.DeepEqual(got, []int64{1, 4}) {
		t.Fatalf("important: got %v", got)
	}
	if got := idsOf(Filter(msgs, domain.CategoryGeneral)); !reflect.DeepEqual(got, []int64{2}) {
		t.Fatalf("general: got %v", got)
	}
	if got := idsOf(Filter(msgs, domain.CategoryFlagged)); !reflect.DeepEqual(got, []int64{3}) {
		t.Fatalf("flagged: got %v", got)
	}
}

func TestDiffIDs(t *testing.T) {
	rendered := []int64{1, 2, 3}
	snapshot := []domain.Message{{ID: 2}, {ID: 3}, {ID: 5}}

	d := DiffIDs(rendered, snapshot)
	if !reflect.DeepEqual(d.Added, []int64{5}) {
		t.Fatalf("added: got %v", d.Added)
	}
	if !reflect.DeepEqual(d.Removed, []int64{1}) {
		t.Fatalf("removed: got %v", d.Removed)
	}
}

func TestDiffIDsEmptySides(t *testing.T) {
	d := DiffIDs(nil, []domain.Message{{ID: 1}})
	if len(d.Added) != 1 || len(d.Removed) != 0 {
		t.Fatalf("fresh render: got %+v", d)
	}

	d = DiffIDs([]int64{1}, nil)
	if len(d.Added) != 0 || !reflect.DeepEqual(d.Removed, []int64{1}) {
		t.Fatalf("cleared snapshot: got %+v", d)
	}
}

func TestDisplayedSetEqualsLatestSnapshot(t *testing.T) {
	// Simulated poll sequence: the rendered set after each poll must equal
	// exactly the id set of that poll, regardless of order or churn.
	polls := [][]domain.Message{
		{{ID: 1}, {ID: 2}},
		{{ID: 2}, {ID: 3}, {ID: 4}},
		{{ID: 4}},
		{{ID: 4}, {ID: 1}},
	}

	var rendered []int64
	for i, snapshot := range polls {
		d := DiffIDs(rendered, snapshot)
		rendered = applyDiff(rendered, d)

		want := map[int64]struct{}{}
		for _, m := range snapshot {
			want[m.ID] = struct{}{}
		}
		if len(rendered) != len(want) {
			t.Fatalf("poll %d: rendered %v, want ids of %v", i, rendered, snapshot)
		}
		for _, id := range rendered {
			if _, ok := want[id]; !ok {
				t.Fatalf("poll %d: stale id %d in rendered set", i, id)
			}
		}
	}
}

func TestSeenSetNotifiesOncePerID(t *testing.T) {
	seen := NewSeenSet()

	fresh := seen.MarkNew([]domain.Message{{ID: 1}, {ID: 2}})
	if !reflect.DeepEqual(fresh, []int64{1, 2}) {
		t.Fatalf("first poll: got %v", fresh)
	}

	// id 1 disappears and comes back; it must not notify again.
	fresh = seen.MarkNew([]domain.Message{{ID: 2}, {ID: 3}})
	if !reflect.DeepEqual(fresh, []int64{3}) {
		t.Fatalf("second poll: got %v", fresh)
	}
	fresh = seen.MarkNew([]domain.Message{{ID: 1}, {ID: 3}})
	if len(fresh) != 0 {
		t.Fatalf("reappearing ids must not notify, got %v", fresh)
	}
	if seen.Len() != 3 {
		t.Fatalf("expected 3 observed ids, got %d", seen.Len())
	}
}

func idsOf(msgs []domain.Message) []int64 {
	out := make([]int64, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.ID)
	}
	return out
}

func applyDiff(rendered []int64, d Diff) []int64 {
	removed := make(map[int64]struct{}, len(d.Removed))
	for _, id := range d.Removed {
		removed[id] = struct{}{}
	}
	out := rendered[:0]
	for _, id := range rendered {
		if _, ok := removed[id]; !ok {
			out = append(out, id)
		}
	}
	return append(out, d.Added...)
}
