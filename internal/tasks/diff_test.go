package tasks

import (
	"testing"

	"github.com/desertthunder/rdx/internal/models"
)

func snapshotOf(category models.Category, items ...models.Item) *models.Snapshot {
	s := models.NewSnapshot(category, "test")
	for _, item := range items {
		s.Add(item)
	}
	return s
}

func ids(items []models.Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func equalIDs(a []string, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDiffSnapshots(t *testing.T) {
	golang := models.NewSubredditItem("golang")
	pics := models.NewSubredditItem("pics")
	music := models.NewSubredditItem("Music")
	askreddit := models.NewSubredditItem("AskReddit")

	tests := []struct {
		name       string
		source     *models.Snapshot
		dest       *models.Snapshot
		wantAdd    []string
		wantRemove []string
	}{
		{
			name:       "identical snapshots produce an empty diff",
			source:     snapshotOf(models.CategorySubscriptions, golang, pics),
			dest:       snapshotOf(models.CategorySubscriptions, pics, golang),
			wantAdd:    nil,
			wantRemove: nil,
		},
		{
			name:       "overlapping snapshots",
			source:     snapshotOf(models.CategorySubscriptions, golang, pics, music),
			dest:       snapshotOf(models.CategorySubscriptions, pics, askreddit),
			wantAdd:    []string{"golang", "music"},
			wantRemove: []string{"askreddit"},
		},
		{
			name:       "empty source removes everything",
			source:     snapshotOf(models.CategorySubscriptions),
			dest:       snapshotOf(models.CategorySubscriptions, golang, pics),
			wantAdd:    nil,
			wantRemove: []string{"golang", "pics"},
		},
		{
			name:       "empty destination adds everything",
			source:     snapshotOf(models.CategorySubscriptions, golang, pics),
			dest:       snapshotOf(models.CategorySubscriptions),
			wantAdd:    []string{"golang", "pics"},
			wantRemove: nil,
		},
		{
			name:       "names differing only in case are the same item",
			source:     snapshotOf(models.CategorySubscriptions, models.NewSubredditItem("GoLang")),
			dest:       snapshotOf(models.CategorySubscriptions, models.NewSubredditItem("golang")),
			wantAdd:    nil,
			wantRemove: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diff := DiffSnapshots(tt.source, tt.dest)

			if !equalIDs(ids(diff.ToAdd), tt.wantAdd) {
				t.Errorf("ToAdd = %v, want %v", ids(diff.ToAdd), tt.wantAdd)
			}
			if !equalIDs(ids(diff.ToRemove), tt.wantRemove) {
				t.Errorf("ToRemove = %v, want %v", ids(diff.ToRemove), tt.wantRemove)
			}
			if diff.Empty() != (len(tt.wantAdd) == 0 && len(tt.wantRemove) == 0) {
				t.Errorf("Empty() = %v with add=%v remove=%v", diff.Empty(), ids(diff.ToAdd), ids(diff.ToRemove))
			}
		})
	}
}

func TestDiffSnapshotsAntiSymmetry(t *testing.T) {
	a := snapshotOf(models.CategoryFriends, models.NewUserItem("alice"), models.NewUserItem("bob"))
	b := snapshotOf(models.CategoryFriends, models.NewUserItem("bob"), models.NewUserItem("carol"))

	forward := DiffSnapshots(a, b)
	backward := DiffSnapshots(b, a)

	if !equalIDs(ids(forward.ToAdd), ids(backward.ToRemove)) {
		t.Errorf("forward.ToAdd = %v, backward.ToRemove = %v", ids(forward.ToAdd), ids(backward.ToRemove))
	}
	if !equalIDs(ids(forward.ToRemove), ids(backward.ToAdd)) {
		t.Errorf("forward.ToRemove = %v, backward.ToAdd = %v", ids(forward.ToRemove), ids(backward.ToAdd))
	}
}

func TestDiffSnapshotsDeterministic(t *testing.T) {
	source := snapshotOf(models.CategorySaved,
		models.NewSavedItem("t3_c", models.KindPost),
		models.NewSavedItem("t3_a", models.KindPost),
		models.NewSavedItem("t1_b", models.KindComment),
	)
	dest := snapshotOf(models.CategorySaved)

	first := DiffSnapshots(source, dest)
	for range 10 {
		again := DiffSnapshots(source, dest)
		if !equalIDs(ids(first.ToAdd), ids(again.ToAdd)) {
			t.Fatalf("diff order varies between runs: %v vs %v", ids(first.ToAdd), ids(again.ToAdd))
		}
	}

	want := []string{"t1_b", "t3_a", "t3_c"}
	if !equalIDs(ids(first.ToAdd), want) {
		t.Errorf("ToAdd = %v, want sorted %v", ids(first.ToAdd), want)
	}
}
