package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/rdx/internal/models"
	"github.com/desertthunder/rdx/internal/shared"
	mock "github.com/desertthunder/rdx/internal/testing"
)

func TestEngineRun(t *testing.T) {
	source := &mock.MockSession{
		Username: "old",
		Subscriptions: []models.Item{
			models.NewSubredditItem("golang"),
			models.NewSubredditItem("pics"),
		},
		Friends: []models.Item{models.NewUserItem("alice")},
		Saved:   []models.Item{models.NewSavedItem("t3_abc", models.KindPost)},
		Prefs:   models.PreferenceMap{"nightmode": true},
	}
	dest := &mock.MockSession{
		Username:      "new",
		Subscriptions: []models.Item{models.NewSubredditItem("pics")},
		Friends:       []models.Item{models.NewUserItem("bob")},
	}

	engine := NewEngine(source, dest)
	result, err := engine.Run(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.SourceAccount != "old" || result.DestAccount != "new" {
		t.Errorf("accounts = %s -> %s, want old -> new", result.SourceAccount, result.DestAccount)
	}
	if result.ID == "" {
		t.Error("result has no run ID")
	}
	if !result.Succeeded() {
		t.Errorf("run did not succeed: %+v", result.Reports)
	}

	subs := result.Report(models.CategorySubscriptions)
	if subs == nil || subs.Applied != 1 {
		t.Errorf("subscriptions report = %+v, want 1 applied (golang)", subs)
	}
	if len(dest.SubscribeCalls) != 1 || dest.SubscribeCalls[0].Primary != "golang" {
		t.Errorf("Subscribe calls = %+v, want primary golang", dest.SubscribeCalls)
	}

	friends := result.Report(models.CategoryFriends)
	if friends == nil || friends.Applied != 2 {
		t.Errorf("friends report = %+v, want 2 applied (add alice, remove bob)", friends)
	}
	if len(dest.FriendCalls) != 1 || dest.FriendCalls[0] != "alice" {
		t.Errorf("Friend calls = %v, want [alice]", dest.FriendCalls)
	}
	if len(dest.UnfriendCalls) != 1 || dest.UnfriendCalls[0] != "bob" {
		t.Errorf("Unfriend calls = %v, want [bob]", dest.UnfriendCalls)
	}

	saved := result.Report(models.CategorySaved)
	if saved == nil || saved.Applied != 1 {
		t.Errorf("saved report = %+v, want 1 applied", saved)
	}

	if result.Preferences == nil || result.Preferences.Copied != 1 {
		t.Errorf("preferences = %+v, want 1 copied", result.Preferences)
	}
	if result.FinishedAt.Before(result.StartedAt) {
		t.Error("FinishedAt precedes StartedAt")
	}
}

func TestEngineRunSelectedCategories(t *testing.T) {
	source := &mock.MockSession{
		Subscriptions: []models.Item{models.NewSubredditItem("golang")},
		Friends:       []models.Item{models.NewUserItem("alice")},
	}
	dest := &mock.MockSession{}

	engine := NewEngine(source, dest)
	result, err := engine.Run(context.Background(), nil, []models.Category{models.CategoryFriends})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Report(models.CategorySubscriptions) != nil {
		t.Error("subscriptions was processed despite not being requested")
	}
	if result.Preferences != nil {
		t.Error("preferences were copied despite not being requested")
	}
	if len(dest.SubscribeCalls) != 0 {
		t.Errorf("Subscribe calls = %d, want none", len(dest.SubscribeCalls))
	}
	if len(dest.FriendCalls) != 1 {
		t.Errorf("Friend calls = %d, want 1", len(dest.FriendCalls))
	}
}

func TestEngineRunFetchFailureIsolated(t *testing.T) {
	source := &mock.MockSession{
		ListErr: shared.ErrRemoteUnavailable,
		Prefs:   models.PreferenceMap{"nightmode": true},
	}
	dest := &mock.MockSession{}

	engine := NewEngine(source, dest)
	result, err := engine.Run(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("Run() error = %v, remote failures belong in the result", err)
	}

	for _, category := range models.SetCategories() {
		report := result.Report(category)
		if report == nil {
			t.Fatalf("no report for %s", category)
		}
		if !errors.Is(report.FetchErr, shared.ErrRemoteUnavailable) {
			t.Errorf("%s FetchErr = %v, want ErrRemoteUnavailable", category, report.FetchErr)
		}
	}

	// A category that cannot be fetched is never reconciled.
	if len(dest.SubscribeCalls)+len(dest.FriendCalls)+len(dest.SaveCalls) != 0 {
		t.Error("mutations were issued for unfetched categories")
	}

	// Preferences do not depend on the listings and still copy.
	if result.Preferences == nil || result.Preferences.Copied != 1 {
		t.Errorf("preferences = %+v, want 1 copied", result.Preferences)
	}
	if result.Succeeded() {
		t.Error("run with fetch failures reported success")
	}
}

func TestEngineRunUnknownCategory(t *testing.T) {
	engine := NewEngine(&mock.MockSession{}, &mock.MockSession{})
	_, err := engine.Run(context.Background(), nil, []models.Category{"karma"})
	if !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("Run() error = %v, want ErrInvalidArgument", err)
	}
}

func TestEngineRunProgressNeverBlocks(t *testing.T) {
	source := &mock.MockSession{
		Subscriptions: []models.Item{models.NewSubredditItem("golang")},
		Prefs:         models.PreferenceMap{"nightmode": true},
	}
	engine := NewEngine(source, &mock.MockSession{})

	// Nobody reads from this channel; the run must still complete.
	progress := make(chan ProgressUpdate)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := engine.Run(context.Background(), progress, nil); err != nil {
			t.Errorf("Run() error = %v", err)
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("run blocked on an undrained progress channel")
	}
}

func TestEnginePlan(t *testing.T) {
	source := &mock.MockSession{
		Subscriptions: []models.Item{models.NewSubredditItem("golang")},
		Friends:       []models.Item{models.NewUserItem("alice")},
		Prefs:         models.PreferenceMap{"nightmode": true},
	}
	dest := &mock.MockSession{
		Subscriptions: []models.Item{models.NewSubredditItem("pics")},
	}

	engine := NewEngine(source, dest)
	diffs, err := engine.Plan(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	subs, ok := diffs[models.CategorySubscriptions]
	if !ok {
		t.Fatal("plan has no subscriptions diff")
	}
	if len(subs.ToAdd) != 1 || subs.ToAdd[0].ID != "golang" {
		t.Errorf("subscriptions ToAdd = %v, want [golang]", ids(subs.ToAdd))
	}
	if len(subs.ToRemove) != 1 || subs.ToRemove[0].ID != "pics" {
		t.Errorf("subscriptions ToRemove = %v, want [pics]", ids(subs.ToRemove))
	}

	if _, ok := diffs[models.CategoryPreferences]; ok {
		t.Error("plan contains a preferences diff; preferences are copied wholesale")
	}

	// Planning is read-only.
	if len(dest.SubscribeCalls)+len(dest.UnsubscribeCalls)+len(dest.FriendCalls)+
		len(dest.UnfriendCalls)+len(dest.SaveCalls)+len(dest.UnsaveCalls)+len(dest.SetPrefsCalls) != 0 {
		t.Error("Plan() mutated the destination")
	}
}

func TestEnginePlanFetchFailure(t *testing.T) {
	engine := NewEngine(&mock.MockSession{ListErr: shared.ErrRemoteUnavailable}, &mock.MockSession{})
	_, err := engine.Plan(context.Background(), nil, nil)
	if !errors.Is(err, shared.ErrRemoteUnavailable) {
		t.Errorf("Plan() error = %v, want ErrRemoteUnavailable", err)
	}
}

func TestResolveCategories(t *testing.T) {
	tests := []struct {
		name    string
		input   []models.Category
		want    []models.Category
		wantErr bool
	}{
		{
			name:  "nil defaults to all in run order",
			input: nil,
			want:  models.Categories(),
		},
		{
			name:  "requested categories are normalized to run order",
			input: []models.Category{models.CategorySaved, models.CategorySubscriptions},
			want:  []models.Category{models.CategorySubscriptions, models.CategorySaved},
		},
		{
			name:  "duplicates collapse",
			input: []models.Category{models.CategoryFriends, models.CategoryFriends},
			want:  []models.Category{models.CategoryFriends},
		},
		{
			name:    "unknown category rejected",
			input:   []models.Category{"karma"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveCategories(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolveCategories() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("resolveCategories() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("resolveCategories()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFetchSnapshot(t *testing.T) {
	session := &mock.MockSession{
		Username: "old",
		Subscriptions: []models.Item{
			models.NewSubredditItem("golang"),
			models.NewSubredditItem("GoLang"), // repeated across pages
			models.NewSubredditItem("pics"),
		},
	}

	snapshot, err := FetchSnapshot(context.Background(), session, models.CategorySubscriptions)
	if err != nil {
		t.Fatalf("FetchSnapshot() error = %v", err)
	}

	if snapshot.Len() != 2 {
		t.Errorf("Len() = %d, want 2 after dedupe", snapshot.Len())
	}
	if snapshot.Account != "old" {
		t.Errorf("Account = %q, want old", snapshot.Account)
	}
	if !snapshot.Has("golang") || !snapshot.Has("pics") {
		t.Errorf("snapshot missing expected items: %v", ids(snapshot.Items()))
	}
}

func TestFetchSnapshotPreferencesRejected(t *testing.T) {
	_, err := FetchSnapshot(context.Background(), &mock.MockSession{}, models.CategoryPreferences)
	if !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("FetchSnapshot(preferences) error = %v, want ErrInvalidArgument", err)
	}
}

func TestFetchSnapshotListFailure(t *testing.T) {
	session := &mock.MockSession{ListErr: shared.ErrRemoteUnavailable}
	_, err := FetchSnapshot(context.Background(), session, models.CategoryFriends)
	if !errors.Is(err, shared.ErrRemoteUnavailable) {
		t.Errorf("FetchSnapshot() error = %v, want ErrRemoteUnavailable", err)
	}
}
