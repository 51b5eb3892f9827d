package models

import (
	"sort"
	"strings"
	"time"
)

// Category identifies one synchronized slice of account state.
type Category string

const (
	CategorySubscriptions Category = "subscriptions"
	CategoryFriends       Category = "friends"
	CategorySaved         Category = "saved"
	CategoryPreferences   Category = "preferences"
)

// Categories returns all categories in the order a run processes them.
func Categories() []Category {
	return []Category{CategorySubscriptions, CategoryFriends, CategorySaved, CategoryPreferences}
}

// SetCategories returns the categories whose state is a set of items, i.e.
// everything except preferences (which are copied wholesale, not diffed).
func SetCategories() []Category {
	return []Category{CategorySubscriptions, CategoryFriends, CategorySaved}
}

// ParseCategory resolves a user-supplied category name, accepting a few
// common short forms.
func ParseCategory(s string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "subscriptions", "subs", "subreddits":
		return CategorySubscriptions, true
	case "friends":
		return CategoryFriends, true
	case "saved":
		return CategorySaved, true
	case "preferences", "prefs":
		return CategoryPreferences, true
	}
	return "", false
}

// ItemKind discriminates the concrete remote entity behind an [Item].
//
// For saved content the kind selects the mutation call (posts and comments
// save through different fullname prefixes), so it is resolved once at fetch
// time and carried on the item.
type ItemKind string

const (
	KindSubreddit ItemKind = "subreddit"
	KindUser      ItemKind = "user"
	KindPost      ItemKind = "post"
	KindComment   ItemKind = "comment"
)

// Item is one remote entity within a category.
//
// ID is the comparable identity key: lowercased for names, exact for saved
// content IDs. Name preserves the display form reported by the remote.
type Item struct {
	ID   string   `json:"id"`
	Name string   `json:"name,omitempty"`
	Kind ItemKind `json:"kind"`
}

// NewSubredditItem builds an Item for a subreddit, keyed case-insensitively.
func NewSubredditItem(displayName string) Item {
	return Item{ID: strings.ToLower(displayName), Name: displayName, Kind: KindSubreddit}
}

// NewUserItem builds an Item for a Reddit account, keyed case-insensitively.
func NewUserItem(username string) Item {
	return Item{ID: strings.ToLower(username), Name: username, Kind: KindUser}
}

// NewSavedItem builds an Item for a saved post or comment. The ID is exact;
// kinds other than post/comment are carried through and rejected at apply time.
func NewSavedItem(id string, kind ItemKind) Item {
	return Item{ID: id, Kind: kind}
}

// Display returns the item's name when the remote reported one, the ID otherwise.
func (i Item) Display() string {
	if i.Name != "" {
		return i.Name
	}
	return i.ID
}

// Snapshot is the captured state of one account in one category: a set of
// items keyed by identity, immutable once fetched.
type Snapshot struct {
	Category Category
	Account  string
	items    map[string]Item
}

// NewSnapshot creates an empty snapshot for the given category and account.
func NewSnapshot(category Category, account string) *Snapshot {
	return &Snapshot{
		Category: category,
		Account:  account,
		items:    make(map[string]Item),
	}
}

// Add inserts an item, returning false when an item with the same identity is
// already present. Listings are deduplicated defensively: the remote may
// repeat items across pages.
func (s *Snapshot) Add(item Item) bool {
	if _, ok := s.items[item.ID]; ok {
		return false
	}
	s.items[item.ID] = item
	return true
}

// Has reports whether an item with the given identity is in the snapshot.
func (s *Snapshot) Has(id string) bool {
	_, ok := s.items[id]
	return ok
}

// Get returns the item with the given identity.
func (s *Snapshot) Get(id string) (Item, bool) {
	item, ok := s.items[id]
	return item, ok
}

// Len returns the number of distinct items.
func (s *Snapshot) Len() int {
	return len(s.items)
}

// Items returns the snapshot's items sorted by identity.
func (s *Snapshot) Items() []Item {
	items := make([]Item, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

// Diff holds the minimal mutations that make a destination snapshot match a
// source snapshot: ToAdd is source minus destination, ToRemove is destination
// minus source. Both slices are sorted by identity and disjoint.
type Diff struct {
	Category Category `json:"category"`
	ToAdd    []Item   `json:"to_add"`
	ToRemove []Item   `json:"to_remove"`
}

// Empty reports whether the destination already matches the source.
func (d Diff) Empty() bool {
	return len(d.ToAdd) == 0 && len(d.ToRemove) == 0
}

// PreferenceMap is an account's preference mapping, round-tripped without
// interpretation.
type PreferenceMap map[string]any

// ItemAction is the direction of one reconciling mutation.
type ItemAction string

const (
	ActionAdd    ItemAction = "add"
	ActionRemove ItemAction = "remove"
)

// ItemStatus is the terminal outcome of one reconciling mutation.
type ItemStatus string

const (
	StatusApplied ItemStatus = "applied"
	StatusSkipped ItemStatus = "skipped" // already in the desired state
	StatusFailed  ItemStatus = "failed"
)

// ItemResult records the outcome of one mutation against the destination.
type ItemResult struct {
	Item   Item
	Action ItemAction
	Status ItemStatus
	Err    error
}

// ReconcileReport accumulates per-item outcomes for one category of one run.
// FetchErr is set when the category's snapshots could not be fetched; nothing
// was diffed or applied in that case.
type ReconcileReport struct {
	Category Category
	Applied  int
	Skipped  int
	Failed   int
	Failures []ItemResult
	FetchErr error
}

// NewReconcileReport creates an empty report for the category.
func NewReconcileReport(category Category) *ReconcileReport {
	return &ReconcileReport{Category: category}
}

// Record tallies one item outcome, retaining failures for the caller to retry.
func (r *ReconcileReport) Record(res ItemResult) {
	switch res.Status {
	case StatusApplied:
		r.Applied++
	case StatusSkipped:
		r.Skipped++
	case StatusFailed:
		r.Failed++
		r.Failures = append(r.Failures, res)
	}
}

// Ok reports whether the category completed without fetch or item failures.
func (r *ReconcileReport) Ok() bool {
	return r.FetchErr == nil && r.Failed == 0
}

// PreferenceReport is the outcome of the wholesale preference copy.
type PreferenceReport struct {
	Copied int
	Err    error
}

// RunResult is the aggregate, externally observable outcome of one sync run.
// It is created per run and immutable after the run completes.
type RunResult struct {
	ID            string
	SourceAccount string
	DestAccount   string
	StartedAt     time.Time
	FinishedAt    time.Time
	Reports       map[Category]*ReconcileReport
	Preferences   *PreferenceReport
}

// Report returns the category's report, nil when the run did not process it.
func (r *RunResult) Report(category Category) *ReconcileReport {
	return r.Reports[category]
}

// Succeeded reports whether every processed category completed cleanly.
func (r *RunResult) Succeeded() bool {
	for _, report := range r.Reports {
		if !report.Ok() {
			return false
		}
	}
	if r.Preferences != nil && r.Preferences.Err != nil {
		return false
	}
	return true
}

// Totals sums applied/skipped/failed counts across all set categories.
func (r *RunResult) Totals() (applied, skipped, failed int) {
	for _, report := range r.Reports {
		applied += report.Applied
		skipped += report.Skipped
		failed += report.Failed
	}
	return applied, skipped, failed
}
