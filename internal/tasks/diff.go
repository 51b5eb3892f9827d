package tasks

import (
	"github.com/desertthunder/rdx/internal/models"
)

// DiffSnapshots computes the minimal mutations that make dest match source:
// ToAdd is source minus dest, ToRemove is dest minus source, membership by
// identity only (saved-item kinds are carried through but never compared).
//
// Pure function: no I/O, deterministic for a given pair of snapshots
// regardless of fetch order.
func DiffSnapshots(source, dest *models.Snapshot) models.Diff {
	diff := models.Diff{Category: source.Category}

	for _, item := range source.Items() {
		if !dest.Has(item.ID) {
			diff.ToAdd = append(diff.ToAdd, item)
		}
	}

	for _, item := range dest.Items() {
		if !source.Has(item.ID) {
			diff.ToRemove = append(diff.ToRemove, item)
		}
	}

	return diff
}
