package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/rdx/internal/models"
	"github.com/desertthunder/rdx/internal/services"
	"github.com/desertthunder/rdx/internal/shared"
)

// FetchSnapshot materializes the current remote state of one set category
// into an immutable snapshot. The session drains pagination; this layer
// deduplicates defensively in case the remote repeats items across pages.
//
// Retry policy belongs to the caller: a transport failure surfaces as
// [shared.ErrRemoteUnavailable] and the category is left unfetched.
func FetchSnapshot(ctx context.Context, session services.Session, category models.Category) (*models.Snapshot, error) {
	var items []models.Item
	var err error

	switch category {
	case models.CategorySubscriptions:
		items, err = session.ListSubscriptions(ctx)
	case models.CategoryFriends:
		items, err = session.ListFriends(ctx)
	case models.CategorySaved:
		items, err = session.ListSaved(ctx)
	default:
		return nil, fmt.Errorf("%w: category %q has no snapshot", shared.ErrInvalidArgument, category)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s for %s: %w", category, session.Name(), err)
	}

	snapshot := models.NewSnapshot(category, session.Name())
	for _, item := range items {
		snapshot.Add(item)
	}

	return snapshot, nil
}
