// package services defines interface Session for interacting with the Reddit API
// on behalf of one authenticated account.
package services

import (
	"context"

	"github.com/desertthunder/rdx/internal/models"
)

// Session is an authenticated handle on one Reddit account. All listing calls
// drain pagination internally and return the complete collection; mutation
// calls are single round trips throttled by the session's rate limiter.
type Session interface {
	// Authenticate performs the script-app password grant against the token
	// endpoint. Returns an error if authentication fails.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// ListSubscriptions retrieves every subreddit the account subscribes to.
	ListSubscriptions(ctx context.Context) ([]models.Item, error)

	// ListFriends retrieves the account's friend list.
	ListFriends(ctx context.Context) ([]models.Item, error)

	// ListSaved retrieves the account's saved posts and comments, with the
	// post/comment discriminant resolved on each item.
	ListSaved(ctx context.Context) ([]models.Item, error)

	// Preferences retrieves the account's full preference mapping.
	Preferences(ctx context.Context) (models.PreferenceMap, error)

	// SetPreferences overwrites the account's preferences wholesale.
	SetPreferences(ctx context.Context, prefs models.PreferenceMap) error

	// Subscribe joins the primary subreddit plus the others in one bulk call.
	// The remote API requires a distinguished first subreddit; callers must
	// not pass an empty primary.
	Subscribe(ctx context.Context, primary string, others []string) error

	// Unsubscribe is the bulk counterpart of Subscribe.
	Unsubscribe(ctx context.Context, primary string, others []string) error

	// Friend adds the named account to the friend list.
	Friend(ctx context.Context, username string) error

	// Unfriend removes the named account from the friend list.
	Unfriend(ctx context.Context, username string) error

	// Save saves one post or comment, dispatched by the item's kind.
	Save(ctx context.Context, item models.Item) error

	// Unsave removes one post or comment from the saved listing.
	Unsave(ctx context.Context, item models.Item) error

	// Name returns the account's username.
	Name() string
}
