// Reddit API implementation of [Session]
//
// Endpoint shapes based on https://www.reddit.com/dev/api/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/rdx/internal/models"
	"github.com/desertthunder/rdx/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	redditTokenURL = "https://www.reddit.com/api/v1/access_token"
	redditBaseURL  = "https://oauth.reddit.com"

	defaultUserAgent = "desktop:rdx:v0.2.0 (by /u/desertthunder)"
	defaultRateLimit = 1.0 // requests per second, matching the API's 60/min budget
	defaultPageLimit = 100
)

// redditThing is the kind-tagged envelope Reddit wraps every entity in.
// The kind prefix ("t1" comment, "t3" link, "t5" subreddit) discriminates
// the payload shape.
type redditThing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// redditListing is one page of a paginated listing endpoint. After is the
// cursor for the next page, empty on the last one.
type redditListing struct {
	Kind string `json:"kind"`
	Data struct {
		After    string        `json:"after"`
		Children []redditThing `json:"children"`
	} `json:"data"`
}

type subredditData struct {
	DisplayName string `json:"display_name"`
	Subscribers int    `json:"subscribers"`
}

type savedData struct {
	ID string `json:"id"`
}

// redditFriend represents one entry of the friends UserList.
type redditFriend struct {
	Name string  `json:"name"`
	ID   string  `json:"id"`
	Date float64 `json:"date"`
}

type friendList struct {
	Kind string `json:"kind"`
	Data struct {
		Children []redditFriend `json:"children"`
	} `json:"data"`
}

// RedditSession implements the Session interface against the Reddit OAuth API.
// Uses [oauth2] password-grant authentication (script apps) and throttles all
// calls through a token-bucket [rate.Limiter].
type RedditSession struct {
	username   string
	userAgent  string
	config     *oauth2.Config
	token      *oauth2.Token
	httpClient *http.Client
	limiter    *rate.Limiter
	pageLimit  int
}

// NewRedditSession creates a session for one account from its script-app
// credentials. Optional keys: "user_agent", "rate_limit" (requests/second),
// "page_limit" (listing page size).
func NewRedditSession(credentials map[string]string) (*RedditSession, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	userAgent := credentials["user_agent"]
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	rps := defaultRateLimit
	if v, ok := credentials["rate_limit"]; ok && v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("%w: rate_limit %q", shared.ErrInvalidCredentials, v)
		}
		rps = parsed
	}

	pageLimit := defaultPageLimit
	if v, ok := credentials["page_limit"]; ok && v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("%w: page_limit %q", shared.ErrInvalidCredentials, v)
		}
		pageLimit = parsed
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL: redditTokenURL,
		},
	}

	return &RedditSession{
		username:   credentials["username"],
		userAgent:  userAgent,
		config:     config,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		pageLimit:  pageLimit,
	}, nil
}

// Authenticate performs the password grant for script apps. Expects either an
// "access_token" or a "username"/"password" pair in credentials; accounts
// with two-factor auth append the current code to the password as
// "password:123456".
func (s *RedditSession) Authenticate(ctx context.Context, credentials map[string]string) error {
	if username, ok := credentials["username"]; ok && username != "" {
		s.username = username
	}

	// The token endpoint rejects requests without a descriptive User-Agent.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{
		Transport: &userAgentTransport{agent: s.userAgent},
	})

	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		s.token = &oauth2.Token{AccessToken: accessToken}
		s.httpClient = s.config.Client(ctx, s.token)
		return nil
	}

	password := credentials["password"]
	if s.username == "" || password == "" {
		return fmt.Errorf("%w: username and password required for password grant", shared.ErrMissingCredentials)
	}

	token, err := s.config.PasswordCredentialsToken(ctx, s.username, password)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	s.token = token
	s.httpClient = s.config.Client(ctx, s.token)
	return nil
}

func (s *RedditSession) Name() string {
	return s.username
}

// userAgentTransport stamps the configured User-Agent on every request.
type userAgentTransport struct {
	base  http.RoundTripper
	agent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", t.agent)
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

// do performs an authenticated request against the OAuth API host and decodes
// the JSON response into result when non-nil. Transport and auth failures map
// to [shared.ErrRemoteUnavailable]; a conflict maps to [shared.ErrAlreadyExists].
func (s *RedditSession) do(ctx context.Context, method, endpoint string, body io.Reader, contentType string, result any) error {
	if s.token == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrRemoteUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, redditBaseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "bearer "+s.token.AccessToken)
	req.Header.Set("User-Agent", s.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("%w: status %d", shared.ErrAlreadyExists, resp.StatusCode)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d (auth)", shared.ErrRemoteUnavailable, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", shared.ErrNotFound, endpoint)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: status %d", shared.ErrRemoteUnavailable, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// doForm performs a form-encoded request (the mutation endpoints all take forms).
func (s *RedditSession) doForm(ctx context.Context, method, endpoint string, form url.Values, result any) error {
	return s.do(ctx, method, endpoint, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", result)
}

// doJSON performs a request with a JSON body (friends and prefs endpoints).
func (s *RedditSession) doJSON(ctx context.Context, method, endpoint string, payload any, result any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}
	return s.do(ctx, method, endpoint, strings.NewReader(string(data)), "application/json", result)
}

// drainListing pages through a listing endpoint by cursor until the remote
// signals end-of-collection.
func (s *RedditSession) drainListing(ctx context.Context, path string) ([]redditThing, error) {
	var things []redditThing
	after := ""

	for {
		endpoint := fmt.Sprintf("%s?limit=%d&raw_json=1", path, s.pageLimit)
		if after != "" {
			endpoint += "&after=" + url.QueryEscape(after)
		}

		var page redditListing
		if err := s.do(ctx, http.MethodGet, endpoint, nil, "", &page); err != nil {
			return nil, err
		}

		things = append(things, page.Data.Children...)

		if page.Data.After == "" || len(page.Data.Children) == 0 {
			break
		}
		after = page.Data.After
	}

	return things, nil
}

// ListSubscriptions retrieves every subreddit the account subscribes to.
func (s *RedditSession) ListSubscriptions(ctx context.Context) ([]models.Item, error) {
	things, err := s.drainListing(ctx, "/subreddits/mine/subscriber")
	if err != nil {
		return nil, err
	}

	items := make([]models.Item, 0, len(things))
	for _, thing := range things {
		var sub subredditData
		if err := json.Unmarshal(thing.Data, &sub); err != nil {
			return nil, fmt.Errorf("failed to decode subreddit: %w", err)
		}
		if sub.DisplayName == "" {
			continue
		}
		items = append(items, models.NewSubredditItem(sub.DisplayName))
	}

	return items, nil
}

// ListFriends retrieves the account's friend list. The endpoint returns the
// full UserList in one response; there is no cursor.
func (s *RedditSession) ListFriends(ctx context.Context) ([]models.Item, error) {
	var friends friendList
	if err := s.do(ctx, http.MethodGet, "/api/v1/me/friends?raw_json=1", nil, "", &friends); err != nil {
		return nil, err
	}

	items := make([]models.Item, 0, len(friends.Data.Children))
	for _, friend := range friends.Data.Children {
		if friend.Name == "" {
			continue
		}
		items = append(items, models.NewUserItem(friend.Name))
	}

	return items, nil
}

// ListSaved retrieves the account's saved posts and comments. The kind
// discriminant is resolved here, once, from the thing envelope.
func (s *RedditSession) ListSaved(ctx context.Context) ([]models.Item, error) {
	if s.username == "" {
		return nil, fmt.Errorf("%w: username unknown", shared.ErrNotAuthenticated)
	}

	things, err := s.drainListing(ctx, fmt.Sprintf("/user/%s/saved", url.PathEscape(s.username)))
	if err != nil {
		return nil, err
	}

	items := make([]models.Item, 0, len(things))
	for _, thing := range things {
		var saved savedData
		if err := json.Unmarshal(thing.Data, &saved); err != nil {
			return nil, fmt.Errorf("failed to decode saved item: %w", err)
		}
		if saved.ID == "" {
			continue
		}
		items = append(items, models.NewSavedItem(saved.ID, savedKind(thing.Kind)))
	}

	return items, nil
}

// savedKind maps a thing-kind prefix to the item discriminant. Unknown kinds
// pass through untranslated; the reconciler records them as failures.
func savedKind(kind string) models.ItemKind {
	switch kind {
	case "t1":
		return models.KindComment
	case "t3":
		return models.KindPost
	default:
		return models.ItemKind(kind)
	}
}

// fullname builds the kind-prefixed ID the save/unsave endpoints expect.
func fullname(item models.Item) (string, error) {
	switch item.Kind {
	case models.KindPost:
		return "t3_" + item.ID, nil
	case models.KindComment:
		return "t1_" + item.ID, nil
	default:
		return "", fmt.Errorf("%w: %q", shared.ErrUnsupportedItemKind, item.Kind)
	}
}

// Preferences retrieves the account's full preference mapping.
func (s *RedditSession) Preferences(ctx context.Context) (models.PreferenceMap, error) {
	var prefs models.PreferenceMap
	if err := s.do(ctx, http.MethodGet, "/api/v1/me/prefs", nil, "", &prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

// SetPreferences overwrites the account's preferences wholesale.
func (s *RedditSession) SetPreferences(ctx context.Context, prefs models.PreferenceMap) error {
	return s.doJSON(ctx, http.MethodPatch, "/api/v1/me/prefs", prefs, nil)
}

// Subscribe joins the primary subreddit plus the others in one bulk call.
func (s *RedditSession) Subscribe(ctx context.Context, primary string, others []string) error {
	return s.bulkSubscribe(ctx, "sub", primary, others)
}

// Unsubscribe leaves the primary subreddit plus the others in one bulk call.
func (s *RedditSession) Unsubscribe(ctx context.Context, primary string, others []string) error {
	return s.bulkSubscribe(ctx, "unsub", primary, others)
}

func (s *RedditSession) bulkSubscribe(ctx context.Context, action, primary string, others []string) error {
	if primary == "" {
		return shared.ErrInvalidBulkRequest
	}

	names := append([]string{primary}, others...)
	form := url.Values{
		"action":  {action},
		"sr_name": {strings.Join(names, ",")},
	}
	if action == "sub" {
		form.Set("skip_initial_defaults", "true")
	}

	return s.doForm(ctx, http.MethodPost, "/api/subscribe", form, nil)
}

// Friend adds the named account to the friend list.
func (s *RedditSession) Friend(ctx context.Context, username string) error {
	endpoint := "/api/v1/me/friends/" + url.PathEscape(username)
	return s.doJSON(ctx, http.MethodPut, endpoint, map[string]string{"name": username}, nil)
}

// Unfriend removes the named account from the friend list.
func (s *RedditSession) Unfriend(ctx context.Context, username string) error {
	endpoint := "/api/v1/me/friends/" + url.PathEscape(username)
	return s.do(ctx, http.MethodDelete, endpoint, nil, "", nil)
}

// Save saves one post or comment.
func (s *RedditSession) Save(ctx context.Context, item models.Item) error {
	fn, err := fullname(item)
	if err != nil {
		return err
	}
	return s.doForm(ctx, http.MethodPost, "/api/save", url.Values{"id": {fn}}, nil)
}

// Unsave removes one post or comment from the saved listing.
func (s *RedditSession) Unsave(ctx context.Context, item models.Item) error {
	fn, err := fullname(item)
	if err != nil {
		return err
	}
	return s.doForm(ctx, http.MethodPost, "/api/unsave", url.Values{"id": {fn}}, nil)
}
