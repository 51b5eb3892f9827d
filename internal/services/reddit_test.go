package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/desertthunder/rdx/internal/models"
	"github.com/desertthunder/rdx/internal/shared"
	mock "github.com/desertthunder/rdx/internal/testing"
	"golang.org/x/oauth2"
)

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

// testSession returns an authenticated session wired to a MockRoundTripper,
// with the limiter opened wide so multi-request tests do not stall.
func testSession(t *testing.T, responses ...*http.Response) (*RedditSession, *mock.MockRoundTripper) {
	t.Helper()

	session, err := NewRedditSession(map[string]string{
		"client_id":     "test-id",
		"client_secret": "test-secret",
		"username":      "old",
		"rate_limit":    "1000",
	})
	if err != nil {
		t.Fatalf("NewRedditSession() error = %v", err)
	}

	rt := mock.NewMockRoundTripper(responses, nil)
	session.token = &oauth2.Token{AccessToken: "test-token"}
	session.httpClient = &http.Client{Transport: rt}
	return session, rt
}

func requestBody(t *testing.T, req *http.Request) string {
	t.Helper()
	data, err := io.ReadAll(req.Body)
	if err != nil {
		t.Fatalf("failed to read request body: %v", err)
	}
	return string(data)
}

func TestNewRedditSession(t *testing.T) {
	tests := []struct {
		name        string
		credentials map[string]string
		wantErr     error
	}{
		{
			name:        "valid credentials",
			credentials: map[string]string{"client_id": "id", "client_secret": "secret"},
		},
		{
			name:        "missing client_id",
			credentials: map[string]string{"client_secret": "secret"},
			wantErr:     shared.ErrMissingCredentials,
		},
		{
			name:        "missing client_secret",
			credentials: map[string]string{"client_id": "id"},
			wantErr:     shared.ErrMissingCredentials,
		},
		{
			name:        "malformed rate_limit",
			credentials: map[string]string{"client_id": "id", "client_secret": "secret", "rate_limit": "fast"},
			wantErr:     shared.ErrInvalidCredentials,
		},
		{
			name:        "negative rate_limit",
			credentials: map[string]string{"client_id": "id", "client_secret": "secret", "rate_limit": "-1"},
			wantErr:     shared.ErrInvalidCredentials,
		},
		{
			name:        "malformed page_limit",
			credentials: map[string]string{"client_id": "id", "client_secret": "secret", "page_limit": "lots"},
			wantErr:     shared.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := NewRedditSession(tt.credentials)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("NewRedditSession() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewRedditSession() error = %v", err)
			}
			if session.userAgent != defaultUserAgent {
				t.Errorf("userAgent = %q, want default", session.userAgent)
			}
			if session.pageLimit != defaultPageLimit {
				t.Errorf("pageLimit = %d, want %d", session.pageLimit, defaultPageLimit)
			}
		})
	}
}

func TestRedditSessionNotAuthenticated(t *testing.T) {
	session, err := NewRedditSession(map[string]string{"client_id": "id", "client_secret": "secret"})
	if err != nil {
		t.Fatalf("NewRedditSession() error = %v", err)
	}

	_, err = session.ListSubscriptions(context.Background())
	if !errors.Is(err, shared.ErrNotAuthenticated) {
		t.Errorf("ListSubscriptions() error = %v, want ErrNotAuthenticated", err)
	}
}

func TestListSubscriptionsDrainsPages(t *testing.T) {
	page1 := `{"kind":"Listing","data":{"after":"t5_cursor","children":[
		{"kind":"t5","data":{"display_name":"GoLang"}},
		{"kind":"t5","data":{"display_name":"pics"}}
	]}}`
	page2 := `{"kind":"Listing","data":{"after":"","children":[
		{"kind":"t5","data":{"display_name":"AskReddit"}}
	]}}`

	session, rt := testSession(t, jsonResponse(200, page1), jsonResponse(200, page2))

	items, err := session.ListSubscriptions(context.Background())
	if err != nil {
		t.Fatalf("ListSubscriptions() error = %v", err)
	}

	if len(items) != 3 {
		t.Fatalf("items = %d, want 3 across both pages", len(items))
	}
	if items[0].ID != "golang" || items[0].Name != "GoLang" {
		t.Errorf("item[0] = %+v, want lowercased ID with original display name", items[0])
	}

	if len(rt.Requests) != 2 {
		t.Fatalf("requests = %d, want 2", len(rt.Requests))
	}
	first, second := rt.Requests[0], rt.Requests[1]
	if !strings.HasPrefix(first.URL.Path, "/subreddits/mine/subscriber") {
		t.Errorf("first request path = %s", first.URL.Path)
	}
	if first.URL.Query().Get("after") != "" {
		t.Error("first page should carry no cursor")
	}
	if got := second.URL.Query().Get("after"); got != "t5_cursor" {
		t.Errorf("second page cursor = %q, want t5_cursor", got)
	}
	if got := first.Header.Get("Authorization"); got != "bearer test-token" {
		t.Errorf("Authorization = %q", got)
	}
	if first.Header.Get("User-Agent") == "" {
		t.Error("request missing User-Agent")
	}
}

func TestListFriends(t *testing.T) {
	body := `{"kind":"UserList","data":{"children":[
		{"name":"Alice","id":"t2_1","date":1600000000},
		{"name":"bob","id":"t2_2","date":1600000001}
	]}}`

	session, rt := testSession(t, jsonResponse(200, body))

	items, err := session.ListFriends(context.Background())
	if err != nil {
		t.Fatalf("ListFriends() error = %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	if items[0].ID != "alice" || items[0].Name != "Alice" || items[0].Kind != models.KindUser {
		t.Errorf("item[0] = %+v", items[0])
	}
	// The UserList endpoint has no cursor.
	if len(rt.Requests) != 1 {
		t.Errorf("requests = %d, want 1", len(rt.Requests))
	}
}

func TestListSavedResolvesKinds(t *testing.T) {
	body := `{"kind":"Listing","data":{"after":"","children":[
		{"kind":"t3","data":{"id":"abc123"}},
		{"kind":"t1","data":{"id":"def456"}},
		{"kind":"t4","data":{"id":"msg789"}}
	]}}`

	session, rt := testSession(t, jsonResponse(200, body))

	items, err := session.ListSaved(context.Background())
	if err != nil {
		t.Fatalf("ListSaved() error = %v", err)
	}

	want := []models.Item{
		{ID: "abc123", Kind: models.KindPost},
		{ID: "def456", Kind: models.KindComment},
		{ID: "msg789", Kind: models.ItemKind("t4")},
	}
	if len(items) != len(want) {
		t.Fatalf("items = %d, want %d", len(items), len(want))
	}
	for i := range want {
		if items[i] != want[i] {
			t.Errorf("item[%d] = %+v, want %+v", i, items[i], want[i])
		}
	}

	if !strings.HasPrefix(rt.Requests[0].URL.Path, "/user/old/saved") {
		t.Errorf("request path = %s, want /user/old/saved", rt.Requests[0].URL.Path)
	}
}

func TestSubscribeBulkForm(t *testing.T) {
	session, rt := testSession(t, jsonResponse(200, `{}`))

	err := session.Subscribe(context.Background(), "golang", []string{"pics", "AskReddit"})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	req := rt.Requests[0]
	if req.Method != http.MethodPost || req.URL.Path != "/api/subscribe" {
		t.Errorf("request = %s %s, want POST /api/subscribe", req.Method, req.URL.Path)
	}

	form, err := url.ParseQuery(requestBody(t, req))
	if err != nil {
		t.Fatalf("failed to parse form body: %v", err)
	}
	if got := form.Get("action"); got != "sub" {
		t.Errorf("action = %q, want sub", got)
	}
	if got := form.Get("sr_name"); got != "golang,pics,AskReddit" {
		t.Errorf("sr_name = %q, want primary first then others", got)
	}
	if got := form.Get("skip_initial_defaults"); got != "true" {
		t.Errorf("skip_initial_defaults = %q, want true", got)
	}
}

func TestUnsubscribeBulkForm(t *testing.T) {
	session, rt := testSession(t, jsonResponse(200, `{}`))

	if err := session.Unsubscribe(context.Background(), "pics", nil); err != nil {
		t.Fatalf("Unsubscribe() error = %v", err)
	}

	form, err := url.ParseQuery(requestBody(t, rt.Requests[0]))
	if err != nil {
		t.Fatalf("failed to parse form body: %v", err)
	}
	if got := form.Get("action"); got != "unsub" {
		t.Errorf("action = %q, want unsub", got)
	}
	if got := form.Get("sr_name"); got != "pics" {
		t.Errorf("sr_name = %q, want pics", got)
	}
	if form.Has("skip_initial_defaults") {
		t.Error("unsub should not carry skip_initial_defaults")
	}
}

func TestBulkSubscribeRequiresPrimary(t *testing.T) {
	session, rt := testSession(t)

	err := session.Subscribe(context.Background(), "", []string{"golang"})
	if !errors.Is(err, shared.ErrInvalidBulkRequest) {
		t.Errorf("Subscribe() error = %v, want ErrInvalidBulkRequest", err)
	}
	if len(rt.Requests) != 0 {
		t.Error("invalid bulk request still reached the remote")
	}
}

func TestFriendSendsJSON(t *testing.T) {
	session, rt := testSession(t, jsonResponse(200, `{}`))

	if err := session.Friend(context.Background(), "alice"); err != nil {
		t.Fatalf("Friend() error = %v", err)
	}

	req := rt.Requests[0]
	if req.Method != http.MethodPut || req.URL.Path != "/api/v1/me/friends/alice" {
		t.Errorf("request = %s %s, want PUT /api/v1/me/friends/alice", req.Method, req.URL.Path)
	}
	if got := requestBody(t, req); got != `{"name":"alice"}` {
		t.Errorf("body = %s", got)
	}
}

func TestUnfriend(t *testing.T) {
	session, rt := testSession(t, jsonResponse(204, ``))

	if err := session.Unfriend(context.Background(), "bob"); err != nil {
		t.Fatalf("Unfriend() error = %v", err)
	}

	req := rt.Requests[0]
	if req.Method != http.MethodDelete || req.URL.Path != "/api/v1/me/friends/bob" {
		t.Errorf("request = %s %s, want DELETE /api/v1/me/friends/bob", req.Method, req.URL.Path)
	}
}

func TestSaveFullnames(t *testing.T) {
	tests := []struct {
		name    string
		item    models.Item
		wantID  string
		wantErr error
	}{
		{
			name:   "post gets a t3 fullname",
			item:   models.NewSavedItem("abc123", models.KindPost),
			wantID: "t3_abc123",
		},
		{
			name:   "comment gets a t1 fullname",
			item:   models.NewSavedItem("def456", models.KindComment),
			wantID: "t1_def456",
		},
		{
			name:    "unknown kind rejected before the call",
			item:    models.Item{ID: "msg789", Kind: models.ItemKind("message")},
			wantErr: shared.ErrUnsupportedItemKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, rt := testSession(t, jsonResponse(200, `{}`))

			err := session.Save(context.Background(), tt.item)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Save() error = %v, want %v", err, tt.wantErr)
				}
				if len(rt.Requests) != 0 {
					t.Error("rejected item still reached the remote")
				}
				return
			}
			if err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			form, err := url.ParseQuery(requestBody(t, rt.Requests[0]))
			if err != nil {
				t.Fatalf("failed to parse form body: %v", err)
			}
			if got := form.Get("id"); got != tt.wantID {
				t.Errorf("id = %q, want %q", got, tt.wantID)
			}
		})
	}
}

func TestPreferencesRoundTrip(t *testing.T) {
	session, rt := testSession(t,
		jsonResponse(200, `{"nightmode":true,"lang":"en"}`),
		jsonResponse(200, `{}`),
	)

	prefs, err := session.Preferences(context.Background())
	if err != nil {
		t.Fatalf("Preferences() error = %v", err)
	}
	if prefs["nightmode"] != true || prefs["lang"] != "en" {
		t.Errorf("prefs = %v", prefs)
	}

	if err := session.SetPreferences(context.Background(), prefs); err != nil {
		t.Fatalf("SetPreferences() error = %v", err)
	}

	patch := rt.Requests[1]
	if patch.Method != http.MethodPatch || patch.URL.Path != "/api/v1/me/prefs" {
		t.Errorf("request = %s %s, want PATCH /api/v1/me/prefs", patch.Method, patch.URL.Path)
	}
	if ct := patch.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"conflict is already-exists", http.StatusConflict, shared.ErrAlreadyExists},
		{"unauthorized is remote-unavailable", http.StatusUnauthorized, shared.ErrRemoteUnavailable},
		{"forbidden is remote-unavailable", http.StatusForbidden, shared.ErrRemoteUnavailable},
		{"not found", http.StatusNotFound, shared.ErrNotFound},
		{"server error is remote-unavailable", http.StatusInternalServerError, shared.ErrRemoteUnavailable},
		{"rate limited is remote-unavailable", http.StatusTooManyRequests, shared.ErrRemoteUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, _ := testSession(t, jsonResponse(tt.status, `{}`))
			err := session.Friend(context.Background(), "alice")
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTransportFailure(t *testing.T) {
	session, _ := testSession(t)
	session.httpClient = &http.Client{
		Transport: mock.NewMockRoundTripper(nil, errors.New("connection refused")),
	}

	_, err := session.ListFriends(context.Background())
	if !errors.Is(err, shared.ErrRemoteUnavailable) {
		t.Errorf("error = %v, want ErrRemoteUnavailable", err)
	}
}

func TestSavedKind(t *testing.T) {
	if got := savedKind("t1"); got != models.KindComment {
		t.Errorf("savedKind(t1) = %v", got)
	}
	if got := savedKind("t3"); got != models.KindPost {
		t.Errorf("savedKind(t3) = %v", got)
	}
	if got := savedKind("t4"); got != models.ItemKind("t4") {
		t.Errorf("savedKind(t4) = %v, unknown kinds pass through", got)
	}
}
