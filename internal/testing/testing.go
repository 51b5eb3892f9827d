// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/desertthunder/rdx/internal/models"
)

// MockSession is a configurable test double for [services.Session].
//
// Listing fields feed the list calls; mutation calls are recorded on the
// corresponding slices so tests can assert what was issued.
type MockSession struct {
	Username      string
	Subscriptions []models.Item
	Friends       []models.Item
	Saved         []models.Item
	Prefs         models.PreferenceMap

	AuthenticateErr error
	ListErr         error
	PrefsErr        error
	SetPrefsErr     error
	MutationErr     error

	SubscribeCalls   []BulkCall
	UnsubscribeCalls []BulkCall
	FriendCalls      []string
	UnfriendCalls    []string
	SaveCalls        []models.Item
	UnsaveCalls      []models.Item
	SetPrefsCalls    []models.PreferenceMap
}

// BulkCall records one bulk subscribe/unsubscribe invocation.
type BulkCall struct {
	Primary string
	Others  []string
}

func (m *MockSession) Authenticate(ctx context.Context, credentials map[string]string) error {
	return m.AuthenticateErr
}

func (m *MockSession) ListSubscriptions(ctx context.Context) ([]models.Item, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Subscriptions, nil
}

func (m *MockSession) ListFriends(ctx context.Context) ([]models.Item, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Friends, nil
}

func (m *MockSession) ListSaved(ctx context.Context) ([]models.Item, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Saved, nil
}

func (m *MockSession) Preferences(ctx context.Context) (models.PreferenceMap, error) {
	if m.PrefsErr != nil {
		return nil, m.PrefsErr
	}
	return m.Prefs, nil
}

func (m *MockSession) SetPreferences(ctx context.Context, prefs models.PreferenceMap) error {
	if m.SetPrefsErr != nil {
		return m.SetPrefsErr
	}
	m.SetPrefsCalls = append(m.SetPrefsCalls, prefs)
	return nil
}

func (m *MockSession) Subscribe(ctx context.Context, primary string, others []string) error {
	if m.MutationErr != nil {
		return m.MutationErr
	}
	m.SubscribeCalls = append(m.SubscribeCalls, BulkCall{Primary: primary, Others: others})
	return nil
}

func (m *MockSession) Unsubscribe(ctx context.Context, primary string, others []string) error {
	if m.MutationErr != nil {
		return m.MutationErr
	}
	m.UnsubscribeCalls = append(m.UnsubscribeCalls, BulkCall{Primary: primary, Others: others})
	return nil
}

func (m *MockSession) Friend(ctx context.Context, username string) error {
	if m.MutationErr != nil {
		return m.MutationErr
	}
	m.FriendCalls = append(m.FriendCalls, username)
	return nil
}

func (m *MockSession) Unfriend(ctx context.Context, username string) error {
	if m.MutationErr != nil {
		return m.MutationErr
	}
	m.UnfriendCalls = append(m.UnfriendCalls, username)
	return nil
}

func (m *MockSession) Save(ctx context.Context, item models.Item) error {
	if m.MutationErr != nil {
		return m.MutationErr
	}
	m.SaveCalls = append(m.SaveCalls, item)
	return nil
}

func (m *MockSession) Unsave(ctx context.Context, item models.Item) error {
	if m.MutationErr != nil {
		return m.MutationErr
	}
	m.UnsaveCalls = append(m.UnsaveCalls, item)
	return nil
}

func (m *MockSession) Name() string {
	if m.Username == "" {
		return "mock"
	}
	return m.Username
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	Responses []*http.Response
	Err       error
	Requests  []*http.Request
}

func NewMockRoundTripper(responses []*http.Response, err error) *MockRoundTripper {
	return &MockRoundTripper{Responses: responses, Err: err}
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Responses) == 0 {
		return nil, errors.New("no responses queued")
	}
	resp := m.Responses[0]
	if len(m.Responses) > 1 {
		m.Responses = m.Responses[1:]
	}
	return resp, nil
}

// FCloser simulates a failure when reading a response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

var _ io.ReadCloser = (*FCloser)(nil)

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
