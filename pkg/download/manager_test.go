package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/batrachia/libfetch/pkg/auth"
	mock_auth "github.com/batrachia/libfetch/pkg/auth/mocks"
	pkgerrors "github.com/batrachia/libfetch/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var noRetry = WithRetryPolicy(RetryPolicy{})

func TestNewManager(t *testing.T) {
	tests := []struct {
		name       string
		timeout    time.Duration
		userAgent  string
		expectedUA string
	}{
		{
			name:       "default user agent",
			timeout:    time.Second,
			expectedUA: DefaultUserAgent,
		},
		{
			name:       "custom user agent",
			timeout:    2 * time.Second,
			userAgent:  "test-agent/1.0",
			expectedUA: "test-agent/1.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(tt.timeout, tt.userAgent)
			require.NotNil(t, m)
			assert.Equal(t, tt.timeout, m.client.Timeout)
			assert.Equal(t, tt.expectedUA, m.userAgent)
			assert.Equal(t, DefaultRetryPolicy, m.retry)
		})
	}
}

func TestFetch_SingleFile(t *testing.T) {
	tests := []struct {
		name           string
		status         int
		expectError    bool
		expectErrorMsg string
	}{
		{
			name:   "successful download",
			status: http.StatusOK,
		},
		{
			name:           "not found",
			status:         http.StatusNotFound,
			expectError:    true,
			expectErrorMsg: "unexpected status code: 404",
		},
		{
			name:           "bad request",
			status:         http.StatusBadRequest,
			expectError:    true,
			expectErrorMsg: "unexpected status code: 400",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("test content"))
			}))
			defer server.Close()

			parsedURL, err := url.Parse(server.URL + "/v0.1.0/webrtc-linux-x64.a")
			require.NoError(t, err)

			m := NewManager(time.Second, "test", noRetry)
			path, err := m.Fetch(context.Background(), Item{ID: "webrtc", URL: parsedURL, Filename: "webrtc-linux-x64.a"}, Options{Dir: t.TempDir()})
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectErrorMsg)
				assert.ErrorIs(t, err, pkgerrors.ErrDownloadFailed)
				return
			}

			require.NoError(t, err)
			content, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, "test content", string(content))
		})
	}
}

func TestFetch_WithChecksum(t *testing.T) {
	h := sha256.New()
	_, err := h.Write([]byte("test content"))
	require.NoError(t, err)
	checksum := hex.EncodeToString(h.Sum(nil))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("test content"))
	}))
	defer server.Close()

	tests := []struct {
		name        string
		checksum    string
		expectError bool
	}{
		{
			name:     "valid checksum",
			checksum: checksum,
		},
		{
			name:     "valid checksum uppercase",
			checksum: "  " + string(toUpper(checksum)) + "\n",
		},
		{
			name:        "invalid checksum",
			checksum:    "invalidchecksum1234567890abcdef1234567890abcdef1234567890abcdef12345678",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsedURL, err := url.Parse(server.URL)
			require.NoError(t, err)

			dir := t.TempDir()
			m := NewManager(time.Second, "test", noRetry)
			_, err = m.Fetch(context.Background(), Item{ID: "sys", URL: parsedURL, Checksum: tt.checksum, Filename: "sys.a"}, Options{Dir: dir})

			if tt.expectError {
				require.Error(t, err)
				assert.ErrorIs(t, err, pkgerrors.ErrFileHashMismatch)
				entries, readErr := os.ReadDir(dir)
				require.NoError(t, readErr)
				assert.Empty(t, entries, "rejected download must not stay on disk")
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func toUpper(s string) []byte {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return b
}

func TestFetch_ReusesExistingFile(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("fresh"))
	}))
	defer server.Close()

	parsedURL, err := url.Parse(server.URL)
	require.NoError(t, err)

	dir := t.TempDir()
	m := NewManager(time.Second, "test", noRetry)
	item := Item{ID: "webrtc", URL: parsedURL, Filename: "webrtc.a"}

	_, err = m.Fetch(context.Background(), item, Options{Dir: dir})
	require.NoError(t, err)
	_, err = m.Fetch(context.Background(), item, Options{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())

	_, err = m.Fetch(context.Background(), item, Options{Dir: dir, Force: true})
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestFetch_RetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("finally"))
	}))
	defer server.Close()

	parsedURL, err := url.Parse(server.URL)
	require.NoError(t, err)

	m := NewManager(time.Second, "test", WithRetryPolicy(RetryPolicy{Attempts: 3, Min: time.Millisecond, Max: 5 * time.Millisecond}))
	path, err := m.Fetch(context.Background(), Item{ID: "webrtc", URL: parsedURL, Filename: "webrtc.a"}, Options{Dir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, int32(3), hits.Load())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "finally", string(content))
}

func TestFetch_DoesNotRetryClientErrors(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	parsedURL, err := url.Parse(server.URL)
	require.NoError(t, err)

	m := NewManager(time.Second, "test", WithRetryPolicy(RetryPolicy{Attempts: 5, Min: time.Millisecond, Max: time.Millisecond}))
	_, err = m.Fetch(context.Background(), Item{ID: "webrtc", URL: parsedURL}, Options{Dir: t.TempDir()})
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Code)
}

func TestFetch_AppliesAuthentication(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte("private asset"))
	}))
	defer server.Close()

	parsedURL, err := url.Parse(server.URL)
	require.NoError(t, err)

	anonymous := NewManager(time.Second, "test", noRetry)
	_, err = anonymous.Fetch(context.Background(), Item{ID: "sys", URL: parsedURL}, Options{Dir: t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code: 401")

	authed := NewManager(time.Second, "test", noRetry, WithAuthenticator(auth.BearerAuth{Token: "s3cret"}))
	_, err = authed.Fetch(context.Background(), Item{ID: "sys", URL: parsedURL}, Options{Dir: t.TempDir()})
	require.NoError(t, err)
}

func TestFetch_AuthenticatorErrorAbortsRequest(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	parsedURL, err := url.Parse(server.URL)
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	authenticator := mock_auth.NewMockAuthenticator(ctrl)
	authenticator.EXPECT().Apply(gomock.Any()).Return(errors.New("token expired")).Times(1)

	m := NewManager(time.Second, "test", noRetry, WithAuthenticator(authenticator))
	_, err = m.Fetch(context.Background(), Item{ID: "webrtc", URL: parsedURL}, Options{Dir: t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to apply authentication")
	assert.Contains(t, err.Error(), "token expired")
	assert.Equal(t, int32(0), hits.Load())
}

func TestFetch_RelativeDir(t *testing.T) {
	parsedURL, err := url.Parse("http://127.0.0.1/asset")
	require.NoError(t, err)

	m := NewManager(time.Second, "test", noRetry)
	_, err = m.Fetch(context.Background(), Item{ID: "x", URL: parsedURL}, Options{Dir: "relative/dir"})
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidPath)
}

func TestFetchAll_Concurrent(t *testing.T) {
	serverResponses := map[string]string{
		"webrtc-linux-x64.a": "webrtc archive",
		"sys-linux-x64.a":    "sys archive",
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		content, exists := serverResponses[r.URL.Path[1:]]
		if !exists {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(content))
	}))
	defer server.Close()

	var items []Item
	for name := range serverResponses {
		parsedURL, err := url.Parse(server.URL + "/" + name)
		require.NoError(t, err)
		items = append(items, Item{ID: name, URL: parsedURL, Filename: name})
	}
	// A duplicate URL under another ID is downloaded once and shared.
	items = append(items, Item{ID: "alias", URL: items[0].URL, Filename: items[0].Filename})

	tests := []struct {
		name        string
		concurrency int
	}{
		{"default concurrency", 0},
		{"single worker", 1},
		{"three workers", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(5*time.Second, "test", noRetry)
			results, err := m.FetchAll(context.Background(), items, Options{Dir: t.TempDir(), Concurrency: tt.concurrency})
			require.NoError(t, err)
			require.Len(t, results, len(items))

			for _, item := range items[:2] {
				content, err := os.ReadFile(results[item.ID])
				require.NoError(t, err)
				assert.Equal(t, serverResponses[item.Filename], string(content))
			}
			assert.Equal(t, results[items[0].ID], results["alias"])
		})
	}
}

func TestFetchAll_FirstErrorWins(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	ok, _ := url.Parse(server.URL + "/ok")
	missing, _ := url.Parse(server.URL + "/missing")

	m := NewManager(time.Second, "test", noRetry)
	_, err := m.FetchAll(context.Background(), []Item{
		{ID: "webrtc", URL: ok, Filename: "ok"},
		{ID: "sys", URL: missing, Filename: "missing"},
	}, Options{Dir: t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code: 404")

	_, err = m.FetchAll(context.Background(), []Item{{ID: "nil"}}, Options{Dir: t.TempDir()})
	require.Error(t, err)
}
