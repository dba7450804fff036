// Package testutil serves fake release directories for tests.
package testutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
)

// ReleaseServer serves a directory laid out as {root}/v{version}/{asset} and
// records every request path.
type ReleaseServer struct {
	Server *httptest.Server
	URL    string
	Root   string

	mu       sync.Mutex
	requests []string
}

// NewReleaseServer starts a server over root and stops it when the test ends.
func NewReleaseServer(t *testing.T, root string) *ReleaseServer {
	t.Helper()
	rs := &ReleaseServer{Root: root}
	files := http.FileServer(http.Dir(root))
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs.mu.Lock()
		rs.requests = append(rs.requests, r.URL.Path)
		rs.mu.Unlock()
		files.ServeHTTP(w, r)
	}))
	rs.URL = rs.Server.URL
	t.Cleanup(rs.Server.Close)
	return rs
}

// Requests returns the request paths seen so far.
func (rs *ReleaseServer) Requests() []string {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return append([]string(nil), rs.requests...)
}

// RequestCount returns how many requests were served.
func (rs *ReleaseServer) RequestCount() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return len(rs.requests)
}

// WriteRelease writes assets under root/v{version} together with a SHA256SUMS
// file covering all of them.
func WriteRelease(t *testing.T, root, version string, assets map[string][]byte) string {
	t.Helper()
	dir := filepath.Join(root, "v"+strings.TrimPrefix(version, "v"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("Failed to create release dir: %v", err)
	}

	names := make([]string, 0, len(assets))
	for name := range assets {
		names = append(names, name)
	}
	sort.Strings(names)

	var sums strings.Builder
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), assets[name], 0o644); err != nil {
			t.Fatalf("Failed to write asset %s: %v", name, err)
		}
		h := sha256.Sum256(assets[name])
		fmt.Fprintf(&sums, "%s  %s\n", hex.EncodeToString(h[:]), name)
	}
	if err := os.WriteFile(filepath.Join(dir, "SHA256SUMS"), []byte(sums.String()), 0o644); err != nil {
		t.Fatalf("Failed to write SHA256SUMS: %v", err)
	}
	return dir
}

// SetupTestConfig writes a config file pointing at baseURL and cacheDir and returns its path.
// The target platform is pinned to linux/amd64.
func SetupTestConfig(t *testing.T, baseURL, cacheDir string) string {
	t.Helper()

	configStr := fmt.Sprintf(`settings:
  cache_dir: %q
  log_level: debug
  platform:
    os: linux
    arch: amd64
release:
  base_url: %q
  version: "1.2.3"
  checksums: true
`, cacheDir, baseURL)

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(configStr), 0o600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return configPath
}
