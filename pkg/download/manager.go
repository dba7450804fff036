package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/batrachia/libfetch/internal/logger"
	"github.com/batrachia/libfetch/pkg/auth"
	pkgerrors "github.com/batrachia/libfetch/pkg/errors"
	"github.com/batrachia/libfetch/pkg/fsutil"
)

// DefaultUserAgent is sent when NewManager is given an empty user agent.
const DefaultUserAgent = "libfetch/1.0"

// ManagerImpl is an HTTP download manager with checksum verification,
// URL de-duplication and bounded retries.
type ManagerImpl struct {
	client    *http.Client
	userAgent string
	auth      auth.Authenticator
	retry     RetryPolicy
}

// Option configures a ManagerImpl.
type Option func(*ManagerImpl)

// WithAuthenticator applies a to every request.
func WithAuthenticator(a auth.Authenticator) Option {
	return func(m *ManagerImpl) { m.auth = a }
}

// WithRetryPolicy replaces DefaultRetryPolicy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(m *ManagerImpl) { m.retry = p }
}

// WithHTTPClient replaces the default client. Its timeout is kept as is.
func WithHTTPClient(c *http.Client) Option {
	return func(m *ManagerImpl) { m.client = c }
}

// NewManager creates a new download manager with the given timeout and user agent.
func NewManager(timeout time.Duration, userAgent string, opts ...Option) *ManagerImpl {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	m := &ManagerImpl{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		retry:     DefaultRetryPolicy,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// FetchAll downloads multiple items concurrently and returns a map of item IDs to downloaded file paths.
func (m *ManagerImpl) FetchAll(ctx context.Context, items []Item, opts Options) (map[string]string, error) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = max(2, runtime.NumCPU()/2)
	}
	if err := prepareDir(opts.Dir); err != nil {
		return nil, err
	}

	byURL, err := buildURLIndex(items)
	if err != nil {
		return nil, err
	}
	results, err := m.runDownloadWorkers(ctx, items, byURL, opts)
	if err != nil {
		return nil, err
	}
	return mapResultsByID(items, results), nil
}

// Fetch downloads a single item and returns the path to the downloaded file.
func (m *ManagerImpl) Fetch(ctx context.Context, item Item, opts Options) (string, error) {
	if err := prepareDir(opts.Dir); err != nil {
		return "", err
	}
	return m.fetchOne(ctx, item, opts)
}

func prepareDir(dir string) error {
	if dir == "" || !filepath.IsAbs(dir) {
		return fmt.Errorf("download dir must be absolute: %w: %s", pkgerrors.ErrInvalidPath, dir)
	}
	if err := os.MkdirAll(dir, fsutil.DirModeSecure); err != nil {
		return pkgerrors.Wrap(err, "could not create download dir")
	}
	return nil
}

func buildURLIndex(items []Item) (map[string][]int, error) {
	byURL := make(map[string][]int)
	for i, it := range items {
		if it.URL == nil {
			return nil, fmt.Errorf("item %d has nil URL: %w", i, pkgerrors.ErrDownloadFailed)
		}
		key := it.URL.String()
		byURL[key] = append(byURL[key], i)
	}
	return byURL, nil
}

func mapResultsByID(items []Item, results []string) map[string]string {
	out := make(map[string]string, len(items))
	for i, it := range items {
		out[it.ID] = results[i]
	}
	return out
}

func (m *ManagerImpl) runDownloadWorkers(ctx context.Context, items []Item, byURL map[string][]int, opts Options) ([]string, error) {
	results := make([]string, len(items))
	var firstErr error
	var mu sync.Mutex

	tasks := make(chan string)
	var wg sync.WaitGroup

	for w := 0; w < opts.Concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for urlStr := range tasks {
				idx := byURL[urlStr][0]
				path, err := m.fetchOne(ctx, items[idx], opts)
				mu.Lock()
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					continue
				}
				for _, i := range byURL[urlStr] {
					results[i] = path
				}
				mu.Unlock()
			}
		}()
	}

	for _, urlStr := range sortedKeys(byURL) {
		tasks <- urlStr
	}
	close(tasks)
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

func (m *ManagerImpl) fetchOne(ctx context.Context, item Item, opts Options) (string, error) {
	if item.URL == nil {
		return "", fmt.Errorf("nil URL: %w", pkgerrors.ErrDownloadFailed)
	}
	absPath := filepath.Join(opts.Dir, selectFilename(item))
	if !opts.Force {
		if reuse, ok := tryReuseExisting(absPath, item.Checksum); ok {
			logger.Debug("Reusing downloaded file", logger.Fields{"id": item.ID, "path": reuse})
			return reuse, nil
		}
	}

	logger.Debug("Downloading", logger.Fields{"id": item.ID, "url": item.URL.Redacted()})
	tmpPath, err := withRetry(ctx, m.retry, func() (string, error) {
		return m.downloadToTemp(ctx, item, absPath)
	})
	if err != nil {
		return "", pkgerrors.Wrapf(err, "fetching %s", item.URL.Redacted())
	}
	if item.Checksum != "" {
		ok, err := verifySHA256(tmpPath, item.Checksum)
		if err != nil {
			_ = os.Remove(tmpPath)
			return "", err
		}
		if !ok {
			_ = os.Remove(tmpPath)
			return "", fmt.Errorf("checksum mismatch for %s: %w", item.URL.Redacted(), pkgerrors.ErrFileHashMismatch)
		}
	}
	if err := finalizeFile(tmpPath, absPath); err != nil {
		return "", err
	}
	return absPath, nil
}

func (m *ManagerImpl) downloadToTemp(ctx context.Context, item Item, absPath string) (string, error) {
	resp, err := m.doRequest(ctx, item)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	return writeBodyToTemp(resp, absPath)
}

func selectFilename(item Item) string {
	if item.Filename != "" {
		return item.Filename
	}
	if item.Checksum != "" {
		return fsutil.NormalizeHex(item.Checksum)
	}
	h := sha256.Sum256([]byte(item.URL.String()))
	return hex.EncodeToString(h[:])
}

func tryReuseExisting(absPath, checksum string) (string, bool) {
	if st, err := os.Stat(absPath); err == nil && st.Mode().IsRegular() && st.Size() > 0 {
		if checksum == "" {
			return absPath, true
		}
		ok, err := verifySHA256(absPath, checksum)
		if err == nil && ok {
			return absPath, true
		}
	}
	return "", false
}

func (m *ManagerImpl) doRequest(ctx context.Context, item Item) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, item.URL.String(), http.NoBody)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", m.userAgent)
	if m.auth != nil {
		if err := m.auth.Apply(req); err != nil {
			return nil, pkgerrors.Wrap(err, "failed to apply authentication")
		}
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", pkgerrors.ErrDownloadFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, &StatusError{Code: resp.StatusCode}
	}
	return resp, nil
}

func writeBodyToTemp(resp *http.Response, absPath string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(absPath), fsutil.DirModeSecure); err != nil {
		return "", pkgerrors.Wrap(err, "could not create download dir")
	}
	tmp, err := os.CreateTemp(filepath.Dir(absPath), "dl-*.tmp")
	if err != nil {
		return "", pkgerrors.Wrap(err, "could not create temp file")
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", pkgerrors.Wrap(err, "could not write file")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", pkgerrors.Wrap(err, "could not sync file")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", pkgerrors.Wrap(err, "could not close file")
	}
	return tmpPath, nil
}

func finalizeFile(tmpPath, absPath string) error {
	if err := fsutil.Move(tmpPath, absPath); err != nil {
		_ = os.Remove(tmpPath)
		return pkgerrors.Wrap(err, "could not finalize file")
	}
	if err := os.Chmod(absPath, fsutil.FileModeSecure); err != nil {
		return pkgerrors.Wrap(err, "could not set permissions")
	}
	return nil
}

func verifySHA256(path string, wantHex string) (bool, error) {
	got, err := fsutil.SHA256File(path)
	if err != nil {
		return false, err
	}
	return got == fsutil.NormalizeHex(wantHex), nil
}

func sortedKeys(m map[string][]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
