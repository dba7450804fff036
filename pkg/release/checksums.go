package release

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/batrachia/libfetch/pkg/fsutil"
)

// Checksums maps asset names to lowercase hex SHA-256 digests.
type Checksums map[string]string

// ParseChecksums reads the sha256sum format: "<hex>  <name>" per line. A "*"
// binary marker before the name is accepted; blank lines and # comments are skipped.
func ParseChecksums(r io.Reader) (Checksums, error) {
	sums := Checksums{}
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 || len(fields[0]) != 64 {
			return nil, fmt.Errorf("malformed checksum line %d: %q", line, text)
		}
		sums[strings.TrimPrefix(fields[1], "*")] = fsutil.NormalizeHex(fields[0])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read checksums: %w", err)
	}
	return sums, nil
}

// ReadChecksumsFile parses path; a missing file yields an empty set.
func ReadChecksumsFile(path string) (Checksums, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Checksums{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return ParseChecksums(f)
}

// WriteTo writes the checksums sorted by asset name.
func (c Checksums) WriteTo(w io.Writer) (int64, error) {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)

	var total int64
	for _, name := range names {
		n, err := fmt.Fprintf(w, "%s  %s\n", c[name], name)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteFile replaces path atomically with the checksums.
func (c Checksums) WriteFile(path string) error {
	if err := fsutil.EnsureFileDir(path); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".sha256sums-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary checksums file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := c.WriteTo(tmp); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write checksums: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, fsutil.FileModeDefault); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}
