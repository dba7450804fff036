package cache

// Manager defines the interface for cache management operations.
type Manager interface {
	Clean(options CleanOptions) (*CleanResult, error)
	GetInfo() (*Info, error)
	GetDirectory() string
	SetDirectory(dir string) error
}

// CleanOptions specifies what to clean from the cache.
type CleanOptions struct {
	All       bool
	Artifacts bool
	Downloads bool
	// Keep is a version constraint such as ">= 1.2, < 2". Version directories
	// satisfying it are preserved; everything else in the selected areas is removed.
	Keep string
}

// CleanResult contains information about what was cleaned.
type CleanResult struct {
	TotalFreed      int64
	ArtifactFreed   int64
	DownloadFreed   int64
	RemovedVersions []string
}

// Info represents cache information.
type Info struct {
	Directory     string
	TotalSize     int64
	ArtifactSize  int64
	ArtifactFiles int
	DownloadSize  int64
	DownloadFiles int
	Versions      []string
}
