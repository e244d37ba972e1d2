package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

const filePermissions = 0o644

// Repository defines persistence operations for a release index.
type Repository interface {
	Load(ctx context.Context) (*Release, error)
	Save(ctx context.Context, release *Release) error
}

// Release is the stored description of one release and its assets.
type Release struct {
	Owner  string  `json:"owner"`
	Repo   string  `json:"repo"`
	Tag    string  `json:"tag"`
	ID     int64   `json:"id"`
	Assets []Asset `json:"assets"`
}

// Asset is one stored asset.
type Asset struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	MediaType string `json:"content_type"`
	Size      int    `json:"size"`
	URL       string `json:"browser_download_url"`
}

// Asset returns the asset called name.
func (r *Release) Asset(name string) (Asset, bool) {
	i := slices.IndexFunc(r.Assets, func(a Asset) bool { return a.Name == name })
	if i < 0 {
		return Asset{}, false
	}

	return r.Assets[i], true
}

// Add appends a and assigns it the next asset ID.
func (r *Release) Add(a Asset) Asset {
	a.ID = int64(len(r.Assets)) + 1
	r.Assets = append(r.Assets, a)

	return a
}

// FileRepository persists a release index to a JSON file on disk.
type FileRepository struct {
	// path is the filesystem location of the index file.
	path string
	// mu protects concurrent access to the index file.
	mu sync.Mutex
}

// ErrNotFound is returned when the index file does not exist yet.
var ErrNotFound = errors.New("release index not found")

// NewFileRepository creates a repository that reads and writes JSON at path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the index from disk.
func (r *FileRepository) Load(_ context.Context) (*Release, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read release index: %w", err)
	}

	var release Release
	if err = json.Unmarshal(contents, &release); err != nil {
		return nil, fmt.Errorf("decode release index: %w", err)
	}

	return &release, nil
}

// Save writes the index through a temporary file renamed into place, so a
// reader never sees a partial index.
func (r *FileRepository) Save(_ context.Context, release *Release) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if release.Assets == nil {
		release.Assets = []Asset{}
	}

	data, err := json.MarshalIndent(release, "", "  ")
	if err != nil {
		return fmt.Errorf("encode release index: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".index-*")
	if err != nil {
		return fmt.Errorf("create release index: %w", err)
	}

	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err = tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write release index: %w", err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close release index: %w", err)
	}

	if err = os.Chmod(tmp.Name(), filePermissions); err != nil {
		return fmt.Errorf("chmod release index: %w", err)
	}

	if err = os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("replace release index: %w", err)
	}

	return nil
}
