package publisher

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/oshokin/spm-release/internal/domain/release"
	"github.com/oshokin/spm-release/internal/repository/index"
)

// DefaultFilePermissions is the mode of assets written by Directory.
const DefaultFilePermissions = 0o644

// Directory stores assets under <root>/<owner>/<repo>/<tag>/ and keeps an
// index of them in <root>/<owner>/<repo>/<tag>.json.
type Directory struct {
	root string
	// mu serialises index updates of concurrent uploads.
	mu sync.Mutex
}

// NewDirectory returns a publisher rooted at root.
func NewDirectory(root string) *Directory {
	return &Directory{
		root: filepath.Clean(root),
	}
}

// FindRelease creates the release directory and its index when missing.
func (d *Directory) FindRelease(ctx context.Context, owner, repo, tag string) (Release, error) {
	if err := os.MkdirAll(d.releaseDir(owner, repo, tag), 0o750); err != nil {
		return Release{}, fmt.Errorf("%w: create release directory: %w", release.ErrResolution, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	stored, err := d.loadIndex(ctx, owner, repo, tag)
	if err != nil {
		return Release{}, fmt.Errorf("%w: %w", release.ErrResolution, err)
	}

	return Release{
		Owner: stored.Owner,
		Repo:  stored.Repo,
		Tag:   stored.Tag,
		ID:    stored.ID,
	}, nil
}

// Upload writes the asset, refusing to overwrite an existing one.
func (d *Directory) Upload(ctx context.Context, rel Release, upload Upload) (Asset, error) {
	if upload.Name == "" || upload.Name != filepath.Base(upload.Name) {
		return Asset{}, fmt.Errorf("%w: invalid asset name %q", release.ErrAssetUpload, upload.Name)
	}

	path := filepath.Join(d.releaseDir(rel.Owner, rel.Repo, rel.Tag), upload.Name)

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, DefaultFilePermissions)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return Asset{}, fmt.Errorf("%w: %w: %s", release.ErrAssetUpload, release.ErrDuplicateAsset, upload.Name)
		}

		return Asset{}, fmt.Errorf("%w: create %s: %w", release.ErrAssetUpload, upload.Name, err)
	}

	if _, err = file.Write(upload.Data); err != nil {
		_ = file.Close()
		return Asset{}, fmt.Errorf("%w: write %s: %w", release.ErrAssetUpload, upload.Name, err)
	}

	if err = file.Close(); err != nil {
		return Asset{}, fmt.Errorf("%w: close %s: %w", release.ErrAssetUpload, upload.Name, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	location := (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()

	d.mu.Lock()
	defer d.mu.Unlock()

	stored, err := d.loadIndex(ctx, rel.Owner, rel.Repo, rel.Tag)
	if err != nil {
		return Asset{}, fmt.Errorf("%w: %w", release.ErrAssetUpload, err)
	}

	added := stored.Add(index.Asset{
		Name:      upload.Name,
		MediaType: upload.MediaType,
		Size:      len(upload.Data),
		URL:       location,
	})

	if err = d.indexRepository(rel.Owner, rel.Repo, rel.Tag).Save(ctx, stored); err != nil {
		return Asset{}, fmt.Errorf("%w: %w", release.ErrAssetUpload, err)
	}

	return Asset{
		ID:     added.ID,
		Name:   added.Name,
		URL:    location,
		APIURL: location,
	}, nil
}

// loadIndex returns the stored index, creating it on first use.
// The caller holds d.mu.
func (d *Directory) loadIndex(ctx context.Context, owner, repo, tag string) (*index.Release, error) {
	repository := d.indexRepository(owner, repo, tag)

	stored, err := repository.Load(ctx)
	if err == nil {
		return stored, nil
	}

	if !errors.Is(err, index.ErrNotFound) {
		return nil, err
	}

	hasher := fnv.New64a()
	_, _ = hasher.Write([]byte(owner + "/" + repo + "@" + tag))

	stored = &index.Release{
		Owner: owner,
		Repo:  repo,
		Tag:   tag,
		ID:    int64(hasher.Sum64() >> 1), //nolint:gosec // Shifted into the positive range.
	}

	if err = repository.Save(ctx, stored); err != nil {
		return nil, err
	}

	return stored, nil
}

func (d *Directory) indexRepository(owner, repo, tag string) index.Repository { //nolint:ireturn // Storage seam.
	return index.NewFileRepository(d.releaseDir(owner, repo, tag) + ".json")
}

func (d *Directory) releaseDir(owner, repo, tag string) string {
	return filepath.Join(d.root, owner, repo, tag)
}
