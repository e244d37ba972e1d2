package publisher

import "context"

// Release identifies the release assets are attached to.
type Release struct {
	// Owner is the repository owner.
	Owner string
	// Repo is the repository name.
	Repo string
	// Tag is the git tag of the release.
	Tag string
	// ID is the numeric release identifier assigned by the host.
	ID int64
}

// Upload is one named blob to attach to a release.
type Upload struct {
	// Name is the asset file name.
	Name string
	// MediaType is the content type sent with the asset.
	MediaType string
	// Data is the asset content.
	Data []byte
}

// Asset is the result of a successful upload.
type Asset struct {
	// ID is the asset identifier assigned by the host.
	ID int64
	// Name is the stored asset name.
	Name string
	// URL is the public download location.
	URL string
	// APIURL is the API location of the asset.
	APIURL string
}

// Publisher finds releases and attaches assets to them.
type Publisher interface {
	// FindRelease looks a release up by tag.
	FindRelease(ctx context.Context, owner, repo, tag string) (Release, error)
	// Upload attaches one asset to rel.
	Upload(ctx context.Context, rel Release, upload Upload) (Asset, error)
}
