package publisher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/google/go-github/v82/github"

	"github.com/oshokin/spm-release/internal/domain/release"
	"github.com/oshokin/spm-release/internal/logger"
	"github.com/oshokin/spm-release/internal/version"
)

var errTokenRequired = errors.New("github token must be provided")

// GitHub publishes assets to GitHub releases.
type GitHub struct {
	client     *github.Client
	token      string
	apiURL     string
	uploadURL  string
	httpClient *http.Client
}

// GitHubOption configures a GitHub publisher.
type GitHubOption func(*GitHub)

// WithEnterpriseURLs points the publisher at a GitHub Enterprise instance.
// Empty values keep the public GitHub endpoints.
func WithEnterpriseURLs(apiURL, uploadURL string) GitHubOption {
	return func(g *GitHub) {
		g.apiURL = apiURL
		g.uploadURL = uploadURL
	}
}

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(client *http.Client) GitHubOption {
	return func(g *GitHub) {
		g.httpClient = client
	}
}

// NewGitHub returns a publisher authenticated with a bearer token.
func NewGitHub(token string, opts ...GitHubOption) (*GitHub, error) {
	g := &GitHub{
		token: strings.TrimSpace(token),
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.token == "" {
		return nil, fmt.Errorf("%w: %w", release.ErrConfiguration, errTokenRequired)
	}

	client := github.NewClient(g.httpClient).WithAuthToken(g.token)
	client.UserAgent = version.UserAgent()

	if g.apiURL != "" || g.uploadURL != "" {
		apiURL, uploadURL := g.apiURL, g.uploadURL
		if uploadURL == "" {
			uploadURL = enterpriseRoot(apiURL)
		}

		if apiURL == "" {
			apiURL = enterpriseRoot(uploadURL)
		}

		var err error

		client, err = client.WithEnterpriseURLs(apiURL, uploadURL)
		if err != nil {
			return nil, fmt.Errorf("%w: enterprise urls: %w", release.ErrConfiguration, err)
		}
	}

	g.client = client

	return g, nil
}

// FindRelease looks the release up by tag.
func (g *GitHub) FindRelease(ctx context.Context, owner, repo, tag string) (Release, error) {
	rel, resp, err := g.client.Repositories.GetReleaseByTag(ctx, owner, repo, tag)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return Release{}, fmt.Errorf("%w: no release for tag %q in %s/%s", release.ErrResolution, tag, owner, repo)
		}

		return Release{}, fmt.Errorf("%w: get release %q of %s/%s: %w", release.ErrResolution, tag, owner, repo, err)
	}

	logger.DebugKV(ctx, "Found release", "tag", tag, "release_id", rel.GetID())

	return Release{
		Owner: owner,
		Repo:  repo,
		Tag:   tag,
		ID:    rel.GetID(),
	}, nil
}

// Upload attaches the asset. go-github reads upload bodies from a file, so
// the data is staged in a temporary file for the duration of the call.
func (g *GitHub) Upload(ctx context.Context, rel Release, upload Upload) (Asset, error) {
	file, cleanup, err := stage(upload.Data)
	if err != nil {
		return Asset{}, fmt.Errorf("%w: stage %s: %w", release.ErrAssetUpload, upload.Name, err)
	}

	defer cleanup()

	opts := &github.UploadOptions{
		Name:      upload.Name,
		MediaType: upload.MediaType,
	}

	asset, _, err := g.client.Repositories.UploadReleaseAsset(ctx, rel.Owner, rel.Repo, rel.ID, opts, file)
	if err != nil {
		if isAlreadyExists(err) {
			return Asset{}, fmt.Errorf("%w: %w: %s", release.ErrAssetUpload, release.ErrDuplicateAsset, upload.Name)
		}

		return Asset{}, fmt.Errorf("%w: upload %s: %w", release.ErrAssetUpload, upload.Name, err)
	}

	return Asset{
		ID:     asset.GetID(),
		Name:   asset.GetName(),
		URL:    asset.GetBrowserDownloadURL(),
		APIURL: asset.GetURL(),
	}, nil
}

// enterpriseRoot strips the REST suffix so go-github can derive both the
// API and the upload endpoints of a GitHub Enterprise host.
func enterpriseRoot(u string) string {
	u = strings.TrimSuffix(u, "/")
	u = strings.TrimSuffix(u, "/api/v3")

	return strings.TrimSuffix(u, "/api/uploads")
}

// stage writes data to a temporary file positioned at its start.
func stage(data []byte) (*os.File, func(), error) {
	file, err := os.CreateTemp("", "spm-release-asset-*")
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		_ = file.Close()
		_ = os.Remove(file.Name())
	}

	if _, err = file.Write(data); err != nil {
		cleanup()
		return nil, nil, err
	}

	if _, err = file.Seek(0, 0); err != nil {
		cleanup()
		return nil, nil, err
	}

	return file, cleanup, nil
}

// isAlreadyExists reports the validation failure GitHub returns for a
// duplicate asset name.
func isAlreadyExists(err error) bool {
	var errResp *github.ErrorResponse
	if !errors.As(err, &errResp) {
		return false
	}

	if errResp.Response == nil || errResp.Response.StatusCode != http.StatusUnprocessableEntity {
		return false
	}

	for _, e := range errResp.Errors {
		if e.Code == "already_exists" {
			return true
		}
	}

	return false
}
