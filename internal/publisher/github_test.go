package publisher

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/spm-release/internal/domain/release"
)

// fakeGitHub records uploads made against a minimal releases API.
type fakeGitHub struct {
	mu      sync.Mutex
	uploads map[string][]byte
	types   map[string]string
	auth    []string
}

func newFakeGitHub(t *testing.T) (*fakeGitHub, *httptest.Server) {
	t.Helper()

	fake := &fakeGitHub{
		uploads: make(map[string][]byte),
		types:   make(map[string]string),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v3/repos/{owner}/{repo}/releases/tags/{tag}", func(w http.ResponseWriter, r *http.Request) {
		fake.record(r)

		if r.PathValue("tag") != "v1.2.3" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"message":"Not Found"}`)

			return
		}

		_ = json.NewEncoder(w).Encode(map[string]any{"id": 42, "tag_name": "v1.2.3"})
	})
	mux.HandleFunc("POST /api/uploads/repos/{owner}/{repo}/releases/{id}/assets", func(w http.ResponseWriter, r *http.Request) {
		fake.record(r)

		name := r.URL.Query().Get("name")
		if name == "dup.tar.gz" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = io.WriteString(w, `{"message":"Validation Failed","errors":[{"resource":"ReleaseAsset","code":"already_exists","field":"name"}]}`)

			return
		}

		if r.PathValue("id") != "42" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"message":"Not Found"}`)

			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		fake.mu.Lock()
		fake.uploads[name] = body
		fake.types[name] = r.Header.Get("Content-Type")
		fake.mu.Unlock()

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":                   7,
			"name":                 name,
			"url":                  "http://" + r.Host + "/api/v3/repos/octo/ext/releases/assets/7",
			"browser_download_url": "https://github.com/octo/ext/releases/download/v1.2.3/" + name,
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return fake, srv
}

func (f *fakeGitHub) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.auth = append(f.auth, r.Header.Get("Authorization"))
}

func newTestGitHub(t *testing.T, srv *httptest.Server) *GitHub {
	t.Helper()

	g, err := NewGitHub("secret-token", WithEnterpriseURLs(srv.URL, ""), WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	return g
}

// TestNewGitHub_RequiresToken rejects an empty credential.
func TestNewGitHub_RequiresToken(t *testing.T) {
	t.Parallel()

	_, err := NewGitHub("  ")
	require.ErrorIs(t, err, release.ErrConfiguration)
}

// TestEnterpriseRoot strips REST suffixes.
func TestEnterpriseRoot(t *testing.T) {
	t.Parallel()

	require.Equal(t, "https://ghe.local", enterpriseRoot("https://ghe.local/api/v3"))
	require.Equal(t, "https://ghe.local", enterpriseRoot("https://ghe.local/api/v3/"))
	require.Equal(t, "https://ghe.local", enterpriseRoot("https://ghe.local/api/uploads/"))
	require.Equal(t, "https://ghe.local", enterpriseRoot("https://ghe.local"))
}

// TestGitHub_FindRelease resolves a tag and maps 404 to a resolution error.
func TestGitHub_FindRelease(t *testing.T) {
	t.Parallel()

	fake, srv := newFakeGitHub(t)
	g := newTestGitHub(t, srv)

	rel, err := g.FindRelease(context.Background(), "octo", "ext", "v1.2.3")
	require.NoError(t, err)
	require.Equal(t, Release{Owner: "octo", Repo: "ext", Tag: "v1.2.3", ID: 42}, rel)

	_, err = g.FindRelease(context.Background(), "octo", "ext", "v9.9.9")
	require.ErrorIs(t, err, release.ErrResolution)

	require.Contains(t, fake.auth[0], "secret-token")
}

// TestGitHub_Upload sends the data once and returns the public URL.
func TestGitHub_Upload(t *testing.T) {
	t.Parallel()

	fake, srv := newFakeGitHub(t)
	g := newTestGitHub(t, srv)
	rel := Release{Owner: "octo", Repo: "ext", Tag: "v1.2.3", ID: 42}

	asset, err := g.Upload(context.Background(), rel, Upload{
		Name:      "ext-v1.2.3-linux-x86_64.tar.gz",
		MediaType: "application/gzip",
		Data:      []byte("archive bytes"),
	})
	require.NoError(t, err)
	require.Equal(t, int64(7), asset.ID)
	require.Equal(t, "ext-v1.2.3-linux-x86_64.tar.gz", asset.Name)
	require.Equal(t, "https://github.com/octo/ext/releases/download/v1.2.3/ext-v1.2.3-linux-x86_64.tar.gz", asset.URL)
	require.Contains(t, asset.APIURL, "/releases/assets/7")

	require.Equal(t, []byte("archive bytes"), fake.uploads["ext-v1.2.3-linux-x86_64.tar.gz"])
	require.Equal(t, "application/gzip", fake.types["ext-v1.2.3-linux-x86_64.tar.gz"])
}

// TestGitHub_UploadDuplicate maps the already_exists validation error.
func TestGitHub_UploadDuplicate(t *testing.T) {
	t.Parallel()

	_, srv := newFakeGitHub(t)
	g := newTestGitHub(t, srv)

	_, err := g.Upload(context.Background(), Release{Owner: "octo", Repo: "ext", ID: 42}, Upload{
		Name: "dup.tar.gz",
		Data: []byte("x"),
	})
	require.ErrorIs(t, err, release.ErrAssetUpload)
	require.ErrorIs(t, err, release.ErrDuplicateAsset)

	_, err = g.Upload(context.Background(), Release{Owner: "octo", Repo: "ext", ID: 1}, Upload{
		Name: "other.tar.gz",
		Data: []byte("x"),
	})
	require.ErrorIs(t, err, release.ErrAssetUpload)
	require.NotErrorIs(t, err, release.ErrDuplicateAsset)
}
