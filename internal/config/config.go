package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/spm-release/internal/archive"
	"github.com/oshokin/spm-release/internal/domain/platform"
	"github.com/oshokin/spm-release/internal/domain/release"
	"github.com/oshokin/spm-release/internal/logger"
	"github.com/oshokin/spm-release/internal/manifest"
)

// Config holds every input of a release run. It is built once and handed
// to the release service; nothing reads ambient state after that.
type Config struct {
	// Project is the project name used in asset names.
	Project string `yaml:"name"`
	// Token is the bearer token for the release host.
	Token string `yaml:"github_token"`
	// Platforms is the "<os>-<cpu>: patterns" mapping as YAML text.
	Platforms Platforms `yaml:"platforms"`
	// AssetTemplate names archives; see DefaultTemplate.
	AssetTemplate string `yaml:"asset_name"`
	// ManifestSchema selects the shape of spm.json.
	ManifestSchema manifest.Schema `yaml:"manifest_schema"`
	// Description is copied into the manifest.
	Description string `yaml:"description"`
	// Extensions lists extensions for the extensions manifest schema.
	Extensions []manifest.Extension `yaml:"extensions"`
	// SkipManifest disables publishing spm.json.
	SkipManifest bool `yaml:"skip_spm"`
	// ArchiveFormats overrides the archive kind per operating system.
	ArchiveFormats map[platform.OS]archive.Kind `yaml:"archive_formats"`
	// Repository is "<owner>/<name>".
	Repository string `yaml:"repository"`
	// Ref is a git ref; a "refs/tags/" prefix is stripped to get the tag.
	Ref string `yaml:"ref"`
	// Tag is the release tag; derived from Ref when empty.
	Tag string `yaml:"tag"`
	// Version fills $VERSION; defaults to Tag.
	Version string `yaml:"version"`
	// RequireSemver rejects versions that are not semantic versions.
	RequireSemver bool `yaml:"require_semver"`
	// APIURL is the REST endpoint of a GitHub Enterprise host.
	APIURL string `yaml:"api_url"`
	// UploadURL is the upload endpoint of a GitHub Enterprise host.
	UploadURL string `yaml:"upload_url"`
	// WorkingDirectory is the base of relative platform patterns.
	WorkingDirectory string `yaml:"working_directory"`
	// ChecksumsFile receives the checksum lines when set.
	ChecksumsFile string `yaml:"checksums_file"`
	// DryRunDir stores assets in a local directory instead of uploading them.
	DryRunDir string `yaml:"dry_run_dir"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	owner string
	repo  string
}

const (
	// DefaultConfigFilename is looked up when no --config is given.
	DefaultConfigFilename = "spm-release.yaml"

	// DefaultTemplate names archives of the flat and extensions schemas.
	DefaultTemplate = "$PROJECT-$VERSION-$OS-$CPU"
	// DefaultSplitTemplate names archives of the split schema.
	DefaultSplitTemplate = "$PROJECT-$VERSION-$TYPE-$OS-$CPU"

	// DefaultFilePermissions is the mode of files written by the tool.
	DefaultFilePermissions = 0o644

	tagRefPrefix    = "refs/tags/"
	publicGitHubAPI = "https://api.github.com"
	dryRunOwner     = "local"
)

var (
	errConfigIsNotSet   = errors.New("configuration is not set")
	errProjectRequired  = errors.New("project name must be provided")
	errTokenRequired    = errors.New("github token must be provided")
	errPlatforms        = errors.New("platform mapping must be provided")
	errRepository       = errors.New("repository must look like <owner>/<name>")
	errTagRequired      = errors.New("release tag must be provided")
	errNotTagRef        = errors.New("ref does not point to a tag")
	errUnknownOS        = errors.New("unknown operating system in archive_formats")
	errUnknownLogLevel  = errors.New("unknown log level")
	errTypeWithoutSplit = errors.New("$TYPE is only available with the split manifest schema")
)

// DefaultArchiveFormats is the archive kind used per operating system:
// zip on Windows, gzip-compressed tar elsewhere.
func DefaultArchiveFormats() map[platform.OS]archive.Kind {
	return map[platform.OS]archive.Kind{
		platform.Linux:   archive.KindTarGz,
		platform.MacOS:   archive.KindTarGz,
		platform.Windows: archive.KindZip,
	}
}

// Load reads configuration from a YAML file. A missing file yields an empty
// configuration when optional is true.
func Load(path string, optional bool) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return new(Config), nil
		}

		return nil, fmt.Errorf("%w: read settings: %w", release.ErrConfiguration, err)
	}

	var cfg Config
	if err = yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("%w: unmarshal settings: %w", release.ErrConfiguration, err)
	}

	return &cfg, nil
}

// Validate checks required fields, derives owner, repo, tag and version,
// and fills defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: %w", release.ErrConfiguration, errConfigIsNotSet)
	}

	if err := validate(cfg); err != nil {
		return fmt.Errorf("%w: %w", release.ErrConfiguration, err)
	}

	return nil
}

func validate(cfg *Config) error {
	cfg.Project = strings.TrimSpace(cfg.Project)
	if cfg.Project == "" {
		return errProjectRequired
	}

	if cfg.DryRunDir == "" && strings.TrimSpace(cfg.Token) == "" {
		return errTokenRequired
	}

	if strings.TrimSpace(string(cfg.Platforms)) == "" {
		return errPlatforms
	}

	if err := cfg.resolveRepository(); err != nil {
		return err
	}

	if err := cfg.resolveTag(); err != nil {
		return err
	}

	if cfg.ManifestSchema == "" {
		cfg.ManifestSchema = manifest.SchemaFlat
	}

	if _, err := manifest.ParseSchema(string(cfg.ManifestSchema)); err != nil {
		return err
	}

	if cfg.AssetTemplate == "" {
		cfg.AssetTemplate = DefaultTemplate
		if cfg.ManifestSchema.Splits() {
			cfg.AssetTemplate = DefaultSplitTemplate
		}
	}

	if !cfg.ManifestSchema.Splits() && usesType(cfg.AssetTemplate) {
		return errTypeWithoutSplit
	}

	if err := cfg.resolveArchiveFormats(); err != nil {
		return err
	}

	if strings.TrimSuffix(cfg.APIURL, "/") == publicGitHubAPI {
		cfg.APIURL = ""
	}

	if _, ok := logger.ParseLogLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("%w: %q", errUnknownLogLevel, cfg.LogLevel)
	}

	return nil
}

func usesType(template string) bool {
	return strings.Contains(template, "$TYPE") || strings.Contains(template, "${TYPE")
}

func (c *Config) resolveRepository() error {
	repository := strings.TrimSpace(c.Repository)
	if repository == "" && c.DryRunDir != "" {
		repository = dryRunOwner + "/" + c.Project
	}

	owner, repo, ok := strings.Cut(repository, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return fmt.Errorf("%w: %q", errRepository, c.Repository)
	}

	c.Repository = repository
	c.owner, c.repo = owner, repo

	return nil
}

func (c *Config) resolveTag() error {
	if c.Tag == "" {
		ref := strings.TrimSpace(c.Ref)
		if ref != "" && strings.HasPrefix(ref, "refs/") && !strings.HasPrefix(ref, tagRefPrefix) {
			return fmt.Errorf("%w: %q", errNotTagRef, ref)
		}

		c.Tag = strings.TrimPrefix(ref, tagRefPrefix)
	}

	if c.Tag == "" {
		return errTagRequired
	}

	if c.Version == "" {
		c.Version = c.Tag
	}

	if c.RequireSemver {
		if _, err := semver.NewVersion(c.Version); err != nil {
			return fmt.Errorf("version %q: %w", c.Version, err)
		}
	}

	return nil
}

func (c *Config) resolveArchiveFormats() error {
	formats := DefaultArchiveFormats()

	for system, kind := range c.ArchiveFormats {
		canonical, ok := platform.ParseOS(string(system))
		if !ok {
			return fmt.Errorf("%w: %q", errUnknownOS, system)
		}

		parsed, err := archive.ParseKind(string(kind))
		if err != nil {
			return err
		}

		formats[canonical] = parsed
	}

	c.ArchiveFormats = formats

	return nil
}

// Owner returns the repository owner. Valid after Validate.
func (c *Config) Owner() string {
	return c.owner
}

// Repo returns the repository name. Valid after Validate.
func (c *Config) Repo() string {
	return c.repo
}

// ArchiveKind returns the archive kind used for system.
func (c *Config) ArchiveKind(system platform.OS) archive.Kind {
	if kind, ok := c.ArchiveFormats[system]; ok {
		return kind
	}

	return DefaultArchiveFormats()[system]
}

// Dump writes the configuration as YAML with the token masked.
func Dump(w io.Writer, cfg *Config) error {
	redacted := *cfg
	if redacted.Token != "" {
		redacted.Token = "***"
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2) //nolint:mnd // Conventional YAML indentation.

	if err := encoder.Encode(&redacted); err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	return encoder.Close()
}
