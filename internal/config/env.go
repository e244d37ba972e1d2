package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oshokin/spm-release/internal/archive"
	"github.com/oshokin/spm-release/internal/domain/platform"
	"github.com/oshokin/spm-release/internal/domain/release"
	"github.com/oshokin/spm-release/internal/manifest"
)

// Environment variables read by ApplyEnv. INPUT_* names follow the GitHub
// Actions convention for action inputs.
const (
	EnvRef        = "GITHUB_REF"
	EnvRepository = "GITHUB_REPOSITORY"
	EnvAPIURL     = "GITHUB_API_URL"
	EnvWorkspace  = "GITHUB_WORKSPACE"

	EnvInputName          = "INPUT_NAME"
	EnvInputToken         = "INPUT_GITHUB-TOKEN"
	EnvInputPlatforms     = "INPUT_PLATFORMS"
	EnvInputAssetName     = "INPUT_ASSET-NAME"
	EnvInputSchema        = "INPUT_MANIFEST-SCHEMA"
	EnvInputDescription   = "INPUT_DESCRIPTION"
	EnvInputSkipManifest  = "INPUT_SKIP-SPM"
	EnvInputWindowsFormat = "INPUT_WINDOWS-FORMAT"
	EnvInputChecksumsFile = "INPUT_CHECKSUMS-FILE"
	EnvInputRequireSemver = "INPUT_REQUIRE-SEMVER"
	EnvInputLogLevel      = "INPUT_LOG-LEVEL"
	EnvGitHubToken        = "GITHUB_TOKEN"
	EnvRefName            = "GITHUB_REF_NAME"
)

// LookupFunc reports the value of an environment variable.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overlays environment values onto cfg. Set, non-empty variables
// win over values loaded from the file.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		if !ok {
			return "", false
		}

		v = strings.TrimSpace(v)

		return v, v != ""
	}

	strs := []struct {
		key string
		dst *string
	}{
		{EnvInputName, &cfg.Project},
		{EnvGitHubToken, &cfg.Token},
		{EnvInputToken, &cfg.Token},
		{EnvInputAssetName, &cfg.AssetTemplate},
		{EnvInputDescription, &cfg.Description},
		{EnvInputChecksumsFile, &cfg.ChecksumsFile},
		{EnvInputLogLevel, &cfg.LogLevel},
		{EnvRepository, &cfg.Repository},
		{EnvRef, &cfg.Ref},
		{EnvAPIURL, &cfg.APIURL},
		{EnvWorkspace, &cfg.WorkingDirectory},
	}
	for _, s := range strs {
		if v, ok := get(s.key); ok {
			*s.dst = v
		}
	}

	if cfg.Ref == "" {
		if v, ok := get(EnvRefName); ok {
			cfg.Tag = v
		}
	}

	if v, ok := lookup(EnvInputPlatforms); ok && strings.TrimSpace(v) != "" {
		cfg.Platforms = Platforms(v)
	}

	if v, ok := get(EnvInputSchema); ok {
		schema, err := manifest.ParseSchema(v)
		if err != nil {
			return err
		}

		cfg.ManifestSchema = schema
	}

	if v, ok := get(EnvInputWindowsFormat); ok {
		kind, err := archive.ParseKind(v)
		if err != nil {
			return err
		}

		if cfg.ArchiveFormats == nil {
			cfg.ArchiveFormats = DefaultArchiveFormats()
		}

		cfg.ArchiveFormats[platform.Windows] = kind
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{EnvInputSkipManifest, &cfg.SkipManifest},
		{EnvInputRequireSemver, &cfg.RequireSemver},
	}
	for _, b := range bools {
		v, ok := get(b.key)
		if !ok {
			continue
		}

		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", release.ErrConfiguration, b.key, err)
		}

		*b.dst = parsed
	}

	return nil
}
