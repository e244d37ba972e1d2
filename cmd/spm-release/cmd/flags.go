package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oshokin/spm-release/internal/config"
	"github.com/oshokin/spm-release/internal/logger"
	"github.com/oshokin/spm-release/internal/manifest"
)

// Flag names.
const (
	flagConfig         = "config"
	flagName           = "name"
	flagPlatforms      = "platforms"
	flagAssetName      = "asset-name"
	flagManifestSchema = "manifest-schema"
	flagDescription    = "description"
	flagSkipManifest   = "skip-spm"
	flagRepository     = "repository"
	flagTag            = "tag"
	flagVersion        = "release-version"
	flagRequireSemver  = "require-semver"
	flagWorkDir        = "working-directory"
	flagChecksumsFile  = "checksums-file"
	flagDryRunDir      = "dry-run-dir"
	flagLogLevel       = "log-level"
)

// flagValues holds raw flag values; only flags set on the command line are applied.
type flagValues struct {
	configPath     string
	name           string
	platforms      string
	assetName      string
	manifestSchema string
	description    string
	skipManifest   bool
	repository     string
	tag            string
	version        string
	requireSemver  bool
	workDir        string
	checksumsFile  string
	dryRunDir      string
	logLevel       string
}

var flags flagValues

func bindFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&flags.configPath, flagConfig, "c", config.DefaultConfigFilename, "path to configuration file")
	fs.StringVar(&flags.name, flagName, "", "project name used in asset names")
	fs.StringVar(&flags.platforms, flagPlatforms, "", "YAML mapping of <os>-<cpu> to path patterns")
	fs.StringVar(&flags.assetName, flagAssetName, "", "asset name template ($PROJECT, $VERSION, $TYPE, $OS, $CPU)")
	fs.StringVar(&flags.manifestSchema, flagManifestSchema, "", "spm.json shape: flat, split or extensions")
	fs.StringVar(&flags.description, flagDescription, "", "description written to spm.json")
	fs.BoolVar(&flags.skipManifest, flagSkipManifest, false, "do not publish spm.json")
	fs.StringVar(&flags.repository, flagRepository, "", "repository as <owner>/<name>")
	fs.StringVar(&flags.tag, flagTag, "", "release tag")
	fs.StringVar(&flags.version, flagVersion, "", "value of $VERSION, defaults to the tag")
	fs.BoolVar(&flags.requireSemver, flagRequireSemver, false, "reject versions that are not semantic versions")
	fs.StringVar(&flags.workDir, flagWorkDir, "", "base directory of relative path patterns")
	fs.StringVar(&flags.checksumsFile, flagChecksumsFile, "", "also write checksum lines to this file")
	fs.StringVar(&flags.dryRunDir, flagDryRunDir, "", "store assets in this directory instead of uploading them")
	fs.StringVar(&flags.logLevel, flagLogLevel, "", "log level: debug, info, warn, error")
}

// loadConfig merges the file, the environment and the flags, validates the
// result and applies the log level.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	fs := cmd.Flags()

	cfg, err := config.Load(flags.configPath, !fs.Changed(flagConfig))
	if err != nil {
		return nil, err
	}

	if err = config.ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	if err = applyFlags(fs, cfg); err != nil {
		return nil, err
	}

	if err = config.Validate(cfg); err != nil {
		return nil, err
	}

	if level, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
		logger.SetLevel(level)
	}

	return cfg, nil
}

func applyFlags(fs *pflag.FlagSet, cfg *config.Config) error {
	strs := []struct {
		name string
		src  string
		dst  *string
	}{
		{flagName, flags.name, &cfg.Project},
		{flagAssetName, flags.assetName, &cfg.AssetTemplate},
		{flagDescription, flags.description, &cfg.Description},
		{flagRepository, flags.repository, &cfg.Repository},
		{flagTag, flags.tag, &cfg.Tag},
		{flagVersion, flags.version, &cfg.Version},
		{flagWorkDir, flags.workDir, &cfg.WorkingDirectory},
		{flagChecksumsFile, flags.checksumsFile, &cfg.ChecksumsFile},
		{flagDryRunDir, flags.dryRunDir, &cfg.DryRunDir},
		{flagLogLevel, flags.logLevel, &cfg.LogLevel},
	}
	for _, s := range strs {
		if fs.Changed(s.name) {
			*s.dst = s.src
		}
	}

	// An explicit tag wins over a ref taken from the environment.
	if fs.Changed(flagTag) {
		cfg.Ref = ""
	}

	if fs.Changed(flagPlatforms) {
		cfg.Platforms = config.Platforms(flags.platforms)
	}

	if fs.Changed(flagManifestSchema) {
		schema, err := manifest.ParseSchema(flags.manifestSchema)
		if err != nil {
			return err
		}

		cfg.ManifestSchema = schema
	}

	if fs.Changed(flagSkipManifest) {
		cfg.SkipManifest = flags.skipManifest
	}

	if fs.Changed(flagRequireSemver) {
		cfg.RequireSemver = flags.requireSemver
	}

	return nil
}
