package release

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/oshokin/spm-release/internal/actions"
	"github.com/oshokin/spm-release/internal/archive"
	"github.com/oshokin/spm-release/internal/checksum"
	"github.com/oshokin/spm-release/internal/config"
	"github.com/oshokin/spm-release/internal/domain/platform"
	domain "github.com/oshokin/spm-release/internal/domain/release"
	"github.com/oshokin/spm-release/internal/logger"
	"github.com/oshokin/spm-release/internal/manifest"
	"github.com/oshokin/spm-release/internal/platformspec"
	"github.com/oshokin/spm-release/internal/publisher"
)

// Step output names.
const (
	OutputNumberPlatforms = "number_platforms"
	OutputManifestLink    = "spm_link"
	OutputChecksums       = "checksums"
)

// Stage is a step of a release run.
type Stage string

// Stages in execution order.
const (
	StageValidatingPlatforms   Stage = "validating_platforms"
	StageResolvingRelease      Stage = "resolving_release"
	StageExpandingPlatforms    Stage = "expanding_platforms"
	StagePackagingAndUploading Stage = "packaging_and_uploading"
	StageAssemblingManifest    Stage = "assembling_manifest"
	StagePublishingManifest    Stage = "publishing_manifest"
	StageWritingOutputs        Stage = "writing_outputs"
	StageDone                  Stage = "done"
)

var (
	errNoConfig    = errors.New("configuration is not set")
	errNoPublisher = errors.New("publisher is not set")
	errNoResolver  = errors.New("resolver is not set")
	errNoOutputs   = errors.New("outputs are not set")
)

// Options contains inputs for the release entry point.
type Options struct {
	// Config is a validated configuration.
	Config *config.Config
	// Publisher receives the archives and the manifest.
	Publisher publisher.Publisher
	// Resolver expands platform path patterns.
	Resolver platformspec.Resolver
	// Outputs receives the step outputs of a successful run.
	Outputs actions.Outputs
}

// Result summarises a successful run.
type Result struct {
	// Assets are the uploaded platform archives, in platform order.
	Assets []domain.UploadedAsset
	// Platforms is the number of platforms processed.
	Platforms int
	// ManifestURL is the API URL of spm.json, empty when the manifest was skipped.
	ManifestURL string
	// Checksums has one "sha256  name" line per uploaded asset.
	Checksums string
}

// StageError reports the stage a run failed in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// runner holds the state of one run. It is unexported; callers use Run.
type runner struct {
	cfg       *config.Config
	publisher publisher.Publisher
	resolver  platformspec.Resolver
	outputs   actions.Outputs
	stage     Stage
}

// Run executes the release workflow.
func Run(ctx context.Context, opts *Options) (*Result, error) {
	ctx = logger.WithName(ctx, "spm-release")

	r, err := newRunner(opts)
	if err != nil {
		return nil, err
	}

	result, err := r.run(ctx)
	if err != nil {
		logger.ErrorKV(ctx, "Release failed", "stage", r.stage, "error", err)
		return nil, &StageError{Stage: r.stage, Err: err}
	}

	logger.InfoKV(ctx, "Release completed",
		"platforms", result.Platforms,
		"assets", len(result.Assets),
		"manifest", result.ManifestURL)

	return result, nil
}

func newRunner(opts *Options) (*runner, error) {
	switch {
	case opts == nil || opts.Config == nil:
		return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, errNoConfig)
	case opts.Publisher == nil:
		return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, errNoPublisher)
	case opts.Resolver == nil:
		return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, errNoResolver)
	case opts.Outputs == nil:
		return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, errNoOutputs)
	}

	return &runner{
		cfg:       opts.Config,
		publisher: opts.Publisher,
		resolver:  opts.Resolver,
		outputs:   opts.Outputs,
	}, nil
}

func (r *runner) enter(ctx context.Context, stage Stage) {
	r.stage = stage
	logger.DebugKV(ctx, "Entering stage", "stage", stage)
}

func (r *runner) run(ctx context.Context) (*Result, error) {
	r.enter(ctx, StageValidatingPlatforms)

	entries, err := platformspec.Decode(string(r.cfg.Platforms))
	if err != nil {
		return nil, err
	}

	r.enter(ctx, StageResolvingRelease)
	logger.InfoKV(ctx, "Resolving release", "repository", r.cfg.Repository, "tag", r.cfg.Tag)

	rel, err := r.publisher.FindRelease(ctx, r.cfg.Owner(), r.cfg.Repo(), r.cfg.Tag)
	if err != nil {
		return nil, err
	}

	r.enter(ctx, StageExpandingPlatforms)

	targets, err := platformspec.Resolve(ctx, entries, r.resolver)
	if err != nil {
		return nil, err
	}

	units, err := planUnits(r.cfg, targets)
	if err != nil {
		return nil, err
	}

	r.enter(ctx, StagePackagingAndUploading)

	assets, err := r.packageAndUpload(ctx, rel, units)
	if err != nil {
		return nil, err
	}

	checksums := make(checksum.List, len(assets)+1)
	for _, a := range assets {
		checksums.Add(a.Name, a.SHA256)
	}

	result := &Result{
		Assets:    assets,
		Platforms: len(targets),
	}

	if r.cfg.SkipManifest {
		logger.Info(ctx, "Skipping manifest")
	} else {
		result.ManifestURL, err = r.publishManifest(ctx, rel, assets, checksums)
		if err != nil {
			return nil, err
		}
	}

	result.Checksums = checksums.String()

	r.enter(ctx, StageWritingOutputs)

	if err = r.writeOutputs(result); err != nil {
		return nil, err
	}

	r.enter(ctx, StageDone)

	return result, nil
}

// packageAndUpload runs one unit per platform concurrently. Every unit runs
// to completion even when another fails; the first error is returned.
func (r *runner) packageAndUpload(ctx context.Context, rel publisher.Release, units []unitPlan) ([]domain.UploadedAsset, error) {
	var (
		group   errgroup.Group
		results = make([][]domain.UploadedAsset, len(units))
	)

	for i, unit := range units {
		group.Go(func() error {
			assets, err := r.runUnit(ctx, rel, unit)
			if err != nil {
				return fmt.Errorf("%s: %w", unit.target.Key(), err)
			}

			results[i] = assets

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	var assets []domain.UploadedAsset
	for _, unitAssets := range results {
		assets = append(assets, unitAssets...)
	}

	return assets, nil
}

// runUnit packages and uploads every archive of one platform.
func (r *runner) runUnit(ctx context.Context, rel publisher.Release, unit unitPlan) ([]domain.UploadedAsset, error) {
	ctx = logger.WithKV(ctx, "platform", unit.target.Key())
	assets := make([]domain.UploadedAsset, 0, len(unit.archives))

	for _, plan := range unit.archives {
		entries, err := archive.ReadFiles(plan.paths)
		if err != nil {
			return nil, err
		}

		data, err := archive.Build(entries, plan.kind)
		if err != nil {
			return nil, err
		}

		sums := checksum.Compute(data)

		if plan.typ == platform.TypeOther {
			logger.WarnKV(ctx, "Archive holds neither loadable nor static files and is left out of the manifest", "name", plan.name)
		}

		logger.InfoKV(ctx, "Uploading asset", "name", plan.name, "files", len(entries), "bytes", len(data), "sha256", sums.SHA256)

		uploaded, err := r.publisher.Upload(ctx, rel, publisher.Upload{
			Name:      plan.name,
			MediaType: plan.kind.MediaType(),
			Data:      data,
		})
		if err != nil {
			return nil, err
		}

		files := make([]string, 0, len(entries))
		for _, e := range entries {
			files = append(files, e.Name)
		}

		assets = append(assets, domain.UploadedAsset{
			OS:     unit.target.OS,
			CPU:    unit.target.CPU,
			Type:   plan.typ,
			Name:   plan.name,
			SHA256: sums.SHA256,
			MD5:    sums.MD5,
			URL:    uploaded.URL,
			Files:  files,
		})
	}

	return assets, nil
}

// publishManifest assembles, uploads and checksums spm.json.
func (r *runner) publishManifest(
	ctx context.Context,
	rel publisher.Release,
	assets []domain.UploadedAsset,
	checksums checksum.List,
) (string, error) {
	r.enter(ctx, StageAssemblingManifest)

	doc, err := manifest.Assemble(r.cfg.ManifestSchema, manifest.Input{
		Project:     r.cfg.Project,
		Description: r.cfg.Description,
		Uploads:     assets,
		Extensions:  r.cfg.Extensions,
	})
	if err != nil {
		return "", err
	}

	data, err := manifest.Marshal(doc)
	if err != nil {
		return "", err
	}

	r.enter(ctx, StagePublishingManifest)

	uploaded, err := r.publisher.Upload(ctx, rel, publisher.Upload{
		Name:      manifest.Filename,
		MediaType: manifest.MediaType,
		Data:      data,
	})
	if err != nil {
		return "", err
	}

	checksums.Add(manifest.Filename, checksum.Compute(data).SHA256)

	logger.InfoKV(ctx, "Published manifest", "schema", r.cfg.ManifestSchema, "url", uploaded.APIURL)

	return uploaded.APIURL, nil
}

func (r *runner) writeOutputs(result *Result) error {
	if err := r.outputs.Set(OutputNumberPlatforms, strconv.Itoa(result.Platforms)); err != nil {
		return err
	}

	if result.ManifestURL != "" {
		if err := r.outputs.Set(OutputManifestLink, result.ManifestURL); err != nil {
			return err
		}
	}

	if err := r.outputs.Set(OutputChecksums, result.Checksums); err != nil {
		return err
	}

	if r.cfg.ChecksumsFile == "" {
		return nil
	}

	path := filepath.Clean(r.cfg.ChecksumsFile)
	if err := os.WriteFile(path, []byte(result.Checksums+"\n"), config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write checksums file: %w", err)
	}

	return nil
}
