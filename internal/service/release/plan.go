package release

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/oshokin/spm-release/internal/archive"
	"github.com/oshokin/spm-release/internal/config"
	"github.com/oshokin/spm-release/internal/domain/platform"
	domain "github.com/oshokin/spm-release/internal/domain/release"
	"github.com/oshokin/spm-release/internal/manifest"
)

var (
	errDuplicateAssetName = errors.New("asset name template yields the same name twice")
	errDuplicateFileName  = errors.New("two files of one archive share a base name")
)

// archivePlan is one archive to build and upload.
type archivePlan struct {
	typ   platform.ArtifactType
	paths []string
	kind  archive.Kind
	name  string
}

// unitPlan is the work of one platform unit.
type unitPlan struct {
	target   platform.Target
	archives []archivePlan
}

// planUnits groups files, picks archive kinds and renders asset names for
// every target, rejecting name collisions before anything is uploaded.
func planUnits(cfg *config.Config, targets []platform.Target) ([]unitPlan, error) {
	var (
		units = make([]unitPlan, 0, len(targets))
		names = make(map[string]string, len(targets))
	)

	for _, target := range targets {
		groups := []platform.Group{{Type: platform.TypeAll, Paths: target.Paths}}
		if cfg.ManifestSchema.Splits() {
			groups = platform.SplitByType(target.Paths)
		}

		kind := cfg.ArchiveKind(target.OS)
		unit := unitPlan{target: target}

		for _, group := range groups {
			if err := checkBaseNames(target.Key(), group.Paths); err != nil {
				return nil, err
			}

			name, err := AssetName(cfg.AssetTemplate, NameVars{
				Project: cfg.Project,
				Version: cfg.Version,
				Type:    group.Type,
				OS:      target.OS,
				CPU:     target.CPU,
			}, kind)
			if err != nil {
				return nil, err
			}

			if name == manifest.Filename {
				return nil, fmt.Errorf("%w: %w: %s", domain.ErrConfiguration, errDuplicateAssetName, name)
			}

			if other, ok := names[name]; ok {
				return nil, fmt.Errorf("%w: %w: %s (%s and %s)", domain.ErrConfiguration, errDuplicateAssetName, name, other, target.Key())
			}

			names[name] = target.Key()

			unit.archives = append(unit.archives, archivePlan{
				typ:   group.Type,
				paths: group.Paths,
				kind:  kind,
				name:  name,
			})
		}

		units = append(units, unit)
	}

	return units, nil
}

// checkBaseNames rejects archives whose entries would collide, since
// entries are named by base name only.
func checkBaseNames(key string, paths []string) error {
	seen := make(map[string]string, len(paths))

	for _, p := range paths {
		base := filepath.Base(p)
		if other, ok := seen[base]; ok {
			return fmt.Errorf("%w: %s: %w: %s and %s", domain.ErrConfiguration, key, errDuplicateFileName, other, p)
		}

		seen[base] = p
	}

	return nil
}
