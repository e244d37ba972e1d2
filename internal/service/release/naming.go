package release

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/fluxcd/pkg/envsubst"

	"github.com/oshokin/spm-release/internal/archive"
	"github.com/oshokin/spm-release/internal/domain/platform"
	domain "github.com/oshokin/spm-release/internal/domain/release"
)

var (
	errUnknownPlaceholder = errors.New("unknown placeholder in asset name template")
	errBadAssetName       = errors.New("asset name must be a non-empty file name")
)

// NameVars are the values available to the asset name template.
type NameVars struct {
	Project string
	Version string
	Type    platform.ArtifactType
	OS      platform.OS
	CPU     platform.CPU
}

func (v NameVars) lookup(name string) (string, bool) {
	switch name {
	case "PROJECT":
		return v.Project, true
	case "VERSION":
		return v.Version, true
	case "TYPE":
		return string(v.Type), true
	case "OS":
		return string(v.OS), true
	case "CPU":
		return string(v.CPU), true
	default:
		return "", false
	}
}

// AssetName renders template with vars and appends the archive extension.
func AssetName(template string, vars NameVars, kind archive.Kind) (string, error) {
	var unknown []string

	rendered, err := envsubst.Eval(template, func(name string) (string, bool) {
		value, ok := vars.lookup(name)
		if !ok {
			unknown = append(unknown, name)
		}

		return value, ok
	})

	if len(unknown) > 0 {
		slices.Sort(unknown)

		return "", fmt.Errorf("%w: %w: %s", domain.ErrConfiguration, errUnknownPlaceholder, strings.Join(slices.Compact(unknown), ", "))
	}

	if err != nil {
		return "", fmt.Errorf("%w: render asset name: %w", domain.ErrConfiguration, err)
	}

	rendered = strings.TrimSpace(rendered)
	if rendered == "" || strings.ContainsAny(rendered, `/\`) || rendered == "." || rendered == ".." {
		return "", fmt.Errorf("%w: %w: %q", domain.ErrConfiguration, errBadAssetName, rendered)
	}

	return rendered + "." + kind.Extension(), nil
}
