package platformspec

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Resolver expands a path pattern into existing files.
type Resolver interface {
	Resolve(ctx context.Context, pattern string) ([]string, error)
}

// GlobResolver expands patterns on the local filesystem.
// Patterns support "**" and are relative to Root when not absolute.
type GlobResolver struct {
	// Root is the base directory for relative patterns; empty means the working directory.
	Root string
}

// Resolve returns the regular files matching pattern, sorted lexically.
func (r GlobResolver) Resolve(ctx context.Context, pattern string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if r.Root != "" && !filepath.IsAbs(pattern) {
		pattern = filepath.Join(r.Root, pattern)
	}

	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}

	sort.Strings(matches)

	return matches, nil
}
