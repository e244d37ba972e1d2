package archive

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/oshokin/spm-release/internal/domain/release"
)

// ExecutableFileMode is kept for files that carry any executable bit on disk.
const ExecutableFileMode fs.FileMode = 0o755

// ReadFiles loads paths as archive entries named by basename.
// Unreadable files are reported as file resolution errors.
func ReadFiles(paths []string) ([]Entry, error) {
	entries := make([]Entry, 0, len(paths))

	for _, p := range paths {
		clean := filepath.Clean(p)

		info, err := os.Stat(clean)
		if err != nil {
			return nil, fmt.Errorf("%w: stat %s: %w", release.ErrFileResolution, p, err)
		}

		if !info.Mode().IsRegular() {
			return nil, fmt.Errorf("%w: %s is not a regular file", release.ErrFileResolution, p)
		}

		data, err := os.ReadFile(clean)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", release.ErrFileResolution, p, err)
		}

		mode := DefaultFileMode
		if info.Mode().Perm()&0o111 != 0 {
			mode = ExecutableFileMode
		}

		entries = append(entries, Entry{
			Name: filepath.Base(clean),
			Data: data,
			Mode: mode,
		})
	}

	return entries, nil
}
