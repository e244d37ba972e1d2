package platform

import (
	"path/filepath"
	"strings"
)

// ArtifactType groups files of a target into separately published archives.
type ArtifactType string

const (
	// TypeAll marks an archive holding every file of a target.
	TypeAll ArtifactType = ""
	// TypeLoadable marks dynamically linked libraries.
	TypeLoadable ArtifactType = "loadable"
	// TypeStatic marks static libraries and their headers.
	TypeStatic ArtifactType = "static"
	// TypeOther marks files that are neither loadable nor static.
	TypeOther ArtifactType = "other"
)

// Classify returns the artifact type of a file from its suffix.
// Versioned shared objects such as "libfoo.so.1" are loadable.
func Classify(path string) ArtifactType {
	if strings.Contains(strings.ToLower(filepath.Base(path)), ".so.") {
		return TypeLoadable
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".so", ".dylib", ".dll":
		return TypeLoadable
	case ".a", ".h":
		return TypeStatic
	default:
		return TypeOther
	}
}

// Stem returns the base name of path up to its first dot, without the
// "lib" prefix, so "out/libvec0.so" and "out/libvec0.so.1" yield "vec0".
func Stem(path string) string {
	name := filepath.Base(path)
	if i := strings.IndexByte(name, '.'); i > 0 {
		name = name[:i]
	}

	return strings.TrimPrefix(name, "lib")
}

// Group is a set of files published together as one archive.
type Group struct {
	// Type is the artifact type recorded for the archive.
	Type ArtifactType
	// Paths are the files of the archive in input order.
	Paths []string
}

// SplitByType divides paths into a loadable and a static group.
// Unclassified files join the loadable group, or the static one when there
// are no loadable files. When neither exists they form a TypeOther group.
func SplitByType(paths []string) []Group {
	var loadable, static, other []string

	for _, p := range paths {
		switch Classify(p) {
		case TypeLoadable:
			loadable = append(loadable, p)
		case TypeStatic:
			static = append(static, p)
		default:
			other = append(other, p)
		}
	}

	groups := make([]Group, 0, 2) //nolint:mnd // At most loadable and static.

	switch {
	case len(loadable) > 0:
		groups = append(groups, Group{Type: TypeLoadable, Paths: append(loadable, other...)})

		if len(static) > 0 {
			groups = append(groups, Group{Type: TypeStatic, Paths: static})
		}
	case len(static) > 0:
		groups = append(groups, Group{Type: TypeStatic, Paths: append(static, other...)})
	case len(other) > 0:
		groups = append(groups, Group{Type: TypeOther, Paths: other})
	}

	return groups
}
