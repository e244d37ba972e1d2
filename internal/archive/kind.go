package archive

import (
	"fmt"
	"strings"

	"github.com/oshokin/spm-release/internal/domain/release"
)

// Kind selects the archive container.
type Kind string

const (
	// KindTarGz is a gzip-compressed tar stream.
	KindTarGz Kind = "targz"
	// KindZip is a zip container with deflated entries.
	KindZip Kind = "zip"
)

// ParseKind accepts "targz", "tar.gz", "tgz" and "zip".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "targz", "tar.gz", "tgz":
		return KindTarGz, nil
	case "zip":
		return KindZip, nil
	default:
		return "", fmt.Errorf("%w: unknown archive format %q", release.ErrConfiguration, s)
	}
}

// Extension returns the file extension without the leading dot.
func (k Kind) Extension() string {
	switch k {
	case KindTarGz:
		return "tar.gz"
	case KindZip:
		return "zip"
	default:
		return ""
	}
}

// MediaType returns the content type used when uploading the archive.
func (k Kind) MediaType() string {
	switch k {
	case KindTarGz:
		return "application/gzip"
	case KindZip:
		return "application/zip"
	default:
		return "application/octet-stream"
	}
}

// UnmarshalText lets YAML and flag values name a kind by any accepted spelling.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}

	*k = parsed

	return nil
}
