package manifest

import (
	"fmt"
	"strings"

	"github.com/oshokin/spm-release/internal/domain/release"
)

// Schema names a manifest document shape.
type Schema string

const (
	// SchemaFlat lists every archive under "platforms".
	SchemaFlat Schema = "flat"
	// SchemaSplit lists archives under "loadable" and "static".
	SchemaSplit Schema = "split"
	// SchemaExtensions groups archives per extension.
	SchemaExtensions Schema = "extensions"
)

// ParseSchema returns the schema named by s.
func ParseSchema(s string) (Schema, error) {
	switch schema := Schema(strings.ToLower(strings.TrimSpace(s))); schema {
	case SchemaFlat, SchemaSplit, SchemaExtensions:
		return schema, nil
	default:
		return "", fmt.Errorf("%w: unknown manifest schema %q", release.ErrConfiguration, s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Schema) UnmarshalText(text []byte) error {
	parsed, err := ParseSchema(string(text))
	if err != nil {
		return err
	}

	*s = parsed

	return nil
}

// Splits reports whether the schema publishes loadable and static archives separately.
func (s Schema) Splits() bool {
	return s == SchemaSplit
}
