package manifest

import (
	"github.com/oshokin/spm-release/internal/domain/platform"
)

const (
	// Filename is the asset name of the published manifest.
	Filename = "spm.json"
	// MediaType is the content type of the published manifest.
	MediaType = "application/json"
	// FormatVersion is the value of the "version" field.
	FormatVersion = 0
)

// Entry describes one uploaded archive.
type Entry struct {
	OS          platform.OS  `json:"os"`
	CPU         platform.CPU `json:"cpu"`
	AssetName   string       `json:"asset_name"`
	AssetSHA256 string       `json:"asset_sha256"`
	AssetMD5    string       `json:"asset_md5"`
}

// Document is one of FlatDocument, SplitDocument or ExtensionsDocument.
type Document interface {
	// Schema returns the shape of the document.
	Schema() Schema
}

// FlatDocument lists every archive under "platforms".
type FlatDocument struct {
	Version     int     `json:"version"`
	Description string  `json:"description"`
	Platforms   []Entry `json:"platforms"`
}

// Schema implements Document.
func (*FlatDocument) Schema() Schema { return SchemaFlat }

// SplitDocument lists loadable and static archives separately.
type SplitDocument struct {
	Version     int     `json:"version"`
	Description string  `json:"description"`
	Loadable    []Entry `json:"loadable"`
	Static      []Entry `json:"static"`
}

// Schema implements Document.
func (*SplitDocument) Schema() Schema { return SchemaSplit }

// ExtensionsDocument groups archives per extension name.
type ExtensionsDocument struct {
	Version    int                          `json:"version"`
	Extensions map[string]ExtensionDocument `json:"extensions"`
}

// Schema implements Document.
func (*ExtensionsDocument) Schema() Schema { return SchemaExtensions }

// ExtensionDocument is one extension of an ExtensionsDocument.
type ExtensionDocument struct {
	Description string  `json:"description"`
	Platforms   []Entry `json:"platforms"`
}
