package manifest

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/oshokin/spm-release/internal/domain/platform"
	"github.com/oshokin/spm-release/internal/domain/release"
)

var (
	errIncompleteUpload = errors.New("uploaded asset is missing its name or checksums")
	errUnknownSchema    = errors.New("unknown manifest schema")
	errDuplicateExt     = errors.New("duplicate extension")
)

// Extension is a named extension listed by the extensions schema.
type Extension struct {
	// Name is the extension identifier, matched against file stems.
	Name string `yaml:"name"`
	// Description is copied into the manifest.
	Description string `yaml:"description"`
}

// Input is everything the assembler needs.
type Input struct {
	// Project names the default extension when none are configured.
	Project string
	// Description is the top-level description of flat and split documents.
	Description string
	// Uploads are the assets that were actually uploaded.
	Uploads []release.UploadedAsset
	// Extensions are used by the extensions schema only.
	Extensions []Extension
}

// Assemble builds the document of the given schema.
// Entries are ordered by os, cpu and asset name, independent of upload order.
func Assemble(schema Schema, in Input) (Document, error) {
	uploads := slices.Clone(in.Uploads)

	for _, u := range uploads {
		if u.Name == "" || u.SHA256 == "" || u.MD5 == "" {
			return nil, fmt.Errorf("%s/%s: %w", u.OS, u.CPU, errIncompleteUpload)
		}
	}

	slices.SortFunc(uploads, func(a, b release.UploadedAsset) int {
		return cmp.Or(
			cmp.Compare(a.OS, b.OS),
			cmp.Compare(a.CPU, b.CPU),
			cmp.Compare(a.Name, b.Name),
		)
	})

	switch schema {
	case SchemaFlat:
		return &FlatDocument{
			Version:     FormatVersion,
			Description: in.Description,
			Platforms:   entries(uploads, nil),
		}, nil
	case SchemaSplit:
		return &SplitDocument{
			Version:     FormatVersion,
			Description: in.Description,
			Loadable:    entries(uploads, ofType(platform.TypeLoadable)),
			Static:      entries(uploads, ofType(platform.TypeStatic)),
		}, nil
	case SchemaExtensions:
		return assembleExtensions(in, uploads)
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownSchema, schema)
	}
}

func assembleExtensions(in Input, uploads []release.UploadedAsset) (Document, error) {
	exts := in.Extensions
	if len(exts) == 0 {
		doc := &ExtensionsDocument{
			Version: FormatVersion,
			Extensions: map[string]ExtensionDocument{
				in.Project: {
					Description: in.Description,
					Platforms:   entries(uploads, nil),
				},
			},
		}

		return doc, nil
	}

	doc := &ExtensionsDocument{
		Version:    FormatVersion,
		Extensions: make(map[string]ExtensionDocument, len(exts)),
	}

	for _, ext := range exts {
		if _, ok := doc.Extensions[ext.Name]; ok {
			return nil, fmt.Errorf("%w: %w %q", release.ErrConfiguration, errDuplicateExt, ext.Name)
		}

		doc.Extensions[ext.Name] = ExtensionDocument{
			Description: ext.Description,
			Platforms:   entries(uploads, carries(ext.Name)),
		}
	}

	return doc, nil
}

// entries converts uploads accepted by keep; a nil keep accepts all.
// The result is never nil so that empty sections encode as [].
func entries(uploads []release.UploadedAsset, keep func(release.UploadedAsset) bool) []Entry {
	result := make([]Entry, 0, len(uploads))

	for _, u := range uploads {
		if keep != nil && !keep(u) {
			continue
		}

		result = append(result, Entry{
			OS:          u.OS,
			CPU:         u.CPU,
			AssetName:   u.Name,
			AssetSHA256: u.SHA256,
			AssetMD5:    u.MD5,
		})
	}

	return result
}

func ofType(t platform.ArtifactType) func(release.UploadedAsset) bool {
	return func(u release.UploadedAsset) bool {
		return u.Type == t
	}
}

// carries matches uploads containing a file whose stem is name.
func carries(name string) func(release.UploadedAsset) bool {
	return func(u release.UploadedAsset) bool {
		return slices.ContainsFunc(u.Files, func(f string) bool {
			return platform.Stem(f) == name
		})
	}
}
