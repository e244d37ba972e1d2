package manifest

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/spm-release/internal/domain/platform"
	"github.com/oshokin/spm-release/internal/domain/release"
)

const (
	sha = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	md5 = "kAFQmDzST7DWlj99KOF/cg=="
)

func upload(os platform.OS, cpu platform.CPU, typ platform.ArtifactType, name string, files ...string) release.UploadedAsset {
	return release.UploadedAsset{
		OS:     os,
		CPU:    cpu,
		Type:   typ,
		Name:   name,
		SHA256: sha,
		MD5:    md5,
		Files:  files,
	}
}

// TestAssemble_Flat orders entries independently of upload completion order.
func TestAssemble_Flat(t *testing.T) {
	t.Parallel()

	doc, err := Assemble(SchemaFlat, Input{
		Description: "vector search",
		Uploads: []release.UploadedAsset{
			upload(platform.Windows, platform.X86_64, platform.TypeAll, "vec-v1-windows-x86_64.zip"),
			upload(platform.Linux, platform.X86_64, platform.TypeAll, "vec-v1-linux-x86_64.tar.gz"),
			upload(platform.Linux, platform.Aarch64, platform.TypeAll, "vec-v1-linux-aarch64.tar.gz"),
		},
	})
	require.NoError(t, err)

	flat, ok := doc.(*FlatDocument)
	require.True(t, ok)
	require.Equal(t, 0, flat.Version)
	require.Equal(t, "vector search", flat.Description)
	require.Equal(t, []string{
		"vec-v1-linux-aarch64.tar.gz",
		"vec-v1-linux-x86_64.tar.gz",
		"vec-v1-windows-x86_64.zip",
	}, assetNames(flat.Platforms))

	data, err := Marshal(doc)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"version": 0,
		"description": "vector search",
		"platforms": [
			{"os":"linux","cpu":"aarch64","asset_name":"vec-v1-linux-aarch64.tar.gz","asset_sha256":"`+sha+`","asset_md5":"`+md5+`"},
			{"os":"linux","cpu":"x86_64","asset_name":"vec-v1-linux-x86_64.tar.gz","asset_sha256":"`+sha+`","asset_md5":"`+md5+`"},
			{"os":"windows","cpu":"x86_64","asset_name":"vec-v1-windows-x86_64.zip","asset_sha256":"`+sha+`","asset_md5":"`+md5+`"}
		]
	}`, string(data))
}

// TestAssemble_Split divides by type, drops "other" archives and keeps empty arrays.
func TestAssemble_Split(t *testing.T) {
	t.Parallel()

	doc, err := Assemble(SchemaSplit, Input{
		Uploads: []release.UploadedAsset{
			upload(platform.Linux, platform.X86_64, platform.TypeStatic, "vec-v1-static-linux-x86_64.tar.gz"),
			upload(platform.Linux, platform.X86_64, platform.TypeLoadable, "vec-v1-loadable-linux-x86_64.tar.gz"),
			upload(platform.MacOS, platform.Aarch64, platform.TypeOther, "vec-v1-other-macos-aarch64.tar.gz"),
		},
	})
	require.NoError(t, err)

	split, ok := doc.(*SplitDocument)
	require.True(t, ok)
	require.Equal(t, []string{"vec-v1-loadable-linux-x86_64.tar.gz"}, assetNames(split.Loadable))
	require.Equal(t, []string{"vec-v1-static-linux-x86_64.tar.gz"}, assetNames(split.Static))

	empty, err := Assemble(SchemaSplit, Input{})
	require.NoError(t, err)

	data, err := Marshal(empty)
	require.NoError(t, err)
	require.JSONEq(t, `{"version":0,"description":"","loadable":[],"static":[]}`, string(data))
}

// TestAssemble_Extensions groups archives by the stems of their files.
func TestAssemble_Extensions(t *testing.T) {
	t.Parallel()

	doc, err := Assemble(SchemaExtensions, Input{
		Project: "sqlite-lines",
		Uploads: []release.UploadedAsset{
			upload(platform.Linux, platform.X86_64, platform.TypeAll, "lines-linux.tar.gz", "lines0.so", "lines_nofs0.so"),
			upload(platform.Windows, platform.X86_64, platform.TypeAll, "lines-windows.zip", "lines0.dll"),
		},
		Extensions: []Extension{
			{Name: "lines0", Description: "read lines"},
			{Name: "lines_nofs0", Description: "no filesystem access"},
			{Name: "absent0", Description: "not built"},
		},
	})
	require.NoError(t, err)

	ext, ok := doc.(*ExtensionsDocument)
	require.True(t, ok)
	require.Equal(t, []string{"lines-linux.tar.gz", "lines-windows.zip"}, assetNames(ext.Extensions["lines0"].Platforms))
	require.Equal(t, []string{"lines-linux.tar.gz"}, assetNames(ext.Extensions["lines_nofs0"].Platforms))
	require.Equal(t, "no filesystem access", ext.Extensions["lines_nofs0"].Description)
	require.Empty(t, ext.Extensions["absent0"].Platforms)
	require.NotNil(t, ext.Extensions["absent0"].Platforms)

	data, err := Marshal(doc)
	require.NoError(t, err)
	require.Contains(t, string(data), `"absent0":{"description":"not built","platforms":[]}`)
}

// TestAssemble_ExtensionsDefault names the single extension after the project.
func TestAssemble_ExtensionsDefault(t *testing.T) {
	t.Parallel()

	doc, err := Assemble(SchemaExtensions, Input{
		Project:     "vec",
		Description: "vectors",
		Uploads:     []release.UploadedAsset{upload(platform.Linux, platform.X86_64, platform.TypeAll, "vec.tar.gz", "vec0.so")},
	})
	require.NoError(t, err)

	ext, ok := doc.(*ExtensionsDocument)
	require.True(t, ok)
	require.Len(t, ext.Extensions, 1)
	require.Equal(t, "vectors", ext.Extensions["vec"].Description)
	require.Len(t, ext.Extensions["vec"].Platforms, 1)
}

// TestAssemble_Rejects covers duplicates, unknown schemas and incomplete uploads.
func TestAssemble_Rejects(t *testing.T) {
	t.Parallel()

	_, err := Assemble(SchemaExtensions, Input{Extensions: []Extension{{Name: "a"}, {Name: "a"}}})
	require.ErrorIs(t, err, release.ErrConfiguration)

	_, err = Assemble(Schema("tree"), Input{})
	require.Error(t, err)

	_, err = Assemble(SchemaFlat, Input{Uploads: []release.UploadedAsset{{OS: platform.Linux, CPU: platform.X86_64}}})
	require.Error(t, err)
}

// TestValidate_RejectsBadDocuments checks the embedded schemas catch malformed entries.
func TestValidate_RejectsBadDocuments(t *testing.T) {
	t.Parallel()

	bad := map[Schema]string{
		SchemaFlat:       `{"version":1,"description":"","platforms":[]}`,
		SchemaSplit:      `{"version":0,"description":"","loadable":[]}`,
		SchemaExtensions: `{"version":0,"extensions":{"a":{"description":"","platforms":[{"os":"bsd","cpu":"x86_64","asset_name":"a","asset_sha256":"` + sha + `","asset_md5":"` + md5 + `"}]}}}`,
	}
	for schema, doc := range bad {
		require.Error(t, Validate(schema, []byte(doc)), schema)
	}

	entry := Entry{OS: platform.Linux, CPU: platform.X86_64, AssetName: "a", AssetSHA256: strings.ToUpper(sha), AssetMD5: md5}
	data, err := json.Marshal(&FlatDocument{Platforms: []Entry{entry}})
	require.NoError(t, err)
	require.Error(t, Validate(SchemaFlat, data))
}

// TestParseSchema accepts the three names only.
func TestParseSchema(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"flat", "Split", " extensions "} {
		_, err := ParseSchema(s)
		require.NoError(t, err, s)
	}

	_, err := ParseSchema("nested")
	require.ErrorIs(t, err, release.ErrConfiguration)
	require.True(t, SchemaSplit.Splits())
	require.False(t, SchemaFlat.Splits())
}

func assetNames(entries []Entry) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.AssetName)
	}

	return names
}
