package archive

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/spm-release/internal/domain/release"
)

func sampleEntries() []Entry {
	return []Entry{
		{Name: "libfoo.so", Data: []byte("\x7fELF shared object")},
		{Name: "foo.h", Data: []byte("int foo(void);\n")},
		{Name: "empty.txt", Data: nil},
		{Name: "lib" + strings.Repeat("x", 144) + ".so", Data: []byte("long name")},
	}
}

// TestBuild_RoundTrip extracts what was built and compares names, order and bytes.
func TestBuild_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, kind := range []Kind{KindTarGz, KindZip} {
		data, err := Build(sampleEntries(), kind)
		require.NoError(t, err, kind)
		require.NotEmpty(t, data)

		got, err := Extract(data, kind)
		require.NoError(t, err, kind)
		require.Len(t, got, len(sampleEntries()))

		for i, want := range sampleEntries() {
			require.Equal(t, want.Name, got[i].Name)
			require.Equal(t, string(want.Data), string(got[i].Data))
			require.Equal(t, DefaultFileMode, got[i].Mode)
		}
	}
}

// TestBuild_Deterministic verifies identical input produces identical bytes.
func TestBuild_Deterministic(t *testing.T) {
	t.Parallel()

	for _, kind := range []Kind{KindTarGz, KindZip} {
		first, err := Build(sampleEntries(), kind)
		require.NoError(t, err)

		second, err := Build(sampleEntries(), kind)
		require.NoError(t, err)

		require.Equal(t, first, second, kind)
	}
}

// TestBuild_TarGzMagic checks the container signatures.
func TestBuild_TarGzMagic(t *testing.T) {
	t.Parallel()

	data, err := Build(sampleEntries(), KindTarGz)
	require.NoError(t, err)
	require.Equal(t, []byte{0x1f, 0x8b}, data[:2])

	data, err = Build(sampleEntries(), KindZip)
	require.NoError(t, err)
	require.Equal(t, []byte("PK"), data[:2])
}

// TestBuild_Rejects covers invalid entry sets and kinds.
func TestBuild_Rejects(t *testing.T) {
	t.Parallel()

	cases := map[string][]Entry{
		"empty":     nil,
		"no name":   {{Name: ""}},
		"with dir":  {{Name: "out/libfoo.so"}},
		"dot-dot":   {{Name: ".."}},
		"duplicate": {{Name: "a"}, {Name: "a"}},
	}
	for name, entries := range cases {
		_, err := Build(entries, KindTarGz)
		require.ErrorIs(t, err, release.ErrArchive, name)
	}

	_, err := Build(sampleEntries(), Kind("rar"))
	require.ErrorIs(t, err, release.ErrArchive)
}

// TestParseKind accepts the documented spellings.
func TestParseKind(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Kind{"targz": KindTarGz, "tar.gz": KindTarGz, "TGZ": KindTarGz, "zip": KindZip} {
		got, err := ParseKind(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := ParseKind("7z")
	require.ErrorIs(t, err, release.ErrConfiguration)

	require.Equal(t, "tar.gz", KindTarGz.Extension())
	require.Equal(t, "zip", KindZip.Extension())
	require.Equal(t, "application/gzip", KindTarGz.MediaType())
	require.Equal(t, "application/zip", KindZip.MediaType())
}

// TestReadFiles loads files by basename and keeps the executable bit.
func TestReadFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	lib := filepath.Join(dir, "libfoo.so")
	header := filepath.Join(dir, "foo.h")

	require.NoError(t, os.WriteFile(lib, []byte("so"), 0o755))
	require.NoError(t, os.WriteFile(header, []byte("h"), 0o600))

	entries, err := ReadFiles([]string{lib, header})
	require.NoError(t, err)
	require.Equal(t, []Entry{
		{Name: "libfoo.so", Data: []byte("so"), Mode: ExecutableFileMode},
		{Name: "foo.h", Data: []byte("h"), Mode: DefaultFileMode},
	}, entries)

	_, err = ReadFiles([]string{filepath.Join(dir, "missing.so")})
	require.ErrorIs(t, err, release.ErrFileResolution)

	_, err = ReadFiles([]string{dir})
	require.ErrorIs(t, err, release.ErrFileResolution)
}
