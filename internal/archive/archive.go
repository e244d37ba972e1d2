package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/oshokin/spm-release/internal/domain/release"
)

// DefaultFileMode is the permission mode applied to files inside an archive.
const DefaultFileMode fs.FileMode = 0o644

var (
	// epoch is the modification time written for tar entries.
	//nolint:gochecknoglobals // Constant time value.
	epoch = time.Unix(0, 0).UTC()
	// zipEpoch is the earliest time the zip DOS date format can hold.
	//nolint:gochecknoglobals // Constant time value.
	zipEpoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

	errNoEntries     = errors.New("no entries to archive")
	errBadEntryName  = errors.New("entry name must be a non-empty basename")
	errDuplicateName = errors.New("duplicate entry name")
	errUnknownKind   = errors.New("unknown archive kind")
)

// Entry is one file placed into an archive.
type Entry struct {
	// Name is the basename stored in the archive.
	Name string
	// Data is the raw file content.
	Data []byte
	// Mode overrides DefaultFileMode when non-zero.
	Mode fs.FileMode
}

func (e Entry) mode() fs.FileMode {
	if e.Mode == 0 {
		return DefaultFileMode
	}

	return e.Mode.Perm()
}

// Build packs entries, in order, into an archive of the given kind.
func Build(entries []Entry, kind Kind) ([]byte, error) {
	if err := validateEntries(entries); err != nil {
		return nil, fmt.Errorf("%w: %w", release.ErrArchive, err)
	}

	var (
		data []byte
		err  error
	)

	switch kind {
	case KindTarGz:
		data, err = buildTarGz(entries)
	case KindZip:
		data, err = buildZip(entries)
	default:
		err = fmt.Errorf("%w: %q", errUnknownKind, kind)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: build %s: %w", release.ErrArchive, kind, err)
	}

	return data, nil
}

func validateEntries(entries []Entry) error {
	if len(entries) == 0 {
		return errNoEntries
	}

	seen := make(map[string]struct{}, len(entries))

	for _, e := range entries {
		if e.Name == "" || e.Name == "." || e.Name == ".." || strings.ContainsAny(e.Name, `/\`) {
			return fmt.Errorf("%w: %q", errBadEntryName, e.Name)
		}

		if _, ok := seen[e.Name]; ok {
			return fmt.Errorf("%w: %q", errDuplicateName, e.Name)
		}

		seen[e.Name] = struct{}{}
	}

	return nil
}

func buildTarGz(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer

	// The zero gzip header carries no name and no modification time.
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)

	for _, e := range entries {
		header := &tar.Header{
			Typeflag: tar.TypeReg,
			Name:     e.Name,
			Size:     int64(len(e.Data)),
			Mode:     int64(e.mode()),
			ModTime:  epoch,
		}

		if err := tw.WriteHeader(header); err != nil {
			return nil, err
		}

		if _, err := tw.Write(e.Data); err != nil {
			return nil, err
		}
	}

	if err := tw.Close(); err != nil {
		return nil, err
	}

	if err := gw.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func buildZip(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer

	zw := zip.NewWriter(&buf)

	for _, e := range entries {
		header := &zip.FileHeader{
			Name:     e.Name,
			Method:   zip.Deflate,
			Modified: zipEpoch,
		}
		header.SetMode(e.mode())

		w, err := zw.CreateHeader(header)
		if err != nil {
			return nil, err
		}

		if _, err = w.Write(e.Data); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Extract reads back every regular file of an archive in stored order.
func Extract(data []byte, kind Kind) ([]Entry, error) {
	var (
		entries []Entry
		err     error
	)

	switch kind {
	case KindTarGz:
		entries, err = extractTarGz(data)
	case KindZip:
		entries, err = extractZip(data)
	default:
		err = fmt.Errorf("%w: %q", errUnknownKind, kind)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: extract %s: %w", release.ErrArchive, kind, err)
	}

	return entries, nil
}

func extractTarGz(data []byte) ([]Entry, error) {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = gr.Close()
	}()

	var (
		entries []Entry
		tr      = tar.NewReader(gr)
	)

	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, err
		}

		if header.Typeflag != tar.TypeReg {
			continue
		}

		contents, err := io.ReadAll(tr)
		if err != nil {
			return nil, err
		}

		entries = append(entries, Entry{
			Name: filepath.Base(header.Name),
			Data: contents,
			Mode: fs.FileMode(header.Mode).Perm(), //nolint:gosec // Mode comes from our own header.
		})
	}

	return entries, nil
}

func extractZip(data []byte) ([]Entry, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(zr.File))

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}

		contents, err := readZipFile(f)
		if err != nil {
			return nil, err
		}

		entries = append(entries, Entry{
			Name: filepath.Base(f.Name),
			Data: contents,
			Mode: f.Mode().Perm(),
		})
	}

	return entries, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = rc.Close()
	}()

	return io.ReadAll(rc)
}
