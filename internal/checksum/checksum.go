package checksum

import (
	"crypto/md5" //nolint:gosec // MD5 is part of the manifest format, not a security boundary.
	"encoding/base64"
	"fmt"
	"sort"
	"strings"

	"github.com/opencontainers/go-digest"

	// Register SHA-256 for go-digest.
	_ "crypto/sha256"
)

// Sums holds the digests of one archive.
type Sums struct {
	// MD5 is the base64-encoded MD5 digest.
	MD5 string
	// SHA256 is the lowercase hex SHA-256 digest.
	SHA256 string
}

// Compute returns the digests of data.
func Compute(data []byte) Sums {
	md5Sum := md5.Sum(data) //nolint:gosec // See import.

	return Sums{
		MD5:    base64.StdEncoding.EncodeToString(md5Sum[:]),
		SHA256: digest.SHA256.FromBytes(data).Encoded(),
	}
}

// Line formats a sha256sum-compatible line for one file.
func Line(sha256, name string) string {
	return fmt.Sprintf("%s  %s", sha256, name)
}

// List collects checksum lines keyed by file name.
type List map[string]string

// Add records the SHA-256 of name.
func (l List) Add(name, sha256 string) {
	l[name] = sha256
}

// String renders the lines sorted by file name, newline separated.
func (l List) String() string {
	names := make([]string, 0, len(l))
	for name := range l {
		names = append(names, name)
	}

	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, Line(l[name], name))
	}

	return strings.Join(lines, "\n")
}
