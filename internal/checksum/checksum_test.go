package checksum

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestCompute_KnownVectors checks both digests against published values for "abc".
func TestCompute_KnownVectors(t *testing.T) {
	t.Parallel()

	sums := Compute([]byte("abc"))
	require.Equal(t, "kAFQmDzST7DWlj99KOF/cg==", sums.MD5)
	require.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", sums.SHA256)
}

// TestCompute_Idempotent verifies repeated computation yields identical digests.
func TestCompute_Idempotent(t *testing.T) {
	t.Parallel()

	data := []byte("libfoo.so contents")
	require.Equal(t, Compute(data), Compute(data))
	require.NotEqual(t, Compute(data), Compute([]byte("other")))
}

// TestList_String renders lines sorted by name.
func TestList_String(t *testing.T) {
	t.Parallel()

	l := make(List)
	l.Add("spm.json", "bbbb")
	l.Add("foo-v1-linux-x86_64.tar.gz", "aaaa")

	require.Equal(t, "aaaa  foo-v1-linux-x86_64.tar.gz\nbbbb  spm.json", l.String())
	require.Empty(t, make(List).String())
}
