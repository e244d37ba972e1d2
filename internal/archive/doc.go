// Package archive builds the per-platform release archives.
//
// Archives are flat: one regular file per entry, named by basename, no
// directory records. Timestamps, ownership and modes are fixed so that the
// same entries in the same order always produce the same bytes, and with
// them the same checksums.
package archive
