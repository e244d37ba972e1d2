// Package checksum computes the digests recorded for every published asset:
// MD5 encoded as base64 and SHA-256 encoded as lowercase hex.
package checksum
