// Package release runs one release-asset publication.
//
// A run resolves the release by tag, expands the platform mapping, packages
// and uploads one archive per platform (two with the split manifest schema)
// concurrently, then publishes spm.json and writes the step outputs. The
// first failure fails the run; nothing is retried and assets uploaded
// before the failure stay on the release.
package release
