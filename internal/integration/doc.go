// Package integration holds end-to-end tests of a release run against a
// fake GitHub releases API.
package integration
