// Package release holds the error taxonomy of a release run and the record
// produced for every asset that was actually uploaded.
package release
