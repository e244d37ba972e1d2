// Package index persists the list of assets attached to a locally stored
// release.
//
// The FileRepository loads and saves the index as JSON next to the release
// directory and exposes a Repository interface the directory publisher
// depends on.
package index
