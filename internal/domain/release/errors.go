package release

import "errors"

var (
	// ErrConfiguration reports missing inputs or a malformed platform mapping.
	ErrConfiguration = errors.New("configuration error")
	// ErrResolution reports that the target release could not be found.
	ErrResolution = errors.New("release resolution error")
	// ErrFileResolution reports a glob without matches or an unreadable file.
	ErrFileResolution = errors.New("file resolution error")
	// ErrArchive reports a failure while building an archive.
	ErrArchive = errors.New("archive error")
	// ErrAssetUpload reports a failed asset upload.
	ErrAssetUpload = errors.New("asset upload error")

	// ErrInvalidPlatformKind reports an unrecognised os or cpu token.
	ErrInvalidPlatformKind = errors.New("invalid platform kind")
	// ErrNoMatchingFiles reports a pattern that expanded to nothing.
	ErrNoMatchingFiles = errors.New("no matching files")
	// ErrDuplicateAsset reports an asset name already present on the release.
	ErrDuplicateAsset = errors.New("asset already exists")
)
