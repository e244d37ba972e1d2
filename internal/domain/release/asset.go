package release

import "github.com/oshokin/spm-release/internal/domain/platform"

// UploadedAsset describes an archive after a successful upload.
type UploadedAsset struct {
	// OS of the platform the archive was built for.
	OS platform.OS
	// CPU of the platform the archive was built for.
	CPU platform.CPU
	// Type is the artifact group carried by the archive.
	Type platform.ArtifactType
	// Name is the asset name on the release.
	Name string
	// SHA256 is the lowercase hex SHA-256 of the archive.
	SHA256 string
	// MD5 is the base64 MD5 of the archive.
	MD5 string
	// URL is the public download location returned by the publisher.
	URL string
	// Files are the basenames packed into the archive.
	Files []string
}
