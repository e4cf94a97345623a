package config

const (
	// MaxFileNameLength is the maximum length for file record names.
	// Limited to 255 to fit common filesystem limits.
	MaxFileNameLength = 255

	// MaxObjectPathLength is the maximum length for a full blob path.
	// S3-compatible stores cap object keys at 1024 bytes.
	MaxObjectPathLength = 1024

	// MaxMimeTypeLength bounds the declared content type.
	MaxMimeTypeLength = 255
)
