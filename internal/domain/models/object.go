package models

import (
	"errors"
	"strings"
	"time"
)

// ErrMalformedPath is returned by ParseObjectPath for paths with no usable owner segment.
var ErrMalformedPath = errors.New("malformed object path")

// ObjectPath is a parsed, validated blob path. The first segment names the owning actor.
type ObjectPath struct {
	segments []string
}

// ParseObjectPath splits p on "/" and rejects anything that could escape or
// blur the owner namespace: empty paths, leading or trailing slashes, empty,
// "." or ".." segments and backslashes.
func ParseObjectPath(p string) (ObjectPath, error) {
	if p == "" || strings.ContainsRune(p, '\\') || strings.ContainsRune(p, 0) {
		return ObjectPath{}, ErrMalformedPath
	}
	segments := strings.Split(p, "/")
	for _, s := range segments {
		if s == "" || s == "." || s == ".." {
			return ObjectPath{}, ErrMalformedPath
		}
	}
	return ObjectPath{segments: segments}, nil
}

// Owner returns the namespace segment, or "" for the zero value.
func (p ObjectPath) Owner() ActorID {
	if len(p.segments) == 0 {
		return ""
	}
	return ActorID(p.segments[0])
}

// Segments returns a copy of the path segments.
func (p ObjectPath) Segments() []string {
	return append([]string(nil), p.segments...)
}

// Name returns the last segment.
func (p ObjectPath) Name() string {
	if len(p.segments) == 0 {
		return ""
	}
	return p.segments[len(p.segments)-1]
}

// IsNamespaceRoot reports whether the path is only the owner segment.
func (p ObjectPath) IsNamespaceRoot() bool {
	return len(p.segments) == 1
}

func (p ObjectPath) String() string {
	return strings.Join(p.segments, "/")
}

// ObjectInfo describes a stored blob.
type ObjectInfo struct {
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type"`
	ETag         string    `json:"etag,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// UploadRequest carries the declared attributes of an upload, checked before any bytes are stored.
type UploadRequest struct {
	Path     ObjectPath
	Size     int64
	MimeType string
}

// BucketPolicy is the operator-set configuration for the storage bucket.
type BucketPolicy struct {
	Bucket           string   `yaml:"bucket" json:"bucket"`
	Public           bool     `yaml:"public" json:"public"`
	MaxObjectSize    int64    `yaml:"max_object_size" json:"max_object_size"`
	AllowedMimeTypes []string `yaml:"allowed_mime_types" json:"allowed_mime_types"`
}
