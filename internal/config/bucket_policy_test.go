package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadBucketPolicy_Default(t *testing.T) {
	policy, err := LoadBucketPolicy("", "")
	if err != nil {
		t.Fatalf("LoadBucketPolicy: %v", err)
	}

	if policy.Public {
		t.Error("default policy must not be public")
	}
	if policy.MaxObjectSize != 50428800 {
		t.Errorf("MaxObjectSize = %d, want 50428800", policy.MaxObjectSize)
	}
	if policy.Bucket != "files" {
		t.Errorf("Bucket = %q, want files", policy.Bucket)
	}

	want := map[string]bool{
		"text/plain": true, "text/x-python": true, "application/javascript": true,
		"application/typescript": true, "application/json": true, "application/zip": true,
		"application/pdf": true,
	}
	if len(policy.AllowedMimeTypes) != len(want) {
		t.Fatalf("got %d mime types, want %d", len(policy.AllowedMimeTypes), len(want))
	}
	for _, m := range policy.AllowedMimeTypes {
		if !want[m] {
			t.Errorf("unexpected mime type %q", m)
		}
	}
}

func TestLoadBucketPolicy_BucketOverride(t *testing.T) {
	policy, err := LoadBucketPolicy("", "user-uploads")
	if err != nil {
		t.Fatalf("LoadBucketPolicy: %v", err)
	}
	if policy.Bucket != "user-uploads" {
		t.Errorf("Bucket = %q, want user-uploads", policy.Bucket)
	}
}

func TestLoadBucketPolicy_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	content := "bucket: docs\npublic: true\nmax_object_size: 1024\nallowed_mime_types: [text/plain]\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	policy, err := LoadBucketPolicy(path, "")
	if err != nil {
		t.Fatalf("LoadBucketPolicy: %v", err)
	}
	if !policy.Public || policy.MaxObjectSize != 1024 || policy.Bucket != "docs" {
		t.Errorf("unexpected policy: %+v", policy)
	}
}

func TestParseBucketPolicy_Invalid(t *testing.T) {
	tests := map[string]string{
		"not yaml":        "bucket: [",
		"missing bucket":  "max_object_size: 10\nallowed_mime_types: [text/plain]\n",
		"zero size":       "bucket: b\nmax_object_size: 0\nallowed_mime_types: [text/plain]\n",
		"negative size":   "bucket: b\nmax_object_size: -5\nallowed_mime_types: [text/plain]\n",
		"empty allowlist": "bucket: b\nmax_object_size: 10\nallowed_mime_types: []\n",
		"blank mime":      "bucket: b\nmax_object_size: 10\nallowed_mime_types: [\"\"]\n",
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseBucketPolicy([]byte(data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadBucketPolicy_MissingFile(t *testing.T) {
	if _, err := LoadBucketPolicy(filepath.Join(t.TempDir(), "nope.yaml"), ""); err == nil {
		t.Error("expected error for missing file")
	}
}
