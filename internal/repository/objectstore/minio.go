package objectstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"filevault/internal/domain"
	"filevault/internal/domain/models"
	"filevault/internal/domain/repositories"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config holds the S3 endpoint and bucket used for blobs
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
	Bucket    string
}

// MinioStore implements repositories.ObjectStore against any S3-compatible
// endpoint (MinIO, Supabase Storage's S3 gateway, AWS S3).
type MinioStore struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

var _ repositories.ObjectStore = (*MinioStore)(nil)

// NewMinioStore creates the client and makes sure the bucket exists.
// A newly created bucket gets no policy, i.e. it is private.
func NewMinioStore(ctx context.Context, cfg Config, logger *slog.Logger) (*MinioStore, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("storage endpoint is not configured")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is not configured")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
		logger.Info("bucket created", "bucket", cfg.Bucket)
	}

	return &MinioStore{
		client: client,
		bucket: cfg.Bucket,
		logger: logger,
	}, nil
}

// Put uploads exactly size bytes from r
func (s *MinioStore) Put(ctx context.Context, path models.ObjectPath, r io.Reader, size int64, contentType string) (*models.ObjectInfo, error) {
	info, err := s.client.PutObject(ctx, s.bucket, path.String(), r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("put object: %w", err)
	}

	return &models.ObjectInfo{
		Path:         path.String(),
		Size:         info.Size,
		ContentType:  contentType,
		ETag:         info.ETag,
		LastModified: info.LastModified,
	}, nil
}

// Get opens the object at path
func (s *MinioStore) Get(ctx context.Context, path models.ObjectPath) (io.ReadCloser, *models.ObjectInfo, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, path.String(), minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("get object: %w", err)
	}

	// GetObject is lazy; Stat surfaces a missing key
	stat, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		if isNoSuchKey(err) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("stat object: %w", err)
	}

	return obj, &models.ObjectInfo{
		Path:         path.String(),
		Size:         stat.Size,
		ContentType:  stat.ContentType,
		ETag:         stat.ETag,
		LastModified: stat.LastModified,
	}, nil
}

// Delete removes the object at path
func (s *MinioStore) Delete(ctx context.Context, path models.ObjectPath) error {
	err := s.client.RemoveObject(ctx, s.bucket, path.String(), minio.RemoveObjectOptions{})
	if err != nil && !isNoSuchKey(err) {
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}

// IsPublic reads the bucket policy and reports whether it lets anonymous
// principals read objects.
func (s *MinioStore) IsPublic(ctx context.Context) (bool, error) {
	policy, err := s.client.GetBucketPolicy(ctx, s.bucket)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchBucketPolicy" {
			return false, nil
		}
		return false, fmt.Errorf("get bucket policy: %w", err)
	}
	return PolicyAllowsAnonymousRead(policy)
}

func isNoSuchKey(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}

type bucketPolicyDocument struct {
	Statement []struct {
		Effect    string          `json:"Effect"`
		Principal json.RawMessage `json:"Principal"`
		Action    json.RawMessage `json:"Action"`
	} `json:"Statement"`
}

// PolicyAllowsAnonymousRead reports whether an S3 bucket policy document
// grants s3:GetObject (or a wildcard covering it) to the "*" principal.
// An empty policy is private.
func PolicyAllowsAnonymousRead(policy string) (bool, error) {
	if policy == "" {
		return false, nil
	}

	var doc bucketPolicyDocument
	if err := json.Unmarshal([]byte(policy), &doc); err != nil {
		return false, fmt.Errorf("parse bucket policy: %w", err)
	}

	for _, st := range doc.Statement {
		if st.Effect != "Allow" || !isAnonymousPrincipal(st.Principal) {
			continue
		}
		for _, action := range stringOrList(st.Action) {
			if action == "s3:GetObject" || action == "s3:*" || action == "*" {
				return true, nil
			}
		}
	}
	return false, nil
}

func isAnonymousPrincipal(raw json.RawMessage) bool {
	for _, p := range stringOrList(raw) {
		if p == "*" {
			return true
		}
	}
	var obj struct {
		AWS json.RawMessage `json:"AWS"`
	}
	if json.Unmarshal(raw, &obj) == nil && obj.AWS != nil {
		for _, p := range stringOrList(obj.AWS) {
			if p == "*" {
				return true
			}
		}
	}
	return false
}

func stringOrList(raw json.RawMessage) []string {
	var one string
	if json.Unmarshal(raw, &one) == nil {
		return []string{one}
	}
	var many []string
	if json.Unmarshal(raw, &many) == nil {
		return many
	}
	return nil
}
