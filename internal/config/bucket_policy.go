package config

import (
	_ "embed"
	"fmt"
	"os"

	"filevault/internal/domain/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

//go:embed bucket_policy.yaml
var defaultBucketPolicy []byte

// LoadBucketPolicy reads the operator bucket policy. An empty path loads the
// embedded default. A non-empty bucket name overrides the file's bucket.
func LoadBucketPolicy(path, bucket string) (models.BucketPolicy, error) {
	data := defaultBucketPolicy
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return models.BucketPolicy{}, fmt.Errorf("read bucket policy: %w", err)
		}
	}

	policy, err := ParseBucketPolicy(data)
	if err != nil {
		return models.BucketPolicy{}, err
	}
	if bucket != "" {
		policy.Bucket = bucket
	}
	return policy, nil
}

// ParseBucketPolicy decodes and validates a YAML bucket policy
func ParseBucketPolicy(data []byte) (models.BucketPolicy, error) {
	var policy models.BucketPolicy
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return models.BucketPolicy{}, fmt.Errorf("parse bucket policy: %w", err)
	}

	err := validation.ValidateStruct(&policy,
		validation.Field(&policy.Bucket, validation.Required),
		validation.Field(&policy.MaxObjectSize, validation.Required, validation.Min(int64(1))),
		validation.Field(&policy.AllowedMimeTypes, validation.Required, validation.Each(validation.Required)),
	)
	if err != nil {
		return models.BucketPolicy{}, fmt.Errorf("invalid bucket policy: %w", err)
	}

	return policy, nil
}
