package auth

import (
	"fmt"
	"mime"
	"strings"

	"filevault/internal/domain"
	"filevault/internal/domain/models"
	"filevault/internal/domain/services"
)

// DefaultMaxObjectSize is the upload ceiling used when no policy file overrides it.
const DefaultMaxObjectSize int64 = 50_428_800

// DefaultAllowedMimeTypes is the upload allow-list used when no policy file overrides it.
var DefaultAllowedMimeTypes = []string{
	"text/plain",
	"text/x-python",
	"application/javascript",
	"application/typescript",
	"application/json",
	"application/zip",
	"application/pdf",
}

// StaticBucketPolicy enforces a fixed models.BucketPolicy.
// Checks run in order (visibility, size, mime type) and the first failure is reported.
type StaticBucketPolicy struct {
	public  bool
	maxSize int64
	allowed map[string]struct{}
}

var _ services.BucketPolicyEnforcer = (*StaticBucketPolicy)(nil)

// NewStaticBucketPolicy builds an enforcer from an operator policy.
// The allow-list is normalized the same way uploads are.
func NewStaticBucketPolicy(policy models.BucketPolicy) *StaticBucketPolicy {
	allowed := make(map[string]struct{}, len(policy.AllowedMimeTypes))
	for _, t := range policy.AllowedMimeTypes {
		if n := normalizeMimeType(t); n != "" {
			allowed[n] = struct{}{}
		}
	}
	return &StaticBucketPolicy{
		public:  policy.Public,
		maxSize: policy.MaxObjectSize,
		allowed: allowed,
	}
}

// Check validates the declared attributes of an upload
func (p *StaticBucketPolicy) Check(req *models.UploadRequest) error {
	if p.public {
		return &domain.PolicyViolationError{
			Rule:    domain.RuleVisibility,
			Message: "uploads are disabled for public buckets",
		}
	}

	if req.Size < 0 {
		return &domain.PolicyViolationError{
			Rule:    domain.RuleSize,
			Message: "object size must be declared",
		}
	}
	if req.Size > p.maxSize {
		return &domain.PolicyViolationError{
			Rule:    domain.RuleSize,
			Message: fmt.Sprintf("object size %d exceeds limit of %d bytes", req.Size, p.maxSize),
		}
	}

	if _, ok := p.allowed[normalizeMimeType(req.MimeType)]; !ok {
		return &domain.PolicyViolationError{
			Rule:    domain.RuleMimeType,
			Message: fmt.Sprintf("mime type %q is not allowed", req.MimeType),
		}
	}

	return nil
}

// MaxObjectSize returns the configured ceiling in bytes
func (p *StaticBucketPolicy) MaxObjectSize() int64 {
	return p.maxSize
}

// normalizeMimeType strips parameters and case-folds. Unparseable input yields "".
func normalizeMimeType(t string) string {
	mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(t))
	if err != nil {
		return ""
	}
	return mediaType
}
