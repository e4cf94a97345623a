package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"filevault/internal/domain"
	"filevault/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type tokenOpts struct {
	subject   string
	role      string
	sessionID string
	expiresIn time.Duration
	method    jwt.SigningMethod
	secret    string
	anonymous bool
	noExpiry  bool
}

func mintToken(t *testing.T, o tokenOpts) string {
	t.Helper()
	if o.role == "" {
		o.role = "authenticated"
	}
	if o.expiresIn == 0 {
		o.expiresIn = time.Hour
	}
	if o.method == nil {
		o.method = jwt.SigningMethodHS256
	}
	if o.secret == "" {
		o.secret = testSecret
	}

	claims := models.SupabaseClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  o.subject,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
		Role:        o.role,
		SessionID:   o.sessionID,
		IsAnonymous: o.anonymous,
	}
	if !o.noExpiry {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(o.expiresIn))
	}

	signed, err := jwt.NewWithClaims(o.method, claims).SignedString([]byte(o.secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

// memoryDenylist is a test SessionDenylist.
type memoryDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	err     error
}

func newMemoryDenylist() *memoryDenylist {
	return &memoryDenylist{revoked: make(map[string]time.Time)}
}

func (d *memoryDenylist) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return false, d.err
	}
	until, ok := d.revoked[sessionID]
	return ok && time.Now().Before(until), nil
}

func (d *memoryDenylist) Revoke(ctx context.Context, sessionID string, until time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revoked[sessionID] = until
	return nil
}

func newTestResolver(t *testing.T, denylist SessionDenylist) *Resolver {
	t.Helper()
	verifier, err := NewHMACVerifier(testSecret, discardLogger())
	if err != nil {
		t.Fatalf("NewHMACVerifier: %v", err)
	}
	return NewResolver(verifier, denylist, discardLogger())
}

func TestResolver_Resolve(t *testing.T) {
	r := newTestResolver(t, nil)
	ctx := context.Background()

	valid := mintToken(t, tokenOpts{subject: "u1"})

	t.Run("valid bearer token", func(t *testing.T) {
		actor, err := r.Resolve(ctx, "Bearer "+valid)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if actor != "u1" {
			t.Errorf("actor = %q, want u1", actor)
		}
	})

	t.Run("scheme is case-insensitive", func(t *testing.T) {
		if _, err := r.Resolve(ctx, "bearer "+valid); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("stable across calls", func(t *testing.T) {
		a1, _ := r.Resolve(ctx, "Bearer "+valid)
		a2, _ := r.Resolve(ctx, "Bearer "+valid)
		if a1 != a2 {
			t.Errorf("actor changed between calls: %q vs %q", a1, a2)
		}
	})

	rejected := map[string]string{
		"empty":              "",
		"no scheme":          valid,
		"basic scheme":       "Basic " + valid,
		"bearer only":        "Bearer ",
		"garbage token":      "Bearer not.a.jwt",
		"wrong secret":       "Bearer " + mintToken(t, tokenOpts{subject: "u1", secret: "another-secret-another-secret-1234"}),
		"expired":            "Bearer " + mintToken(t, tokenOpts{subject: "u1", expiresIn: -time.Minute}),
		"no expiry":          "Bearer " + mintToken(t, tokenOpts{subject: "u1", noExpiry: true}),
		"anon role":          "Bearer " + mintToken(t, tokenOpts{subject: "u1", role: "anon"}),
		"anonymous sign-in":  "Bearer " + mintToken(t, tokenOpts{subject: "u1", anonymous: true}),
		"missing subject":    "Bearer " + mintToken(t, tokenOpts{}),
		"wrong hmac variant": "Bearer " + mintToken(t, tokenOpts{subject: "u1", method: jwt.SigningMethodHS512}),
		"extra token parts":  "Bearer " + valid + " extra",
	}

	for name, credential := range rejected {
		t.Run(name, func(t *testing.T) {
			actor, err := r.Resolve(ctx, credential)
			if !errors.Is(err, domain.ErrUnauthorized) {
				t.Errorf("err = %v, want ErrUnauthorized", err)
			}
			if actor != "" {
				t.Errorf("actor = %q, want empty", actor)
			}
		})
	}
}

func TestResolver_Revocation(t *testing.T) {
	denylist := newMemoryDenylist()
	r := newTestResolver(t, denylist)
	ctx := context.Background()

	credential := "Bearer " + mintToken(t, tokenOpts{subject: "u1", sessionID: "s1"})
	other := "Bearer " + mintToken(t, tokenOpts{subject: "u1", sessionID: "s2"})

	if _, err := r.Resolve(ctx, credential); err != nil {
		t.Fatalf("resolve before revoke: %v", err)
	}

	if err := r.RevokeCredential(ctx, credential); err != nil {
		t.Fatalf("RevokeCredential: %v", err)
	}

	if _, err := r.Resolve(ctx, credential); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("revoked session: err = %v, want ErrUnauthorized", err)
	}
	if _, err := r.Resolve(ctx, other); err != nil {
		t.Errorf("other session should still resolve: %v", err)
	}

	t.Run("no session id", func(t *testing.T) {
		noSession := "Bearer " + mintToken(t, tokenOpts{subject: "u1"})
		if err := r.RevokeCredential(ctx, noSession); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("err = %v, want ErrValidation", err)
		}
	})

	t.Run("invalid credential", func(t *testing.T) {
		if err := r.RevokeCredential(ctx, "Bearer junk"); !errors.Is(err, domain.ErrUnauthorized) {
			t.Errorf("err = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("denylist failure is not an auth failure", func(t *testing.T) {
		denylist.err = errors.New("connection refused")
		defer func() { denylist.err = nil }()

		_, err := r.Resolve(ctx, other)
		if err == nil || errors.Is(err, domain.ErrUnauthorized) {
			t.Errorf("err = %v, want infrastructure error", err)
		}
	})
}

func TestResolver_RevocationDisabled(t *testing.T) {
	r := newTestResolver(t, nil)
	credential := "Bearer " + mintToken(t, tokenOpts{subject: "u1", sessionID: "s1"})

	if err := r.RevokeCredential(context.Background(), credential); !errors.Is(err, ErrRevocationDisabled) {
		t.Errorf("err = %v, want ErrRevocationDisabled", err)
	}
}

func TestNewHMACVerifier_EmptySecret(t *testing.T) {
	if _, err := NewHMACVerifier("", discardLogger()); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestNewJWTVerifier_EmptyURL(t *testing.T) {
	if _, err := NewJWTVerifier("", discardLogger()); err == nil {
		t.Error("expected error for empty JWKS URL")
	}
}
