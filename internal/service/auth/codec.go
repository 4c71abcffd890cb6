package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nkiryanov/tokend/internal/apperrors"
	"github.com/nkiryanov/tokend/internal/models"
)

const (
	defaultSigningMethod   = "HS256"
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultRefreshTokenTTL = 7 * 24 * time.Hour

	// Kind claim value that marks refresh tokens
	// Access tokens carry no kind claim at all
	kindRefresh = "refresh"
)

// Claims embedded in signed tokens
// Subject is the user email
type Claims struct {
	jwt.RegisteredClaims
	Kind string `json:"type,omitempty"`
}

// Codec config with sensible defaults
type CodecConfig struct {
	// Secret key to sign tokens
	// Required to be set
	SecretKey string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string

	// Access and refresh token lifetimes
	// If not set than default is used
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// TokenCodec creates and parses signed expiring tokens
// It is pure: issuing has no side effects, persistence is the caller's job.
// Signature checks alone can't revoke a refresh token before its natural
// expiry, that's what the ledger in the repository is for
type TokenCodec struct {
	key string
	alg jwt.SigningMethod

	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewCodec(cfg CodecConfig) (*TokenCodec, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}
	alg := jwt.GetSigningMethod(cfg.Alg)
	if alg == nil {
		return nil, fmt.Errorf("unknown signing method %q", cfg.Alg)
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessTTL, defaultAccessTokenTTL)
	setDefaultDuration(&cfg.RefreshTTL, defaultRefreshTokenTTL)

	return &TokenCodec{
		key:        cfg.SecretKey,
		alg:        alg,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
	}, nil
}

func (c *TokenCodec) RefreshTTL() time.Duration {
	return c.refreshTTL
}

// Issue access token for the subject (user email)
func (c *TokenCodec) IssueAccess(subject string, now time.Time) (models.IssuedToken, error) {
	return c.issue(subject, now, c.accessTTL, "")
}

// Issue refresh token for the subject
// Expiry is returned alongside so the caller can persist it without re-parsing
func (c *TokenCodec) IssueRefresh(subject string, now time.Time) (models.IssuedToken, error) {
	return c.issue(subject, now, c.refreshTTL, kindRefresh)
}

func (c *TokenCodec) issue(subject string, now time.Time, ttl time.Duration, kind string) (models.IssuedToken, error) {
	// Truncate to seconds: JWT NumericDate has no finer granularity anyway
	now = now.UTC().Truncate(time.Second)
	expiresAt := now.Add(ttl)

	token := jwt.NewWithClaims(
		c.alg,
		Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				Subject:   subject,
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			Kind: kind,
		},
	)

	signed, err := token.SignedString([]byte(c.key))
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing token. Err: %w", err)
	}

	return models.IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

// Parse and verify a signed token
// Returns apperrors.ErrTokenInvalid on bad signature, malformed payload or
// unexpected algorithm. On expiry returns apperrors.ErrRefreshTokenExpired
// with claims still populated, so the caller may run its ledger cleanup
func (c *TokenCodec) Parse(value string) (Claims, error) {
	claims := Claims{}

	_, err := jwt.ParseWithClaims(
		value,
		&claims,
		func(t *jwt.Token) (any, error) { return []byte(c.key), nil },
		jwt.WithValidMethods([]string{c.alg.Alg()}),
	)

	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return claims, fmt.Errorf("token expired: %w", apperrors.ErrRefreshTokenExpired)
	default:
		return claims, fmt.Errorf("%w: %w", apperrors.ErrTokenInvalid, err)
	}
}

// IsRefresh reports whether claims belong to a refresh token
func (cl Claims) IsRefresh() bool {
	return cl.Kind == kindRefresh
}
