// Package token signs and verifies the bearer tokens this service
// issues. Access and refresh tokens are signed with two distinct
// secrets so that possessing one kind cannot forge the other.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Kind selects which signing secret a token is bound to.
type Kind int

const (
	Access Kind = iota
	Refresh
)

// Claims is the signed payload carried by every issued token.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Reason classifies why verification rejected a token.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonBadSignature
	ReasonExpired
	ReasonMalformed
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "valid"
	case ReasonBadSignature:
		return "bad signature"
	case ReasonExpired:
		return "expired"
	}
	return "malformed"
}

// VerifyResult is the tagged outcome of Verify. Verification never
// fails with an error across this boundary; a rejected token carries
// its Reason instead.
type VerifyResult struct {
	Claims *Claims
	Reason Reason
}

func (r VerifyResult) Valid() bool {
	return r.Reason == ReasonNone
}

// Codec issues and verifies access and refresh tokens. Lifetimes are
// fixed at construction, not per call.
type Codec struct {
	accessSigner  Signer
	refreshSigner Signer
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	nowFunc       func() time.Time
}

type CodecOption func(*Codec)

func WithTokenExpiry(accessExpiry, refreshExpiry time.Duration) CodecOption {
	return func(c *Codec) {
		c.accessExpiry = accessExpiry
		c.refreshExpiry = refreshExpiry
	}
}

func WithNowFunc(now func() time.Time) CodecOption {
	return func(c *Codec) {
		c.nowFunc = now
	}
}

// NewCodec builds a codec over the two signing secrets. A missing
// secret is a startup-time fault, never a per-request one.
func NewCodec(accessSecret, refreshSecret string, options ...CodecOption) (*Codec, error) {
	if accessSecret == "" {
		return nil, errors.New("[NewCodec] access token secret is required")
	}
	if refreshSecret == "" {
		return nil, errors.New("[NewCodec] refresh token secret is required")
	}

	c := &Codec{
		accessSigner:  NewHMACSigner(accessSecret),
		refreshSigner: NewHMACSigner(refreshSecret),
	}

	for _, opt := range options {
		opt(c)
	}

	if c.accessExpiry == 0 {
		c.accessExpiry = 100 * time.Second
	}
	if c.refreshExpiry == 0 {
		c.refreshExpiry = 24 * time.Hour
	}
	if c.nowFunc == nil {
		c.nowFunc = time.Now
	}
	return c, nil
}

// IssueAccess signs a short-lived access token for the subject email.
func (c *Codec) IssueAccess(email string) (string, error) {
	return c.issue(email, c.accessSigner, c.accessExpiry)
}

// IssueRefresh signs a long-lived refresh token for the subject email.
func (c *Codec) IssueRefresh(email string) (string, error) {
	return c.issue(email, c.refreshSigner, c.refreshExpiry)
}

func (c *Codec) issue(email string, signer Signer, expiry time.Duration) (string, error) {
	now := c.nowFunc()
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			ID:        uuid.New().String(), // unique per issuance
		},
	}

	signedToken, err := signer.Sign(claims)
	if err != nil {
		return "", errors.Wrap(err, "Codec.issue")
	}
	return signedToken, nil
}

// Verify checks signature and expiry against the secret for the given
// kind. Expiry uses this codec's clock; no skew tolerance is applied.
func (c *Codec) Verify(rawToken string, kind Kind) VerifyResult {
	signer := c.refreshSigner
	if kind == Access {
		signer = c.accessSigner
	}

	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{signer.GetSigningMethod().Alg()}),
		jwt.WithTimeFunc(c.nowFunc),
	)

	parsed, err := parser.ParseWithClaims(rawToken, claims, signer.GetVerificationKey)
	if err != nil {
		return VerifyResult{Reason: rejectionReason(err)}
	}
	if !parsed.Valid {
		return VerifyResult{Reason: ReasonMalformed}
	}
	return VerifyResult{Claims: claims}
}

func rejectionReason(err error) Reason {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ReasonExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ReasonBadSignature
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ReasonMalformed
	}
	return ReasonBadSignature
}
