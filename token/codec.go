package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	apperrors "github.com/varsityhq/varsity-server/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Type tags a credential as either an access or a refresh token.
type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"
)

// Claims are the decoded contents of a credential token.
type Claims struct {
	SubjectID string    // Identity-provider subject the token was issued to
	TokenType Type      // access or refresh
	TokenID   string    // Unique token ID (jti), used for blacklist keying
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Codec mints and decodes signed credential tokens. It is pure: it never
// consults the blacklist or any store.
type Codec struct {
	signer  Signer
	issuer  string
	nowFunc func() time.Time
}

type CodecOption func(*Codec)

// WithNowFunc sets the now time function (primarily for testing)
func WithNowFunc(now func() time.Time) CodecOption {
	return func(c *Codec) {
		c.nowFunc = now
	}
}

func WithIssuer(issuer string) CodecOption {
	return func(c *Codec) {
		c.issuer = issuer
	}
}

func NewCodec(signer Signer, options ...CodecOption) *Codec {
	c := &Codec{
		signer:  signer,
		nowFunc: NowTimeFunc,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Issue creates a signed token for subjectID with a freshly generated token ID.
func (c *Codec) Issue(subjectID string, tokenType Type, ttl time.Duration) (string, *Claims, error) {
	now := c.nowFunc()
	claims := &Claims{
		SubjectID: subjectID,
		TokenType: tokenType,
		TokenID:   uuid.New().String(),
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}

	mapClaims := jwt.MapClaims{
		"iss": c.issuer,
		"sub": claims.SubjectID,
		"typ": string(claims.TokenType),
		"iat": claims.IssuedAt.Unix(),
		"exp": claims.ExpiresAt.Unix(),
		"jti": claims.TokenID,
	}

	signed, err := c.signer.Sign(mapClaims)
	if err != nil {
		return "", nil, errors.Wrap(err, "Codec.Issue Sign")
	}
	return signed, claims, nil
}

// Decode verifies the signature and structural validity of rawToken and
// returns its claims. Expired, malformed or badly signed tokens fail with
// ErrInvalidToken.
func (c *Codec) Decode(rawToken string) (*Claims, error) {
	parsed, err := jwt.Parse(rawToken, c.signer.GetVerificationKey,
		jwt.WithTimeFunc(c.nowFunc), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return nil, apperrors.ErrInvalidToken
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperrors.ErrInvalidToken
	}

	sub, _ := mapClaims["sub"].(string)
	typ, _ := mapClaims["typ"].(string)
	jti, _ := mapClaims["jti"].(string)
	iat, _ := mapClaims["iat"].(float64)
	exp, _ := mapClaims["exp"].(float64)

	if sub == "" || jti == "" {
		return nil, apperrors.ErrInvalidToken
	}
	tokenType := Type(typ)
	if tokenType != TypeAccess && tokenType != TypeRefresh {
		return nil, apperrors.ErrInvalidToken
	}

	return &Claims{
		SubjectID: sub,
		TokenType: tokenType,
		TokenID:   jti,
		IssuedAt:  time.Unix(int64(iat), 0),
		ExpiresAt: time.Unix(int64(exp), 0),
	}, nil
}
