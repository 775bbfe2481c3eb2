package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/vidstream/vidstream/internal/config"
)

// TokenKind discriminates the two credentials the issuer mints. An access
// token presented where a refresh token is expected (or vice versa) fails
// verification even though both carry valid signatures.
type TokenKind string

const (
	// KindAccess is the short-lived per-request credential.
	KindAccess TokenKind = "access"
	// KindRefresh is the long-lived rotating credential.
	KindRefresh TokenKind = "refresh"
)

var (
	// ErrTokenExpired reports a token past its TTL. Callers must not expose
	// the distinction from ErrTokenInvalid to clients.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid reports a malformed token, a bad signature or a kind
	// mismatch.
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims is the signed token payload: subject, issuance time, expiry and
// the token kind.
type Claims struct {
	jwt.RegisteredClaims
	TokenType TokenKind `json:"typ"`
}

// Issuer mints and verifies signed access and refresh tokens. It is pure
// and stateless: verification consults only the secret and the token's own
// claims, never the store. Safe under unbounded concurrency.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewIssuer builds an issuer from the immutable process configuration.
func NewIssuer(cfg config.Config) *Issuer {
	return &Issuer{
		accessSecret:  []byte(cfg.AccessTokenSecret),
		refreshSecret: []byte(cfg.RefreshTokenSecret),
		accessTTL:     cfg.AccessTokenTTL,
		refreshTTL:    cfg.RefreshTokenTTL,
	}
}

// IssueAccess signs a short-lived access token for the subject.
func (i *Issuer) IssueAccess(subject uuid.UUID) (string, error) {
	return i.sign(subject, KindAccess, i.accessSecret, i.accessTTL)
}

// IssueRefresh signs a long-lived refresh token for the subject.
func (i *Issuer) IssueRefresh(subject uuid.UUID) (string, error) {
	return i.sign(subject, KindRefresh, i.refreshSecret, i.refreshTTL)
}

func (i *Issuer) sign(subject uuid.UUID, kind TokenKind, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		TokenType: kind,
	}
	if kind == KindRefresh {
		// A jti keeps consecutive rotations distinct even within the same
		// second; the stored-token comparison depends on it.
		claims.ID = uuid.NewString()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}

// Verify checks the signature, expiry and kind of tokenString and returns
// the subject ID. Expired tokens yield ErrTokenExpired; everything else
// wrong yields ErrTokenInvalid.
func (i *Issuer) Verify(tokenString string, kind TokenKind) (uuid.UUID, error) {
	secret := i.accessSecret
	if kind == KindRefresh {
		secret = i.refreshSecret
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, ErrTokenExpired
		}
		return uuid.Nil, ErrTokenInvalid
	}
	if !token.Valid || claims.TokenType != kind {
		return uuid.Nil, ErrTokenInvalid
	}

	subject, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrTokenInvalid
	}
	return subject, nil
}

// AccessTTL is the configured access token lifetime, used for cookie expiry.
func (i *Issuer) AccessTTL() time.Duration { return i.accessTTL }

// RefreshTTL is the configured refresh token lifetime, used for cookie expiry.
func (i *Issuer) RefreshTTL() time.Duration { return i.refreshTTL }
