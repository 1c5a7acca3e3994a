package sessions

import (
	"crypto/sha256"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/signature-studio/internal/errors"
	"golang.org/x/crypto/hkdf"
)

const cookieIssuer = "signature-studio"

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

type cookieClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// CookieCodec signs and verifies session cookie values.
// The value is an HS256 JWT naming the session and its expiry.
type CookieCodec struct {
	key []byte
}

// NewCookieCodec derives the signing key from the configured session secret.
func NewCookieCodec(secret string) (*CookieCodec, error) {
	if secret == "" {
		return nil, fmt.Errorf("session secret is required")
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte("signature-studio session cookie")), key); err != nil {
		return nil, fmt.Errorf("failed to derive cookie key: %w", err)
	}
	return &CookieCodec{key: key}, nil
}

func (c *CookieCodec) Encode(sessionID string, expiresAt time.Time) (string, error) {
	claims := cookieClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cookieIssuer,
			IssuedAt:  jwt.NewNumericDate(NowTimeFunc()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign session cookie: %w", err)
	}
	return signed, nil
}

// Decode verifies value and returns the session id it names.
func (c *CookieCodec) Decode(value string) (string, error) {
	claims := &cookieClaims{}
	_, err := jwt.ParseWithClaims(value, claims, func(t *jwt.Token) (any, error) {
		return c.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cookieIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(NowTimeFunc),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", errors.ErrSessionExpired
		}
		return "", errors.Wrapf(errors.ErrInvalidCookie, "%v", err)
	}
	if claims.SessionID == "" {
		return "", errors.ErrInvalidCookie
	}
	return claims.SessionID, nil
}
