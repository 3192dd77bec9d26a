package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/vibast-solutions/ms-go-nutrition/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ErrInvalidToken covers every decode failure: bad signature, wrong
// algorithm, malformed payload and expiry.
var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uint64, bool) {
	if c.Subject == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

type TokenCodecOption func(*TokenCodec)

// WithTokenClock overrides the time source used for iat/exp and validation.
func WithTokenClock(now func() time.Time) TokenCodecOption {
	return func(c *TokenCodec) {
		if now != nil {
			c.now = now
		}
	}
}

// TokenCodec signs and verifies access and refresh tokens. It is immutable
// after construction and safe for concurrent use.
type TokenCodec struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenCodec(cfg config.JWTConfig, opts ...TokenCodecOption) (*TokenCodec, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret is required")
	}

	method := jwt.GetSigningMethod(cfg.Algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", cfg.Algorithm)
	}
	if cfg.AccessTokenTTL <= 0 || cfg.RefreshTokenTTL <= 0 {
		return nil, errors.New("token ttl must be positive")
	}

	codec := &TokenCodec{
		secret:     []byte(cfg.Secret),
		method:     method,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(codec)
	}
	return codec, nil
}

func (c *TokenCodec) AccessTTL() time.Duration {
	return c.accessTTL
}

func (c *TokenCodec) RefreshTTL() time.Duration {
	return c.refreshTTL
}

func (c *TokenCodec) CreateAccessToken(userID uint64) (string, error) {
	return c.create(userID, TokenTypeAccess, c.accessTTL)
}

func (c *TokenCodec) CreateRefreshToken(userID uint64) (string, error) {
	return c.create(userID, TokenTypeRefresh, c.refreshTTL)
}

// Decode verifies algorithm, signature and expiry. It does not check the
// type claim; callers decide which type they accept.
func (c *TokenCodec) Decode(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (c *TokenCodec) create(userID uint64, tokenType string, ttl time.Duration) (string, error) {
	now := c.now()
	claims := &Claims{
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			// Keeps tokens minted for one user within the same second distinct.
			ID: uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(c.method, claims)
	return token.SignedString(c.secret)
}
