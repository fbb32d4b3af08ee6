// Package auth issues and verifies the signed tokens of a session: short-lived
// access tokens and long-lived refresh tokens. Each kind has its own secret,
// so a token of one kind never verifies as the other.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/vidkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind selects the secret and lifetime of a token.
type Kind int

const (
	AccessToken Kind = iota
	RefreshToken
)

func (k Kind) String() string {
	switch k {
	case AccessToken:
		return "access"
	case RefreshToken:
		return "refresh"
	default:
		return "unknown"
	}
}

// ProfileClaims are the display claims embedded in access tokens.
type ProfileClaims struct {
	Email    string `json:"email,omitempty"`
	UserName string `json:"username,omitempty"`
	FullName string `json:"fullName,omitempty"`
}

// Claims is the JWT payload. Refresh tokens leave ProfileClaims empty.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"_id"`
	ProfileClaims
}

// Issuer signs and verifies tokens. It is immutable after construction and
// safe for concurrent use.
type Issuer struct {
	accessSecret    []byte
	refreshSecret   []byte
	accessValidity  time.Duration
	refreshValidity time.Duration
	now             func() time.Time
}

// NewIssuer builds an Issuer. The two secrets must differ.
func NewIssuer(accessSecret, refreshSecret string, accessValidity, refreshValidity time.Duration) (*Issuer, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("token secrets must not be empty")
	}
	if accessSecret == refreshSecret {
		return nil, errors.New("access and refresh token secrets must differ")
	}
	return &Issuer{
		accessSecret:    []byte(accessSecret),
		refreshSecret:   []byte(refreshSecret),
		accessValidity:  accessValidity,
		refreshValidity: refreshValidity,
		now:             time.Now,
	}, nil
}

// IssueAccessToken signs a short-lived token carrying userID and profile claims.
func (i *Issuer) IssueAccessToken(userID string, profile ProfileClaims) (string, error) {
	return GenerateToken(Claims{UserID: userID, ProfileClaims: profile}, i.accessSecret, i.now(), i.accessValidity)
}

// IssueRefreshToken signs a long-lived token carrying only userID. Each call
// yields a distinct token, even within the same second.
func (i *Issuer) IssueRefreshToken(userID string) (string, error) {
	return GenerateToken(Claims{UserID: userID}, i.refreshSecret, i.now(), i.refreshValidity)
}

// Verify checks signature and expiry of a token of the given kind. It does not
// consult storage.
func (i *Issuer) Verify(token string, kind Kind) (*Claims, error) {
	switch kind {
	case AccessToken:
		return ParseToken(token, i.accessSecret)
	case RefreshToken:
		return ParseToken(token, i.refreshSecret)
	default:
		return nil, fmt.Errorf("%w: unknown token kind %d", common.ErrInvalidToken, kind)
	}
}

// GenerateToken signs claims with HS256, stamping issue time, expiry and a
// random token id.
func GenerateToken(claims Claims, secretKey []byte, now time.Time, validityDuration time.Duration) (string, error) {
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies tokenString against secretKey. Expired tokens yield
// common.ErrTokenExpired; every other failure yields common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
