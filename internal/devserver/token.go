package devserver

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"mobileauth/internal/auth/models"
)

// Issuer is the JWT issuer claim on dev server tokens.
const Issuer = "mobileauth-devserver"

// Claims are carried by issued bearer tokens.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenIssuer signs HS256 bearer tokens.
type TokenIssuer struct {
	signingKey []byte
	ttl        time.Duration
}

func NewTokenIssuer(signingKey string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{signingKey: []byte(signingKey), ttl: ttl}
}

// Issue signs a token for user valid from now for the configured TTL.
func (i *TokenIssuer) Issue(user models.User, now time.Time) (models.Token, error) {
	issuedAt := now.Truncate(time.Millisecond)
	expiresAt := issuedAt.Add(i.ttl)
	claims := Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    Issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.signingKey)
	if err != nil {
		return models.Token{}, fmt.Errorf("sign token: %w", err)
	}
	return models.Token{
		Token:     signed,
		IssuedAt:  models.NewEpochMillis(issuedAt),
		ExpiresAt: models.NewEpochMillis(expiresAt),
	}, nil
}

// Parse validates a token signed by this issuer as of now and returns its
// claims.
func (i *TokenIssuer) Parse(token string, now time.Time) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		return i.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, errors.New("parse token: unexpected claims type")
	}
	return claims, nil
}
