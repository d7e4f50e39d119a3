// Package auth issues and validates the signed session tokens handed out on
// successful login.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/bookmate-auth/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

// TokenLifetime is fixed: every token expires one hour after issuance.
const TokenLifetime = 60 * time.Minute

// TokenConfig is the symmetric signing setup shared by issuance and
// validation. All three fields are required.
type TokenConfig struct {
	SigningKey string
	Issuer     string
	Audience   string
}

func (c TokenConfig) validate() error {
	switch {
	case c.SigningKey == "":
		return fmt.Errorf("%w: token signing key", common.ErrConfigurationMissing)
	case c.Issuer == "":
		return fmt.Errorf("%w: token issuer", common.ErrConfigurationMissing)
	case c.Audience == "":
		return fmt.Errorf("%w: token audience", common.ErrConfigurationMissing)
	}
	return nil
}

// Claims is the claim set carried by a session token. Subject is the account
// email and ID (jti) is unique per issuance.
type Claims struct {
	jwt.RegisteredClaims
}

// Token is a freshly issued, signed session token.
type Token struct {
	Value     string
	ID        string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Issuer signs session tokens with HS256 and validates them against the same
// configuration.
type Issuer struct {
	cfg   TokenConfig
	key   []byte
	now   func() time.Time
	newID func() string
}

// NewIssuer returns an Issuer, or ErrConfigurationMissing when the signing
// key, issuer or audience is empty.
func NewIssuer(cfg TokenConfig) (*Issuer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Issuer{
		cfg:   cfg,
		key:   []byte(cfg.SigningKey),
		now:   time.Now,
		newID: func() string { return ulid.Make().String() },
	}, nil
}

// Issue signs a token for subject valid for TokenLifetime.
func (i *Issuer) Issue(subject string) (*Token, error) {
	if i == nil {
		return nil, fmt.Errorf("%w: token issuer not initialized", common.ErrConfigurationMissing)
	}
	// A zero-value Issuer has no key; never sign with nothing.
	if err := i.cfg.validate(); err != nil {
		return nil, err
	}
	if subject == "" {
		return nil, fmt.Errorf("%w: token subject is empty", common.ErrInvalidInput)
	}

	issuedAt := i.now().Truncate(time.Second)
	expiresAt := issuedAt.Add(TokenLifetime)
	id := i.newID()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        id,
			Issuer:    i.cfg.Issuer,
			Audience:  jwt.ClaimStrings{i.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	value, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &Token{
		Value:     value,
		ID:        id,
		Subject:   subject,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// Validate checks signature, algorithm, issuer, audience and lifetime and
// returns the claims. Expired tokens yield ErrTokenExpired, every other
// failure ErrInvalidToken.
func (i *Issuer) Validate(tokenString string) (*Claims, error) {
	if i == nil {
		return nil, fmt.Errorf("%w: token issuer not initialized", common.ErrConfigurationMissing)
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return i.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.cfg.Issuer),
		jwt.WithAudience(i.cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
