package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fivetwenty-io/imodels-client/internal/constants"
)

// TokenProvider fetches a new access token.
type TokenProvider interface {
	FetchToken(ctx context.Context) (*Token, error)
}

// TokenProviderFunc adapts a function to TokenProvider.
type TokenProviderFunc func(ctx context.Context) (*Token, error)

// FetchToken implements TokenProvider.
func (f TokenProviderFunc) FetchToken(ctx context.Context) (*Token, error) {
	return f(ctx)
}

// StaticTokenProvider serves a token obtained out of band, such as one
// stored by the CLI login command.
type StaticTokenProvider struct {
	token *Token
}

// NewStaticTokenProvider creates a provider for accessToken. When the token
// is a JWT its exp claim becomes the expiry; opaque tokens never expire.
func NewStaticTokenProvider(accessToken string) *StaticTokenProvider {
	token := &Token{AccessToken: accessToken, TokenType: "bearer"}

	expiresAt, err := TokenExpiry(accessToken)
	if err == nil {
		token.ExpiresAt = expiresAt
	}

	return &StaticTokenProvider{token: token}
}

// FetchToken returns the static token, or ErrTokenExpired once it has expired.
func (p *StaticTokenProvider) FetchToken(ctx context.Context) (*Token, error) {
	if !p.token.Valid() {
		return nil, constants.ErrTokenExpired
	}

	return p.token, nil
}

// TokenExpiry reads the exp claim of a JWT without verifying its signature.
func TokenExpiry(accessToken string) (time.Time, error) {
	if strings.Count(accessToken, ".") != 2 {
		return time.Time{}, constants.ErrInvalidJWTFormat
	}

	claims := jwt.MapClaims{}

	_, _, err := jwt.NewParser().ParseUnverified(accessToken, claims)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", constants.ErrInvalidJWTFormat, err)
	}

	expiration, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("reading expiration claim: %w", err)
	}

	if expiration == nil {
		return time.Time{}, constants.ErrNoExpirationClaim
	}

	return expiration.Time, nil
}

// IsExpired reports whether a stored JWT has expired. Tokens whose expiry
// cannot be read are treated as unexpired.
func IsExpired(accessToken string) bool {
	expiresAt, err := TokenExpiry(accessToken)
	if err != nil {
		return false
	}

	return time.Now().After(expiresAt)
}
