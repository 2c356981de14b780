package auth

import (
	"sync"
	"time"
)

// ExpiryBuffer is subtracted from token expiry so a token is never sent
// moments before the API would reject it.
const ExpiryBuffer = 30 * time.Second

// Token is an access token for the iModels API.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type,omitempty"`
	ExpiresAt   time.Time `json:"expires_at,omitzero"`
}

// Valid reports whether the token can still be used. A token without an
// expiry is always valid.
func (t *Token) Valid() bool {
	if t == nil || t.AccessToken == "" {
		return false
	}

	if t.ExpiresAt.IsZero() {
		return true
	}

	return time.Now().Add(ExpiryBuffer).Before(t.ExpiresAt)
}

// Scheme returns the authorization scheme, "Bearer" unless the token says otherwise.
func (t *Token) Scheme() string {
	if t.TokenType == "" || t.TokenType == "bearer" {
		return "Bearer"
	}

	return t.TokenType
}

// TokenStore holds the current token. It is safe for concurrent use.
type TokenStore struct {
	mutex sync.RWMutex
	token *Token
}

// NewTokenStore creates an empty token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Get returns the stored token or nil.
func (s *TokenStore) Get() *Token {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.token
}

// Set replaces the stored token.
func (s *TokenStore) Set(token *Token) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.token = token
}

// Clear removes the stored token.
func (s *TokenStore) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.token = nil
}
