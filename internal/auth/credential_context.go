package auth

import (
	"context"
	"fmt"
	"sync"

	"github.com/fivetwenty-io/imodels-client/pkg/imodels"
)

// CredentialContext caches the token of a TokenProvider and hands out
// Authorization values for requests. It is safe for concurrent use; at most
// one fetch runs at a time.
type CredentialContext struct {
	provider TokenProvider
	store    *TokenStore
	fetch    sync.Mutex
}

// NewCredentialContext creates a credential context backed by provider.
func NewCredentialContext(provider TokenProvider) *CredentialContext {
	return &CredentialContext{
		provider: provider,
		store:    NewTokenStore(),
	}
}

// Token returns the cached token while it is valid and fetches a new one otherwise.
func (c *CredentialContext) Token(ctx context.Context) (*Token, error) {
	token := c.store.Get()
	if token.Valid() {
		return token, nil
	}

	c.fetch.Lock()
	defer c.fetch.Unlock()

	token = c.store.Get()
	if token.Valid() {
		return token, nil
	}

	token, err := c.provider.FetchToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching access token: %w", err)
	}

	c.store.Set(token)

	return token, nil
}

// Reset drops the cached token so the next call fetches a new one.
func (c *CredentialContext) Reset() {
	c.store.Clear()
}

// Authorization implements imodels.AuthorizationProvider.
func (c *CredentialContext) Authorization(ctx context.Context) (*imodels.Authorization, error) {
	token, err := c.Token(ctx)
	if err != nil {
		return nil, err
	}

	return &imodels.Authorization{Scheme: token.Scheme(), Token: token.AccessToken}, nil
}

var _ imodels.AuthorizationProvider = (*CredentialContext)(nil)
