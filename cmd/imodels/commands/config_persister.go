package commands

import (
	"sync"
	"time"
)

// ConfigPersister stores login state in the CLI configuration file.
type ConfigPersister struct {
	mutex sync.Mutex
}

// NewConfigPersister creates a new config persister.
func NewConfigPersister() *ConfigPersister {
	return &ConfigPersister{}
}

// UpdateToken stores the access token and its expiry. An empty api keeps
// the configured endpoint.
func (p *ConfigPersister) UpdateToken(api, token string, expiresAt time.Time) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	config := loadConfig()

	if api != "" {
		config.API = api
	}

	config.Token = token
	config.TokenExpiresAt = nil

	if !expiresAt.IsZero() {
		config.TokenExpiresAt = &expiresAt
	}

	return saveConfigStruct(config)
}

// ClearToken removes the stored access token.
func (p *ConfigPersister) ClearToken() error {
	return p.UpdateToken("", "", time.Time{})
}
