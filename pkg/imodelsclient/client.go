// Package imodelsclient provides the main entry point for creating iModels API clients
package imodelsclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/imodels-client/internal/auth"
	"github.com/fivetwenty-io/imodels-client/internal/client"
	"github.com/fivetwenty-io/imodels-client/internal/constants"
	"github.com/fivetwenty-io/imodels-client/pkg/imodels"
)

// New creates a new iModels API client. The given config is not modified.
func New(ctx context.Context, config *imodels.Config) (imodels.Client, error) {
	if config == nil {
		return nil, imodels.ErrConfigRequired
	}

	normalized := *config
	normalized.APIEndpoint = NormalizeEndpoint(config.APIEndpoint)

	if normalized.RetryPolicy == nil && !normalized.DisableRetries {
		normalized.RetryPolicy = imodels.DefaultRetryPolicy()
	}

	// Use the internal client implementation
	client, err := client.New(ctx, &normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return client, nil
}

// NormalizeEndpoint returns the API base URL used for endpoint: the public
// API when empty, "https://" when no scheme is given and no trailing slash.
func NormalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return constants.DefaultAPIEndpoint
	}

	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	return strings.TrimRight(endpoint, "/")
}

// NewWithToken creates a client for endpoint that authorizes with a fixed
// access token. Requests fail with an expiry error once a JWT token expires.
func NewWithToken(ctx context.Context, endpoint, token string) (imodels.Client, error) {
	return New(ctx, &imodels.Config{
		APIEndpoint:   endpoint,
		Authorization: auth.NewCredentialContext(auth.NewStaticTokenProvider(token)),
	})
}
