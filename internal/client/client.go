package client

import (
	"context"
	"fmt"
	"io"

	"github.com/fivetwenty-io/imodels-client/internal/constants"
	"github.com/fivetwenty-io/imodels-client/internal/http"
	"github.com/fivetwenty-io/imodels-client/internal/transfer"
	"github.com/fivetwenty-io/imodels-client/pkg/imodels"
)

// Client implements the imodels.Client interface.
type Client struct {
	httpClient *http.Client
	cache      imodels.Cache
	ownsCache  bool
	logger     imodels.Logger

	// Resource clients
	iModels       *IModelsClient
	briefcases    *BriefcasesClient
	changesets    *ChangesetsClient
	namedVersions *NamedVersionsClient
	checkpoints   *CheckpointsClient
	locks         *LocksClient
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *imodels.Config) []http.Option {
	httpOpts := []http.Option{http.WithCorrelationID()}

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if policy := retryPolicy(config); policy != nil {
		httpOpts = append(httpOpts, http.WithRetryPolicy(policy))
	}

	if len(config.Headers) > 0 {
		httpOpts = append(httpOpts, http.WithHeaders(config.Headers))
	}

	timeout := config.HTTPTimeout
	if timeout <= 0 {
		timeout = constants.DefaultHTTPTimeout
	}

	return append(httpOpts, http.WithTimeout(timeout))
}

func retryPolicy(config *imodels.Config) imodels.RetryPolicy {
	if config.DisableRetries {
		return nil
	}

	return config.RetryPolicy
}

// createCache returns the configured cache and whether the client built it.
func createCache(config *imodels.Config) (imodels.Cache, bool, error) {
	if config.Cache != nil {
		return config.Cache, false, nil
	}

	if config.CacheConfig == nil {
		return imodels.NewNoOpCache(), false, nil
	}

	cache, err := imodels.NewCacheFromConfig(config.CacheConfig)
	if err != nil {
		return nil, false, fmt.Errorf("creating cache: %w", err)
	}

	return cache, true, nil
}

// New creates a new iModels API client. The endpoint is used as given;
// imodelsclient.New normalises it and installs the default retry policy.
func New(_ context.Context, config *imodels.Config) (*Client, error) {
	if config == nil {
		return nil, imodels.ErrConfigRequired
	}

	if config.APIEndpoint == "" {
		return nil, imodels.ErrAPIEndpointRequired
	}

	if config.Authorization == nil {
		return nil, imodels.ErrNoAuthorizationConfigured
	}

	cache, ownsCache, err := createCache(config)
	if err != nil {
		return nil, err
	}

	contentTransfer := config.ContentTransfer
	if contentTransfer == nil {
		contentTransfer = transfer.NewRouter(transfer.NewHTTPTransfer())
	}

	httpClient := http.NewClient(config.APIEndpoint, config.Authorization, createHTTPClientOptions(config)...)

	client := &Client{
		httpClient: httpClient,
		cache:      cache,
		ownsCache:  ownsCache,
		logger:     config.Logger,
	}

	client.initializeResourceClients(contentTransfer, config.DownloadConcurrency)

	if config.Logger != nil {
		config.Logger.Debug("iModels client created", map[string]interface{}{
			"endpoint": config.APIEndpoint,
			"retries":  imodels.EffectiveMaxRetries(retryPolicy(config)),
		})
	}

	return client, nil
}

func (c *Client) initializeResourceClients(contentTransfer imodels.ContentTransfer, concurrency int) {
	c.iModels = NewIModelsClient(c.httpClient)
	c.briefcases = NewBriefcasesClient(c.httpClient)
	c.changesets = NewChangesetsClient(c.httpClient,
		WithContentTransfer(contentTransfer),
		WithCache(c.cache),
		WithDownloadConcurrency(concurrency),
		WithLogger(c.logger),
	)
	c.namedVersions = NewNamedVersionsClient(c.httpClient)
	c.checkpoints = NewCheckpointsClient(c.httpClient, c.changesets)
	c.locks = NewLocksClient(c.httpClient)
}

// Close releases the cache when the client created it from CacheConfig.
func (c *Client) Close() error {
	if !c.ownsCache {
		return nil
	}

	switch cache := c.cache.(type) {
	case io.Closer:
		return cache.Close() //nolint:wrapcheck // Closed as is
	case interface{ Close() }:
		cache.Close()
	}

	return nil
}

// IModels implements imodels.ResourceClients.
func (c *Client) IModels() imodels.IModelsClient {
	return c.iModels
}

// Briefcases implements imodels.ResourceClients.
func (c *Client) Briefcases() imodels.BriefcasesClient {
	return c.briefcases
}

// Changesets implements imodels.ResourceClients.
func (c *Client) Changesets() imodels.ChangesetsClient {
	return c.changesets
}

// NamedVersions implements imodels.ResourceClients.
func (c *Client) NamedVersions() imodels.NamedVersionsClient {
	return c.namedVersions
}

// Checkpoints implements imodels.ResourceClients.
func (c *Client) Checkpoints() imodels.CheckpointsClient {
	return c.checkpoints
}

// Locks implements imodels.ResourceClients.
func (c *Client) Locks() imodels.LocksClient {
	return c.locks
}

var _ imodels.Client = (*Client)(nil)
