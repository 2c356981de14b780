package client

import (
	"context"
	"fmt"

	http_internal "github.com/fivetwenty-io/imodels-client/internal/http"
	"github.com/fivetwenty-io/imodels-client/pkg/imodels"
)

// NamedVersionsClient implements the imodels.NamedVersionsClient interface.
type NamedVersionsClient struct {
	httpClient *http_internal.Client
}

// NewNamedVersionsClient creates a new NamedVersionsClient.
func NewNamedVersionsClient(httpClient *http_internal.Client) *NamedVersionsClient {
	return &NamedVersionsClient{
		httpClient: httpClient,
	}
}

// Get retrieves a specific named version.
func (c *NamedVersionsClient) Get(ctx context.Context, iModelID, namedVersionID string) (*imodels.NamedVersion, error) {
	resp, err := c.httpClient.Get(ctx, "/"+iModelID+"/namedversions/"+namedVersionID, nil)
	if err != nil {
		return nil, fmt.Errorf("getting named version: %w", err)
	}

	return decodeEntity[imodels.NamedVersion](resp.Body, "namedVersion")
}

// List lists the named versions of an iModel.
func (c *NamedVersionsClient) List(ctx context.Context, iModelID string, params *imodels.QueryParams) *imodels.EntityListIterator[imodels.NamedVersion] {
	return listEntities[imodels.NamedVersion](ctx, c.httpClient, "/"+iModelID+"/namedversions", params, "namedVersions")
}

// Create creates a named version on a changeset, or on the baseline when
// the request has no changeset id.
func (c *NamedVersionsClient) Create(ctx context.Context, iModelID string, request *imodels.NamedVersionCreateRequest) (*imodels.NamedVersion, error) {
	resp, err := c.httpClient.Post(ctx, "/"+iModelID+"/namedversions", request)
	if err != nil {
		return nil, fmt.Errorf("creating named version: %w", err)
	}

	return decodeEntity[imodels.NamedVersion](resp.Body, "namedVersion")
}

// Update updates a named version.
func (c *NamedVersionsClient) Update(
	ctx context.Context,
	iModelID, namedVersionID string,
	request *imodels.NamedVersionUpdateRequest,
) (*imodels.NamedVersion, error) {
	resp, err := c.httpClient.Patch(ctx, "/"+iModelID+"/namedversions/"+namedVersionID, request)
	if err != nil {
		return nil, fmt.Errorf("updating named version: %w", err)
	}

	return decodeEntity[imodels.NamedVersion](resp.Body, "namedVersion")
}
