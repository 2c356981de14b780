package client

import (
	"context"
	"fmt"

	http_internal "github.com/fivetwenty-io/imodels-client/internal/http"
	"github.com/fivetwenty-io/imodels-client/pkg/imodels"
)

// IModelsClient implements the imodels.IModelsClient interface.
type IModelsClient struct {
	httpClient *http_internal.Client
}

// NewIModelsClient creates a new IModelsClient.
func NewIModelsClient(httpClient *http_internal.Client) *IModelsClient {
	return &IModelsClient{
		httpClient: httpClient,
	}
}

// Get retrieves a specific iModel.
func (c *IModelsClient) Get(ctx context.Context, iModelID string) (*imodels.IModel, error) {
	resp, err := c.httpClient.Get(ctx, "/"+iModelID, nil)
	if err != nil {
		return nil, fmt.Errorf("getting iModel: %w", err)
	}

	return decodeEntity[imodels.IModel](resp.Body, "iModel")
}

// List lists the iModels of an iTwin.
func (c *IModelsClient) List(ctx context.Context, iTwinID string, params *imodels.QueryParams) *imodels.EntityListIterator[imodels.IModel] {
	if params == nil {
		params = imodels.NewQueryParams()
	}

	params.WithFilter("iTwinId", iTwinID)

	return listEntities[imodels.IModel](ctx, c.httpClient, "", params, "iModels")
}

// Create creates an empty iModel.
func (c *IModelsClient) Create(ctx context.Context, request *imodels.IModelCreateRequest) (*imodels.IModel, error) {
	resp, err := c.httpClient.Post(ctx, "", request)
	if err != nil {
		return nil, fmt.Errorf("creating iModel: %w", err)
	}

	return decodeEntity[imodels.IModel](resp.Body, "iModel")
}

// Update updates the name or description of an iModel.
func (c *IModelsClient) Update(ctx context.Context, iModelID string, request *imodels.IModelUpdateRequest) (*imodels.IModel, error) {
	resp, err := c.httpClient.Patch(ctx, "/"+iModelID, request)
	if err != nil {
		return nil, fmt.Errorf("updating iModel: %w", err)
	}

	return decodeEntity[imodels.IModel](resp.Body, "iModel")
}

// Delete deletes an iModel.
func (c *IModelsClient) Delete(ctx context.Context, iModelID string) error {
	_, err := c.httpClient.Delete(ctx, "/"+iModelID)
	if err != nil {
		return fmt.Errorf("deleting iModel: %w", err)
	}

	return nil
}
