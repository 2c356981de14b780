package client

import (
	"context"
	"fmt"

	http_internal "github.com/fivetwenty-io/imodels-client/internal/http"
	"github.com/fivetwenty-io/imodels-client/pkg/imodels"
)

// BriefcasesClient implements the imodels.BriefcasesClient interface.
type BriefcasesClient struct {
	httpClient *http_internal.Client
}

// NewBriefcasesClient creates a new BriefcasesClient.
func NewBriefcasesClient(httpClient *http_internal.Client) *BriefcasesClient {
	return &BriefcasesClient{
		httpClient: httpClient,
	}
}

func briefcasePath(iModelID string, briefcaseID int) string {
	return fmt.Sprintf("/%s/briefcases/%d", iModelID, briefcaseID)
}

// Acquire acquires a new briefcase for the caller.
func (c *BriefcasesClient) Acquire(ctx context.Context, iModelID string, request *imodels.BriefcaseAcquireRequest) (*imodels.Briefcase, error) {
	if request == nil {
		request = &imodels.BriefcaseAcquireRequest{}
	}

	resp, err := c.httpClient.Post(ctx, "/"+iModelID+"/briefcases", request)
	if err != nil {
		return nil, fmt.Errorf("acquiring briefcase: %w", err)
	}

	return decodeEntity[imodels.Briefcase](resp.Body, "briefcase")
}

// Release releases a briefcase and the locks it holds.
func (c *BriefcasesClient) Release(ctx context.Context, iModelID string, briefcaseID int) error {
	_, err := c.httpClient.Delete(ctx, briefcasePath(iModelID, briefcaseID))
	if err != nil {
		return fmt.Errorf("releasing briefcase %d: %w", briefcaseID, err)
	}

	return nil
}

// Get retrieves a specific briefcase.
func (c *BriefcasesClient) Get(ctx context.Context, iModelID string, briefcaseID int) (*imodels.Briefcase, error) {
	resp, err := c.httpClient.Get(ctx, briefcasePath(iModelID, briefcaseID), nil)
	if err != nil {
		return nil, fmt.Errorf("getting briefcase: %w", err)
	}

	return decodeEntity[imodels.Briefcase](resp.Body, "briefcase")
}

// List lists the briefcases of an iModel.
func (c *BriefcasesClient) List(ctx context.Context, iModelID string, params *imodels.QueryParams) *imodels.EntityListIterator[imodels.Briefcase] {
	return listEntities[imodels.Briefcase](ctx, c.httpClient, "/"+iModelID+"/briefcases", params, "briefcases")
}
