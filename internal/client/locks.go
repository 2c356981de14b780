package client

import (
	"context"
	"fmt"

	http_internal "github.com/fivetwenty-io/imodels-client/internal/http"
	"github.com/fivetwenty-io/imodels-client/pkg/imodels"
)

// LocksClient implements the imodels.LocksClient interface.
type LocksClient struct {
	httpClient *http_internal.Client
}

// NewLocksClient creates a new LocksClient.
func NewLocksClient(httpClient *http_internal.Client) *LocksClient {
	return &LocksClient{
		httpClient: httpClient,
	}
}

// List lists lock records; filter by briefcase with the "briefcaseId" filter.
func (c *LocksClient) List(ctx context.Context, iModelID string, params *imodels.QueryParams) *imodels.EntityListIterator[imodels.Lock] {
	return listEntities[imodels.Lock](ctx, c.httpClient, "/"+iModelID+"/locks", params, "locks")
}

// Update changes the lock levels held by a briefcase. An object id may
// appear in only one group of the request.
func (c *LocksClient) Update(ctx context.Context, iModelID string, request *imodels.LockUpdateRequest) (*imodels.Lock, error) {
	err := ValidateLockedObjects(request.LockedObjects)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Patch(ctx, "/"+iModelID+"/locks", request)
	if err != nil {
		return nil, fmt.Errorf("updating locks: %w", err)
	}

	return decodeEntity[imodels.Lock](resp.Body, "lock")
}

// ValidateLockedObjects checks that no object id is listed in two groups.
func ValidateLockedObjects(groups []imodels.LockedObjects) error {
	seen := make(map[string]imodels.LockLevel)

	for _, group := range groups {
		for _, objectID := range group.ObjectIDs {
			if level, ok := seen[objectID]; ok {
				return fmt.Errorf("%w: %s (%s and %s)", imodels.ErrObjectInMultipleLockGroups, objectID, level, group.LockLevel)
			}

			seen[objectID] = group.LockLevel
		}
	}

	return nil
}
