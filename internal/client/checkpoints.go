package client

import (
	"context"
	"fmt"

	http_internal "github.com/fivetwenty-io/imodels-client/internal/http"
	"github.com/fivetwenty-io/imodels-client/pkg/imodels"
)

// CheckpointsClient implements the imodels.CheckpointsClient interface.
type CheckpointsClient struct {
	httpClient *http_internal.Client
	resolver   *CheckpointResolver
}

// NewCheckpointsClient creates a new CheckpointsClient.
func NewCheckpointsClient(httpClient *http_internal.Client, changesets *ChangesetsClient) *CheckpointsClient {
	return &CheckpointsClient{
		httpClient: httpClient,
		resolver:   NewCheckpointResolver(httpClient, changesets),
	}
}

// Get retrieves the checkpoint generated exactly at the referenced changeset.
func (c *CheckpointsClient) Get(ctx context.Context, iModelID string, ref imodels.ChangesetRef) (*imodels.Checkpoint, error) {
	resp, err := c.httpClient.Get(ctx, "/"+iModelID+"/changesets/"+ref.String()+"/checkpoint", nil)
	if err != nil {
		return nil, fmt.Errorf("getting checkpoint: %w", err)
	}

	return decodeEntity[imodels.Checkpoint](resp.Body, "checkpoint")
}

// GetCurrentOrPreceding returns the nearest acceptable checkpoint at or
// before the referenced changeset, or nil if there is none.
func (c *CheckpointsClient) GetCurrentOrPreceding(
	ctx context.Context,
	iModelID string,
	ref imodels.ChangesetRef,
	acceptable imodels.CheckpointPredicate,
) (*imodels.Checkpoint, error) {
	if acceptable == nil {
		acceptable = func(*imodels.Checkpoint) bool { return true }
	}

	return c.resolver.ResolveCheckpoint(ctx, iModelID, ref, acceptable)
}
