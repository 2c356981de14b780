package client

import (
	"context"
	"fmt"

	http_internal "github.com/fivetwenty-io/imodels-client/internal/http"
	"github.com/fivetwenty-io/imodels-client/pkg/imodels"
)

// CheckpointResolver finds the nearest checkpoint at or before a changeset.
type CheckpointResolver struct {
	httpClient *http_internal.Client
	changesets *ChangesetsClient
}

// NewCheckpointResolver creates a resolver that reads changesets through changesets.
func NewCheckpointResolver(httpClient *http_internal.Client, changesets *ChangesetsClient) *CheckpointResolver {
	return &CheckpointResolver{
		httpClient: httpClient,
		changesets: changesets,
	}
}

// ResolveCheckpoint walks the history backwards from ref and returns the
// first checkpoint accepted by acceptable, or nil when there is none.
// Each step continues one index below the checkpoint the server returned;
// a checkpoint after the candidate index is reported as
// ErrCheckpointIndexNotDecreasing.
func (r *CheckpointResolver) ResolveCheckpoint(
	ctx context.Context,
	iModelID string,
	ref imodels.ChangesetRef,
	acceptable imodels.CheckpointPredicate,
) (*imodels.Checkpoint, error) {
	candidate, err := r.changesets.ResolveIndex(ctx, iModelID, ref)
	if err != nil {
		return nil, err
	}

	for candidate > 0 {
		checkpoint, err := r.precedingCheckpoint(ctx, iModelID, candidate)
		if err != nil {
			return nil, err
		}

		if checkpoint == nil {
			return nil, nil
		}

		if checkpoint.ChangesetIndex > candidate {
			return nil, fmt.Errorf("%w: checkpoint at %d returned for changeset %d",
				imodels.ErrCheckpointIndexNotDecreasing, checkpoint.ChangesetIndex, candidate)
		}

		if acceptable(checkpoint) {
			return checkpoint, nil
		}

		candidate = checkpoint.ChangesetIndex - 1
	}

	if candidate < 0 {
		return nil, nil
	}

	checkpoint, err := r.checkpointAt(ctx, "/"+iModelID+"/changesets/0/checkpoint")
	if err != nil {
		return nil, err
	}

	if checkpoint != nil && acceptable(checkpoint) {
		return checkpoint, nil
	}

	return nil, nil
}

// precedingCheckpoint follows the currentOrPrecedingCheckpoint link of the
// changeset at index.
func (r *CheckpointResolver) precedingCheckpoint(ctx context.Context, iModelID string, index int) (*imodels.Checkpoint, error) {
	changeset, err := r.changesets.fetchChangeset(ctx, iModelID, imodels.ChangesetByIndex(index))
	if err != nil {
		return nil, fmt.Errorf("getting changeset %d: %w", index, err)
	}

	link := changeset.Links.CurrentOrPrecedingCheckpoint
	if link == nil || link.Href == "" {
		return nil, nil
	}

	resp, err := r.httpClient.GetURL(ctx, link.Href, nil)
	if err != nil {
		if imodels.HasCode(err, imodels.ErrorCodeCheckpointNotFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("getting checkpoint preceding changeset %d: %w", index, err)
	}

	return decodeEntity[imodels.Checkpoint](resp.Body, "checkpoint")
}

// checkpointAt returns the checkpoint at path, or nil when it does not exist.
func (r *CheckpointResolver) checkpointAt(ctx context.Context, path string) (*imodels.Checkpoint, error) {
	resp, err := r.httpClient.Get(ctx, path, nil)
	if err != nil {
		if imodels.HasCode(err, imodels.ErrorCodeCheckpointNotFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("getting checkpoint: %w", err)
	}

	return decodeEntity[imodels.Checkpoint](resp.Body, "checkpoint")
}
