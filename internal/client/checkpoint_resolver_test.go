package client_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/imodels-client/pkg/imodels"
)

// newCheckpointAPI serves changesets 1..10 with v1 checkpoints at 0 and 5
// and a v2-only checkpoint at 10.
func newCheckpointAPI(t *testing.T) *fakeAPI {
	t.Helper()

	api := newFakeAPI(t, 10)
	api.addV1Checkpoint(0)
	api.addV1Checkpoint(5)
	api.addV2Checkpoint(10)

	return api
}

func TestCheckpointResolver(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		ref        imodels.ChangesetRef
		acceptable imodels.CheckpointPredicate
		expected   *int
	}{
		{name: "v1 skips v2-only checkpoint", ref: imodels.ChangesetByIndex(10), acceptable: imodels.HasV1Checkpoint, expected: intPtr(5)},
		{name: "v2 at requested changeset", ref: imodels.ChangesetByIndex(10), acceptable: imodels.HasV2Checkpoint, expected: intPtr(10)},
		{name: "v1 preceding by id", ref: imodels.ChangesetByID("cs7"), acceptable: imodels.HasV1Checkpoint, expected: intPtr(5)},
		{name: "v1 falls back to baseline", ref: imodels.ChangesetByIndex(4), acceptable: imodels.HasV1Checkpoint, expected: intPtr(0)},
		{name: "baseline acceptable", ref: imodels.Baseline(), acceptable: imodels.HasV1Checkpoint, expected: intPtr(0)},
		{name: "baseline unacceptable", ref: imodels.Baseline(), acceptable: imodels.HasV2Checkpoint, expected: nil},
		{name: "no v2 before changeset", ref: imodels.ChangesetByIndex(7), acceptable: imodels.HasV2Checkpoint, expected: nil},
		{name: "nil predicate accepts any", ref: imodels.ChangesetByIndex(9), acceptable: nil, expected: intPtr(5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			api := newCheckpointAPI(t)
			c := api.newClient(nil)

			checkpoint, err := c.Checkpoints().GetCurrentOrPreceding(context.Background(), testIModelID, tt.ref, tt.acceptable)
			require.NoError(t, err)

			if tt.expected == nil {
				assert.Nil(t, checkpoint)

				return
			}

			require.NotNil(t, checkpoint)
			assert.Equal(t, *tt.expected, checkpoint.ChangesetIndex)
		})
	}
}

func TestCheckpointResolver_IndexMustDecrease(t *testing.T) {
	t.Parallel()

	api := newCheckpointAPI(t)
	api.precedingOverride[10] = 12
	c := api.newClient(nil)

	_, err := c.Checkpoints().GetCurrentOrPreceding(context.Background(), testIModelID, imodels.ChangesetByIndex(10), imodels.HasV1Checkpoint)
	require.ErrorIs(t, err, imodels.ErrCheckpointIndexNotDecreasing)
}

func TestCheckpointResolver_MissingLinkMeansNone(t *testing.T) {
	t.Parallel()

	api := newCheckpointAPI(t)
	api.withoutLinks[8] = true
	c := api.newClient(nil)

	checkpoint, err := c.Checkpoints().GetCurrentOrPreceding(context.Background(), testIModelID, imodels.ChangesetByIndex(8), imodels.HasV1Checkpoint)
	require.NoError(t, err)
	assert.Nil(t, checkpoint)
}

func TestCheckpointResolver_NotFoundMeansNone(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t, 3)
	c := api.newClient(nil)

	checkpoint, err := c.Checkpoints().GetCurrentOrPreceding(context.Background(), testIModelID, imodels.ChangesetByIndex(3), nil)
	require.NoError(t, err)
	assert.Nil(t, checkpoint)
}

func TestCheckpointResolver_UnknownChangeset(t *testing.T) {
	t.Parallel()

	api := newCheckpointAPI(t)
	c := api.newClient(nil)

	_, err := c.Checkpoints().GetCurrentOrPreceding(context.Background(), testIModelID, imodels.ChangesetByID("missing"), nil)
	require.Error(t, err)
	assert.True(t, imodels.HasCode(err, imodels.ErrorCodeChangesetNotFound))
}

func TestCheckpointResolver_CachesChangesets(t *testing.T) {
	t.Parallel()

	api := newCheckpointAPI(t)
	c := api.newClient(nil)

	for range 2 {
		_, err := c.Checkpoints().GetCurrentOrPreceding(context.Background(), testIModelID, imodels.ChangesetByIndex(10), imodels.HasV1Checkpoint)
		require.NoError(t, err)
	}

	// Changesets 10 and 9 are fetched once; checkpoints are always re-read.
	assert.Equal(t, int32(2), api.changesetRequests.Load())
	assert.Equal(t, int32(4), api.checkpointRequests.Load())
}

func TestCheckpointsClient_Get(t *testing.T) {
	t.Parallel()

	api := newCheckpointAPI(t)
	c := api.newClient(nil)

	checkpoint, err := c.Checkpoints().Get(context.Background(), testIModelID, imodels.ChangesetByIndex(5))
	require.NoError(t, err)
	assert.Equal(t, 5, checkpoint.ChangesetIndex)
	assert.True(t, imodels.HasV1Checkpoint(checkpoint))
}

func intPtr(value int) *int {
	return &value
}
