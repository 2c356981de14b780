package client_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/imodels-client/pkg/imodels"
)

func TestChangesetIndexResolver(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		ref      imodels.ChangesetRef
		expected int
		requests int32
	}{
		{name: "empty reference is baseline", ref: imodels.ChangesetRef{}, expected: 0, requests: 0},
		{name: "explicit zero index", ref: imodels.Baseline(), expected: 0, requests: 0},
		{name: "zero index wins over id", ref: imodels.ChangesetRef{ID: "cs3", Index: intPtr(0)}, expected: 0, requests: 0},
		{name: "explicit index", ref: imodels.ChangesetByIndex(4), expected: 4, requests: 0},
		{name: "id is looked up", ref: imodels.ChangesetByID("cs3"), expected: 3, requests: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			api := newFakeAPI(t, 5)
			c := api.newClient(nil)

			index, err := c.Changesets().ResolveIndex(context.Background(), testIModelID, tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, index)
			assert.Equal(t, tt.requests, api.changesetRequests.Load())
		})
	}
}

func TestChangesetIndexResolver_Errors(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t, 5)
	c := api.newClient(nil)

	_, err := c.Changesets().ResolveIndex(context.Background(), testIModelID, imodels.ChangesetByID("cs9"))
	require.Error(t, err)
	assert.True(t, imodels.HasCode(err, imodels.ErrorCodeChangesetNotFound))
	assert.True(t, imodels.IsNotFound(err))

	_, err = c.Changesets().ResolveIndex(context.Background(), testIModelID, imodels.ChangesetByIndex(-1))
	require.Error(t, err)
	assert.True(t, imodels.HasCode(err, imodels.ErrorCodeChangesetNotFound))
}
