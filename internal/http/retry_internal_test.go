package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/imodels-client/pkg/imodels"
)

func TestRetryState_BackoffFollowsRetriesInvoked(t *testing.T) {
	t.Parallel()

	policy := &imodels.ExponentialBackoffPolicy{Retries: 3, BaseDelay: 100 * time.Millisecond, Factor: 2}
	state := newRetryState(policy, nil)
	unavailable := &http.Response{StatusCode: http.StatusServiceUnavailable}

	expected := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond}

	for retry, delay := range expected {
		retrying, err := state.checkRetry(context.Background(), unavailable, nil)
		require.NoError(t, err)
		require.True(t, retrying)

		// The attempt number passed by retryablehttp has no effect.
		assert.Equal(t, delay, state.backoff(0, 0, 99, unavailable), "retry %d", retry+1)
		assert.Equal(t, delay, state.backoff(time.Second, time.Minute, 0, nil), "retry %d", retry+1)
	}

	retrying, err := state.checkRetry(context.Background(), unavailable, nil)
	require.NoError(t, err)
	assert.False(t, retrying)
}
