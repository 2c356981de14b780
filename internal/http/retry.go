package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fivetwenty-io/imodels-client/pkg/imodels"
	"github.com/hashicorp/go-retryablehttp"
)

// retryState is the retry bookkeeping of a single call.
type retryState struct {
	policy         imodels.RetryPolicy
	maxRetries     int
	retriesInvoked int
	logger         imodels.Logger
}

func newRetryState(policy imodels.RetryPolicy, logger imodels.Logger) *retryState {
	return &retryState{
		policy:     policy,
		maxRetries: imodels.EffectiveMaxRetries(policy),
		logger:     logger,
	}
}

// client builds a retryablehttp client bound to this state. The underlying
// http.Client is shared; everything else belongs to the call.
func (s *retryState) client(httpClient *http.Client) *retryablehttp.Client {
	return &retryablehttp.Client{
		HTTPClient:   httpClient,
		RetryMax:     s.maxRetries,
		CheckRetry:   s.checkRetry,
		Backoff:      s.backoff,
		ErrorHandler: retryablehttp.PassthroughErrorHandler,
	}
}

func (s *retryState) checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	attempt := imodels.RetryAttempt{
		RetriesInvoked: s.retriesInvoked,
		Err:            err,
	}

	if resp != nil {
		attempt.StatusCode = resp.StatusCode
	}

	if err == nil && attempt.StatusCode < http.StatusBadRequest {
		return false, nil
	}

	if s.policy == nil || s.retriesInvoked >= s.maxRetries {
		return false, nil
	}

	if !s.policy.ShouldRetry(attempt) {
		return false, nil
	}

	s.retriesInvoked++

	if s.logger != nil {
		fields := map[string]interface{}{
			"retry":  s.retriesInvoked,
			"status": attempt.StatusCode,
		}
		if err != nil {
			fields["error"] = err.Error()
		}

		s.logger.Warn("Retrying HTTP request", fields)
	}

	return true, nil
}

// backoff ignores the retryablehttp bounds and attempt number; the policy
// owns the schedule and is called with the retries invoked before this one.
// checkRetry has already counted the retry about to happen.
func (s *retryState) backoff(_, _ time.Duration, _ int, _ *http.Response) time.Duration {
	return s.policy.SleepDuration(s.retriesInvoked - 1)
}
