package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync/atomic"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/fivetwenty-io/imodels-client/internal/constants"
	"github.com/fivetwenty-io/imodels-client/pkg/imodels"
)

// DefaultTransferRetries is the number of retries of a failed transfer request.
const DefaultTransferRetries = 3

// HTTPTransfer moves files to and from presigned storage URLs.
type HTTPTransfer struct {
	client  *retryablehttp.Client
	headers map[string]string
}

// HTTPOption configures an HTTPTransfer.
type HTTPOption func(*HTTPTransfer)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) HTTPOption {
	return func(t *HTTPTransfer) {
		if httpClient != nil {
			t.client.HTTPClient = httpClient
		}
	}
}

// WithRetries sets the number of retries of a failed request.
func WithRetries(retries int) HTTPOption {
	return func(t *HTTPTransfer) {
		t.client.RetryMax = retries
	}
}

// WithUploadHeader adds a header to every upload request.
func WithUploadHeader(name, value string) HTTPOption {
	return func(t *HTTPTransfer) {
		t.headers[name] = value
	}
}

// NewHTTPTransfer creates a transfer for presigned HTTP(S) URLs. Uploads
// carry the block blob header expected by Azure storage.
func NewHTTPTransfer(opts ...HTTPOption) *HTTPTransfer {
	httpClient := cleanhttp.DefaultPooledClient()
	httpClient.Timeout = constants.TransferHTTPTimeout

	client := retryablehttp.NewClient()
	client.HTTPClient = httpClient
	client.RetryMax = DefaultTransferRetries
	client.Logger = nil
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.CheckRetry = checkTransferRetry

	transfer := &HTTPTransfer{
		client:  client,
		headers: map[string]string{"x-ms-blob-type": "BlockBlob"},
	}

	for _, opt := range opts {
		opt(transfer)
	}

	return transfer
}

// checkTransferRetry never retries a transfer the progress observer aborted.
func checkTransferRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if errors.Is(err, errObserverAbort) {
		return false, err
	}

	return retryablehttp.DefaultRetryPolicy(ctx, resp, err) //nolint:wrapcheck // Passed through to the retry loop
}

// Download implements imodels.ContentTransfer.
func (t *HTTPTransfer) Download(ctx context.Context, input imodels.DownloadInput) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, input.URL, nil)
	if err != nil {
		return fmt.Errorf("creating download request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return downloadError(ctx, fmt.Errorf("downloading file: %w", err))
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: download returned status %d", constants.ErrTransferFailed, resp.StatusCode)
	}

	err = writeFile(ctx, input.TargetPath, resp.Body, resp.ContentLength, input.OnProgress)
	if err != nil {
		return downloadError(ctx, err)
	}

	return nil
}

// Upload implements imodels.ContentTransfer. The source file is reopened
// for every attempt.
func (t *HTTPTransfer) Upload(ctx context.Context, input imodels.UploadInput) error {
	info, err := os.Stat(input.SourcePath)
	if err != nil {
		return fmt.Errorf("reading upload source: %w", err)
	}

	var (
		file    *os.File
		aborted atomic.Bool
	)

	observer := func(transferred, total int64) imodels.ProgressAction {
		if input.OnProgress == nil {
			return imodels.ProgressContinue
		}

		action := input.OnProgress(transferred, total)
		if action == imodels.ProgressAbort {
			aborted.Store(true)
		}

		return action
	}

	body := retryablehttp.ReaderFunc(func() (io.Reader, error) {
		if file != nil {
			_ = file.Close()
		}

		if aborted.Load() {
			return nil, errObserverAbort
		}

		opened, openErr := os.Open(input.SourcePath) //nolint:gosec // G304: path comes from the caller
		if openErr != nil {
			return nil, fmt.Errorf("opening upload source: %w", openErr)
		}

		file = opened

		return newProgressReader(ctx, opened, info.Size(), observer), nil
	})

	defer func() {
		if file != nil {
			_ = file.Close()
		}
	}()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPut, input.URL, body)
	if err != nil {
		return fmt.Errorf("creating upload request: %w", err)
	}

	req.ContentLength = info.Size()
	for name, value := range t.headers {
		req.Header.Set(name, value)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		if aborted.Load() {
			return imodels.NewUploadAbortedError("Progress observer requested abort.")
		}

		return uploadError(ctx, fmt.Errorf("uploading file: %w", err))
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: upload returned status %d", constants.ErrTransferFailed, resp.StatusCode)
	}

	return nil
}

var _ imodels.ContentTransfer = (*HTTPTransfer)(nil)
