package transfer

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/imodels-client/internal/constants"
	"github.com/fivetwenty-io/imodels-client/pkg/imodels"
)

// Router dispatches transfers to a ContentTransfer by URL scheme.
type Router struct {
	schemes map[string]imodels.ContentTransfer
}

// NewRouter creates a router that sends http and https URLs to an
// HTTPTransfer.
func NewRouter(httpTransfer *HTTPTransfer) *Router {
	if httpTransfer == nil {
		httpTransfer = NewHTTPTransfer()
	}

	return &Router{
		schemes: map[string]imodels.ContentTransfer{
			"http":  httpTransfer,
			"https": httpTransfer,
		},
	}
}

// Handle registers transfer for scheme, replacing any previous one.
func (r *Router) Handle(scheme string, transfer imodels.ContentTransfer) *Router {
	r.schemes[scheme] = transfer

	return r
}

func (r *Router) route(rawURL string) (imodels.ContentTransfer, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing storage URL: %w", err)
	}

	transfer, ok := r.schemes[parsed.Scheme]
	if !ok {
		return nil, fmt.Errorf("%w: %s", constants.ErrUnsupportedStorageURL, rawURL)
	}

	return transfer, nil
}

// Download implements imodels.ContentTransfer.
func (r *Router) Download(ctx context.Context, input imodels.DownloadInput) error {
	transfer, err := r.route(input.URL)
	if err != nil {
		return err
	}

	return transfer.Download(ctx, input)
}

// Upload implements imodels.ContentTransfer.
func (r *Router) Upload(ctx context.Context, input imodels.UploadInput) error {
	transfer, err := r.route(input.URL)
	if err != nil {
		return err
	}

	return transfer.Upload(ctx, input)
}

var _ imodels.ContentTransfer = (*Router)(nil)
