package transfer

import (
	"context"
	"errors"
	"io"

	"github.com/fivetwenty-io/imodels-client/pkg/imodels"
)

var errObserverAbort = errors.New("progress observer requested abort")

// progressReader reports every read to an observer and stops once the
// observer asks to abort or the context is done.
type progressReader struct {
	ctx         context.Context //nolint:containedctx // Reads must observe cancellation
	reader      io.Reader
	observer    imodels.ProgressObserver
	total       int64
	transferred int64
}

func newProgressReader(ctx context.Context, reader io.Reader, total int64, observer imodels.ProgressObserver) *progressReader {
	return &progressReader{
		ctx:      ctx,
		reader:   reader,
		observer: observer,
		total:    total,
	}
}

func (r *progressReader) Read(p []byte) (int, error) {
	err := r.ctx.Err()
	if err != nil {
		return 0, err
	}

	n, err := r.reader.Read(p)
	if n > 0 {
		r.transferred += int64(n)

		if r.observer != nil && r.observer(r.transferred, r.total) == imodels.ProgressAbort {
			return n, errObserverAbort
		}
	}

	return n, err //nolint:wrapcheck // io.EOF must reach the caller unwrapped
}

// abortReason explains why a transfer stopped, or returns "" when err is
// not an abort.
func abortReason(ctx context.Context, err error) string {
	switch {
	case errors.Is(err, errObserverAbort):
		return "Progress observer requested abort."
	case ctx.Err() != nil || errors.Is(err, context.Canceled):
		return "Transfer was cancelled."
	default:
		return ""
	}
}

func downloadError(ctx context.Context, err error) error {
	reason := abortReason(ctx, err)
	if reason != "" {
		return imodels.NewDownloadAbortedError(reason)
	}

	return err
}

func uploadError(ctx context.Context, err error) error {
	reason := abortReason(ctx, err)
	if reason != "" {
		return imodels.NewUploadAbortedError(reason)
	}

	return err
}
