package imodels

import "context"

// ProgressAction is returned by a ProgressObserver.
type ProgressAction int

const (
	// ProgressContinue lets the transfer go on.
	ProgressContinue ProgressAction = iota
	// ProgressAbort cancels the transfer.
	ProgressAbort
)

// ProgressObserver receives transfer progress. It may be called zero or more
// times; returning ProgressAbort cancels the transfer, which then fails with
// DownloadAborted or UploadAborted.
type ProgressObserver func(transferred, total int64) ProgressAction

// UploadInput describes a file upload.
type UploadInput struct {
	URL        string
	SourcePath string
	OnProgress ProgressObserver
}

// DownloadInput describes a file download.
type DownloadInput struct {
	URL        string
	TargetPath string
	OnProgress ProgressObserver
}

// ContentTransfer moves changeset and checkpoint files between the local file
// system and the storage referenced by the API. Cancelling ctx aborts the
// transfer with the same error codes as ProgressAbort.
type ContentTransfer interface {
	Upload(ctx context.Context, input UploadInput) error
	Download(ctx context.Context, input DownloadInput) error
}

// NewDownloadAbortedError returns the error reported for a cancelled download.
func NewDownloadAbortedError(reason string) *Error {
	return NewError(ErrorCodeDownloadAborted, "Download was aborted. "+reason)
}

// NewUploadAbortedError returns the error reported for a cancelled upload.
func NewUploadAbortedError(reason string) *Error {
	return NewError(ErrorCodeUploadAborted, "Upload was aborted. "+reason)
}
