package client

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fivetwenty-io/imodels-client/internal/constants"
	http_internal "github.com/fivetwenty-io/imodels-client/internal/http"
	"github.com/fivetwenty-io/imodels-client/pkg/imodels"
)

// ChangesetsClient implements the imodels.ChangesetsClient interface.
type ChangesetsClient struct {
	httpClient  *http_internal.Client
	transfer    imodels.ContentTransfer
	cache       imodels.Cache
	concurrency int
	logger      imodels.Logger
	indexes     *ChangesetIndexResolver
}

// ChangesetsOption configures a ChangesetsClient.
type ChangesetsOption func(*ChangesetsClient)

// WithContentTransfer sets the collaborator used for changeset files.
func WithContentTransfer(transfer imodels.ContentTransfer) ChangesetsOption {
	return func(c *ChangesetsClient) {
		c.transfer = transfer
	}
}

// WithCache caches changesets looked up during index and checkpoint resolution.
func WithCache(cache imodels.Cache) ChangesetsOption {
	return func(c *ChangesetsClient) {
		if cache != nil {
			c.cache = cache
		}
	}
}

// WithDownloadConcurrency sets the number of parallel downloads of DownloadList.
func WithDownloadConcurrency(concurrency int) ChangesetsOption {
	return func(c *ChangesetsClient) {
		if concurrency > 0 {
			c.concurrency = concurrency
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger imodels.Logger) ChangesetsOption {
	return func(c *ChangesetsClient) {
		c.logger = logger
	}
}

// NewChangesetsClient creates a new ChangesetsClient.
func NewChangesetsClient(httpClient *http_internal.Client, opts ...ChangesetsOption) *ChangesetsClient {
	client := &ChangesetsClient{
		httpClient:  httpClient,
		cache:       imodels.NewNoOpCache(),
		concurrency: constants.DefaultDownloadConcurrency,
	}

	for _, opt := range opts {
		opt(client)
	}

	client.indexes = NewChangesetIndexResolver(client)

	return client
}

// Get retrieves a changeset by id or index.
func (c *ChangesetsClient) Get(ctx context.Context, iModelID string, ref imodels.ChangesetRef) (*imodels.Changeset, error) {
	resp, err := c.httpClient.Get(ctx, "/"+iModelID+"/changesets/"+ref.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("getting changeset: %w", err)
	}

	changeset, err := decodeEntity[imodels.Changeset](resp.Body, "changeset")
	if err != nil {
		return nil, err
	}

	c.remember(ctx, iModelID, changeset)

	return changeset, nil
}

// List lists the changesets of an iModel in index order.
func (c *ChangesetsClient) List(ctx context.Context, iModelID string, params *imodels.QueryParams) *imodels.EntityListIterator[imodels.Changeset] {
	return listEntities[imodels.Changeset](ctx, c.httpClient, "/"+iModelID+"/changesets", params, "changesets")
}

// ResolveIndex returns the index of the referenced changeset.
func (c *ChangesetsClient) ResolveIndex(ctx context.Context, iModelID string, ref imodels.ChangesetRef) (int, error) {
	return c.indexes.ResolveIndex(ctx, iModelID, ref)
}

func changesetCacheKey(iModelID, segment string) string {
	return "changeset/" + iModelID + "/" + segment
}

// fetchChangeset returns a changeset from the cache or the API. Changesets
// never change once pushed; only their expiring transfer links do, so
// callers that transfer files use Get instead.
func (c *ChangesetsClient) fetchChangeset(ctx context.Context, iModelID string, ref imodels.ChangesetRef) (*imodels.Changeset, error) {
	entry, err := c.cache.Get(ctx, changesetCacheKey(iModelID, ref.String()))
	if err == nil {
		var changeset imodels.Changeset

		err = entry.Decode(&changeset)
		if err == nil {
			return &changeset, nil
		}
	}

	return c.Get(ctx, iModelID, ref)
}

func (c *ChangesetsClient) remember(ctx context.Context, iModelID string, changeset *imodels.Changeset) {
	entry, err := imodels.NewCacheEntry(changeset, constants.ChangesetCacheTTL)
	if err != nil {
		return
	}

	for _, segment := range []string{changeset.ID, imodels.ChangesetByIndex(changeset.Index).String()} {
		err = c.cache.Set(ctx, changesetCacheKey(iModelID, segment), entry)
		if err != nil && c.logger != nil {
			c.logger.Warn("Caching changeset failed", map[string]interface{}{
				"imodel": iModelID,
				"key":    segment,
				"error":  err.Error(),
			})
		}
	}
}

// Create pushes a changeset: the metadata is registered, the file is
// uploaded through the content transfer and the changeset is completed.
func (c *ChangesetsClient) Create(ctx context.Context, iModelID string, request *imodels.ChangesetCreateRequest) (*imodels.Changeset, error) {
	if c.transfer == nil {
		return nil, imodels.ErrNoContentTransferConfigured
	}

	body := *request

	if body.FileSize == 0 && body.FilePath != "" {
		info, err := os.Stat(body.FilePath)
		if err != nil {
			return nil, fmt.Errorf("reading changeset file: %w", err)
		}

		body.FileSize = info.Size()
	}

	resp, err := c.httpClient.Post(ctx, "/"+iModelID+"/changesets", &body)
	if err != nil {
		return nil, fmt.Errorf("creating changeset: %w", err)
	}

	created, err := decodeEntity[imodels.Changeset](resp.Body, "changeset")
	if err != nil {
		return nil, err
	}

	if created.Links.Upload == nil || created.Links.Upload.Href == "" {
		return nil, imodels.ErrChangesetHasNoUploadLink
	}

	err = c.transfer.Upload(ctx, imodels.UploadInput{
		URL:        created.Links.Upload.Href,
		SourcePath: body.FilePath,
	})
	if err != nil {
		return nil, fmt.Errorf("uploading changeset file: %w", err)
	}

	complete := &imodels.ChangesetCompleteRequest{
		State:       imodels.ChangesetStateFileUploaded,
		BriefcaseID: body.BriefcaseID,
	}

	if created.Links.Complete != nil && created.Links.Complete.Href != "" {
		resp, err = c.httpClient.PatchURL(ctx, created.Links.Complete.Href, complete)
	} else {
		resp, err = c.httpClient.Patch(ctx, "/"+iModelID+"/changesets/"+created.ID, complete)
	}

	if err != nil {
		return nil, fmt.Errorf("completing changeset: %w", err)
	}

	return decodeEntity[imodels.Changeset](resp.Body, "changeset")
}

// Download downloads the referenced changeset file into targetDir.
func (c *ChangesetsClient) Download(
	ctx context.Context,
	iModelID string,
	ref imodels.ChangesetRef,
	targetDir string,
	progress imodels.ProgressObserver,
) (*imodels.DownloadedChangeset, error) {
	changeset, err := c.Get(ctx, iModelID, ref)
	if err != nil {
		return nil, err
	}

	return c.downloadFile(ctx, iModelID, changeset, targetDir, progress)
}

func (c *ChangesetsClient) downloadFile(
	ctx context.Context,
	iModelID string,
	changeset *imodels.Changeset,
	targetDir string,
	progress imodels.ProgressObserver,
) (*imodels.DownloadedChangeset, error) {
	if c.transfer == nil {
		return nil, imodels.ErrNoContentTransferConfigured
	}

	err := os.MkdirAll(targetDir, constants.DownloadDirPerm)
	if err != nil {
		return nil, fmt.Errorf("creating download directory: %w", err)
	}

	downloaded := &imodels.DownloadedChangeset{
		Changeset: *changeset,
		FilePath:  filepath.Join(targetDir, changeset.ID+".cs"),
	}

	info, err := os.Stat(downloaded.FilePath)
	if err == nil && info.Size() == changeset.FileSize {
		return downloaded, nil
	}

	err = c.transferChangeset(ctx, changeset, downloaded.FilePath, progress)
	if err != nil && !imodels.IsCancelled(err) && ctx.Err() == nil {
		// Download links expire; fetch a fresh one and try once more.
		if c.logger != nil {
			c.logger.Warn("Changeset download failed, refreshing download link", map[string]interface{}{
				"imodel":    iModelID,
				"changeset": changeset.ID,
				"error":     err.Error(),
			})
		}

		fresh, getErr := c.Get(ctx, iModelID, imodels.ChangesetByID(changeset.ID))
		if getErr != nil {
			return nil, getErr
		}

		err = c.transferChangeset(ctx, fresh, downloaded.FilePath, progress)
	}

	if err != nil {
		if imodels.IsCancelled(err) {
			return nil, err
		}

		failure := imodels.NewError(imodels.ErrorCodeChangesetDownloadFailed,
			fmt.Sprintf("Failed to download changeset %s.", changeset.ID))

		return nil, fmt.Errorf("%w: %w", failure, err)
	}

	return downloaded, nil
}

func (c *ChangesetsClient) transferChangeset(
	ctx context.Context,
	changeset *imodels.Changeset,
	targetPath string,
	progress imodels.ProgressObserver,
) error {
	if changeset.Links.Download == nil || changeset.Links.Download.Href == "" {
		return fmt.Errorf("%w: %s", imodels.ErrChangesetHasNoDownloadLink, changeset.ID)
	}

	return c.transfer.Download(ctx, imodels.DownloadInput{
		URL:        changeset.Links.Download.Href,
		TargetPath: targetPath,
		OnProgress: progress,
	})
}

// DownloadList downloads the changesets of a range concurrently. Results are
// in index order; the first failure cancels the remaining downloads.
// Cancelling parent fails with a DownloadAborted error and no results.
func (c *ChangesetsClient) DownloadList(
	parent context.Context,
	iModelID string,
	changesets imodels.ChangesetRange,
	targetDir string,
) ([]*imodels.DownloadedChangeset, error) {
	params := imodels.NewQueryParams().
		WithTop(constants.DefaultPageSize).
		WithRepresentation(imodels.RepresentationFull).
		WithRange(changesets)

	list, err := c.List(parent, iModelID, params).ToArray()
	if err != nil {
		return nil, fmt.Errorf("listing changesets to download: %w", err)
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	results := make([]*imodels.DownloadedChangeset, len(list))

	var (
		waitGroup sync.WaitGroup
		once      sync.Once
		firstErr  error
	)

	semaphore := make(chan struct{}, c.concurrency)

	for index := range list {
		waitGroup.Add(1)

		go func(index int) {
			defer waitGroup.Done()

			// Acquire semaphore
			semaphore <- struct{}{}

			defer func() { <-semaphore }()

			if ctx.Err() != nil {
				once.Do(func() {
					firstErr = downloadAborted(ctx)
				})

				return
			}

			downloaded, err := c.downloadFile(ctx, iModelID, &list[index], targetDir, nil)
			if err != nil {
				if parent.Err() != nil && !imodels.IsCancelled(err) {
					err = downloadAborted(parent)
				}

				once.Do(func() {
					firstErr = err

					cancel()
				})

				return
			}

			results[index] = downloaded
		}(index)
	}

	waitGroup.Wait()

	if firstErr == nil && parent.Err() != nil {
		firstErr = downloadAborted(parent)
	}

	if firstErr != nil {
		return nil, firstErr
	}

	return results, nil
}

func downloadAborted(ctx context.Context) error {
	return fmt.Errorf("%w: %w", imodels.NewDownloadAbortedError("The operation was cancelled."), ctx.Err())
}
