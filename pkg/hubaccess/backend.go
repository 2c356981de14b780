package hubaccess

import (
	"context"
	"strconv"

	"github.com/fivetwenty-io/imodels-client/pkg/imodels"
)

// BackendAccess adds the authoring operations of a backend host to
// FrontendAccess: briefcases, pushing changesets, checkpoints and locks.
type BackendAccess struct {
	*FrontendAccess
}

// NewBackendAccess creates authoring access on top of client.
func NewBackendAccess(client imodels.Client, opts ...Option) *BackendAccess {
	return &BackendAccess{FrontendAccess: NewFrontendAccess(client, opts...)}
}

// AcquireNewBriefcaseID acquires a briefcase and returns its id.
func (b *BackendAccess) AcquireNewBriefcaseID(ctx context.Context, iModelID, deviceName string) (int, error) {
	briefcase, err := b.client.Briefcases().Acquire(ctx, iModelID, &imodels.BriefcaseAcquireRequest{DeviceName: deviceName})
	if err != nil {
		return 0, b.fail(err, OperationAcquireBriefcase)
	}

	return briefcase.BriefcaseID, nil
}

// ReleaseBriefcase releases a briefcase.
func (b *BackendAccess) ReleaseBriefcase(ctx context.Context, iModelID string, briefcaseID int) error {
	err := b.client.Briefcases().Release(ctx, iModelID, briefcaseID)
	if err != nil {
		return b.fail(err, OperationReleaseBriefcase)
	}

	return nil
}

// GetMyBriefcaseIDs returns the ids of the briefcases the caller owns.
func (b *BackendAccess) GetMyBriefcaseIDs(ctx context.Context, iModelID string) ([]int, error) {
	params := imodels.NewQueryParams().WithFilter("ownerId", "me")

	briefcases, err := b.client.Briefcases().List(ctx, iModelID, params).ToArray()
	if err != nil {
		return nil, b.fail(err, OperationQueryBriefcases)
	}

	ids := make([]int, 0, len(briefcases))
	for _, briefcase := range briefcases {
		ids = append(ids, briefcase.BriefcaseID)
	}

	return ids, nil
}

// DownloadChangeset downloads a single changeset file into targetDir.
func (b *BackendAccess) DownloadChangeset(
	ctx context.Context,
	iModelID string,
	ref imodels.ChangesetRef,
	targetDir string,
	progress imodels.ProgressObserver,
) (*imodels.DownloadedChangeset, error) {
	downloaded, err := b.client.Changesets().Download(ctx, iModelID, ref, targetDir, progress)
	if err != nil {
		return nil, b.fail(err, OperationDownloadChangesets)
	}

	return downloaded, nil
}

// DownloadChangesets downloads the changesets of a range into targetDir.
func (b *BackendAccess) DownloadChangesets(
	ctx context.Context,
	iModelID string,
	changesets imodels.ChangesetRange,
	targetDir string,
) ([]*imodels.DownloadedChangeset, error) {
	downloaded, err := b.client.Changesets().DownloadList(ctx, iModelID, changesets, targetDir)
	if err != nil {
		return nil, b.fail(err, OperationDownloadChangesets)
	}

	return downloaded, nil
}

// PushChangeset uploads a changeset and returns its index.
func (b *BackendAccess) PushChangeset(ctx context.Context, iModelID string, request *imodels.ChangesetCreateRequest) (int, error) {
	changeset, err := b.client.Changesets().Create(ctx, iModelID, request)
	if err != nil {
		return 0, b.fail(err, OperationCreateChangeset)
	}

	return changeset.Index, nil
}

// CreateNamedVersion names a changeset, or the baseline when the request
// has no changeset id.
func (b *BackendAccess) CreateNamedVersion(
	ctx context.Context,
	iModelID string,
	request *imodels.NamedVersionCreateRequest,
) (*imodels.NamedVersion, error) {
	namedVersion, err := b.client.NamedVersions().Create(ctx, iModelID, request)
	if err != nil {
		return nil, b.fail(err, OperationCreateNamedVersion)
	}

	return namedVersion, nil
}

// DownloadV1Checkpoint downloads the nearest single-file checkpoint at or
// before the referenced changeset to targetPath and returns it.
func (b *BackendAccess) DownloadV1Checkpoint(
	ctx context.Context,
	iModelID string,
	ref imodels.ChangesetRef,
	targetPath string,
	progress imodels.ProgressObserver,
) (*imodels.Checkpoint, error) {
	if b.transfer == nil {
		return nil, imodels.ErrNoContentTransferConfigured
	}

	checkpoint, err := b.precedingCheckpoint(ctx, iModelID, ref, imodels.HasV1Checkpoint)
	if err != nil {
		return nil, err
	}

	err = b.transfer.Download(ctx, imodels.DownloadInput{
		URL:        checkpoint.Links.Download.Href,
		TargetPath: targetPath,
		OnProgress: progress,
	})
	if err != nil {
		return nil, b.fail(err, OperationDownloadCheckpoint)
	}

	return checkpoint, nil
}

// AcquireLocks sets the lock level of objectIDs for a briefcase.
func (b *BackendAccess) AcquireLocks(
	ctx context.Context,
	iModelID string,
	briefcaseID int,
	changesetID string,
	level imodels.LockLevel,
	objectIDs []string,
) error {
	_, err := b.client.Locks().Update(ctx, iModelID, &imodels.LockUpdateRequest{
		BriefcaseID:   briefcaseID,
		ChangesetID:   changesetID,
		LockedObjects: []imodels.LockedObjects{{LockLevel: level, ObjectIDs: objectIDs}},
	})
	if err != nil {
		return b.fail(err, OperationUpdateLock)
	}

	return nil
}

// QueryAllLocks returns the lock groups held by a briefcase.
func (b *BackendAccess) QueryAllLocks(ctx context.Context, iModelID string, briefcaseID int) ([]imodels.LockedObjects, error) {
	params := imodels.NewQueryParams().WithFilter("briefcaseId", strconv.Itoa(briefcaseID))

	locks, err := b.client.Locks().List(ctx, iModelID, params).ToArray()
	if err != nil {
		return nil, b.fail(err, OperationQueryLocks)
	}

	var groups []imodels.LockedObjects
	for _, lock := range locks {
		groups = append(groups, lock.LockedObjects...)
	}

	return groups, nil
}

// ReleaseAllLocks releases every lock held by a briefcase.
func (b *BackendAccess) ReleaseAllLocks(ctx context.Context, iModelID string, briefcaseID int, changesetID string) error {
	groups, err := b.QueryAllLocks(ctx, iModelID, briefcaseID)
	if err != nil {
		return err
	}

	var objectIDs []string
	for _, group := range groups {
		objectIDs = append(objectIDs, group.ObjectIDs...)
	}

	if len(objectIDs) == 0 {
		return nil
	}

	_, err = b.client.Locks().Update(ctx, iModelID, &imodels.LockUpdateRequest{
		BriefcaseID:   briefcaseID,
		ChangesetID:   changesetID,
		LockedObjects: []imodels.LockedObjects{{LockLevel: imodels.LockLevelNone, ObjectIDs: objectIDs}},
	})
	if err != nil {
		return b.fail(err, OperationReleaseAllLocks)
	}

	return nil
}
