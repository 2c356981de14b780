package hubaccess

import (
	"context"
	"errors"

	"github.com/fivetwenty-io/imodels-client/pkg/imodels"
)

// Option configures the access facades.
type Option func(*access)

// WithErrorAdapter replaces the default error adapter.
func WithErrorAdapter(adapter *ErrorAdapter) Option {
	return func(a *access) {
		if adapter != nil {
			a.adapter = adapter
		}
	}
}

// WithContentTransfer sets the collaborator used to download checkpoint files.
func WithContentTransfer(transfer imodels.ContentTransfer) Option {
	return func(a *access) {
		a.transfer = transfer
	}
}

// WithLogger sets the logger that records adapted failures.
func WithLogger(logger imodels.Logger) Option {
	return func(a *access) {
		a.logger = logger
	}
}

type access struct {
	client   imodels.Client
	adapter  *ErrorAdapter
	transfer imodels.ContentTransfer
	logger   imodels.Logger
}

func newAccess(client imodels.Client, opts []Option) *access {
	a := &access{
		client:  client,
		adapter: NewErrorAdapter(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

func (a *access) fail(err error, op Operation) error {
	adapted := a.adapter.Adapt(err, op)

	if a.logger != nil {
		fields := map[string]interface{}{
			"operation": string(op),
			"error":     err.Error(),
		}

		domainErr := &imodels.DomainError{}
		if errors.As(adapted, &domainErr) {
			fields["code"] = string(domainErr.Code)
		}

		a.logger.Debug("iModels operation failed", fields)
	}

	return adapted
}

// FrontendAccess provides the read-only operations a viewer needs. Errors
// are reclassified by the configured ErrorAdapter.
type FrontendAccess struct {
	*access
}

// NewFrontendAccess creates read-only access on top of client.
func NewFrontendAccess(client imodels.Client, opts ...Option) *FrontendAccess {
	return &FrontendAccess{access: newAccess(client, opts)}
}

// QueryChangeset returns the referenced changeset.
func (f *FrontendAccess) QueryChangeset(ctx context.Context, iModelID string, ref imodels.ChangesetRef) (*imodels.Changeset, error) {
	changeset, err := f.client.Changesets().Get(ctx, iModelID, ref)
	if err != nil {
		return nil, f.fail(err, OperationGetChangeset)
	}

	return changeset, nil
}

// QueryChangesets returns the changesets of a range in index order.
func (f *FrontendAccess) QueryChangesets(ctx context.Context, iModelID string, changesets imodels.ChangesetRange) ([]imodels.Changeset, error) {
	params := imodels.NewQueryParams().WithRange(changesets)

	list, err := f.client.Changesets().List(ctx, iModelID, params).ToArray()
	if err != nil {
		return nil, f.fail(err, OperationQueryChangesets)
	}

	return list, nil
}

// GetLatestChangeset returns the changeset with the highest index, or nil
// when only the baseline exists.
func (f *FrontendAccess) GetLatestChangeset(ctx context.Context, iModelID string) (*imodels.Changeset, error) {
	params := imodels.NewQueryParams().WithTop(1).WithOrderBy("index desc")

	latest, err := f.client.Changesets().List(ctx, iModelID, params).Take(1)
	if err != nil {
		return nil, f.fail(err, OperationQueryChangesets)
	}

	if len(latest) == 0 {
		return nil, nil
	}

	return &latest[0], nil
}

// GetChangesetFromNamedVersion returns the index and id of the changeset a
// named version points to. The baseline has index 0 and an empty id.
func (f *FrontendAccess) GetChangesetFromNamedVersion(ctx context.Context, iModelID, name string) (int, string, error) {
	params := imodels.NewQueryParams().
		WithFilter("name", name).
		WithRepresentation(imodels.RepresentationFull)

	versions, err := f.client.NamedVersions().List(ctx, iModelID, params).Take(1)
	if err != nil {
		return 0, "", f.fail(err, OperationGetNamedVersion)
	}

	if len(versions) == 0 {
		return 0, "", f.fail(imodels.NewError(imodels.ErrorCodeNamedVersionNotFound,
			"Named version "+name+" was not found."), OperationGetNamedVersion)
	}

	return versions[0].ChangesetIndex, versions[0].ChangesetID, nil
}

// QueryV2Checkpoint returns the nearest container-backed checkpoint at or
// before the referenced changeset.
func (f *FrontendAccess) QueryV2Checkpoint(ctx context.Context, iModelID string, ref imodels.ChangesetRef) (*imodels.Checkpoint, error) {
	return f.precedingCheckpoint(ctx, iModelID, ref, imodels.HasV2Checkpoint)
}

func (f *FrontendAccess) precedingCheckpoint(
	ctx context.Context,
	iModelID string,
	ref imodels.ChangesetRef,
	acceptable imodels.CheckpointPredicate,
) (*imodels.Checkpoint, error) {
	checkpoint, err := f.client.Checkpoints().GetCurrentOrPreceding(ctx, iModelID, ref, acceptable)
	if err != nil {
		return nil, f.fail(err, OperationGetCheckpoint)
	}

	if checkpoint == nil {
		return nil, f.fail(imodels.NewError(imodels.ErrorCodeCheckpointNotFound,
			"No checkpoint found at or before changeset "+ref.String()+"."), OperationGetCheckpoint)
	}

	return checkpoint, nil
}
