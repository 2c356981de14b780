package imodels

import (
	"context"
	"time"
)

// IModelsClient manages iModels within an iTwin.
type IModelsClient interface {
	Get(ctx context.Context, iModelID string) (*IModel, error)
	List(ctx context.Context, iTwinID string, params *QueryParams) *EntityListIterator[IModel]
	Create(ctx context.Context, request *IModelCreateRequest) (*IModel, error)
	Update(ctx context.Context, iModelID string, request *IModelUpdateRequest) (*IModel, error)
	Delete(ctx context.Context, iModelID string) error
}

// BriefcasesClient manages briefcases of an iModel.
type BriefcasesClient interface {
	Acquire(ctx context.Context, iModelID string, request *BriefcaseAcquireRequest) (*Briefcase, error)
	Release(ctx context.Context, iModelID string, briefcaseID int) error
	Get(ctx context.Context, iModelID string, briefcaseID int) (*Briefcase, error)
	List(ctx context.Context, iModelID string, params *QueryParams) *EntityListIterator[Briefcase]
}

// ChangesetReader reads changeset metadata.
type ChangesetReader interface {
	Get(ctx context.Context, iModelID string, ref ChangesetRef) (*Changeset, error)
	List(ctx context.Context, iModelID string, params *QueryParams) *EntityListIterator[Changeset]
	ResolveIndex(ctx context.Context, iModelID string, ref ChangesetRef) (int, error)
}

// ChangesetTransferer moves changeset files to and from storage.
type ChangesetTransferer interface {
	Create(ctx context.Context, iModelID string, request *ChangesetCreateRequest) (*Changeset, error)
	Download(ctx context.Context, iModelID string, ref ChangesetRef, targetDir string, progress ProgressObserver) (*DownloadedChangeset, error)
	DownloadList(ctx context.Context, iModelID string, changesets ChangesetRange, targetDir string) ([]*DownloadedChangeset, error)
}

// ChangesetsClient combines metadata access with file transfer.
type ChangesetsClient interface {
	ChangesetReader
	ChangesetTransferer
}

// NamedVersionsClient manages named versions of an iModel.
type NamedVersionsClient interface {
	Get(ctx context.Context, iModelID, namedVersionID string) (*NamedVersion, error)
	List(ctx context.Context, iModelID string, params *QueryParams) *EntityListIterator[NamedVersion]
	Create(ctx context.Context, iModelID string, request *NamedVersionCreateRequest) (*NamedVersion, error)
	Update(ctx context.Context, iModelID, namedVersionID string, request *NamedVersionUpdateRequest) (*NamedVersion, error)
}

// CheckpointsClient reads checkpoints of an iModel.
type CheckpointsClient interface {
	// Get returns the checkpoint generated exactly at the referenced changeset.
	Get(ctx context.Context, iModelID string, ref ChangesetRef) (*Checkpoint, error)

	// GetCurrentOrPreceding returns the nearest checkpoint at or before the
	// referenced changeset accepted by the predicate, or nil if there is none.
	GetCurrentOrPreceding(ctx context.Context, iModelID string, ref ChangesetRef, acceptable CheckpointPredicate) (*Checkpoint, error)
}

// LocksClient manages the locks held by briefcases.
type LocksClient interface {
	List(ctx context.Context, iModelID string, params *QueryParams) *EntityListIterator[Lock]
	Update(ctx context.Context, iModelID string, request *LockUpdateRequest) (*Lock, error)
}

// ResourceClients provides access to all resource-specific clients.
type ResourceClients interface {
	IModels() IModelsClient
	Briefcases() BriefcasesClient
	Changesets() ChangesetsClient
	NamedVersions() NamedVersionsClient
	Checkpoints() CheckpointsClient
	Locks() LocksClient
}

// Client is the iModels API client. Close releases resources the client
// created itself, such as a cache built from CacheConfig.
type Client interface {
	ResourceClients
	Close() error
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Authorization is the value of the Authorization header, "<scheme> <token>".
type Authorization struct {
	Scheme string
	Token  string
}

// HeaderValue returns the Authorization header value.
func (a *Authorization) HeaderValue() string {
	return a.Scheme + " " + a.Token
}

// AuthorizationProvider supplies authorization for a single request. It is
// called once per request; results are never cached by the transport.
type AuthorizationProvider interface {
	Authorization(ctx context.Context) (*Authorization, error)
}

// AuthorizationFunc adapts a function to AuthorizationProvider.
type AuthorizationFunc func(ctx context.Context) (*Authorization, error)

// Authorization implements AuthorizationProvider.
func (f AuthorizationFunc) Authorization(ctx context.Context) (*Authorization, error) {
	return f(ctx)
}

// BearerToken returns a provider that always supplies the given bearer token.
func BearerToken(token string) AuthorizationFunc {
	return func(context.Context) (*Authorization, error) {
		return &Authorization{Scheme: "Bearer", Token: token}, nil
	}
}

// HeaderFactory produces a header value for one request.
type HeaderFactory func() string

// Headers maps header names to value factories. A call-level entry with a
// nil factory removes a header configured on the client.
type Headers map[string]HeaderFactory

// StaticHeader returns a factory that always produces value.
func StaticHeader(value string) HeaderFactory {
	return func() string { return value }
}

// Config represents client configuration for building an imodels.Client.
//
// # Retries
//
// RetryPolicy decides which failures are retried and how long to wait
// between attempts. When nil, imodelsclient.New installs
// DefaultRetryPolicy(); set DisableRetries to send every request once.
// Regardless of policy, a request is retried at most MaxRetriesHardLimit times.
//
// # Content transfer
//
// Changeset upload and download go through ContentTransfer. When nil,
// imodelsclient.New uses an HTTP transfer for presigned URLs.
type Config struct {
	// APIEndpoint: base URL of the iModels API. Defaults to
	// "https://api.bentley.com/imodels". imodelsclient.New trims a trailing
	// slash and adds "https://" if no scheme is present.
	APIEndpoint string

	// Authorization: provider queried on every request.
	Authorization AuthorizationProvider

	// Headers: added to every request. Call-level headers take precedence.
	Headers Headers

	// RetryPolicy: policy for transient failures. See the Retries section.
	RetryPolicy RetryPolicy
	// DisableRetries: when true no policy is installed.
	DisableRetries bool

	// ContentTransfer: collaborator for changeset and checkpoint files.
	ContentTransfer ContentTransfer

	// Cache: optional cache for immutable entities such as changesets.
	// When nil, CacheConfig is used to build one; when both are nil nothing is cached.
	Cache Cache
	// CacheConfig: backend configuration used when Cache is nil.
	CacheConfig *CacheConfig

	// DownloadConcurrency: number of parallel downloads for DownloadList.
	DownloadConcurrency int

	// HTTPTimeout: timeout of a single HTTP attempt. Calls should rely on
	// context deadlines for overall limits.
	HTTPTimeout time.Duration
	// Debug: enables verbose HTTP request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger used by the HTTP layer and helpers.
	Logger Logger
	// UserAgent: overrides the default User-Agent header sent by the client.
	UserAgent string
}
