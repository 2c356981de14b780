package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600

	// DownloadDirPerm is the permission for changeset download directories.
	DownloadDirPerm = 0750

	// DownloadFilePerm is the permission for downloaded files.
	DownloadFilePerm = 0640
)

// API endpoint and headers.
const (
	// DefaultAPIEndpoint is the public iModels API base URL.
	DefaultAPIEndpoint = "https://api.bentley.com/imodels"

	// AcceptHeader selects version 2 of the iTwin platform API.
	AcceptHeader = "application/vnd.bentley.itwin-platform.v2+json"

	// AcceptBinary is sent for raw content such as thumbnails.
	AcceptBinary = "application/octet-stream, image/png"

	// ContentTypeJSON is the content type of request bodies.
	ContentTypeJSON = "application/json"

	// HeaderPrefer selects the representation of list responses.
	HeaderPrefer = "Prefer"

	// HeaderCorrelationID carries a per-request correlation id.
	HeaderCorrelationID = "X-Correlation-Id"

	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "imodels-client-go"
)

// HTTP timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for a single HTTP attempt.
	DefaultHTTPTimeout = 30 * time.Second

	// TransferHTTPTimeout bounds a single file transfer attempt.
	TransferHTTPTimeout = 30 * time.Minute
)

// Concurrency and batching limits.
const (
	// DefaultDownloadConcurrency limits parallel changeset downloads.
	DefaultDownloadConcurrency = 4

	// DefaultPageSize is the $top used when listing every entity of a range.
	DefaultPageSize = 100

	// TransferBufferSize is the copy buffer of file transfers.
	TransferBufferSize = 32 * 1024
)

// Cache settings.
const (
	// ChangesetCacheTTL is the lifetime of cached changesets.
	ChangesetCacheTTL = 24 * time.Hour
)

// CLI defaults.
const (
	// ConfigDirName is the CLI configuration directory under $HOME.
	ConfigDirName = ".imodels"

	// ConfigFileName is the CLI configuration file name.
	ConfigFileName = "config.yml"

	// EnvPrefix is the prefix of environment variables read by the CLI.
	EnvPrefix = "IMODELS"

	// TableMaxColumnWidth bounds table cells in CLI output.
	TableMaxColumnWidth = 60
)
