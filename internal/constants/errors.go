package constants

import "errors"

// Configuration errors.
var (
	ErrNotAuthenticated  = errors.New("not authenticated. Use 'imodels login' to store an access token first")
	ErrInvalidJWTFormat  = errors.New("invalid JWT format")
	ErrNoExpirationClaim = errors.New("no expiration claim found")
	ErrTokenExpired      = errors.New("access token expired")
	ErrUnknownConfigKey  = errors.New("unknown configuration key")
)

// Validation errors.
var (
	ErrIModelIDRequired      = errors.New("--imodel flag is required")
	ErrITwinIDRequired       = errors.New("--itwin flag is required")
	ErrInvalidOutputFormat   = errors.New("invalid output format, use table, json or yaml")
	ErrInvalidCheckpointKind = errors.New("choose one of --v1 or --v2")
	ErrInvalidChangesetRef   = errors.New("use either --index or --id")
	ErrNameRequired          = errors.New("--name flag is required")
)

// Transfer errors.
var (
	ErrUnsupportedStorageURL = errors.New("unsupported storage URL")
	ErrTransferFailed        = errors.New("transfer failed")
)
