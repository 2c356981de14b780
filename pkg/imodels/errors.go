package imodels

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrorCode is the stable code of an iModels API error.
type ErrorCode string

// Error codes reported by the service or synthesized by the client.
const (
	ErrorCodeUnrecognized            ErrorCode = "Unrecognized"
	ErrorCodeUnknown                 ErrorCode = "Unknown"
	ErrorCodeUnauthorized            ErrorCode = "Unauthorized"
	ErrorCodeInsufficientPermissions ErrorCode = "InsufficientPermissions"
	ErrorCodeRateLimitExceeded       ErrorCode = "RateLimitExceeded"

	ErrorCodeInvalidIModelsRequest               ErrorCode = "InvalidIModelsRequest"
	ErrorCodeInvalidRequestBody                  ErrorCode = "InvalidRequestBody"
	ErrorCodeInvalidHeaderValue                  ErrorCode = "InvalidHeaderValue"
	ErrorCodeInvalidValue                        ErrorCode = "InvalidValue"
	ErrorCodeMissingRequiredProperty             ErrorCode = "MissingRequiredProperty"
	ErrorCodeMissingRequiredParameter            ErrorCode = "MissingRequiredParameter"
	ErrorCodeMissingRequiredHeader               ErrorCode = "MissingRequiredHeader"
	ErrorCodeMutuallyExclusivePropertiesProvided ErrorCode = "MutuallyExclusivePropertiesProvided"
	ErrorCodeMutuallyExclusiveParametersProvided ErrorCode = "MutuallyExclusiveParametersProvided"
	ErrorCodeInvalidChange                       ErrorCode = "InvalidChange"
	ErrorCodeDataConflict                        ErrorCode = "DataConflict"

	ErrorCodeITwinNotFound        ErrorCode = "iTwinNotFound"
	ErrorCodeIModelNotFound       ErrorCode = "iModelNotFound"
	ErrorCodeChangesetNotFound    ErrorCode = "ChangesetNotFound"
	ErrorCodeBriefcaseNotFound    ErrorCode = "BriefcaseNotFound"
	ErrorCodeNamedVersionNotFound ErrorCode = "NamedVersionNotFound"
	ErrorCodeCheckpointNotFound   ErrorCode = "CheckpointNotFound"
	ErrorCodeLockNotFound         ErrorCode = "LockNotFound"
	ErrorCodeUserNotFound         ErrorCode = "UserNotFound"
	ErrorCodeBaselineFileNotFound ErrorCode = "BaselineFileNotFound"

	ErrorCodeIModelExists                  ErrorCode = "iModelExists"
	ErrorCodeChangesetExists               ErrorCode = "ChangesetExists"
	ErrorCodeNamedVersionOnChangesetExists ErrorCode = "NamedVersionOnChangesetExists"

	ErrorCodeBaselineFileInitializationTimedOut       ErrorCode = "BaselineFileInitializationTimedOut"
	ErrorCodeIModelFromTemplateInitializationTimedOut ErrorCode = "iModelFromTemplateInitializationTimedOut"
	ErrorCodeClonedIModelInitializationTimedOut       ErrorCode = "ClonedIModelInitializationTimedOut"
	ErrorCodeBaselineFileInitializationFailed         ErrorCode = "BaselineFileInitializationFailed"
	ErrorCodeIModelFromTemplateInitializationFailed   ErrorCode = "iModelFromTemplateInitializationFailed"
	ErrorCodeClonedIModelInitializationFailed         ErrorCode = "ClonedIModelInitializationFailed"

	ErrorCodeConflictWithAnotherUser                   ErrorCode = "ConflictWithAnotherUser"
	ErrorCodeNewerChangesExist                         ErrorCode = "NewerChangesExist"
	ErrorCodeMaximumNumberOfBriefcasesPerUser          ErrorCode = "MaximumNumberOfBriefcasesPerUser"
	ErrorCodeMaximumNumberOfBriefcasesPerUserPerMinute ErrorCode = "MaximumNumberOfBriefcasesPerUserPerMinute"

	ErrorCodeDownloadAborted         ErrorCode = "DownloadAborted"
	ErrorCodeUploadAborted           ErrorCode = "UploadAborted"
	ErrorCodeChangesetDownloadFailed ErrorCode = "ChangesetDownloadFailed"
)

// InnerError carries a more specific code nested in an error detail.
type InnerError struct {
	Code ErrorCode `json:"code" yaml:"code"`
}

// ErrorDetail describes one problem of a failed request.
type ErrorDetail struct {
	Code       ErrorCode   `json:"code"                 yaml:"code"`
	Message    string      `json:"message"              yaml:"message"`
	Target     string      `json:"target,omitempty"     yaml:"target,omitempty"`
	InnerError *InnerError `json:"innerError,omitempty" yaml:"innerError,omitempty"`
}

// ConflictingLock identifies an object locked by other briefcases.
type ConflictingLock struct {
	ObjectID     string    `json:"objectId"     yaml:"objectId"`
	LockLevel    LockLevel `json:"lockLevel"    yaml:"lockLevel"`
	BriefcaseIDs []int     `json:"briefcaseIds" yaml:"briefcaseIds"`
}

// ErrorBody is the error object of a failed response.
type ErrorBody struct {
	Code             ErrorCode         `json:"code"                       yaml:"code"`
	Message          string            `json:"message"                    yaml:"message"`
	Details          []ErrorDetail     `json:"details,omitempty"          yaml:"details,omitempty"`
	ObjectIDs        []string          `json:"objectIds,omitempty"        yaml:"objectIds,omitempty"`
	ConflictingLocks []ConflictingLock `json:"conflictingLocks,omitempty" yaml:"conflictingLocks,omitempty"`
}

// ErrorResponse represents the error response from the API.
type ErrorResponse struct {
	Error *ErrorBody `json:"error"`
}

// Error is an error returned by the iModels API or synthesized by the client.
// Message already includes formatted details, object ids and conflicting locks.
type Error struct {
	Code             ErrorCode
	StatusCode       int
	Message          string
	Details          []ErrorDetail
	ObjectIDs        []string
	ConflictingLocks []ConflictingLock
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError creates an error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// ParseErrorResponse parses a failed response. Bodies that do not carry a
// string error code produce an Unrecognized error embedding the status code
// and raw body.
func ParseErrorResponse(statusCode int, body []byte) *Error {
	var errResp ErrorResponse

	err := json.Unmarshal(body, &errResp)
	if err != nil || errResp.Error == nil || errResp.Error.Code == "" {
		return &Error{
			Code:       ErrorCodeUnrecognized,
			StatusCode: statusCode,
			Message: fmt.Sprintf("Unrecognized error occurred. Status code: %d, response body: %s",
				statusCode, strings.TrimSpace(string(body))),
		}
	}

	apiErr := errResp.Error

	return &Error{
		Code:             apiErr.Code,
		StatusCode:       statusCode,
		Message:          FormatErrorMessage(apiErr),
		Details:          apiErr.Details,
		ObjectIDs:        apiErr.ObjectIDs,
		ConflictingLocks: apiErr.ConflictingLocks,
	}
}

// FormatErrorMessage appends details, object ids and conflicting locks to the
// message of the error body.
func FormatErrorMessage(body *ErrorBody) string {
	message := body.Message
	message = appendDetails(message, body.Details)
	message = appendObjectIDs(message, body.ObjectIDs)

	return appendConflictingLocks(message, body.ConflictingLocks)
}

func appendDetails(message string, details []ErrorDetail) string {
	if len(details) == 0 {
		return message
	}

	var builder strings.Builder

	builder.WriteString(message)
	builder.WriteString(" Details:\n")

	for i, detail := range details {
		builder.WriteString(strconv.Itoa(i + 1))
		builder.WriteString(". ")
		builder.WriteString(string(detail.Code))
		builder.WriteString(": ")
		builder.WriteString(detail.Message)

		if detail.Target != "" {
			builder.WriteString(" Target: ")
			builder.WriteString(detail.Target)
			builder.WriteString(".")
		}

		builder.WriteString("\n")
	}

	return builder.String()
}

func appendObjectIDs(message string, objectIDs []string) string {
	if len(objectIDs) == 0 {
		return message
	}

	return message + " Object ids: " + strings.Join(objectIDs, " ,")
}

func appendConflictingLocks(message string, locks []ConflictingLock) string {
	if len(locks) == 0 {
		return message
	}

	var builder strings.Builder

	builder.WriteString(message)
	builder.WriteString(" Conflicting locks:\n")

	for i, lock := range locks {
		briefcaseIDs := make([]string, 0, len(lock.BriefcaseIDs))
		for _, id := range lock.BriefcaseIDs {
			briefcaseIDs = append(briefcaseIDs, strconv.Itoa(id))
		}

		fmt.Fprintf(&builder, "%d. Object id: %s, lock level: %s, briefcase ids: %s\n",
			i+1, lock.ObjectID, lock.LockLevel, strings.Join(briefcaseIDs, ", "))
	}

	return builder.String()
}

// HasCode reports whether err is an *Error with the given code.
func HasCode(err error, code ErrorCode) bool {
	apiErr := &Error{}
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}

	return false
}

// IsNotFound checks if the error is one of the not found errors.
func IsNotFound(err error) bool {
	apiErr := &Error{}
	if !errors.As(err, &apiErr) {
		return false
	}

	switch apiErr.Code {
	case ErrorCodeITwinNotFound, ErrorCodeIModelNotFound, ErrorCodeChangesetNotFound,
		ErrorCodeBriefcaseNotFound, ErrorCodeNamedVersionNotFound, ErrorCodeCheckpointNotFound,
		ErrorCodeLockNotFound, ErrorCodeUserNotFound, ErrorCodeBaselineFileNotFound:
		return true
	default:
		return apiErr.StatusCode == 404 && apiErr.Code == ErrorCodeUnrecognized
	}
}

// IsUnauthorized checks if the error is an unauthorized error.
func IsUnauthorized(err error) bool {
	return HasCode(err, ErrorCodeUnauthorized)
}

// IsCancelled checks if the error reports a transfer cancelled by the caller.
func IsCancelled(err error) bool {
	return HasCode(err, ErrorCodeDownloadAborted) || HasCode(err, ErrorCodeUploadAborted)
}

// Common static errors that can be wrapped with context.
var (
	ErrConfigRequired               = errors.New("config is required")
	ErrAPIEndpointRequired          = errors.New("API endpoint is required")
	ErrIModelIDRequired             = errors.New("iModel id is required")
	ErrNoContentTransferConfigured  = errors.New("no content transfer configured")
	ErrChangesetHasNoDownloadLink   = errors.New("changeset has no download link")
	ErrChangesetHasNoUploadLink     = errors.New("changeset has no upload link")
	ErrCheckpointIndexNotDecreasing = errors.New("checkpoint index is not strictly decreasing")
	ErrObjectInMultipleLockGroups   = errors.New("object id appears in more than one lock group")
	ErrNoMoreItems                  = errors.New("no more items")
	ErrNoAuthorizationConfigured    = errors.New("no authorization configured")
)
