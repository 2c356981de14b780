package hubaccess

import (
	"errors"

	"github.com/fivetwenty-io/imodels-client/pkg/imodels"
)

type contextualKey struct {
	code      imodels.ErrorCode
	operation Operation
}

// ErrorAdapter reclassifies API errors for the operation that produced them.
// The zero value is not usable; use NewErrorAdapter.
type ErrorAdapter struct {
	passThrough map[imodels.ErrorCode]struct{}
	innerCodes  map[imodels.ErrorCode]imodels.DomainCode
	contextual  map[contextualKey]imodels.DomainCode
	static      map[imodels.ErrorCode]imodels.DomainCode
}

func codeSet(codes ...imodels.ErrorCode) map[imodels.ErrorCode]struct{} {
	set := make(map[imodels.ErrorCode]struct{}, len(codes))
	for _, code := range codes {
		set[code] = struct{}{}
	}

	return set
}

// NewErrorAdapter creates an adapter with the standard mapping tables.
func NewErrorAdapter() *ErrorAdapter {
	return &ErrorAdapter{
		passThrough: codeSet(
			// Opaque
			imodels.ErrorCodeUnrecognized,
			imodels.ErrorCodeUnknown,
			// Authorization
			imodels.ErrorCodeUnauthorized,
			imodels.ErrorCodeInsufficientPermissions,
			// Client misuse
			imodels.ErrorCodeInvalidRequestBody,
			imodels.ErrorCodeInvalidHeaderValue,
			imodels.ErrorCodeInvalidValue,
			imodels.ErrorCodeMissingRequiredProperty,
			imodels.ErrorCodeMissingRequiredParameter,
			imodels.ErrorCodeMissingRequiredHeader,
			imodels.ErrorCodeMutuallyExclusivePropertiesProvided,
			imodels.ErrorCodeMutuallyExclusiveParametersProvided,
			imodels.ErrorCodeInvalidChange,
			imodels.ErrorCodeDataConflict,
			// Not found without a generic domain code, failed initialization and transfers
			imodels.ErrorCodeNamedVersionNotFound,
			imodels.ErrorCodeUserNotFound,
			imodels.ErrorCodeBaselineFileNotFound,
			imodels.ErrorCodeBaselineFileInitializationFailed,
			imodels.ErrorCodeIModelFromTemplateInitializationFailed,
			imodels.ErrorCodeClonedIModelInitializationFailed,
			imodels.ErrorCodeChangesetDownloadFailed,
			imodels.ErrorCodeDownloadAborted,
			imodels.ErrorCodeUploadAborted,
		),
		innerCodes: map[imodels.ErrorCode]imodels.DomainCode{
			imodels.ErrorCodeMaximumNumberOfBriefcasesPerUser:          imodels.DomainCodeMaximumNumberOfBriefcasesPerUser,
		},
		contextual: map[contextualKey]imodels.DomainCode{
			{imodels.ErrorCodeRateLimitExceeded, OperationAcquireBriefcase}:     imodels.DomainCodeMaximumNumberOfBriefcasesPerUserPerMinute,
			{imodels.ErrorCodeConflictWithAnotherUser, OperationCreateChangeset}: imodels.DomainCodeAnotherUserPushing,
			{imodels.ErrorCodeConflictWithAnotherUser, OperationUpdateLock}:      imodels.DomainCodeLockOwnedByAnotherBriefcase,
			{imodels.ErrorCodeConflictWithAnotherUser, OperationReleaseAllLocks}: imodels.DomainCodeLockOwnedByAnotherBriefcase,
		},
		static: map[imodels.ErrorCode]imodels.DomainCode{
			imodels.ErrorCodeITwinNotFound:                             imodels.DomainCodeITwinNotFound,
			imodels.ErrorCodeIModelNotFound:                            imodels.DomainCodeIModelNotFound,
			imodels.ErrorCodeChangesetNotFound:                         imodels.DomainCodeChangesetNotFound,
			imodels.ErrorCodeBriefcaseNotFound:                         imodels.DomainCodeBriefcaseNotFound,
			imodels.ErrorCodeCheckpointNotFound:                        imodels.DomainCodeCheckpointNotFound,
			imodels.ErrorCodeLockNotFound:                              imodels.DomainCodeLockNotFound,
			imodels.ErrorCodeIModelExists:                              imodels.DomainCodeIModelExists,
			imodels.ErrorCodeChangesetExists:                           imodels.DomainCodeChangesetExists,
			imodels.ErrorCodeNamedVersionOnChangesetExists:             imodels.DomainCodeNamedVersionExists,
			imodels.ErrorCodeNewerChangesExist:                         imodels.DomainCodeNewerChangesExist,
			imodels.ErrorCodeBaselineFileInitializationTimedOut:        imodels.DomainCodeBaselineInitTimedOut,
			imodels.ErrorCodeIModelFromTemplateInitializationTimedOut:  imodels.DomainCodeTemplateInitTimedOut,
			imodels.ErrorCodeClonedIModelInitializationTimedOut:        imodels.DomainCodeClonedInitTimedOut,
			imodels.ErrorCodeMaximumNumberOfBriefcasesPerUser:          imodels.DomainCodeMaximumNumberOfBriefcasesPerUser,
			imodels.ErrorCodeMaximumNumberOfBriefcasesPerUserPerMinute: imodels.DomainCodeMaximumNumberOfBriefcasesPerUserPerMinute,
		},
	}
}

// Adapt returns err reclassified for op as a *imodels.DomainError, or err
// itself when no adaptation applies. Errors that are not API errors, and
// API errors the caller is expected to handle directly, pass through.
func (a *ErrorAdapter) Adapt(err error, op Operation) error {
	if err == nil {
		return nil
	}

	apiErr := &imodels.Error{}
	if !errors.As(err, &apiErr) || apiErr.Code == "" {
		return err
	}

	if _, ok := a.passThrough[apiErr.Code]; ok {
		return err
	}

	if apiErr.Code == imodels.ErrorCodeInvalidIModelsRequest {
		for _, detail := range apiErr.Details {
			if detail.InnerError == nil {
				continue
			}

			if code, ok := a.innerCodes[detail.InnerError.Code]; ok {
				return a.domainError(code, apiErr)
			}
		}

		return err
	}

	if code, ok := a.contextual[contextualKey{apiErr.Code, op}]; ok {
		return a.domainError(code, apiErr)
	}

	if code, ok := a.static[apiErr.Code]; ok {
		return a.domainError(code, apiErr)
	}

	return a.domainError(imodels.DomainCodeUnknown, apiErr)
}

func (a *ErrorAdapter) domainError(code imodels.DomainCode, apiErr *imodels.Error) *imodels.DomainError {
	domainErr := &imodels.DomainError{
		Code:    code,
		Message: apiErr.Message,
		Cause:   apiErr,
	}

	if code == imodels.DomainCodeLockOwnedByAnotherBriefcase {
		domainErr.ConflictingLocks = apiErr.ConflictingLocks
	}

	return domainErr
}
