package imodels

import (
	"errors"
	"fmt"
)

// DomainCode is an operation-aware error outcome used by host platform adapters.
type DomainCode string

// Domain codes. Most mirror the wire code of the same name; the rest only
// arise from operation-specific remapping.
const (
	DomainCodeUnknown DomainCode = "Unknown"

	DomainCodeITwinNotFound        DomainCode = "iTwinNotFound"
	DomainCodeIModelNotFound       DomainCode = "iModelNotFound"
	DomainCodeChangesetNotFound    DomainCode = "ChangesetNotFound"
	DomainCodeBriefcaseNotFound    DomainCode = "BriefcaseNotFound"
	DomainCodeCheckpointNotFound   DomainCode = "CheckpointNotFound"
	DomainCodeLockNotFound         DomainCode = "LockNotFound"
	DomainCodeIModelExists         DomainCode = "iModelExists"
	DomainCodeChangesetExists      DomainCode = "ChangesetExists"
	DomainCodeNamedVersionExists   DomainCode = "NamedVersionOnChangesetExists"
	DomainCodeNewerChangesExist    DomainCode = "NewerChangesExist"
	DomainCodeBaselineInitTimedOut DomainCode = "BaselineFileInitializationTimedOut"
	DomainCodeTemplateInitTimedOut DomainCode = "iModelFromTemplateInitializationTimedOut"
	DomainCodeClonedInitTimedOut   DomainCode = "ClonedIModelInitializationTimedOut"

	DomainCodeMaximumNumberOfBriefcasesPerUser          DomainCode = "MaximumNumberOfBriefcasesPerUser"
	DomainCodeMaximumNumberOfBriefcasesPerUserPerMinute DomainCode = "MaximumNumberOfBriefcasesPerUserPerMinute"
	DomainCodeAnotherUserPushing                        DomainCode = "AnotherUserPushing"
	DomainCodeLockOwnedByAnotherBriefcase               DomainCode = "LockOwnedByAnotherBriefcase"
)

// DomainError is an API error reclassified for the operation that produced it.
type DomainError struct {
	Code    DomainCode
	Message string
	// ConflictingLocks is set for lock contention outcomes.
	ConflictingLocks []ConflictingLock
	// Cause is the API error that was adapted.
	Cause *Error
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the adapted API error.
func (e *DomainError) Unwrap() error {
	if e.Cause == nil {
		return nil
	}

	return e.Cause
}

// HasDomainCode reports whether err is a *DomainError with the given code.
func HasDomainCode(err error, code DomainCode) bool {
	domainErr := &DomainError{}
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}

	return false
}
