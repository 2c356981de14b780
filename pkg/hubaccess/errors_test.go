package hubaccess_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/imodels-client/pkg/hubaccess"
	"github.com/fivetwenty-io/imodels-client/pkg/imodels"
)

func TestErrorAdapter_PassThrough(t *testing.T) {
	t.Parallel()

	adapter := hubaccess.NewErrorAdapter()

	tests := []struct {
		name string
		err  error
		op   hubaccess.Operation
	}{
		{"not an API error", errors.New("boom"), hubaccess.OperationGetChangeset},
		{"cancelled context", context.Canceled, hubaccess.OperationDownloadChangesets},
		{"empty code", &imodels.Error{Message: "no code"}, hubaccess.OperationGetChangeset},
		{"unrecognized", imodels.ParseErrorResponse(502, []byte("bad gateway")), hubaccess.OperationGetIModel},
		{"unauthorized", imodels.NewError(imodels.ErrorCodeUnauthorized, "no"), hubaccess.OperationAcquireBriefcase},
		{"insufficient permissions", imodels.NewError(imodels.ErrorCodeInsufficientPermissions, "no"), hubaccess.OperationUpdateLock},
		{"invalid value", imodels.NewError(imodels.ErrorCodeInvalidValue, "bad"), hubaccess.OperationCreateChangeset},
		{"data conflict", imodels.NewError(imodels.ErrorCodeDataConflict, "size"), hubaccess.OperationCreateChangeset},
		{"named version not found", imodels.NewError(imodels.ErrorCodeNamedVersionNotFound, "gone"), hubaccess.OperationGetNamedVersion},
		{"download failed", imodels.NewError(imodels.ErrorCodeChangesetDownloadFailed, "failed"), hubaccess.OperationDownloadChangesets},
		{"download aborted", imodels.NewDownloadAbortedError("cancelled"), hubaccess.OperationDownloadChangesets},
		{
			"invalid request without known inner code",
			&imodels.Error{
				Code:    imodels.ErrorCodeInvalidIModelsRequest,
				Message: "invalid",
				Details: []imodels.ErrorDetail{{Code: imodels.ErrorCodeInvalidValue, Message: "bad"}},
			},
			hubaccess.OperationAcquireBriefcase,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Same(t, tt.err, adapter.Adapt(tt.err, tt.op))
		})
	}
}

func TestErrorAdapter_Adapts(t *testing.T) {
	t.Parallel()

	adapter := hubaccess.NewErrorAdapter()

	tests := []struct {
		name string
		err  *imodels.Error
		op   hubaccess.Operation
		want imodels.DomainCode
	}{
		{
			"rate limit while acquiring a briefcase",
			imodels.NewError(imodels.ErrorCodeRateLimitExceeded, "slow down"),
			hubaccess.OperationAcquireBriefcase,
			imodels.DomainCodeMaximumNumberOfBriefcasesPerUserPerMinute,
		},
		{
			"rate limit elsewhere",
			imodels.NewError(imodels.ErrorCodeRateLimitExceeded, "slow down"),
			hubaccess.OperationQueryChangesets,
			imodels.DomainCodeUnknown,
		},
		{
			"conflict while pushing",
			imodels.NewError(imodels.ErrorCodeConflictWithAnotherUser, "pushing"),
			hubaccess.OperationCreateChangeset,
			imodels.DomainCodeAnotherUserPushing,
		},
		{
			"conflict while locking",
			imodels.NewError(imodels.ErrorCodeConflictWithAnotherUser, "locked"),
			hubaccess.OperationUpdateLock,
			imodels.DomainCodeLockOwnedByAnotherBriefcase,
		},
		{
			"conflict without operation",
			imodels.NewError(imodels.ErrorCodeConflictWithAnotherUser, "conflict"),
			hubaccess.OperationUnknown,
			imodels.DomainCodeUnknown,
		},
		{
			"briefcase quota in details",
			&imodels.Error{
				Code:    imodels.ErrorCodeInvalidIModelsRequest,
				Message: "invalid",
				Details: []imodels.ErrorDetail{
					{Code: imodels.ErrorCodeInvalidValue, Message: "other"},
					{
						Code:       imodels.ErrorCodeInvalidValue,
						Message:    "quota",
						InnerError: &imodels.InnerError{Code: imodels.ErrorCodeMaximumNumberOfBriefcasesPerUser},
					},
				},
			},
			hubaccess.OperationAcquireBriefcase,
			imodels.DomainCodeMaximumNumberOfBriefcasesPerUser,
		},
		{
			"not found keeps its code",
			imodels.NewError(imodels.ErrorCodeIModelNotFound, "missing"),
			hubaccess.OperationGetIModel,
			imodels.DomainCodeIModelNotFound,
		},
		{
			"newer changes exist",
			imodels.NewError(imodels.ErrorCodeNewerChangesExist, "pull first"),
			hubaccess.OperationCreateChangeset,
			imodels.DomainCodeNewerChangesExist,
		},
		{
			"named version exists",
			imodels.NewError(imodels.ErrorCodeNamedVersionOnChangesetExists, "exists"),
			hubaccess.OperationCreateNamedVersion,
			imodels.DomainCodeNamedVersionExists,
		},
		{
			"unmapped code",
			imodels.NewError("SomethingNew", "new"),
			hubaccess.OperationGetIModel,
			imodels.DomainCodeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			adapted := adapter.Adapt(fmt.Errorf("calling API: %w", tt.err), tt.op)

			domainErr := &imodels.DomainError{}
			require.ErrorAs(t, adapted, &domainErr)
			assert.Equal(t, tt.want, domainErr.Code)
			assert.Equal(t, tt.err.Message, domainErr.Message)
			assert.Same(t, tt.err, domainErr.Cause)
		})
	}
}

func TestErrorAdapter_CarriesConflictingLocks(t *testing.T) {
	t.Parallel()

	locks := []imodels.ConflictingLock{
		{ObjectID: "0x1", LockLevel: imodels.LockLevelExclusive, BriefcaseIDs: []int{7}},
	}

	adapter := hubaccess.NewErrorAdapter()

	lockErr := &imodels.Error{
		Code:             imodels.ErrorCodeConflictWithAnotherUser,
		Message:          "locked",
		ConflictingLocks: locks,
	}

	domainErr := &imodels.DomainError{}
	require.ErrorAs(t, adapter.Adapt(lockErr, hubaccess.OperationUpdateLock), &domainErr)
	assert.Equal(t, locks, domainErr.ConflictingLocks)

	pushErr := &imodels.Error{
		Code:             imodels.ErrorCodeConflictWithAnotherUser,
		Message:          "pushing",
		ConflictingLocks: locks,
	}

	require.ErrorAs(t, adapter.Adapt(pushErr, hubaccess.OperationCreateChangeset), &domainErr)
	assert.Equal(t, imodels.DomainCodeAnotherUserPushing, domainErr.Code)
	assert.Empty(t, domainErr.ConflictingLocks)
}

func TestErrorAdapter_Nil(t *testing.T) {
	t.Parallel()

	assert.NoError(t, hubaccess.NewErrorAdapter().Adapt(nil, hubaccess.OperationGetIModel))
}
