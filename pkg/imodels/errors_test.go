package imodels_test

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/imodels-client/pkg/imodels"
)

func TestParseErrorResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		status          int
		body            string
		expectedCode    imodels.ErrorCode
		expectedMessage string
	}{
		{
			name:            "plain error",
			status:          http.StatusNotFound,
			body:            `{"error":{"code":"iModelNotFound","message":"Requested iModel is not available."}}`,
			expectedCode:    imodels.ErrorCodeIModelNotFound,
			expectedMessage: "Requested iModel is not available.",
		},
		{
			name:   "details",
			status: http.StatusUnprocessableEntity,
			body: `{"error":{"code":"InvalidIModelsRequest","message":"Cannot acquire briefcase.","details":[
				{"code":"InvalidValue","message":"Bad device.","target":"deviceName"},
				{"code":"MissingRequiredProperty","message":"Required."}]}}`,
			expectedCode: imodels.ErrorCodeInvalidIModelsRequest,
			expectedMessage: "Cannot acquire briefcase. Details:\n" +
				"1. InvalidValue: Bad device. Target: deviceName.\n" +
				"2. MissingRequiredProperty: Required.\n",
		},
		{
			name:            "object ids",
			status:          http.StatusConflict,
			body:            `{"error":{"code":"ConflictWithAnotherUser","message":"Locks are held.","objectIds":["0x1","0x2"]}}`,
			expectedCode:    imodels.ErrorCodeConflictWithAnotherUser,
			expectedMessage: "Locks are held. Object ids: 0x1 ,0x2",
		},
		{
			name:   "conflicting locks",
			status: http.StatusConflict,
			body: `{"error":{"code":"ConflictWithAnotherUser","message":"Locks are owned.","conflictingLocks":[
				{"objectId":"0x1","lockLevel":"exclusive","briefcaseIds":[2,3]},
				{"objectId":"0x2","lockLevel":"shared","briefcaseIds":[4]}]}}`,
			expectedCode: imodels.ErrorCodeConflictWithAnotherUser,
			expectedMessage: "Locks are owned. Conflicting locks:\n" +
				"1. Object id: 0x1, lock level: exclusive, briefcase ids: 2, 3\n" +
				"2. Object id: 0x2, lock level: shared, briefcase ids: 4\n",
		},
		{
			name:            "empty body",
			status:          http.StatusBadGateway,
			body:            ``,
			expectedCode:    imodels.ErrorCodeUnrecognized,
			expectedMessage: "Unrecognized error occurred. Status code: 502, response body: ",
		},
		{
			name:            "unexpected shape",
			status:          http.StatusInternalServerError,
			body:            `{"message":"boom"}`,
			expectedCode:    imodels.ErrorCodeUnrecognized,
			expectedMessage: `Unrecognized error occurred. Status code: 500, response body: {"message":"boom"}`,
		},
		{
			name:            "non string code",
			status:          http.StatusBadRequest,
			body:            `{"error":{"code":42,"message":"x"}}`,
			expectedCode:    imodels.ErrorCodeUnrecognized,
			expectedMessage: `Unrecognized error occurred. Status code: 400, response body: {"error":{"code":42,"message":"x"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := imodels.ParseErrorResponse(tt.status, []byte(tt.body))
			assert.Equal(t, tt.expectedCode, err.Code)
			assert.Equal(t, tt.status, err.StatusCode)
			assert.Equal(t, tt.expectedMessage, err.Message)
		})
	}
}

func TestParseErrorResponse_DetailCount(t *testing.T) {
	t.Parallel()

	for count := 1; count <= 5; count++ {
		details := make([]string, 0, count)
		for i := range count {
			details = append(details, fmt.Sprintf(`{"code":"InvalidValue","message":"m%d"}`, i))
		}

		body := `{"error":{"code":"InvalidIModelsRequest","message":"x","details":[` + strings.Join(details, ",") + `]}}`

		err := imodels.ParseErrorResponse(http.StatusUnprocessableEntity, []byte(body))
		lines := strings.Split(strings.TrimSuffix(strings.SplitN(err.Message, "Details:\n", 2)[1], "\n"), "\n")
		assert.Len(t, lines, count)
		assert.True(t, strings.HasPrefix(lines[count-1], fmt.Sprintf("%d. InvalidValue: m%d", count, count-1)))
	}
}

func TestErrorHelpers(t *testing.T) {
	t.Parallel()

	notFound := fmt.Errorf("getting changeset: %w", imodels.NewError(imodels.ErrorCodeChangesetNotFound, "missing"))
	unrecognized404 := &imodels.Error{Code: imodels.ErrorCodeUnrecognized, StatusCode: http.StatusNotFound}
	unauthorized := imodels.NewError(imodels.ErrorCodeUnauthorized, "token expired")
	aborted := fmt.Errorf("downloading: %w", imodels.NewDownloadAbortedError("Transfer was cancelled."))

	assert.True(t, imodels.IsNotFound(notFound))
	assert.True(t, imodels.IsNotFound(unrecognized404))
	assert.False(t, imodels.IsNotFound(unauthorized))
	assert.False(t, imodels.IsNotFound(errors.New("plain"))) //nolint:err113 // Test error

	assert.True(t, imodels.IsUnauthorized(unauthorized))
	assert.True(t, imodels.HasCode(notFound, imodels.ErrorCodeChangesetNotFound))
	assert.False(t, imodels.HasCode(nil, imodels.ErrorCodeChangesetNotFound))

	assert.True(t, imodels.IsCancelled(aborted))
	assert.True(t, imodels.IsCancelled(imodels.NewUploadAbortedError("")))
	assert.False(t, imodels.IsCancelled(notFound))

	assert.Equal(t, "ChangesetNotFound: missing", errors.Unwrap(notFound).Error())
}

func TestDomainError(t *testing.T) {
	t.Parallel()

	cause := imodels.NewError(imodels.ErrorCodeConflictWithAnotherUser, "owned")
	domainErr := &imodels.DomainError{
		Code:    imodels.DomainCodeLockOwnedByAnotherBriefcase,
		Message: "owned",
		Cause:   cause,
	}

	wrapped := fmt.Errorf("updating locks: %w", domainErr)

	assert.True(t, imodels.HasDomainCode(wrapped, imodels.DomainCodeLockOwnedByAnotherBriefcase))
	assert.False(t, imodels.HasDomainCode(cause, imodels.DomainCodeLockOwnedByAnotherBriefcase))
	assert.True(t, imodels.HasCode(wrapped, imodels.ErrorCodeConflictWithAnotherUser))
	assert.Equal(t, "LockOwnedByAnotherBriefcase: owned", domainErr.Error())

	var apiErr *imodels.Error

	require.ErrorAs(t, wrapped, &apiErr)
	assert.Same(t, cause, apiErr)
	assert.NoError(t, (&imodels.DomainError{}).Unwrap())
}
