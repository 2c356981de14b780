package hubaccess_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/imodels-client/pkg/hubaccess"
	"github.com/fivetwenty-io/imodels-client/pkg/imodels"
	"github.com/fivetwenty-io/imodels-client/pkg/imodelsclient"
)

func newAccessClient(t *testing.T, mux *http.ServeMux) imodels.Client {
	t.Helper()

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := imodelsclient.New(context.Background(), &imodels.Config{
		APIEndpoint:    server.URL,
		Authorization:  imodels.BearerToken("token"),
		DisableRetries: true,
	})
	require.NoError(t, err)

	return client
}

func writeBody(t *testing.T, writer http.ResponseWriter, status int, body interface{}) {
	t.Helper()

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	require.NoError(t, json.NewEncoder(writer).Encode(body))
}

func apiError(code imodels.ErrorCode, message string) map[string]interface{} {
	return map[string]interface{}{"error": map[string]interface{}{"code": code, "message": message}}
}

func TestBackendAccess_LockConflict(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /imodel-1/locks", func(writer http.ResponseWriter, _ *http.Request) {
		writeBody(t, writer, http.StatusConflict, map[string]interface{}{
			"error": map[string]interface{}{
				"code":    "ConflictWithAnotherUser",
				"message": "Lock(s) is owned by another briefcase.",
				"conflictingLocks": []map[string]interface{}{
					{"objectId": "0x20", "lockLevel": "exclusive", "briefcaseIds": []int{4}},
				},
			},
		})
	})

	access := hubaccess.NewBackendAccess(newAccessClient(t, mux))

	err := access.AcquireLocks(context.Background(), "imodel-1", 3, "", imodels.LockLevelExclusive, []string{"0x20"})
	require.Error(t, err)
	assert.True(t, imodels.HasDomainCode(err, imodels.DomainCodeLockOwnedByAnotherBriefcase))

	domainErr := &imodels.DomainError{}
	require.ErrorAs(t, err, &domainErr)
	require.Len(t, domainErr.ConflictingLocks, 1)
	assert.Equal(t, "0x20", domainErr.ConflictingLocks[0].ObjectID)
	assert.Equal(t, []int{4}, domainErr.ConflictingLocks[0].BriefcaseIDs)
	assert.Contains(t, domainErr.Message, "1. Object id: 0x20, lock level: exclusive, briefcase ids: 4")
	assert.True(t, imodels.HasCode(err, imodels.ErrorCodeConflictWithAnotherUser))
}

func TestBackendAccess_RateLimitDependsOnOperation(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(writer http.ResponseWriter, _ *http.Request) {
		writeBody(t, writer, http.StatusTooManyRequests, apiError("RateLimitExceeded", "Too many requests."))
	})

	access := hubaccess.NewBackendAccess(newAccessClient(t, mux))

	_, err := access.AcquireNewBriefcaseID(context.Background(), "imodel-1", "laptop")
	assert.True(t, imodels.HasDomainCode(err, imodels.DomainCodeMaximumNumberOfBriefcasesPerUserPerMinute))

	_, err = access.QueryChangesets(context.Background(), "imodel-1", imodels.ChangesetRange{})
	assert.True(t, imodels.HasDomainCode(err, imodels.DomainCodeUnknown))
}

func TestBackendAccess_BriefcaseQuota(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /imodel-1/briefcases", func(writer http.ResponseWriter, _ *http.Request) {
		writeBody(t, writer, http.StatusUnprocessableEntity, map[string]interface{}{
			"error": map[string]interface{}{
				"code":    "InvalidIModelsRequest",
				"message": "Cannot acquire briefcase.",
				"details": []map[string]interface{}{
					{
						"code":       "InvalidValue",
						"message":    "Maximum number of briefcases per user reached.",
						"innerError": map[string]interface{}{"code": "MaximumNumberOfBriefcasesPerUser"},
					},
				},
			},
		})
	})

	access := hubaccess.NewBackendAccess(newAccessClient(t, mux))

	_, err := access.AcquireNewBriefcaseID(context.Background(), "imodel-1", "")
	assert.True(t, imodels.HasDomainCode(err, imodels.DomainCodeMaximumNumberOfBriefcasesPerUser))
}

func TestBackendAccess_ReleaseAllLocks(t *testing.T) {
	t.Parallel()

	var (
		mu      sync.Mutex
		request imodels.LockUpdateRequest
	)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /imodel-1/locks", func(writer http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3", r.URL.Query().Get("briefcaseId"))
		writeBody(t, writer, http.StatusOK, map[string]interface{}{
			"locks": []imodels.Lock{{
				BriefcaseID: 3,
				LockedObjects: []imodels.LockedObjects{
					{LockLevel: imodels.LockLevelShared, ObjectIDs: []string{"0x1"}},
					{LockLevel: imodels.LockLevelExclusive, ObjectIDs: []string{"0x2", "0x3"}},
				},
			}},
			"_links": map[string]interface{}{},
		})
	})
	mux.HandleFunc("PATCH /imodel-1/locks", func(writer http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)

		mu.Lock()
		assert.NoError(t, json.Unmarshal(body, &request))
		mu.Unlock()

		writeBody(t, writer, http.StatusOK, map[string]interface{}{
			"lock": imodels.Lock{BriefcaseID: 3, LockedObjects: []imodels.LockedObjects{}},
		})
	})

	access := hubaccess.NewBackendAccess(newAccessClient(t, mux))

	require.NoError(t, access.ReleaseAllLocks(context.Background(), "imodel-1", 3, "cs9"))

	mu.Lock()
	defer mu.Unlock()

	assert.Equal(t, 3, request.BriefcaseID)
	assert.Equal(t, "cs9", request.ChangesetID)
	require.Len(t, request.LockedObjects, 1)
	assert.Equal(t, imodels.LockLevelNone, request.LockedObjects[0].LockLevel)
	assert.Equal(t, []string{"0x1", "0x2", "0x3"}, request.LockedObjects[0].ObjectIDs)
}

func TestFrontendAccess_NamedVersion(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /imodel-1/namedversions", func(writer http.ResponseWriter, r *http.Request) {
		versions := []imodels.NamedVersion{}
		if r.URL.Query().Get("name") == "v1.0" {
			versions = append(versions, imodels.NamedVersion{
				ID: "nv-1", DisplayName: "v1.0", ChangesetID: "cs5", ChangesetIndex: 5,
			})
		}

		writeBody(t, writer, http.StatusOK, map[string]interface{}{"namedVersions": versions})
	})

	access := hubaccess.NewFrontendAccess(newAccessClient(t, mux))

	index, id, err := access.GetChangesetFromNamedVersion(context.Background(), "imodel-1", "v1.0")
	require.NoError(t, err)
	assert.Equal(t, 5, index)
	assert.Equal(t, "cs5", id)

	_, _, err = access.GetChangesetFromNamedVersion(context.Background(), "imodel-1", "missing")
	require.Error(t, err)
	assert.True(t, imodels.HasCode(err, imodels.ErrorCodeNamedVersionNotFound))
}

func TestFrontendAccess_GetLatestChangeset(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /imodel-1/changesets", func(writer http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "index desc", r.URL.Query().Get("$orderBy"))
		assert.Equal(t, "1", r.URL.Query().Get("$top"))
		writeBody(t, writer, http.StatusOK, map[string]interface{}{
			"changesets": []imodels.Changeset{{ID: "cs12", Index: 12}},
		})
	})
	mux.HandleFunc("GET /empty/changesets", func(writer http.ResponseWriter, _ *http.Request) {
		writeBody(t, writer, http.StatusOK, map[string]interface{}{"changesets": []imodels.Changeset{}})
	})

	access := hubaccess.NewFrontendAccess(newAccessClient(t, mux))

	latest, err := access.GetLatestChangeset(context.Background(), "imodel-1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 12, latest.Index)

	latest, err = access.GetLatestChangeset(context.Background(), "empty")
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestFrontendAccess_CheckpointNotFound(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /imodel-1/changesets/0/checkpoint", func(writer http.ResponseWriter, _ *http.Request) {
		writeBody(t, writer, http.StatusNotFound, apiError("CheckpointNotFound", "Requested Checkpoint is not available."))
	})

	access := hubaccess.NewFrontendAccess(newAccessClient(t, mux))

	_, err := access.QueryV2Checkpoint(context.Background(), "imodel-1", imodels.Baseline())
	require.Error(t, err)
	assert.True(t, imodels.HasDomainCode(err, imodels.DomainCodeCheckpointNotFound))
}

type recordingTransfer struct {
	mu        sync.Mutex
	downloads []imodels.DownloadInput
}

func (r *recordingTransfer) Upload(context.Context, imodels.UploadInput) error {
	return nil
}

func (r *recordingTransfer) Download(_ context.Context, input imodels.DownloadInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.downloads = append(r.downloads, input)

	return nil
}

func TestBackendAccess_DownloadV1Checkpoint(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /imodel-1/changesets/0/checkpoint", func(writer http.ResponseWriter, _ *http.Request) {
		writeBody(t, writer, http.StatusOK, map[string]interface{}{
			"checkpoint": imodels.Checkpoint{
				ChangesetIndex: 0,
				State:          imodels.CheckpointStateSuccessful,
				Links:          imodels.CheckpointLinks{Download: &imodels.Link{Href: "https://storage.example.com/baseline.bim"}},
			},
		})
	})

	client := newAccessClient(t, mux)

	t.Run("without transfer", func(t *testing.T) {
		t.Parallel()

		_, err := hubaccess.NewBackendAccess(client).
			DownloadV1Checkpoint(context.Background(), "imodel-1", imodels.Baseline(), "/tmp/x.bim", nil)
		require.ErrorIs(t, err, imodels.ErrNoContentTransferConfigured)
	})

	t.Run("downloads the checkpoint file", func(t *testing.T) {
		t.Parallel()

		transfer := &recordingTransfer{}
		access := hubaccess.NewBackendAccess(client, hubaccess.WithContentTransfer(transfer))

		checkpoint, err := access.DownloadV1Checkpoint(context.Background(), "imodel-1", imodels.Baseline(), "/tmp/x.bim", nil)
		require.NoError(t, err)
		assert.Equal(t, 0, checkpoint.ChangesetIndex)

		require.Len(t, transfer.downloads, 1)
		assert.Equal(t, "https://storage.example.com/baseline.bim", transfer.downloads[0].URL)
		assert.Equal(t, "/tmp/x.bim", transfer.downloads[0].TargetPath)
	})
}
