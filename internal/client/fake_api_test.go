package client_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/imodels-client/internal/client"
	"github.com/fivetwenty-io/imodels-client/pkg/imodels"
)

const testIModelID = "imodel-1"

// fakeAPI serves a linear changeset history 1..changesets together with
// checkpoints at the configured indexes.
type fakeAPI struct {
	t           *testing.T
	server      *httptest.Server
	changesets  int
	checkpoints map[int]imodels.Checkpoint

	// precedingOverride replaces the checkpoint returned for a changeset index.
	precedingOverride map[int]int
	// withoutLinks lists changesets returned without a checkpoint link.
	withoutLinks map[int]bool

	changesetRequests  atomic.Int32
	checkpointRequests atomic.Int32
}

func newFakeAPI(t *testing.T, changesets int) *fakeAPI {
	t.Helper()

	api := &fakeAPI{
		t:                 t,
		changesets:        changesets,
		checkpoints:       make(map[int]imodels.Checkpoint),
		precedingOverride: make(map[int]int),
		withoutLinks:      make(map[int]bool),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{imodel}/changesets/{ref}", api.getChangeset)
	mux.HandleFunc("GET /{imodel}/changesets/{ref}/checkpoint", api.getCheckpoint)

	api.server = httptest.NewServer(mux)
	t.Cleanup(api.server.Close)

	return api
}

func (a *fakeAPI) addV1Checkpoint(index int) {
	a.checkpoints[index] = imodels.Checkpoint{
		ChangesetIndex: index,
		ChangesetID:    changesetID(index),
		State:          imodels.CheckpointStateSuccessful,
		Links:          imodels.CheckpointLinks{Download: &imodels.Link{Href: "https://storage.example.com/cp" + strconv.Itoa(index)}},
	}
}

func (a *fakeAPI) addV2Checkpoint(index int) {
	a.checkpoints[index] = imodels.Checkpoint{
		ChangesetIndex: index,
		ChangesetID:    changesetID(index),
		State:          imodels.CheckpointStateSuccessful,
		DirectoryAccessInfo: &imodels.DirectoryAccessInfo{
			BaseDirectory: "imodel-1/checkpoints",
			Storage:       imodels.StorageInfo{BaseURL: "https://storage.example.com", Type: "azure"},
		},
	}
}

func changesetID(index int) string {
	if index == 0 {
		return ""
	}

	return fmt.Sprintf("cs%d", index)
}

// resolve maps a path segment (index or id) to an index, or -1.
func (a *fakeAPI) resolve(ref string) int {
	index, err := strconv.Atoi(ref)
	if err == nil {
		return index
	}

	for i := 1; i <= a.changesets; i++ {
		if changesetID(i) == ref {
			return i
		}
	}

	return -1
}

func (a *fakeAPI) changeset(index int) imodels.Changeset {
	changeset := imodels.Changeset{
		ID:       changesetID(index),
		Index:    index,
		ParentID: changesetID(index - 1),
		FileSize: int64(len(changesetID(index))),
		Links: imodels.ChangesetLinks{
			Download: &imodels.Link{Href: fmt.Sprintf("https://storage.example.com/%s?sig=%d", changesetID(index), a.changesetRequests.Load())},
		},
	}

	if !a.withoutLinks[index] {
		changeset.Links.CurrentOrPrecedingCheckpoint = &imodels.Link{
			Href: fmt.Sprintf("%s/%s/changesets/%d/checkpoint", a.server.URL, testIModelID, index),
		}
	}

	return changeset
}

func (a *fakeAPI) getChangeset(w http.ResponseWriter, r *http.Request) {
	a.changesetRequests.Add(1)

	index := a.resolve(r.PathValue("ref"))
	if index < 1 || index > a.changesets {
		writeAPIError(w, http.StatusNotFound, "ChangesetNotFound", "Requested Changeset is not available.")

		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"changeset": a.changeset(index)})
}

func (a *fakeAPI) getCheckpoint(w http.ResponseWriter, r *http.Request) {
	a.checkpointRequests.Add(1)

	index := a.resolve(r.PathValue("ref"))

	if override, ok := a.precedingOverride[index]; ok {
		writeJSON(w, http.StatusOK, map[string]interface{}{"checkpoint": imodels.Checkpoint{ChangesetIndex: override}})

		return
	}

	for candidate := index; candidate >= 0; candidate-- {
		if checkpoint, ok := a.checkpoints[candidate]; ok {
			writeJSON(w, http.StatusOK, map[string]interface{}{"checkpoint": checkpoint})

			return
		}
	}

	writeAPIError(w, http.StatusNotFound, "CheckpointNotFound", "Requested Checkpoint is not available.")
}

func (a *fakeAPI) newClient(transfer imodels.ContentTransfer) *client.Client {
	a.t.Helper()

	return newTestClient(a.t, a.server.URL, transfer)
}

func newTestClient(t *testing.T, endpoint string, transfer imodels.ContentTransfer) *client.Client {
	t.Helper()

	c, err := client.New(context.Background(), &imodels.Config{
		APIEndpoint:     endpoint,
		Authorization:   imodels.BearerToken("test-token"),
		ContentTransfer: transfer,
		Cache:           imodels.NewMemoryCache(100),
	})
	require.NoError(t, err)

	return c
}

func writeJSON(w http.ResponseWriter, status int, value interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{"code": code, "message": message},
	})
}

// fakeTransfer records transfers and writes the URL as file content.
type fakeTransfer struct {
	mu        sync.Mutex
	downloads []string
	uploads   []imodels.UploadInput
	// failFirst makes the first download of each URL fail.
	failFirst bool
	failed    map[string]bool
}

func (f *fakeTransfer) Download(_ context.Context, input imodels.DownloadInput) error {
	f.mu.Lock()
	f.downloads = append(f.downloads, input.URL)

	if f.failFirst {
		if f.failed == nil {
			f.failed = make(map[string]bool)
		}

		if !f.failed[input.URL] {
			f.failed[input.URL] = true
			f.mu.Unlock()

			return fmt.Errorf("link expired: %s", input.URL) //nolint:err113 // Test failure
		}
	}
	f.mu.Unlock()

	err := os.MkdirAll(filepath.Dir(input.TargetPath), 0o750)
	if err != nil {
		return err
	}

	return os.WriteFile(input.TargetPath, []byte(input.URL), 0o600)
}

func (f *fakeTransfer) Upload(_ context.Context, input imodels.UploadInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.uploads = append(f.uploads, input)

	return nil
}
