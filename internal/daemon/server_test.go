package daemon

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"replisync/internal/model"
	"replisync/internal/repository"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMirror struct {
	triggered int
}

func (f *fakeMirror) Snapshot() model.MirrorSnapshot {
	return model.MirrorSnapshot{
		Source:      "/src",
		Replica:     "/replica",
		FilesCopied: 4,
		Scheduler:   model.SchedulerSnapshot{State: model.StateWaiting, Passes: 2},
	}
}

func (f *fakeMirror) Trigger() {
	f.triggered++
}

func do(t *testing.T, s *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func TestStatusEndpoint(t *testing.T) {
	conn := openTestDB(t)
	runs := repository.NewRunRepository(conn)
	run, err := runs.Begin(model.PathPair{Source: "/src", Replica: "/replica"}, time.Now())
	require.NoError(t, err)
	require.NoError(t, runs.Finish(run.ID, model.RunResult{}, nil))

	s := NewServer(&fakeMirror{}, conn, 0)
	rec := do(t, s, http.MethodGet, "/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Mirror model.MirrorSnapshot `json:"mirror"`
		Runs   repository.Stats     `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "/src", body.Mirror.Source)
	assert.Equal(t, 4, body.Mirror.FilesCopied)
	assert.Equal(t, model.StateWaiting, body.Mirror.Scheduler.State)
	assert.Equal(t, repository.Stats{Total: 1, Success: 1}, body.Runs)
}

func TestSyncAndStopEndpoints(t *testing.T) {
	mirror := &fakeMirror{}
	s := NewServer(mirror, nil, 0)

	rec := do(t, s, http.MethodPost, "/sync")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 1, mirror.triggered)

	rec = do(t, s, http.MethodPost, "/stop")
	assert.Equal(t, http.StatusOK, rec.Code)
	select {
	case <-s.StopCh():
	default:
		t.Fatal("stop was not signalled")
	}

	// A second stop request must not block.
	do(t, s, http.MethodPost, "/stop")
	do(t, s, http.MethodPost, "/stop")
}

func TestHistoryEndpoints(t *testing.T) {
	conn := openTestDB(t)
	hist := repository.NewHistoryRepository(conn)
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, hist.SaveEvent(1, model.Event{Action: model.ActionRunStart, At: at}))
	require.NoError(t, hist.SaveEvent(1, model.Event{Action: model.ActionCopyFile, RelPath: "f", At: at.Add(time.Second)}))
	require.NoError(t, hist.SaveEvent(1, model.Event{Action: model.ActionRunEnd, At: at.Add(2 * time.Second)}))

	s := NewServer(&fakeMirror{}, conn, 0)

	var events []model.History
	rec := do(t, s, http.MethodGet, "/history")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, "COPIED FILE", events[0].Action)

	rec = do(t, s, http.MethodGet, "/history?all=true&n=2")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	assert.Len(t, events, 2)

	rec = do(t, s, http.MethodGet, "/runs/1/events")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	assert.Len(t, events, 3)

	rec = do(t, s, http.MethodGet, "/runs/abc/events")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/runs")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHistoryDisabled(t *testing.T) {
	s := NewServer(&fakeMirror{}, nil, 0)

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/history").Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/runs").Code)

	rec := do(t, s, http.MethodGet, "/status")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"runs"`)
}
