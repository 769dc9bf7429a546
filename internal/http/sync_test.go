package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/bookcatalog/internal/catalog"
)

type fakeScheduler struct {
	running  bool
	next     *time.Time
	runCalls int
}

func (f *fakeScheduler) IsRunning() bool            { return f.running }
func (f *fakeScheduler) GetNextRunTime() *time.Time { return f.next }
func (f *fakeScheduler) RunNow()                    { f.runCalls++ }

func newSyncRouter(t *testing.T, sched SyncScheduler) *gin.Engine {
	t.Helper()

	store := &memStore{record: []byte("[]")}
	repo := catalog.NewRepository(store, nil)
	service := catalog.NewService(repo, nil)

	return NewRouter(RouterConfig{
		Service:   service,
		Store:     store,
		Scheduler: sched,
		Version:   "test",
	})
}

func TestSyncStatusEndpoint(t *testing.T) {
	t.Run("scheduler active", func(t *testing.T) {
		next := time.Date(2026, 9, 1, 3, 0, 0, 0, time.UTC)
		sched := &fakeScheduler{running: true, next: &next}
		router := newSyncRouter(t, sched)

		w := doRequest(router, http.MethodGet, "/api/sync/metadata/status", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp SyncStatusResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.SchedulerRunning)
		assert.Equal(t, "2026-09-01T03:00:00Z", resp.NextRun)
	})

	t.Run("scheduler not configured", func(t *testing.T) {
		router := newSyncRouter(t, nil)

		w := doRequest(router, http.MethodGet, "/api/sync/metadata/status", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp SyncStatusResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.SchedulerRunning)
		assert.Empty(t, resp.NextRun)
	})
}

func TestRunSyncNowEndpoint(t *testing.T) {
	t.Run("triggers a sweep", func(t *testing.T) {
		sched := &fakeScheduler{running: true}
		router := newSyncRouter(t, sched)

		w := doRequest(router, http.MethodPost, "/api/sync/metadata/run", nil)
		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Equal(t, 1, sched.runCalls)
	})

	t.Run("scheduler not configured", func(t *testing.T) {
		router := newSyncRouter(t, nil)

		w := doRequest(router, http.MethodPost, "/api/sync/metadata/run", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

type fakeStatusClient struct {
	status backlite.TaskStatus
	err    error
	lastID string
}

func (f *fakeStatusClient) Status(_ context.Context, taskID string) (backlite.TaskStatus, error) {
	f.lastID = taskID
	return f.status, f.err
}

func TestGetTaskStatusEndpoint(t *testing.T) {
	newRouter := func(client TaskStatusClient) *gin.Engine {
		router := gin.New()
		router.GET("/api/tasks/:id", NewTasksController(client).GetTaskStatus)
		return router
	}

	t.Run("reports status", func(t *testing.T) {
		client := &fakeStatusClient{status: backlite.TaskStatusSuccess}
		router := newRouter(client)

		w := doRequest(router, http.MethodGet, "/api/tasks/task-123", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "task-123", client.lastID)

		var resp struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "task-123", resp.ID)
		assert.Equal(t, "success", resp.Status)
	})

	t.Run("lookup failure", func(t *testing.T) {
		client := &fakeStatusClient{err: errors.New("db closed")}
		router := newRouter(client)

		w := doRequest(router, http.MethodGet, "/api/tasks/task-123", nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
