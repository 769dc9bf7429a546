package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avolkov/bookcatalog/internal/catalog"
	"github.com/avolkov/bookcatalog/internal/tasks"
)

// SyncScheduler is the slice of the metadata sync scheduler the status
// endpoints need.
type SyncScheduler interface {
	IsRunning() bool
	GetNextRunTime() *time.Time
	RunNow()
}

// MetadataController handles book metadata enrichment endpoints.
type MetadataController struct {
	service    *catalog.Service
	taskClient *tasks.Client
	scheduler  SyncScheduler
}

// NewMetadataController creates a new MetadataController. The task client and
// scheduler may be nil, in which case bulk enrichment and the periodic sync
// are unavailable.
func NewMetadataController(service *catalog.Service, taskClient *tasks.Client, scheduler SyncScheduler) *MetadataController {
	return &MetadataController{
		service:    service,
		taskClient: taskClient,
		scheduler:  scheduler,
	}
}

// EnrichBookResponse is the response for an enrichment operation.
type EnrichBookResponse struct {
	Success bool   `json:"success"`
	Book    any    `json:"book,omitempty"`
	Source  string `json:"source,omitempty"`
	Error   string `json:"error,omitempty"`
}

// EnrichBook handles POST /api/books/:id/enrich
// It fetches metadata from OpenLibrary and returns the merged book. The
// stored collection is not modified; the caller decides whether to PUT the
// result back.
func (mc *MetadataController) EnrichBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	enriched, err := mc.service.EnrichBook(ctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrBookNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "enrich book")
		return
	}

	c.JSON(http.StatusOK, EnrichBookResponse{
		Success: true,
		Book:    enriched,
		Source:  "openlibrary",
	})
}

// EnrichAllMissing handles POST /api/books/enrich-all
// It starts an async enrichment of all books missing a cover or description.
// Requires the task queue to be enabled.
func (mc *MetadataController) EnrichAllMissing(c *gin.Context) {
	if mc.taskClient == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "task queue is not enabled"})
		return
	}

	task := tasks.RefreshAllBooksTask{}
	ids, err := mc.taskClient.Add(task).Save()
	if err != nil {
		log.Printf("Failed to enqueue enrichment task: %v", err)
		respondInternalError(c, err, "enqueue enrichment")
		return
	}
	log.Printf("Enqueued RefreshAllBooksTask with ID: %s", ids[0])

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "metadata refresh started",
		"task_id": ids[0],
	})
}

// SyncStatusResponse describes the periodic metadata sync.
type SyncStatusResponse struct {
	SchedulerRunning bool   `json:"scheduler_running"`
	NextRun          string `json:"next_run,omitempty"`
}

// GetSyncStatus handles GET /api/sync/metadata/status
// Reports whether the periodic refresh is scheduled and when it fires next.
func (mc *MetadataController) GetSyncStatus(c *gin.Context) {
	resp := SyncStatusResponse{}

	if mc.scheduler != nil {
		resp.SchedulerRunning = mc.scheduler.IsRunning()
		if next := mc.scheduler.GetNextRunTime(); next != nil {
			resp.NextRun = next.Format(time.RFC3339)
		}
	}

	c.JSON(http.StatusOK, resp)
}

// RunSyncNow handles POST /api/sync/metadata/run
// Triggers the periodic refresh sweep immediately.
func (mc *MetadataController) RunSyncNow(c *gin.Context) {
	if mc.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "metadata sync is not enabled"})
		return
	}

	mc.scheduler.RunNow()
	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "metadata refresh triggered",
	})
}
