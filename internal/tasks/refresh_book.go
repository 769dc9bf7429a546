package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/avolkov/bookcatalog/internal/catalog"
)

// RefreshBookTask re-runs metadata enrichment for a single book and persists
// whatever the lookup fills in.
type RefreshBookTask struct {
	BookID int `json:"book_id"`
}

// Config returns the queue configuration for single-book refresh tasks.
func (t RefreshBookTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "refresh_book",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// RefreshBookProcessor creates a processor function for RefreshBookTask.
func RefreshBookProcessor(service *catalog.Service) backlite.QueueProcessor[RefreshBookTask] {
	return func(ctx context.Context, task RefreshBookTask) error {
		if service == nil {
			return fmt.Errorf("catalog service not configured")
		}

		book, fields, err := service.RefreshBook(ctx, task.BookID)
		if err != nil {
			return fmt.Errorf("refresh book %d: %w", task.BookID, err)
		}

		if len(fields) > 0 {
			log.Printf("[TASK] Refreshed book %d (%s): updated %v", task.BookID, book.Title, fields)
		} else {
			log.Printf("[TASK] Book %d (%s): no metadata updates found", task.BookID, book.Title)
		}

		return nil
	}
}

// NewRefreshBookQueue creates a backlite queue for single-book refresh tasks.
func NewRefreshBookQueue(service *catalog.Service) backlite.Queue {
	return backlite.NewQueue(RefreshBookProcessor(service))
}
