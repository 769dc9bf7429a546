package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/avolkov/bookcatalog/internal/catalog"
)

// RefreshAllBooksTask sweeps the collection for books missing a cover or
// description and refreshes them one by one. Sequential on purpose: every
// persisted refresh rewrites the whole remote document, so concurrent
// refreshes would clobber each other.
type RefreshAllBooksTask struct{}

// Config returns the queue configuration for bulk refresh tasks.
func (t RefreshAllBooksTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "refresh_all_books",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     60 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// RefreshAllBooksProcessor creates a processor function for RefreshAllBooksTask.
func RefreshAllBooksProcessor(service *catalog.Service) backlite.QueueProcessor[RefreshAllBooksTask] {
	return func(ctx context.Context, _ RefreshAllBooksTask) error {
		if service == nil {
			return fmt.Errorf("catalog service not configured")
		}

		missing, err := service.BooksMissingMetadata(ctx)
		if err != nil {
			return fmt.Errorf("list books missing metadata: %w", err)
		}

		var refreshed, skipped, failed int
		for _, book := range missing {
			_, fields, err := service.RefreshBook(ctx, book.ID)
			if err != nil {
				// A concurrent delete between the sweep and the refresh is
				// not a task failure.
				if errors.Is(err, catalog.ErrBookNotFound) {
					skipped++
					continue
				}
				log.Printf("[TASK] Refresh failed for book %d (%s): %v", book.ID, book.Title, err)
				failed++
				continue
			}
			if len(fields) > 0 {
				refreshed++
			} else {
				skipped++
			}
		}

		log.Printf("[TASK] Bulk refresh complete: %d checked, %d refreshed, %d skipped, %d failed",
			len(missing), refreshed, skipped, failed)
		return nil
	}
}

// NewRefreshAllBooksQueue creates a backlite queue for bulk refresh tasks.
func NewRefreshAllBooksQueue(service *catalog.Service) backlite.Queue {
	return backlite.NewQueue(RefreshAllBooksProcessor(service))
}
