package http

import (
	"github.com/gin-gonic/gin"

	"github.com/avolkov/bookcatalog/internal/catalog"
	"github.com/avolkov/bookcatalog/internal/tasks"
)

// RouterConfig carries all dependencies the router needs. Optional fields may
// be nil; the routes that depend on them degrade gracefully.
type RouterConfig struct {
	Service    *catalog.Service
	Store      StoreChecker
	TaskClient *tasks.Client
	Scheduler  SyncScheduler
	Version    string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Store, cfg.Version)
	booksController := NewBooksController(cfg.Service)
	metadataController := NewMetadataController(cfg.Service, cfg.TaskClient, cfg.Scheduler)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Books API endpoints
	router.GET("/api/books", booksController.GetAllBooks)
	router.POST("/api/books", booksController.CreateBook)
	router.GET("/api/books/:id", booksController.GetBook)
	router.PUT("/api/books/:id", booksController.UpdateBook)
	router.PATCH("/api/books/:id", booksController.PatchBook)
	router.DELETE("/api/books/:id", booksController.DeleteBook)

	// Book metadata enrichment endpoints
	router.POST("/api/books/:id/enrich", metadataController.EnrichBook)
	router.POST("/api/books/enrich-all", metadataController.EnrichAllMissing)

	// Periodic sync endpoints
	router.GET("/api/sync/metadata/status", metadataController.GetSyncStatus)
	router.POST("/api/sync/metadata/run", metadataController.RunSyncNow)

	// Task inspection endpoints
	if cfg.TaskClient != nil {
		tasksController := NewTasksController(cfg.TaskClient)
		router.GET("/api/tasks/:id", tasksController.GetTaskStatus)
	}

	return router
}
