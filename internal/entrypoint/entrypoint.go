package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avolkov/bookcatalog/internal/catalog"
	"github.com/avolkov/bookcatalog/internal/config"
	http_controllers "github.com/avolkov/bookcatalog/internal/http"
	"github.com/avolkov/bookcatalog/internal/metadata"
	"github.com/avolkov/bookcatalog/internal/scheduler"
	"github.com/avolkov/bookcatalog/internal/store"
	"github.com/avolkov/bookcatalog/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM; give in-flight requests and
	// background workers the configured timeout to drain.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Book Catalog v%s", version)

	if cfg.Store.BinID == "" || cfg.Store.APIKey == "" {
		log.Fatalf("JSONBIN_BIN_ID and JSONBIN_API_KEY must be set")
	}

	// Remote document client holding the whole collection
	docStore := store.NewClient(store.Config{
		BaseURL: cfg.Store.BaseURL,
		BinID:   cfg.Store.BinID,
		APIKey:  cfg.Store.APIKey,
		Timeout: cfg.Store.Timeout,
	})

	// Metadata enricher backed by OpenLibrary
	openLibraryClient := metadata.NewOpenLibraryClient(metadata.Config{
		BaseURL:       cfg.OpenLibrary.BaseURL,
		Timeout:       cfg.OpenLibrary.Timeout,
		RatePerSecond: cfg.OpenLibrary.RatePerSecond,
	})
	enricher := metadata.NewEnricher(openLibraryClient, cfg.OpenLibrary.CoversBaseURL)

	repo := catalog.NewRepository(docStore, enricher)
	service := catalog.NewService(repo, enricher)

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			DBPath:            cfg.Tasks.DBPath,
			Workers:           cfg.Tasks.Workers,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		var err error
		taskClient, err = tasks.NewClient(taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewRefreshBookQueue(service),
			tasks.NewRefreshAllBooksQueue(service),
		)

		// Start task workers in background
		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Periodic metadata refresh rides on the task queue
	var metadataSync *scheduler.MetadataSyncScheduler
	if cfg.MetadataSync.Enabled && taskClient != nil {
		metadataSync = scheduler.NewMetadataSyncScheduler(taskClient, cfg.MetadataSync.Schedule)
		if err := metadataSync.Start(context.Background()); err != nil {
			log.Fatalf("Failed to start metadata sync scheduler: %v", err)
		}
	}

	routerCfg := http_controllers.RouterConfig{
		Service:    service,
		Store:      docStore,
		TaskClient: taskClient,
		Version:    version,
	}
	if metadataSync != nil {
		routerCfg.Scheduler = metadataSync
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if metadataSync != nil {
			metadataSync.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
