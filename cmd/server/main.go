package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"ghl-timezone-sync/internal/api"
	"ghl-timezone-sync/internal/cache"
	"ghl-timezone-sync/internal/config"
	"ghl-timezone-sync/internal/database"
	"ghl-timezone-sync/internal/ghl"
	"ghl-timezone-sync/internal/google"
	"ghl-timezone-sync/internal/jobs"
	"ghl-timezone-sync/internal/timezone"
	"ghl-timezone-sync/internal/tzsync"
	"ghl-timezone-sync/internal/webhook"
	"ghl-timezone-sync/internal/ws"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()
	for _, warning := range cfg.Validate() {
		log.Printf("Warning: %s", warning)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.InitGorm(cfg.JobsDSN)
	if err != nil {
		log.Fatalf("Failed to initialize job store: %v", err)
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	fieldCache := cache.NewFieldIDCache()
	googleClient := google.NewClient(cfg.GoogleAPIKey, cfg.GoogleBaseURL, cfg.HTTPTimeout, httpClient)
	crm := ghl.NewClient(cfg, fieldCache, httpClient)

	var offline tzsync.OfflineResolver
	if cfg.OfflineTZLookup {
		offline = timezone.Offline{}
	}
	syncService := tzsync.NewService(googleClient, googleClient, offline, crm, crm)

	// The hub outlives the signal context so jobs finishing during the
	// drain still reach subscribers.
	hub := ws.NewHub()
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	jobStore := jobs.NewGormStore(db)
	queue := jobs.NewQueue(syncService, jobStore, hub, cfg.WorkerConcurrency, cfg.JobsRetention)

	r := gin.Default()

	// CORS Middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	webhookHandler := webhook.NewHandler(queue)
	diagHandler := api.NewDiagHandler(crm)
	jobsHandler := api.NewJobsHandler(jobStore)

	r.POST("/ghl/webhook", webhookHandler.HandleContact)
	r.GET("/health", api.Health)
	r.GET("/diag", diagHandler.Diag)
	r.GET("/ws", func(c *gin.Context) {
		hub.ServeWs(c.Writer, c.Request)
	})

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/jobs", jobsHandler.GetJobs)
		apiGroup.GET("/jobs/:id", jobsHandler.GetJob)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to run server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Received termination signal, starting graceful shutdown...")

	// Outbound calls are bounded by HTTPTimeout, and a job makes at most a
	// handful of them per candidate and strategy.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*cfg.HTTPTimeout)
	defer cancel()

	shutdown(shutdownCtx, srv, queue, stopHub)
	log.Println("Shutdown complete")
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

// shutdown stops intake, waits for queued jobs, and only then stops the
// event hub.
func shutdown(ctx context.Context, srv, queue shutdowner, stopEvents context.CancelFunc) {
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}
	if err := queue.Shutdown(ctx); err != nil {
		log.Printf("Background jobs still running at exit: %v", err)
	}
	stopEvents()
}
