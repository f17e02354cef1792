package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"baselinker-sync/config"
	"baselinker-sync/internal/api"
	"baselinker-sync/internal/baselinker"
	"baselinker-sync/internal/broker"
	"baselinker-sync/internal/rategate"
	"baselinker-sync/internal/service"
	"baselinker-sync/internal/snapshot"
	"baselinker-sync/internal/summary"
	"baselinker-sync/internal/util"
	"baselinker-sync/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting baselinker-sync service")

	tp, err := util.InitTracer("baselinker-sync", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	if cfg.Baselinker.Token == "" {
		log.Fatal("BASELINKER_TOKEN is required")
	}

	snap := snapshot.New()
	client := baselinker.NewClient(cfg.Baselinker.Endpoint, cfg.Baselinker.Token, cfg.Baselinker.Timeout)

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrders)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	orderEngine := service.NewOrderSyncEngine(
		client, snap, rategate.New(cfg.Sync.RateDelay), eventPublisher,
		cfg.Sync.OrderPageSize, cfg.Sync.SweepDepth)
	inventoryEngine := service.NewInventorySyncEngine(
		client, snap, rategate.New(cfg.Sync.RateDelay),
		cfg.Sync.ListPageSize, cfg.Sync.DetailBatchSize)

	tracker := summary.NewTracker()

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	// Initial load runs in the background so the read surface comes up
	// immediately; the snapshot fills in as the calls complete.
	go func() {
		if err := orderEngine.Connect(workerCtx); err != nil {
			log.Printf("Initial connect failed: %v", err)
			return
		}
		if err := orderEngine.Sync(workerCtx, time.Time{}, time.Time{}, ""); err != nil {
			log.Printf("Initial order sync failed: %v", err)
		}
		if err := inventoryEngine.Refresh(workerCtx); err != nil {
			log.Printf("Initial inventory refresh failed: %v", err)
		}
		tracker.Recompute(snap.Orders(), snap.Products())
	}()

	syncWorker := worker.NewSyncWorker(orderEngine, snap, tracker, cfg.Sync.Interval, cfg.Sync.SummaryInterval)
	go syncWorker.Run(workerCtx)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(snap, orderEngine, inventoryEngine, tracker)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()

	log.Println("Server exited")
}
