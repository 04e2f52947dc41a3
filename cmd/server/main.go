package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/ocx/syncx/internal/adminhttp"
	"github.com/ocx/syncx/internal/auth"
	"github.com/ocx/syncx/internal/blobstore"
	"github.com/ocx/syncx/internal/cache"
	"github.com/ocx/syncx/internal/config"
	"github.com/ocx/syncx/internal/deadletter"
	"github.com/ocx/syncx/internal/docs"
	"github.com/ocx/syncx/internal/download"
	"github.com/ocx/syncx/internal/events"
	"github.com/ocx/syncx/internal/logging"
	"github.com/ocx/syncx/internal/metrics"
	"github.com/ocx/syncx/internal/queue"
	"github.com/ocx/syncx/internal/rpc"
	"github.com/ocx/syncx/internal/upload"
	"github.com/ocx/syncx/internal/worker"
	"github.com/ocx/syncx/pb"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on process environment")
	}

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.Init(cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Cache and queue share one Redis connection pool (§5 "Resource
	// sharing"): the cache adapter dials, the queue adapter borrows its
	// client.
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		logger.Error("redis dial failed", "err", err)
		os.Exit(1)
	}
	defer redisCache.Close()
	jobQueue := queue.NewRedisQueue(redisCache.Client())

	pg, err := docs.NewPostgres(ctx, cfg.Database.URL)
	if err != nil {
		logger.Error("postgres dial failed", "err", err)
		os.Exit(1)
	}
	defer pg.Close()
	store := pg.NewStore(redisCache)

	credsJSON := []byte(cfg.GCS.CredentialsJSON)
	blobs, err := blobstore.NewGCS(ctx, cfg.GCS.BucketName, credsJSON, cfg.GCS.APIKey)
	if err != nil {
		logger.Error("gcs dial failed", "err", err)
		os.Exit(1)
	}
	defer blobs.Close()

	tokens := auth.NewTokenIssuer(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpirySeconds)*time.Second)
	mx := metrics.New()

	var emit events.Emitter
	var dlq deadletter.DeadLetter
	if cfg.GCP.ProjectID == "" {
		logger.Warn("GCP_PROJECT_ID unset, domain events and dead-lettering fall back to in-memory stand-ins")
		emit = events.NewMemory()
		dlq = deadletter.NewMemory()
	} else {
		pubsubEmitter, err := events.NewPubSubEmitter(ctx, cfg.GCP.ProjectID, cfg.GCP.EventsTopic)
		if err != nil {
			logger.Error("pubsub dial failed", "err", err)
			os.Exit(1)
		}
		defer pubsubEmitter.Close()
		emit = pubsubEmitter

		tasksDLQ, err := deadletter.NewCloudTasks(ctx, cfg.GCP.ProjectID, cfg.GCP.TasksLocation, cfg.GCP.TasksQueue, cfg.GCP.DeadLetterEndpoint)
		if err != nil {
			logger.Error("cloud tasks dial failed", "err", err)
			os.Exit(1)
		}
		defer tasksDLQ.Close()
		dlq = tasksDLQ
	}

	uploadSvc := upload.New(tokens, store, jobQueue, emit, mx)
	downloadSvc := download.New(tokens, redisCache, blobs, mx)
	syncxServer := rpc.New(uploadSvc, downloadSvc)

	workerCfg := worker.Config{
		MaxInflight:    cfg.Worker.MaxInflight,
		RetryAttempts:  cfg.Worker.RetryAttempts,
		RetryBaseDelay: time.Duration(cfg.Worker.RetryBaseDelayMs) * time.Millisecond,
	}
	pool := worker.New(workerCfg, jobQueue, blobs, redisCache, dlq, emit, mx)

	grpcServer := grpc.NewServer()
	pb.RegisterSyncxServer(grpcServer, syncxServer)

	admin := adminhttp.New()
	adminServer := &http.Server{Addr: cfg.Server.AdminAddr, Handler: admin.Handler()}

	var wg errgroup.Group
	wg.Go(func() error {
		logger.Info("worker pool starting", "max_inflight", workerCfg.MaxInflight)
		pool.Run(ctx)
		return nil
	})
	wg.Go(func() error {
		logger.Info("admin http listening", "addr", cfg.Server.AdminAddr)
		err := adminServer.ListenAndServe()
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	})
	wg.Go(func() error {
		lis, err := net.Listen("tcp", cfg.Server.Addr)
		if err != nil {
			return err
		}
		logger.Info("grpc server listening", "addr", cfg.Server.Addr)
		return grpcServer.Serve(lis)
	})

	<-ctx.Done()
	logger.Info("shutdown signal received, draining")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = adminServer.Shutdown(shutdownCtx)
	grpcServer.GracefulStop()

	if err := wg.Wait(); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
