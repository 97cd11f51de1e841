package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/dtroode/imagestudio/internal/api/rest"
	"github.com/dtroode/imagestudio/internal/config"
	"github.com/dtroode/imagestudio/internal/logger"
	"github.com/dtroode/imagestudio/internal/model"
	"github.com/dtroode/imagestudio/internal/service"
	"github.com/dtroode/imagestudio/internal/storage/disk"
	"github.com/dtroode/imagestudio/internal/storage/file"
	storage "github.com/dtroode/imagestudio/internal/storage/minio"
	"github.com/dtroode/imagestudio/internal/storage/redis"
	"github.com/dtroode/imagestudio/internal/storage/sqlite"
	"github.com/dtroode/imagestudio/internal/ui"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	server := flag.String("server", "", "image service base URL, overrides API_BASE_URL")
	version := flag.Bool("version", false, "print build information and exit")
	flag.Parse()

	if *version {
		logAppVersion()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	if *server != "" {
		cfg.API.BaseURL = strings.TrimRight(*server, "/")
	}
	logger := logger.New(cfg.LogLevel)

	httpClient, err := rest.NewHTTPClient(cfg.API, logger)
	if err != nil {
		logger.Fatal("failed to create http client", "error", err)
	}
	client := rest.NewClient(cfg.API.BaseURL, httpClient, logger)

	localStorage, err := newLocalStorage(ctx, cfg.Session)
	if err != nil {
		logger.Fatal("failed to initialize session storage", "backend", cfg.Session.Backend, "error", err)
	}
	defer localStorage.Close()

	sink, err := newImageSink(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize image output", "backend", cfg.Output.Backend, "error", err)
	}

	sessions := service.NewSessionStore(client, localStorage, logger)
	if _, _, err := sessions.Restore(ctx); err != nil {
		logger.Error("failed to restore session", "error", err)
	}

	exporter := service.NewExporter(sink, cfg.Output.ThumbnailSize, logger)
	studio := service.NewStudio(client, sessions, exporter, logger)
	gallery := service.NewGallery(client, sessions, exporter, logger)

	logger.Info("Starting shell", "server", cfg.API.BaseURL, "version", buildVersion)

	shell := ui.NewShell(os.Stdin, os.Stdout, sessions, studio, gallery, logger)
	if err := shell.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("shell stopped", "error", err)
	}

	logger.Info("shutdown complete")
}

func newLocalStorage(ctx context.Context, cfg config.Session) (model.LocalStorage, error) {
	switch cfg.Backend {
	case config.SessionBackendSQLite:
		db, err := sqlite.NewConnection(ctx, cfg.Path)
		if err != nil {
			return nil, err
		}
		return sqlite.NewStore(db), nil
	case config.SessionBackendRedis:
		rdb, err := redis.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		return redis.NewStore(rdb, cfg.RedisPrefix), nil
	default:
		return file.NewStore(cfg.Path), nil
	}
}

func newImageSink(ctx context.Context, cfg *config.Config) (model.ImageSink, error) {
	if cfg.Output.Backend != config.OutputBackendMinio {
		return disk.NewSink(cfg.Output.Dir), nil
	}

	minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	sink, err := storage.NewClient(ctx, minioClient, cfg.Storage.Bucket)
	if err != nil {
		return nil, err
	}

	return sink, nil
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
