package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mkrupp/jobboard/internal/infra/config"
	"github.com/mkrupp/jobboard/internal/infra/logging"
	http_ "github.com/mkrupp/jobboard/internal/infra/transport/http"
	"github.com/mkrupp/jobboard/internal/repo/blob"
	"github.com/mkrupp/jobboard/internal/repo/store"
	"github.com/mkrupp/jobboard/internal/svc/applicationsvc"
	"github.com/mkrupp/jobboard/internal/svc/assetsvc"
	"github.com/mkrupp/jobboard/internal/svc/authsvc"
	"github.com/mkrupp/jobboard/internal/svc/jobsvc"
	"github.com/mkrupp/jobboard/internal/svc/messagesvc"
	"github.com/mkrupp/jobboard/internal/svc/profilesvc"
)

const (
	appName = "jobboard"
	svcName = "jobboardsvc"

	rateLimitCleanupInterval = time.Minute
)

type Config struct {
	config.EnvConfig

	Log       logging.LoggerConfig         `envPrefix:"LOG_"`
	HTTP      http_.HTTPTransportConfig    `envPrefix:"HTTP_"`
	RateLimit http_.RateLimitConfig        `envPrefix:"RATE_LIMIT_"`
	Auth      authsvc.AuthConfig           `envPrefix:"AUTH_"`
	Store     store.Config                 `envPrefix:"STORE_"`
	Blob      blob.Config                  `envPrefix:"BLOB_"`
	Asset     assetsvc.AssetConfig         `envPrefix:"ASSET_"`
	AssetHTTP assetsvc.HTTPTransportConfig `envPrefix:"ASSET_HTTP_"`
}

func main() {
	var (
		cfg Config

		configPrefix = strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, svcName}, "."))
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotEnv(".env"); err != nil {
		panic(err)
	}

	if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
		panic(err)
	}

	if err := logging.Configure(ctx, cfg.Log, loggerName); err != nil {
		panic(err)
	}

	if err := run(ctx, cfg); err != nil {
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config) (err error) {
	log := logging.GetLogger("cmd.jobboardsvc")

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "error", "err", err)
		} else {
			log.InfoContext(ctx, "shutdown")
		}
	}()

	repoFactory, err := store.NewRepositoryFactory(cfg.Store)
	if err != nil {
		return fmt.Errorf("new repository factory: %w", err)
	}

	repo, err := repoFactory(ctx)
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}
	defer repo.Close()

	blobFactory, err := blob.NewRepositoryFactory(cfg.Blob)
	if err != nil {
		return fmt.Errorf("new blob repository factory: %w", err)
	}

	authSvc, err := authsvc.NewAuthService(repo, cfg.Auth)
	if err != nil {
		return fmt.Errorf("new auth service: %w", err)
	}

	assetSvc, err := assetsvc.NewAssetService(ctx, blobFactory, cfg.Asset)
	if err != nil {
		return fmt.Errorf("new asset service: %w", err)
	}

	limiter := http_.NewRateLimiter(cfg.RateLimit)
	go limiter.Run(ctx, rateLimitCleanupInterval)

	mux := http_.NewServeMux(
		authsvc.NewHTTPTransport(authSvc, limiter, cfg.HTTP),
		profilesvc.NewHTTPTransport(profilesvc.NewProfileService(repo), cfg.HTTP),
		jobsvc.NewHTTPTransport(jobsvc.NewJobService(repo), cfg.HTTP),
		applicationsvc.NewHTTPTransport(applicationsvc.NewApplicationService(repo), cfg.HTTP),
		messagesvc.NewHTTPTransport(messagesvc.NewMessageService(repo), cfg.HTTP),
		assetsvc.NewHTTPTransport(assetSvc, cfg.AssetHTTP),
	)

	metrics := http_.NewMetrics(appName)

	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /healthz", http_.HealthHandler)

	var handler http.Handler = mux
	handler = metrics.Middleware(handler)
	handler = http_.AuthenticatingMiddleware(handler, authSvc, log)

	if err := http_.ListenAndServe(ctx, handler, cfg.HTTP); err != nil {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}
