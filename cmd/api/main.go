package main

import (
	"flag"
	"log"
	"os"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	httpHandler "rpcdrift/internal/adapter/handler/http"
	"rpcdrift/internal/adapter/rpc"
	"rpcdrift/internal/adapter/storage/memory"
	"rpcdrift/internal/config"
	"rpcdrift/internal/logger"
	"rpcdrift/internal/usecase"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the YAML config file.")
	flag.Parse()

	// --- Configuration ---
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration from %s: %v", *configPath, err)
	}

	// --- Logger ---
	zl, err := logger.New(logger.Options{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	}, os.Stdout)
	if err != nil {
		log.Fatalf("Failed to setup logger: %v", err)
	}
	defer zl.Sync()
	zl.Info("Logger initialized", zap.Any("config", cfg.Logger))

	// --- Dependency Injection (Manual) ---
	zl.Info("Initializing dependencies...")

	dialer := rpc.NewDialer(zl)
	snapshotter := usecase.NewSnapshotter(dialer, zl)
	probeUseCase := usecase.NewProbeUseCase(snapshotter, zl)
	reportCache := memory.NewReportCache(cfg.Cache, zl)
	driftHandler := httpHandler.NewDriftHandler(probeUseCase, reportCache, cfg, zl)

	// --- HTTP Router & Server ---
	zl.Info("Setting up HTTP router...")
	r := router.New()

	r.GET("/drift", driftHandler.GetDrift)
	r.GET("/health", driftHandler.Health)

	loggingMiddleware := func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			zl.Info("Request received",
				zap.ByteString("method", ctx.Method()),
				zap.ByteString("uri", ctx.RequestURI()))
			next(ctx)
		}
	}

	serverAddr := ":" + cfg.Server.Port
	zl.Info("Starting HTTP server", zap.String("address", serverAddr))

	if err := fasthttp.ListenAndServe(serverAddr, loggingMiddleware(r.Handler)); err != nil {
		zl.Fatal("Failed to start server", zap.Error(err))
	}
}
