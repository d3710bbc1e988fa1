// Command billerd runs the BillerPRO capture and ledger API server.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/billerpro/billerpro/internal/capture"
	"github.com/billerpro/billerpro/internal/common"
	"github.com/billerpro/billerpro/internal/export"
	"github.com/billerpro/billerpro/internal/ledger"
	"github.com/billerpro/billerpro/internal/llm/openai"
	"github.com/billerpro/billerpro/internal/mirror"
	"github.com/billerpro/billerpro/internal/server"
	"github.com/billerpro/billerpro/internal/textextract"
	"github.com/billerpro/billerpro/pkg/logging"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}
	logging.SetupWithLevel(logging.ParseLevel(cfg.Log.Level))
	logger := slog.Default()

	if err := cfg.Validate(); err != nil {
		logger.Error("config invalid", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	doc := ledger.NewDocumentStore(cfg.Storage.Path, logger)
	store, err := ledger.Open(doc, logger)
	if err != nil {
		logger.Error("ledger open failed", "path", cfg.Storage.Path, "error", err)
		os.Exit(1)
	}
	logger.Info("ledger opened", "path", cfg.Storage.Path)

	var mirrorQueue *mirror.Queue
	if cfg.Mirror.Enabled {
		drive, err := mirror.NewDriveStore(mirror.Config{
			Endpoint:   cfg.Mirror.Endpoint,
			AccessKey:  cfg.Mirror.AccessKey,
			SecretKey:  cfg.Mirror.SecretKey,
			Bucket:     cfg.Mirror.Bucket,
			UseSSL:     cfg.Mirror.UseSSL,
			RootFolder: cfg.Mirror.RootFolder,
		})
		if err != nil {
			logger.Error("mirror init failed", "error", err)
			os.Exit(1)
		}
		if err := drive.EnsureBucket(ctx); err != nil {
			// Mirroring is best-effort; a dead drive must not block startup.
			logger.Warn("mirror bucket check failed, continuing", "error", err)
		}
		mirrorQueue = mirror.NewQueue(drive, cfg.Mirror.RootFolder, logger)
		store.AttachMirror(mirrorQueue)
		logger.Info("mirror attached", "endpoint", cfg.Mirror.Endpoint, "bucket", cfg.Mirror.Bucket)
	}

	extractor := textextract.NewExtractor(textextract.Config{
		Tesseract:   cfg.OCR.Tesseract,
		TessdataDir: cfg.OCR.TessdataDir,
		Lang:        cfg.OCR.Lang,
	}, logger)

	fields := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	session := capture.NewSession(extractor, fields, store, logger)
	exports := export.NewService(store, logger)

	var mirrorStatus server.MirrorStatus
	if mirrorQueue != nil {
		mirrorStatus = mirrorQueue
	}

	gin.SetMode(gin.ReleaseMode)
	api := server.New(cfg, store, session, exports, mirrorStatus, logger)

	httpSrv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: api.Router(),
	}

	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	if mirrorQueue != nil {
		mirrorQueue.Shutdown(shutdownCtx)
	}
	logger.Info("goodbye")
}
