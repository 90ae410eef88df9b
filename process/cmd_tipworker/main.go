package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"stonktip/pkg/config"
	"stonktip/pkg/jobs"
	"stonktip/pkg/ledger"
	"stonktip/pkg/logging"
	"stonktip/pkg/notify"
	"stonktip/pkg/reader"
	"stonktip/pkg/recognize"
	"stonktip/pkg/region"
	"stonktip/pkg/state"
)

// Main: consumes tip:process tasks queued by POST /tips/url, downloads each image, reads it and
// records the tip or files the URL as failed.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	closeLog, err := logging.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("logging setup: %v", err)
	}
	defer closeLog()
	wlog := logging.New("tip-worker")

	if cfg.DatabaseDSN == "" {
		log.Fatalf("DB_DSN must be set in environment to run the worker")
	}
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	ctx := context.Background()
	store, err := state.NewRedisStore(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer store.Close()

	rec, closeRec, err := recognize.New(ctx, recognize.Options{
		Backend:            cfg.Recognizer,
		VisionCredentials:  cfg.VisionCredentials,
		TesseractLanguages: cfg.TesseractLanguages,
		GeminiAPIKey:       cfg.GeminiAPIKey,
		GeminiModel:        cfg.GeminiModel,
	})
	if err != nil {
		log.Fatalf("recognizer: %v", err)
	}
	defer closeRec()
	locator, err := region.New(cfg.LocatorBackend, cfg.Threshold())
	if err != nil {
		log.Fatalf("locator: %v", err)
	}

	h := &jobs.Handler{
		Intake: &jobs.Intake{
			Reader: reader.New(locator, rec, logging.New("tip-reader")),
			Ledger: ledger.New(db),
			Failed: store,
			Notifier: notify.NewNotifier(notify.EmailConfig{
				SMTPServer: cfg.SMTPServer,
				SMTPPort:   cfg.SMTPPort,
				SMTPUser:   cfg.SMTPUser,
				SMTPPass:   cfg.SMTPPass,
				FromEmail:  cfg.NotifyFrom,
				ToEmail:    cfg.NotifyTo,
				Enabled:    cfg.SMTPEnabled,
			}),
			Log: logging.New("intake"),
		},
		Fetcher: jobs.NewDownloader(),
		Log:     wlog,
	}
	server, mux, err := jobs.NewServer(jobs.ServerConfig{
		RedisURL:    cfg.RedisURL,
		Queue:       cfg.TipQueue,
		Concurrency: cfg.WorkerConcurrency,
	}, h)
	if err != nil {
		log.Fatalf("Failed to create worker server: %v", err)
	}
	if err := server.Start(mux); err != nil {
		log.Fatalf("Failed to start worker server: %v", err)
	}
	wlog.Info("worker ready", "queue", cfg.TipQueue, "concurrency", cfg.WorkerConcurrency,
		"recognizer", cfg.Recognizer, "locator", cfg.LocatorBackend)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	wlog.Info("shutting down", "signal", sig.String())
	server.Shutdown()
	wlog.Info("shutdown complete")
}
