package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"runtime"
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

var verbose bool

// Main: scans a directory of tip screenshots, records readable tips in the ledger and files the
// rest as failed. With -watch it keeps processing new files until interrupted.
func main() {
	dirFlag := flag.String("dir", "public/tips", "directory to scan for tip screenshots")
	processedFlag := flag.String("processed", "public/processed", "directory handled files are moved to")
	channel := flag.String("channel", "local", "channel recorded with each tip")
	dryRun := flag.Bool("dry-run", false, "Read images and log tips without touching the DB, Redis or the files")
	watch := flag.Bool("watch", false, "Watch directory for new files")
	workers := flag.Int("workers", 0, "Worker pool size (default NumCPU)")
	flag.BoolVar(&verbose, "verbose", false, "Verbose per-file logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	closeLog, err := logging.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("logging setup: %v", err)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	in := &jobs.Intake{
		Reader: reader.New(locator, rec, logging.New("tip-reader")),
		Log:    logging.New("tipwatch"),
	}
	w := &watcher{intake: in, channel: *channel, processed: *processedFlag, dryRun: *dryRun}

	if !*dryRun {
		db := mustInitDB(cfg.DatabaseDSN)
		in.Ledger = ledger.New(db)
		store, err := openStore(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("state: %v", err)
		}
		defer store.Close()
		in.Failed = store
		in.Notifier = notify.NewNotifier(notify.EmailConfig{
			SMTPServer: cfg.SMTPServer,
			SMTPPort:   cfg.SMTPPort,
			SMTPUser:   cfg.SMTPUser,
			SMTPPass:   cfg.SMTPPass,
			FromEmail:  cfg.NotifyFrom,
			ToEmail:    cfg.NotifyTo,
			Enabled:    cfg.SMTPEnabled,
		})
	}

	files := listImageFiles(*dirFlag)
	n := effectiveWorkers(*workers)
	log.Printf("Scanning %d files in %s (workers=%d dry-run=%v)", len(files), *dirFlag, n, *dryRun)
	w.scan(ctx, *dirFlag, files, n)
	log.Printf("Scan done: read=%d unreadable=%d", w.read.Load(), w.unreadable.Load())

	if *watch {
		if err := w.watchDirectory(ctx, *dirFlag, n); err != nil {
			log.Fatalf("watch failed: %v", err)
		}
	}
}

func mustInitDB(dsn string) *gorm.DB {
	if dsn == "" {
		log.Fatalf("DB_DSN must be set in environment to run this tool")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	return gdb
}

// openStore prefers Redis so failed files show up in the service's /fails list.
func openStore(ctx context.Context, redisURL string) (state.Store, error) {
	if redisURL == "" {
		return state.NewMemoryStore(), nil
	}
	rs, err := state.NewRedisStore(ctx, redisURL)
	if err != nil {
		log.Printf("WARN redis unavailable, failed files kept in memory: %v", err)
		return state.NewMemoryStore(), nil
	}
	return rs, nil
}

func effectiveWorkers(w int) int {
	if w <= 0 {
		return runtime.NumCPU()
	}
	return w
}

func logV(format string, args ...any) {
	if verbose {
		log.Printf(format, args...)
	}
}
