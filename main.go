package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"stonktip/pkg/config"
	"stonktip/pkg/jobs"
	"stonktip/pkg/ledger"
	"stonktip/pkg/logging"
	"stonktip/pkg/notify"
	"stonktip/pkg/reader"
	"stonktip/pkg/recognize"
	"stonktip/pkg/region"
	"stonktip/pkg/state"

	"github.com/gin-gonic/gin"
)

// urlEnqueuer is satisfied by *jobs.Enqueuer.
type urlEnqueuer interface {
	Enqueue(ctx context.Context, url, channel string) (string, error)
}

var (
	cfg         *config.Config
	jwtSecret   []byte
	appLog      *logging.Logger
	tipLedger   *ledger.Ledger
	failedStore state.Store
	intake      *jobs.Intake
	enqueuer    urlEnqueuer
)

func main() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	closeLog, err := logging.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("logging setup: %v", err)
	}
	defer closeLog()
	appLog = logging.New("tip-service")
	jwtSecret = []byte(cfg.JWTSecret)

	// `./stonktip migrate` runs AutoMigrate and seeding then exits.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		initDB()
		fmt.Println("migration and seeding completed")
		return
	}

	if err := cfg.ValidateAuth(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	initDB()

	ctx := context.Background()
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

	if err := initServices(ctx, rec); err != nil {
		log.Fatalf("services: %v", err)
	}
	defer failedStore.Close()

	r := gin.Default()
	setupRoutes(r)

	appLog.Info("listening", "addr", cfg.HTTPAddr, "recognizer", cfg.Recognizer, "locator", cfg.LocatorBackend)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("http server: %v", err)
	}
}

// initServices wires the pipeline and its collaborators around rec. Redis is optional:
// without it failed URLs are kept in memory and URL submission is disabled.
func initServices(ctx context.Context, rec recognize.Recognizer) error {
	locator, err := region.New(cfg.LocatorBackend, cfg.Threshold())
	if err != nil {
		return err
	}
	tipLedger = ledger.New(db)
	boardSource = tipLedger
	roundClock = newRoundClock()

	if rs, err := state.NewRedisStore(ctx, cfg.RedisURL); err != nil {
		appLog.Warn("redis unavailable, keeping failed urls in memory", "err", err)
		failedStore = state.NewMemoryStore()
	} else {
		failedStore = rs
		if e, err := jobs.NewEnqueuer(cfg.RedisURL, cfg.TipQueue); err != nil {
			appLog.Warn("url submission disabled", "err", err)
		} else {
			enqueuer = e
		}
	}

	intake = &jobs.Intake{
		Reader: reader.New(locator, rec, logging.New("tip-reader")),
		Ledger: tipLedger,
		Failed: failedStore,
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
	}
	return nil
}
