package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"stonktip/pkg/logging"
)

// Fetcher is satisfied by *Downloader.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Handler processes TypeProcessTip tasks.
type Handler struct {
	Intake  *Intake
	Fetcher Fetcher
	Log     *logging.Logger
}

// HandleProcessTip downloads and reads the image. Unreadable or undownloadable images are
// filed as failed and the task completes; only malformed payloads and storage errors fail it.
func (h *Handler) HandleProcessTip(ctx context.Context, task *asynq.Task) error {
	var p ProcessTipPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	h.Log.Info("processing tip", "job", p.JobID, "url", p.URL, "channel", p.Channel)
	data, err := h.Fetcher.Fetch(ctx, p.URL)
	if err != nil {
		h.Log.Error("download failed", "job", p.JobID, "err", err)
		return h.Intake.Fail(ctx, p.Channel, p.URL)
	}
	res, err := h.Intake.Submit(ctx, Submission{Data: data, SourceURL: p.URL, Channel: p.Channel})
	if err != nil {
		return fmt.Errorf("job %s: %w", p.JobID, err)
	}
	h.Log.Info("job done", "job", p.JobID, "success", res.Success)
	return nil
}

// ServerConfig configures the worker server.
type ServerConfig struct {
	RedisURL    string
	Queue       string
	Concurrency int
}

// NewServer builds an asynq server and a mux routing TypeProcessTip to h.
func NewServer(cfg ServerConfig, h *Handler) (*asynq.Server, *asynq.ServeMux, error) {
	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	queues := map[string]int{"default": 1}
	if cfg.Queue != "" {
		queues[cfg.Queue] = 10
	}
	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues:      queues,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			h.Log.Error("task processing error", "type", task.Type(), "payload", string(task.Payload()), "err", err)
		}),
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeProcessTip, h.HandleProcessTip)
	return server, mux, nil
}
