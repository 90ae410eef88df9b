package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// TypeProcessTip downloads an image URL and runs it through intake.
const TypeProcessTip = "tip:process"

// ProcessTipPayload is the task body.
type ProcessTipPayload struct {
	JobID   string `json:"job_id"`
	URL     string `json:"url"`
	Channel string `json:"channel"`
}

// NewProcessTipTask builds a task with a fresh job id. Failures are results, so the task is never retried.
func NewProcessTipTask(url, channel, queue string) (*asynq.Task, ProcessTipPayload, error) {
	p := ProcessTipPayload{JobID: uuid.NewString(), URL: url, Channel: channel}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, p, fmt.Errorf("marshal payload: %w", err)
	}
	opts := []asynq.Option{asynq.TaskID(p.JobID), asynq.MaxRetry(0)}
	if queue != "" {
		opts = append(opts, asynq.Queue(queue))
	}
	return asynq.NewTask(TypeProcessTip, b, opts...), p, nil
}

// Enqueuer submits process-tip tasks.
type Enqueuer struct {
	client *asynq.Client
	queue  string
}

func NewEnqueuer(redisURL, queue string) (*Enqueuer, error) {
	redisOpt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	return &Enqueuer{client: asynq.NewClient(redisOpt), queue: queue}, nil
}

// Enqueue schedules url for processing and returns the job id.
func (e *Enqueuer) Enqueue(ctx context.Context, url, channel string) (string, error) {
	task, p, err := NewProcessTipTask(url, channel, e.queue)
	if err != nil {
		return "", err
	}
	if _, err := e.client.EnqueueContext(ctx, task); err != nil {
		return "", fmt.Errorf("enqueue %s: %w", url, err)
	}
	return p.JobID, nil
}

func (e *Enqueuer) Close() error {
	return e.client.Close()
}
