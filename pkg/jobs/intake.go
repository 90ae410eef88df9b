// Package jobs moves submitted tip images through the reader and into the ledger.
package jobs

import (
	"context"

	"stonktip/models"
	"stonktip/pkg/logging"
	"stonktip/pkg/tip"
)

// TipReader is satisfied by *reader.Reader.
type TipReader interface {
	ProcessBytes(ctx context.Context, data []byte) (bool, tip.Tip)
}

// TipRecorder is satisfied by *ledger.Ledger.
type TipRecorder interface {
	Record(ctx context.Context, t tip.Tip, channel string) (*models.TipEntry, error)
}

// FailedStore is the part of state.Store intake needs.
type FailedStore interface {
	AppendFailed(ctx context.Context, channel string, urls ...string) error
}

// FailureNotifier is satisfied by *notify.Notifier.
type FailureNotifier interface {
	NotifyFailed(channel string, urls []string) error
}

// Submission is one image to read. SourceURL identifies it in the ledger and in failure lists.
type Submission struct {
	Data      []byte
	SourceURL string
	Channel   string
}

// Result reports what happened to a submission.
type Result struct {
	Success bool             `json:"success"`
	Tip     tip.Tip          `json:"tip"`
	Entry   *models.TipEntry `json:"-"`
}

// Intake reads a submission, records a tip on success and files the URL as failed otherwise.
type Intake struct {
	Reader   TipReader
	Ledger   TipRecorder
	Failed   FailedStore
	Notifier FailureNotifier
	Log      *logging.Logger
}

// Submit never returns an error for unreadable images; those are reported through Result.
// Storage errors are returned so callers can surface them.
func (in *Intake) Submit(ctx context.Context, s Submission) (Result, error) {
	ok, t := in.Reader.ProcessBytes(ctx, s.Data)
	if !ok {
		return Result{Success: false, Tip: t}, in.fail(ctx, s.Channel, s.SourceURL)
	}
	t.SourceURL = s.SourceURL
	res := Result{Success: true, Tip: t}
	if in.Ledger != nil {
		entry, err := in.Ledger.Record(ctx, t, s.Channel)
		if err != nil {
			return res, err
		}
		res.Entry = entry
	}
	in.logger().Info("tip recorded", "tip", t.String(), "channel", s.Channel, "url", s.SourceURL)
	return res, nil
}

// Fail files url as unreadable without running the pipeline, e.g. after a download error.
func (in *Intake) Fail(ctx context.Context, channel, url string) error {
	return in.fail(ctx, channel, url)
}

func (in *Intake) fail(ctx context.Context, channel, url string) error {
	in.logger().Warn("cannot read image", "channel", channel, "url", url)
	if in.Failed != nil && url != "" {
		if err := in.Failed.AppendFailed(ctx, channel, url); err != nil {
			return err
		}
	}
	if in.Notifier != nil {
		if err := in.Notifier.NotifyFailed(channel, []string{url}); err != nil {
			in.logger().Warn("failure digest not sent", "err", err)
		}
	}
	return nil
}

func (in *Intake) logger() *logging.Logger {
	if in.Log == nil {
		in.Log = logging.New("intake")
	}
	return in.Log
}
