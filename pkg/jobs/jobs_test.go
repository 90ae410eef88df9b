package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hibiken/asynq"

	"stonktip/models"
	"stonktip/pkg/logging"
	"stonktip/pkg/state"
	"stonktip/pkg/tip"
)

type fakeReader struct {
	ok  bool
	tip tip.Tip
}

func (f fakeReader) ProcessBytes(ctx context.Context, data []byte) (bool, tip.Tip) {
	if !f.ok {
		return false, tip.Failed()
	}
	return true, f.tip
}

type fakeLedger struct {
	recorded []tip.Tip
	err      error
}

func (f *fakeLedger) Record(ctx context.Context, t tip.Tip, channel string) (*models.TipEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.recorded = append(f.recorded, t)
	return &models.TipEntry{HeroTown: t.HeroTown.String(), TargetTurn: t.TargetTurn, Channel: channel}, nil
}

type fakeNotifier struct{ calls int }

func (f *fakeNotifier) NotifyFailed(channel string, urls []string) error {
	f.calls++
	return nil
}

type fakeFetcher struct {
	data []byte
	err  error
}

func (f fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f.data, f.err
}

func quietLog() *logging.Logger { return logging.NewWithWriter("jobs-test", io.Discard) }

func TestIntakeSuccessAttachesURL(t *testing.T) {
	l := &fakeLedger{}
	st := state.NewMemoryStore()
	in := &Intake{Reader: fakeReader{ok: true, tip: tip.New(tip.Celine, 1, 3, 5)}, Ledger: l, Failed: st, Log: quietLog()}
	res, err := in.Submit(context.Background(), Submission{SourceURL: "https://img/1.png", Channel: "tips"})
	if err != nil || !res.Success {
		t.Fatalf("unexpected result %+v err=%v", res, err)
	}
	if len(l.recorded) != 1 || l.recorded[0].SourceURL != "https://img/1.png" {
		t.Fatalf("ledger not updated with url: %+v", l.recorded)
	}
	if got, _ := st.DrainFailed(context.Background(), "tips"); len(got) != 0 {
		t.Fatalf("success must not be filed as failed: %v", got)
	}
}

func TestIntakeFailureFilesURL(t *testing.T) {
	l := &fakeLedger{}
	st := state.NewMemoryStore()
	n := &fakeNotifier{}
	in := &Intake{Reader: fakeReader{ok: false}, Ledger: l, Failed: st, Notifier: n, Log: quietLog()}
	res, err := in.Submit(context.Background(), Submission{SourceURL: "https://img/bad.png", Channel: "tips"})
	if err != nil || res.Success || res.Tip != tip.Failed() {
		t.Fatalf("unexpected result %+v err=%v", res, err)
	}
	if len(l.recorded) != 0 {
		t.Fatalf("failed tip must not reach the ledger")
	}
	got, _ := st.DrainFailed(context.Background(), "tips")
	if len(got) != 1 || got[0] != "https://img/bad.png" || n.calls != 1 {
		t.Fatalf("failure not filed: %v notifier=%d", got, n.calls)
	}
}

func TestIntakeLedgerErrorSurfaces(t *testing.T) {
	in := &Intake{Reader: fakeReader{ok: true, tip: tip.New(tip.Lenny, 1, 2, 0)}, Ledger: &fakeLedger{err: errors.New("db down")}, Log: quietLog()}
	if _, err := in.Submit(context.Background(), Submission{}); err == nil {
		t.Fatalf("expected ledger error")
	}
}

func TestNewProcessTipTask(t *testing.T) {
	task, p, err := NewProcessTipTask("https://img/1.png", "tips", "tips-queue")
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if task.Type() != TypeProcessTip || p.JobID == "" {
		t.Fatalf("unexpected task %s id=%q", task.Type(), p.JobID)
	}
	var back ProcessTipPayload
	if err := json.Unmarshal(task.Payload(), &back); err != nil || back != p {
		t.Fatalf("payload mismatch %+v vs %+v err=%v", back, p, err)
	}
	_, p2, _ := NewProcessTipTask("https://img/1.png", "tips", "")
	if p2.JobID == p.JobID {
		t.Fatalf("job ids must be unique")
	}
}

func TestHandleProcessTip(t *testing.T) {
	st := state.NewMemoryStore()
	l := &fakeLedger{}
	h := &Handler{
		Intake:  &Intake{Reader: fakeReader{ok: true, tip: tip.New(tip.Fergus, 2, 4, -3)}, Ledger: l, Failed: st, Log: quietLog()},
		Fetcher: fakeFetcher{data: []byte("png")},
		Log:     quietLog(),
	}
	task, _, _ := NewProcessTipTask("https://img/ok.png", "tips", "")
	if err := h.HandleProcessTip(context.Background(), task); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(l.recorded) != 1 || l.recorded[0].SourceURL != "https://img/ok.png" {
		t.Fatalf("tip not recorded: %+v", l.recorded)
	}

	h.Fetcher = fakeFetcher{err: errors.New("404")}
	task, _, _ = NewProcessTipTask("https://img/gone.png", "tips", "")
	if err := h.HandleProcessTip(context.Background(), task); err != nil {
		t.Fatalf("download failure must complete the task: %v", err)
	}
	if got, _ := st.DrainFailed(context.Background(), "tips"); len(got) != 1 || got[0] != "https://img/gone.png" {
		t.Fatalf("download failure not filed: %v", got)
	}

	bad := asynq.NewTask(TypeProcessTip, []byte("{"))
	if err := h.HandleProcessTip(context.Background(), bad); !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("malformed payload should skip retry, got %v", err)
	}
}

func TestDownloaderRequiresImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/img.png" {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte("\x89PNG"))
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>"))
	}))
	defer srv.Close()

	d := NewDownloader()
	b, err := d.Fetch(context.Background(), srv.URL+"/img.png")
	if err != nil || string(b) != "\x89PNG" {
		t.Fatalf("fetch image: %q err=%v", b, err)
	}
	if _, err := d.Fetch(context.Background(), srv.URL+"/page"); err == nil {
		t.Fatalf("non-image content must be rejected")
	}
}
