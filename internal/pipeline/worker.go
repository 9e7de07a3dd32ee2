package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/xylographe/SE-WordListValidator/internal/diag"
	"github.com/xylographe/SE-WordListValidator/internal/stats"
	"github.com/xylographe/SE-WordListValidator/internal/wordlist"
)

// Worker validates uploaded dictionaries.
type Worker struct {
	log   *slog.Logger
	stats *stats.Window
}

func NewWorker(log *slog.Logger, st *stats.Window) *Worker {
	return &Worker{log: log, stats: st}
}

// Process validates the job's file and stores the canonical output.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "file", job.Filename)

	if err := ctx.Err(); err != nil {
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "cancelled")
		return
	}

	job.SetStatus(StatusValidating, "validating")
	kind, err := wordlist.KindForFile(job.Filename)
	if err != nil {
		log.Error("unsupported dictionary", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "validating")
		return
	}
	job.SetKind(kind.String())

	var rec diag.Recorder
	start := time.Now()
	doc, err := wordlist.Validate(bytes.NewReader(job.FileData()), kind, job.Filename, diag.Tee(&rec, diag.SlogSink{Log: log}))
	var out []byte
	if err == nil {
		var buf bytes.Buffer
		if _, err = doc.WriteTo(&buf); err == nil {
			out = buf.Bytes()
		}
	}
	elapsed := time.Since(start)
	if w.stats != nil {
		w.stats.Record(elapsed, err != nil)
	}

	if err != nil {
		var se *wordlist.StructuralError
		if errors.As(err, &se) {
			log.Warn("validation failed", "error", err)
		} else {
			log.Error("validation error", "error", err)
		}
		job.SetResult(nil, 0, rec.Messages())
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "validating")
		return
	}

	job.SetResult(out, doc.ItemCount(), rec.Messages())
	job.SetStatus(StatusCompleted, "done")
	log.Info("validation succeeded", "items", doc.ItemCount(), "duration_ms", elapsed.Milliseconds())
}
