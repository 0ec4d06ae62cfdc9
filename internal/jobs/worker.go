package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"placement/internal/message"

	"go.uber.org/zap"
)

// Worker polls the jobs table and applies the processing watchdog: a message
// still in PROCESSING when its deadline job comes due is failed through the
// message service, so the transition lands in the action history like any
// other.
type Worker struct {
	ID       string
	Repo     *Repo
	Messages *message.Service
	Log      *zap.Logger
}

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, err := w.Repo.Claim(w.ID)
			if err != nil {
				w.Log.Error("job claim failed", zap.Error(err))
				continue
			}
			if job == nil {
				continue
			}
			w.handle(ctx, job)
		}
	}
}

func (w *Worker) handle(ctx context.Context, job *Job) {
	switch job.Type {
	case TypeMessageTimeout:
		w.handleTimeout(ctx, job)
	default:
		_ = w.Repo.MarkFailed(job.ID, "unknown job type")
	}
}

func (w *Worker) handleTimeout(ctx context.Context, job *Job) {
	var p struct {
		MessageID uint64 `json:"message_id"`
	}
	if err := json.Unmarshal(job.Payload, &p); err != nil {
		_ = w.Repo.MarkFailed(job.ID, "bad payload")
		return
	}

	comment := "processing deadline exceeded"
	_, err := w.Messages.ChangeState(ctx, p.MessageID, message.StateFailed, &comment)
	switch {
	case err == nil:
		w.Log.Warn("message failed by watchdog", zap.Uint64("message_id", p.MessageID))
		_ = w.Repo.MarkDone(job.ID)
	case errors.Is(err, message.ErrWrongState), errors.Is(err, message.ErrNotFound):
		// already DONE/FAILED or sender cascade removed it
		_ = w.Repo.MarkDone(job.ID)
	default:
		w.retry(job, err.Error())
	}
}

func (w *Worker) retry(job *Job, errMsg string) {
	attempts := job.Attempts + 1
	if attempts >= job.MaxAttempts {
		_ = w.Repo.MarkFailed(job.ID, errMsg)
		return
	}
	_ = w.Repo.RetryLater(job.ID, attempts, time.Now().Add(retryBackoff(attempts)), errMsg)
}

// retryBackoff doubles per attempt, capped at ten minutes.
func retryBackoff(attempts int) time.Duration {
	sec := math.Min(math.Pow(2, float64(attempts)), 600)
	return time.Duration(sec) * time.Second
}
