package application

import (
	"context"
	"errors"
	"log"
	"time"

	hierarchy "device-hierarchy/internal/hierarchy/domain"
	hiermetrics "device-hierarchy/internal/hierarchy/metrics"
	hiernotify "device-hierarchy/internal/hierarchy/notify"
)

const (
	runStatusSuccess = "succeeded"
	runStatusFailed  = "failed"
)

// RecordSource returns a column-oriented snapshot of one named table.
type RecordSource interface {
	FetchTable(ctx context.Context, table string) (hierarchy.Columnar, error)
}

// RecordSink applies per-row field updates; one call is atomic.
type RecordSink interface {
	ApplyUpdates(ctx context.Context, table string, updates []hierarchy.RowUpdate) error
}

// ProgressFunc receives (percent, done, total) ticks, in rows. The runner
// ticks strictly before each sink batch.
type ProgressFunc func(percent, done, total int)

// RunResult summarizes one completed run.
type RunResult struct {
	Table       string                 `json:"table"`
	Devices     int                    `json:"devices"`
	Plan        []hierarchy.RowUpdate  `json:"-"`
	RowsUpdated int                    `json:"rows_updated"`
	Batches     int                    `json:"batches"`
	Diagnostics *hierarchy.Diagnostics `json:"diagnostics,omitempty"`
	Duration    time.Duration          `json:"-"`
}

// Runner drives one hierarchy recalculation: fetch, compute, batched sink
// delivery. A Runner holds no per-run state and may be reused.
type Runner struct {
	source   RecordSource
	sink     RecordSink
	cfg      Config
	notifier hiernotify.Notifier
	metrics  *hiermetrics.Metrics
	logger   *log.Logger
	sleep    func(context.Context, time.Duration) error
}

// NewRunner constructs a Runner.
func NewRunner(source RecordSource, sink RecordSink, cfg Config, notifier hiernotify.Notifier, metrics *hiermetrics.Metrics, logger *log.Logger) *Runner {
	return &Runner{
		source:   source,
		sink:     sink,
		cfg:      cfg,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
		sleep:    sleepCtx,
	}
}

// Run executes one recalculation against the configured table.
//
// Delivery is sequential: batch N+1 is dispatched only after batch N
// succeeded. Cancellation is honoured between batches; batches already
// accepted remain applied. A failing or timed-out batch aborts the rest
// and surfaces as *hierarchy.SinkError carrying the batch index.
func (r *Runner) Run(ctx context.Context, progress ProgressFunc) (*RunResult, error) {
	if r == nil || r.source == nil {
		return nil, errors.New("hierarchy runner: nil source")
	}
	if err := r.cfg.Validate(); err != nil {
		return nil, err
	}

	started := time.Now().UTC()
	r.logf("hierarchy_run_start", r.cfg.TableName, 0, 0, "")

	input, err := r.source.FetchTable(ctx, r.cfg.TableName)
	if err != nil {
		return nil, r.fail(started, nil, err)
	}
	computed, err := Compute(input, r.cfg)
	if err != nil {
		return nil, r.fail(started, nil, err)
	}

	result := &RunResult{
		Table:       r.cfg.TableName,
		Devices:     len(computed.Snapshot.Devices),
		Plan:        computed.Plan,
		Diagnostics: computed.Diagnostics,
	}

	if err := r.deliver(ctx, computed.Plan, progress, result); err != nil {
		return result, r.fail(started, result, err)
	}

	result.Duration = time.Since(started)
	if r.metrics != nil {
		r.metrics.RunsTotal.WithLabelValues(runStatusSuccess).Inc()
		r.metrics.RunDuration.Observe(result.Duration.Seconds())
		r.metrics.PowerPasses.Set(float64(computed.Diagnostics.PowerPasses))
		r.observeDiagnostics(computed.Diagnostics)
	}
	r.logf("hierarchy_run_success", r.cfg.TableName, result.RowsUpdated, result.Batches, "")
	r.notify(ctx, result, nil)
	return result, nil
}

// deliver slices the plan into batches and pushes them to the sink with
// progress ticks and the configured inter-batch delay.
func (r *Runner) deliver(ctx context.Context, plan []hierarchy.RowUpdate, progress ProgressFunc, result *RunResult) error {
	total := len(plan)
	if total == 0 {
		if progress != nil {
			progress(100, 0, 0)
		}
		return nil
	}
	if r.sink == nil {
		return errors.New("hierarchy runner: nil sink")
	}

	batchSize := r.cfg.BatchSize
	done := 0
	for batch := 0; done < total; batch++ {
		if err := ctx.Err(); err != nil {
			return &hierarchy.SinkError{Batch: batch, Err: err}
		}
		end := done + batchSize
		if end > total {
			end = total
		}
		if progress != nil {
			progress(done*100/total, done, total)
		}

		if err := r.applyBatch(ctx, plan[done:end]); err != nil {
			return &hierarchy.SinkError{Batch: batch, Err: err}
		}
		batchRows := end - done
		done = end
		result.RowsUpdated = done
		result.Batches = batch + 1
		if r.metrics != nil {
			r.metrics.BatchesTotal.Inc()
			r.metrics.RowsUpdated.Add(float64(batchRows))
		}

		if done < total {
			if err := r.sleep(ctx, r.cfg.BatchDelay()); err != nil {
				return &hierarchy.SinkError{Batch: batch + 1, Err: err}
			}
		}
	}
	if progress != nil {
		progress(100, total, total)
	}
	return nil
}

func (r *Runner) applyBatch(ctx context.Context, batch []hierarchy.RowUpdate) error {
	if timeout := r.cfg.SinkTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return r.sink.ApplyUpdates(ctx, r.cfg.TableName, batch)
}

func (r *Runner) fail(started time.Time, result *RunResult, err error) error {
	if r.metrics != nil {
		r.metrics.RunsTotal.WithLabelValues(runStatusFailed).Inc()
		r.metrics.RunDuration.Observe(time.Since(started).Seconds())
	}
	rows, batches := 0, 0
	if result != nil {
		rows, batches = result.RowsUpdated, result.Batches
	}
	r.logf("hierarchy_run_failed", r.cfg.TableName, rows, batches, err.Error())
	r.notify(context.Background(), result, err)
	return err
}

func (r *Runner) notify(ctx context.Context, result *RunResult, runErr error) {
	if r.notifier == nil {
		return
	}
	msg := hiernotify.RunMessage{Table: r.cfg.TableName, Status: runStatusSuccess}
	if result != nil {
		msg.Devices = result.Devices
		msg.RowsUpdated = result.RowsUpdated
		msg.Batches = result.Batches
		if result.Diagnostics != nil && !result.Diagnostics.IsClean() {
			msg.Diagnostics = map[string]any{
				"duplicate_names":   len(result.Diagnostics.DuplicateNames),
				"dangling_parents":  len(result.Diagnostics.DanglingParents),
				"unknown_heads":     len(result.Diagnostics.UnknownHeads),
				"cycles":            len(result.Diagnostics.Cycles),
				"invalid_powers":    len(result.Diagnostics.InvalidPowers),
				"power_unconverged": result.Diagnostics.PowerUnconverged,
			}
		}
	}
	if runErr != nil {
		msg.Status = runStatusFailed
		msg.Error = runErr.Error()
	}
	if err := r.notifier.Notify(ctx, msg); err != nil {
		r.logf("hierarchy_notify_failed", r.cfg.TableName, 0, 0, err.Error())
	}
}

func (r *Runner) observeDiagnostics(diags *hierarchy.Diagnostics) {
	if diags == nil || r.metrics == nil {
		return
	}
	add := func(kind string, count int) {
		if count > 0 {
			r.metrics.Diagnostics.WithLabelValues(kind).Add(float64(count))
		}
	}
	add("duplicate_name", len(diags.DuplicateNames))
	add("dangling_parent", len(diags.DanglingParents))
	add("unknown_head", len(diags.UnknownHeads))
	add("cyclic_ancestry", len(diags.Cycles))
	add("invalid_power", len(diags.InvalidPowers))
	if diags.PowerUnconverged {
		add("power_unconverged", 1)
	}
}

func (r *Runner) logf(event, table string, rows, batches int, errMsg string) {
	if r.logger == nil {
		return
	}
	r.logger.Printf("event=%s table=%s rows=%d batches=%d error=%s",
		event, table, rows, batches, errMsg)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
