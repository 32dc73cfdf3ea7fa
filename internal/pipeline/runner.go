package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/enrich-cli/internal/config"
	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/internal/sheet"
)

// RunRecorder persists per-row run history. store.Store implements it.
type RunRecorder interface {
	CreateRun(ctx context.Context, rowIndex int, org model.Organization) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, rec *model.ExtractionRecord) error
	FailRun(ctx context.Context, runID string, errMsg string) error
}

// Summary reports the totals of one Runner pass.
type Summary struct {
	Total       int
	Succeeded   int
	Failed      int
	Skipped     int
	Checkpoints int
	Duration    time.Duration
	Interrupted bool
}

// Runner processes selected rows sequentially, writing each success back
// into the table and checkpointing periodically.
type Runner struct {
	processor  Processor
	recorder   RunRecorder
	checkpoint *Checkpointer
	inCols     config.InputColumns
	outCols    config.OutputColumns
	every      int
	limiter    *rate.Limiter
}

// NewRunner creates a Runner. recorder and checkpoint may be nil.
func NewRunner(cfg *config.Config, p Processor, recorder RunRecorder, checkpoint *Checkpointer) *Runner {
	limit := rate.Inf
	if d := time.Duration(cfg.Network.SleepBetweenRowsSec * float64(time.Second)); d > 0 {
		limit = rate.Every(d)
	}
	return &Runner{
		processor:  p,
		recorder:   recorder,
		checkpoint: checkpoint,
		inCols:     cfg.Excel.InputColumns(),
		outCols:    cfg.Excel.OutCols,
		every:      cfg.Checkpoint.Every,
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// Run processes the rows at indices. A failing row is logged and skipped;
// only context cancellation stops the loop early. A final checkpoint is
// always attempted.
func (r *Runner) Run(ctx context.Context, table *sheet.Table, indices []int) Summary {
	start := time.Now()
	table.EnsureColumns(r.outCols.Names()...)

	sum := Summary{Total: len(indices)}
	var done []Outcome

	zap.L().Info("pipeline: starting run",
		zap.Int("rows", len(indices)),
		zap.String("sheet", table.Sheet),
	)

	for n, idx := range indices {
		if err := r.limiter.Wait(ctx); err != nil {
			sum.Interrupted = true
			break
		}
		progress := fmt.Sprintf("%d/%d", n+1, len(indices))
		log := zap.L().With(zap.String("progress", progress), zap.Int("row", idx))

		org := table.Organization(idx, r.inCols)
		if org.Name == "" {
			log.Warn("pipeline: row skipped, no name")
			sum.Skipped++
			continue
		}

		out := r.processRow(ctx, idx, org)
		if !out.OK() {
			if ctx.Err() != nil {
				sum.Interrupted = true
				break
			}
			log.Error("pipeline: hard failure, skipping row",
				zap.String("org", org.Name),
				zap.Error(out.Err),
			)
			sum.Failed++
			continue
		}

		table.SetRow(idx, out.Row)
		done = append(done, out)
		sum.Succeeded++

		log.Info("pipeline: row complete",
			zap.String("org", org.Name),
			zap.String("website", out.Website),
			zap.Int("pages", out.PagesScraped),
			zap.String("classification", out.Record.FundingClassification),
			zap.Duration("duration", out.Duration),
		)

		if r.every > 0 && sum.Succeeded%r.every == 0 {
			zap.L().Info("pipeline: saving checkpoint", zap.Int("rows", sum.Succeeded))
			if r.save(table, done) {
				sum.Checkpoints++
			}
		}
	}

	zap.L().Info("pipeline: saving final outputs")
	if r.save(table, done) {
		sum.Checkpoints++
	}

	sum.Duration = time.Since(start)
	zap.L().Info("pipeline: run complete",
		zap.Int("succeeded", sum.Succeeded),
		zap.Int("failed", sum.Failed),
		zap.Int("skipped", sum.Skipped),
		zap.Bool("interrupted", sum.Interrupted),
		zap.Duration("duration", sum.Duration),
	)
	return sum
}

// processRow runs one row under panic recovery and records its history.
func (r *Runner) processRow(ctx context.Context, idx int, org model.Organization) (out Outcome) {
	var run *model.Run
	if r.recorder != nil {
		var err error
		run, err = r.recorder.CreateRun(ctx, idx, org)
		if err != nil {
			zap.L().Warn("pipeline: failed to create run", zap.Int("row", idx), zap.Error(err))
		}
	}

	defer func() {
		if p := recover(); p != nil {
			out = Outcome{Index: idx, Org: org, Err: eris.Errorf("pipeline: panic on row %d: %v", idx, p)}
		}
		out.Index = idx
		r.record(ctx, run, out)
	}()

	return r.processor.Process(ctx, org)
}

func (r *Runner) record(ctx context.Context, run *model.Run, out Outcome) {
	if r.recorder == nil || run == nil {
		return
	}
	// History is written even when the run context was cancelled.
	ctx = context.WithoutCancel(ctx)
	var err error
	if out.OK() {
		err = r.recorder.CompleteRun(ctx, run.ID, out.Record)
	} else {
		msg := "no record"
		if out.Err != nil {
			msg = out.Err.Error()
		}
		err = r.recorder.FailRun(ctx, run.ID, msg)
	}
	if err != nil {
		zap.L().Warn("pipeline: failed to record run", zap.String("run_id", run.ID), zap.Error(err))
	}
}

func (r *Runner) save(table *sheet.Table, done []Outcome) bool {
	if r.checkpoint == nil {
		return false
	}
	if err := r.checkpoint.Write(table, done); err != nil {
		zap.L().Error("pipeline: checkpoint failed", zap.Error(err))
		return false
	}
	return true
}
