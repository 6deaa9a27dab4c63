package driver

import (
	"context"
	"os"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"langlang/internal/diag"
	"langlang/internal/source"
	"langlang/internal/trace"
)

// Input is one unit of a batch.
type Input struct {
	Name string
	// Source is used when set; otherwise Name is read from disk.
	Source []byte
}

// BatchOptions configures Batch.
type BatchOptions struct {
	Options
	// Jobs bounds the number of units compiled at once; <= 0 means GOMAXPROCS.
	Jobs int
}

// Batch compiles every input in parallel. Results are in input order; a
// unit that fails is reported in its Result and does not stop the others.
// The error is non-nil only for cancellation.
func Batch(ctx context.Context, inputs []Input, opts BatchOptions) ([]*Result, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	results := make([]*Result, len(inputs))
	if len(inputs) == 0 {
		return results, nil
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	for _, in := range inputs {
		emit(opts.Progress, Event{Unit: in.Name, Status: StatusQueued})
	}
	tr := opts.Tracer
	if tr == nil {
		tr = trace.Nop
	}
	// unit spans of every worker hang off one batch span
	batchSpan, ctx := trace.StartSpan(trace.WithTracer(ctx, tr), trace.ScopeDriver, "batch")
	batchSpan.WithExtra("units", strconv.Itoa(len(inputs))).WithExtra("jobs", strconv.Itoa(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(inputs)))
	for i, in := range inputs {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			start := time.Now()
			res, err := compileInput(gctx, in, opts.Options)
			if err != nil {
				emit(opts.Progress, Event{Unit: in.Name, Status: StatusError, Err: err, Elapsed: time.Since(start)})
				return err
			}
			// индекс i уникален для горутины, мьютекс не нужен
			results[i] = res
			ev := Event{Unit: in.Name, Stage: StageEval, Status: StatusDone, Elapsed: time.Since(start)}
			if !res.OK() {
				ev.Status, ev.Stage, ev.Err = StatusError, res.Failed, res.Err
			}
			emit(opts.Progress, ev)
			return nil
		})
	}
	err := g.Wait()
	if err != nil {
		batchSpan.End("cancelled")
	} else {
		batchSpan.End("ok")
	}
	emit(opts.Progress, Event{Status: StatusDone})
	return results, err
}

func compileInput(ctx context.Context, in Input, opts Options) (*Result, error) {
	src := in.Source
	if src == nil {
		data, err := os.ReadFile(in.Name)
		if err != nil {
			return failedRead(in.Name, opts, err), nil
		}
		src = data
	}
	return Compile(ctx, in.Name, src, opts)
}

// failedRead reports an unreadable input as an IO diagnostic.
func failedRead(name string, opts Options, err error) *Result {
	res := &Result{File: name, Files: source.NewFileSet(), Bag: diag.NewBag(opts.MaxDiagnostics), Err: err, Failed: StageParse}
	res.Bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{}, "failed to load file: "+err.Error()).WithStage(diag.StageDriver))
	return res
}
