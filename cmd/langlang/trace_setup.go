package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"langlang/internal/trace"
)

// setupTracing inspects trace-related flags and initializes the tracer.
// It returns a cleanup function and an error if initialization fails.
func setupTracing(cmd *cobra.Command) (func(), error) {
	root := cmd.Root()

	traceOutput, err := root.PersistentFlags().GetString("trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := root.PersistentFlags().GetString("trace-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	modeStr, err := root.PersistentFlags().GetString("trace-mode")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	ringSize, err := root.PersistentFlags().GetInt("trace-ring-size")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}
	heartbeatInterval, err := root.PersistentFlags().GetDuration("trace-heartbeat")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace level: %w", err)
	}
	// --trace без уровня включает phase
	if level == trace.LevelOff && traceOutput != "" && !root.PersistentFlags().Changed("trace-level") {
		level = trace.LevelPhase
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}

	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace mode: %w", err)
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		OutputPath: traceOutput,
		RingSize:   ringSize,
		Heartbeat:  heartbeatInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)

	cleanup := func() {
		// сердцебиение останавливаем до выгрузки ring
		if hb, ok := tracer.(*trace.Heartbeat); ok {
			hb.Stop()
		}
		if ring := trace.RingOf(tracer); ring != nil {
			if err := dumpRing(cmd.ErrOrStderr(), ring, mode, traceOutput); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "trace: dump error: %v\n", err)
			}
		}
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	return cleanup, nil
}

// dumpRing writes the ring kept in memory. In ring mode it goes where
// --trace points. In both mode the stream already wrote there, so the
// tail goes to stderr only when the stream went to a file.
func dumpRing(stderr io.Writer, ring *trace.RingTracer, mode trace.StorageMode, path string) error {
	toStderr := path == "" || path == "-"
	if mode == trace.ModeBoth {
		if toStderr {
			return nil
		}
		toStderr = true
	}
	if n := ring.Dropped(); n > 0 {
		fmt.Fprintf(stderr, "trace: ring dropped %d earlier events\n", n)
	}
	if toStderr {
		return ring.Dump(stderr, trace.FormatText)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to open trace output: %w", err)
	}
	if err := ring.Dump(f, trace.FormatFor(trace.FormatAuto, path)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
