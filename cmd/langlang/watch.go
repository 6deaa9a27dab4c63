package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"langlang/internal/driver"
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Re-run the pipeline every time a source file changes",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().Duration("debounce", 100*time.Millisecond, "quiet period before re-running")
}

func runWatch(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return fmt.Errorf("failed to get debounce flag: %w", err)
	}
	target, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", args[0], err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Close()
	// редакторы часто пишут через rename, поэтому следим за каталогом
	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	opts := s.driverOptions(cmd)
	compileOnce := func() {
		res, err := driver.CompileFile(ctx, args[0], opts)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
			return
		}
		if err := s.report(cmd, res); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
		}
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "watching %s (ctrl+c to stop)\n", args[0])
	compileOnce()
	return watchLoop(ctx, w, target, debounce, func() {
		fmt.Fprintf(cmd.ErrOrStderr(), "--- %s changed, %s\n", args[0], time.Now().Format(time.TimeOnly))
		compileOnce()
	})
}

// watchLoop calls rerun once per burst of events touching target.
func watchLoop(ctx context.Context, w *fsnotify.Watcher, target string, debounce time.Duration, rerun func()) error {
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if relevant(ev, target) {
				timer.Reset(debounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch: %w", err)
		case <-timer.C:
			rerun()
		}
	}
}

// relevant reports whether ev can change the contents of target.
func relevant(ev fsnotify.Event, target string) bool {
	if filepath.Clean(ev.Name) != filepath.Clean(target) {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}
