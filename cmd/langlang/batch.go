package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"langlang/internal/driver"
)

// SourceExt is the extension collected from directory arguments.
const SourceExt = ".ll"

var batchCmd = newBatchCmd()

func newBatchCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "batch <file|directory>...",
		Short: "Run the pipeline over many units in parallel",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runBatch,
	}
	c.Flags().Int("jobs", 0, "max parallel units (0=auto)")
	c.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	c.Flags().Bool("quiet", false, "print only failing units")
	return c
}

func runBatch(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}
	quiet, err := cmd.Flags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	files, err := collectSources(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no %s files found", SourceExt)
	}
	inputs := make([]driver.Input, len(files))
	for i, f := range files {
		inputs[i] = driver.Input{Name: f}
	}

	opts := driver.BatchOptions{Options: s.driverOptions(cmd), Jobs: jobs}
	// print эффекты не должны рвать TUI
	useTUI := s.format == "pretty" && shouldUseTUI(mode)
	var results []*driver.Result
	if useTUI {
		opts.Host = quietHost()
		results, err = runBatchWithUI(cmd.Context(), "batch", inputs, opts)
	} else {
		results, err = driver.Batch(cmd.Context(), inputs, opts)
	}
	if err != nil {
		return err
	}

	failed := 0
	for _, res := range results {
		if !res.OK() {
			failed++
		}
	}
	if s.format == "json" {
		out := make([]resultJSON, len(results))
		for i, res := range results {
			out[i] = s.toJSON(res)
		}
		if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
			return err
		}
	} else {
		for _, res := range results {
			if quiet && res.OK() {
				continue
			}
			if res.OK() && res.HasValue {
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", res.File, res.Value)
				continue
			}
			if err := s.report(cmd, res); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%d units, %d failed\n", len(results), failed)
	}
	if failed > 0 {
		return errReported
	}
	return nil
}

// collectSources expands directories into their *.ll files; explicit files
// are kept as given. The result is sorted and free of duplicates.
func collectSources(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		st, err := os.Stat(arg)
		if err != nil {
			// несуществующий файл попадёт в батч и станет IO-диагностикой
			if os.IsNotExist(err) && !strings.HasSuffix(arg, string(filepath.Separator)) {
				files = append(files, arg)
				continue
			}
			return nil, fmt.Errorf("failed to stat path: %w", err)
		}
		if !st.IsDir() {
			files = append(files, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(path) == SourceExt {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", arg, err)
		}
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}
