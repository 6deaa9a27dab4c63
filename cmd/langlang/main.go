package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"langlang/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "langlang",
	Short:         "LangLang configuration language pipeline",
	Long:          `LangLang parses, checks, lowers and evaluates configuration programs, one stage at a time or all at once`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		stopProf, err := setupProfiling(cmd)
		if err != nil {
			return err
		}
		cleanups = append(cleanups, stopProf)
		stopTrace, err := setupTracing(cmd)
		if err != nil {
			return err
		}
		cleanups = append(cleanups, stopTrace)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		runCleanups()
	},
}

var cleanups []func()

// runCleanups stops tracing before profiling, in reverse setup order.
func runCleanups() {
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	cleanups = nil
}

// errReported means the diagnostics are already printed; only the exit code is left.
var errReported = errors.New("errors reported")

func main() {
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.Version

	// Добавляем команды
	for _, c := range stageCmds() {
		rootCmd.AddCommand(c)
	}
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(versionCmd)

	registerGlobalFlags(rootCmd)

	err := rootCmd.Execute()
	runCleanups()
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// registerGlobalFlags adds the flags every command reads through cmd.Root().
func registerGlobalFlags(root *cobra.Command) {
	pf := root.PersistentFlags()
	pf.String("config", "", "path to langlang.toml (default: nearest one above the working directory)")
	pf.String("type-system", "", "type system (dynamic|inferred|gradual|dependent)")
	pf.String("purity", "", "purity level (pure|sandbox|unrestricted)")
	pf.String("optimization", "", "optimization level (debug|release|aggressive)")
	pf.String("source-language", "", "informational source language tag")
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.String("format", "pretty", "diagnostic and result format (pretty|json)")
	pf.Bool("timings", false, "show timing information")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics to collect")
	pf.String("trace", "", "trace output file (- for stderr, .ndjson for JSON lines)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.Int("trace-ring-size", 4096, "ring buffer capacity in events")
	pf.Duration("trace-heartbeat", 0, "heartbeat interval (0 disables)")
	pf.String("cpu-profile", "", "write a CPU profile to file")
	pf.String("mem-profile", "", "write a heap profile to file on exit")
	pf.String("runtime-trace", "", "write a Go runtime trace to file")
}
