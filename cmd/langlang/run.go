package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"langlang/internal/diagfmt"
	"langlang/internal/driver"
	"langlang/internal/observ"
	"langlang/internal/typedast"
)

var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "run <file>",
		Short: "Run the whole pipeline over a source file and print its value",
		Args:  cobra.ExactArgs(1),
		RunE:  runRun,
	}
	c.Flags().Bool("round-trip", false, "send every stage boundary through its message encoding")
	c.Flags().String("stop-after", "", "stop after the given stage (parse|check|lower)")
	return c
}

func runRun(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	opts := s.driverOptions(cmd)
	if opts.RoundTrip, err = cmd.Flags().GetBool("round-trip"); err != nil {
		return fmt.Errorf("failed to get round-trip flag: %w", err)
	}
	stopAfter, err := cmd.Flags().GetString("stop-after")
	if err != nil {
		return fmt.Errorf("failed to get stop-after flag: %w", err)
	}
	if stopAfter != "" {
		st, ok := driver.ParseStage(stopAfter)
		if !ok {
			return fmt.Errorf("unknown stage %q", stopAfter)
		}
		opts.StopAfter = st
	}

	res, err := driver.CompileFile(cmd.Context(), args[0], opts)
	if err != nil {
		return err
	}
	if err := s.report(cmd, res); err != nil {
		return err
	}
	if !res.OK() {
		return errReported
	}
	return nil
}

// resultJSON is the --format json shape of one compiled unit.
type resultJSON struct {
	File        string                     `json:"file"`
	OK          bool                       `json:"ok"`
	Config      string                     `json:"config"`
	FailedAt    string                     `json:"failed_at,omitempty"`
	Type        string                     `json:"type,omitempty"`
	Value       string                     `json:"value,omitempty"`
	Steps       int                        `json:"steps,omitempty"`
	Rewrites    int                        `json:"rewrites,omitempty"`
	Diagnostics *diagfmt.DiagnosticsOutput `json:"diagnostics,omitempty"`
	Timings     *observ.Report             `json:"timings,omitempty"`
}

func (s *settings) toJSON(res *driver.Result) resultJSON {
	out := resultJSON{
		File:     res.File,
		OK:       res.OK(),
		Config:   s.profile.Config.String(),
		FailedAt: string(res.Failed),
		Steps:    res.Steps,
		Rewrites: res.Opt.Stats.Total(),
		Timings:  res.Timing,
	}
	if res.Typed != nil {
		out.Type = typeOf(res)
	}
	if res.HasValue {
		out.Value = res.Value.String()
	}
	if res.Bag.Len() > 0 {
		d := diagfmt.BuildDiagnosticsOutput(res.Bag, diagfmt.JSONOpts{BaseDir: s.baseDir, IncludeNotes: true})
		out.Diagnostics = &d
	}
	return out
}

// report prints one result: diagnostics to stderr, the value to stdout.
func (s *settings) report(cmd *cobra.Command, res *driver.Result) error {
	if s.format == "json" {
		return writeJSON(cmd.OutOrStdout(), s.toJSON(res))
	}
	if err := s.printDiagnostics(cmd, res.Bag, res.Files); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	switch {
	case res.HasValue:
		fmt.Fprintln(out, res.Value.String())
	case res.OK() && res.Typed != nil:
		fmt.Fprintf(out, "%s : %s\n", res.File, typeOf(res))
	case res.OK():
		fmt.Fprintf(out, "%s: ok\n", res.File)
	}
	if s.timings && res.Timing != nil {
		fmt.Fprint(cmd.ErrOrStderr(), res.Timing.Summary())
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func typeOf(res *driver.Result) string {
	return typedast.SchemeString(res.Typed.Scheme)
}
