package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"langlang/internal/driver"
	"langlang/internal/eval"
	"langlang/internal/source"
)

var stageDescriptions = map[driver.Stage]string{
	driver.StageParse: "Parse source text into an AST message",
	driver.StageCheck: "Type-check an AST message into a TypedAST message",
	driver.StageLower: "Lower a TypedAST message into an F-omega message",
	driver.StageEval:  "Evaluate an F-omega message into a Value message",
}

// stageCmds builds one command per pipeline stage. Each reads a file argument
// or stdin and writes exactly one frame, so they compose with pipes:
//
//	langlang parse cfg.ll | langlang check | langlang lower | langlang eval | langlang dump
func stageCmds() []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(driver.Stages))
	for _, st := range driver.Stages {
		c := &cobra.Command{
			Use:   string(st) + " [file]",
			Short: stageDescriptions[st],
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runStageCmd(cmd, st, args)
			},
		}
		c.Flags().StringP("output", "o", "", "write the message to a file instead of stdout")
		c.Flags().Bool("force", false, "write binary output even when stdout is a terminal")
		cmds = append(cmds, c)
	}
	return cmds
}

func runStageCmd(cmd *cobra.Command, st driver.Stage, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	outPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return fmt.Errorf("failed to get force flag: %w", err)
	}

	name := "<stdin>"
	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		name, in = args[0], f
	}

	var out io.Writer = cmd.OutOrStdout()
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		out = f
	} else if !force && out == io.Writer(os.Stdout) && isTerminal(os.Stdout) {
		return fmt.Errorf("refusing to write a binary message to a terminal (use -o, a pipe, or --force)")
	}

	// parse держит исходник, чтобы показать сниппеты в диагностиках
	var src []byte
	if st == driver.StageParse {
		if src, err = io.ReadAll(in); err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		in = bytes.NewReader(src)
	}

	opts := s.driverOptions(cmd)
	// stdout занят бинарным кадром
	opts.Host = eval.OSHost{Stdout: cmd.ErrOrStderr()}
	err = driver.RunStage(cmd.Context(), st, name, in, out, opts)
	var se *driver.StageError
	if errors.As(err, &se) {
		files := filesFor(se.Diagnostics)
		if src != nil {
			files = source.NewFileSet()
			files.AddVirtual(name, src)
		}
		if perr := s.printDiagnostics(cmd, bagOf(se.Diagnostics, s.maxDiag), files); perr != nil {
			return perr
		}
		return errReported
	}
	return err
}
