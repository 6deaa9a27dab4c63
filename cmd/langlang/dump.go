package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"langlang/internal/ast"
	"langlang/internal/fomega"
	"langlang/internal/message"
	"langlang/internal/typedast"
	"langlang/internal/wire"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [file]",
	Short: "Print every message in a stream in readable form",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDump,
}

func runDump(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	out := cmd.OutOrStdout()
	reportedDiag := false
	for n := 0; ; n++ {
		m, err := message.Read(in)
		if errors.Is(err, io.EOF) {
			if n == 0 {
				return fmt.Errorf("no messages in input")
			}
			break
		}
		if err != nil {
			return fmt.Errorf("message %d: %w", n, err)
		}
		if n > 0 {
			fmt.Fprintln(out)
		}
		if err := dumpMessage(cmd, s, out, m); err != nil {
			return err
		}
		reportedDiag = reportedDiag || m.Kind == wire.KindDiagnostic
	}
	if reportedDiag {
		return errReported
	}
	return nil
}

func dumpMessage(cmd *cobra.Command, s *settings, out io.Writer, m *message.Message) error {
	switch m.Kind {
	case wire.KindAST:
		fmt.Fprintf(out, "ast %s (%d nodes)\n", m.AST.File, ast.Count(m.AST.Root))
		fmt.Fprintln(out, ast.Print(m.AST.Root))
	case wire.KindTypedAST:
		fmt.Fprint(out, typedast.Dump(m.TypedAST))
	case wire.KindFOmega:
		fmt.Fprint(out, fomega.Dump(m.FOmega))
	case wire.KindValue:
		fmt.Fprintf(out, "value %s\n", m.Value)
	case wire.KindDiagnostic:
		fmt.Fprintf(out, "diagnostics (%d)\n", len(m.Diagnostics))
		return s.printDiagnostics(cmd, bagOf(m.Diagnostics, s.maxDiag), filesFor(m.Diagnostics))
	default:
		return fmt.Errorf("unexpected message kind %s", m.Kind)
	}
	return nil
}
