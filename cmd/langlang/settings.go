package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"langlang/internal/diag"
	"langlang/internal/diagfmt"
	"langlang/internal/driver"
	"langlang/internal/eval"
	"langlang/internal/pipeline"
	"langlang/internal/source"
	"langlang/internal/trace"
)

// settings is the profile merged with the global flags.
type settings struct {
	profile pipeline.Profile
	format  string
	color   bool
	timings bool
	maxDiag int
	baseDir string
}

func loadSettings(cmd *cobra.Command) (*settings, error) {
	pf := cmd.Root().PersistentFlags()

	configPath, err := pf.GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	var profile pipeline.Profile
	if configPath != "" {
		profile, err = pipeline.LoadProfile(configPath)
	} else {
		profile, err = pipeline.LoadNearestProfile(".")
	}
	if err != nil {
		return nil, err
	}

	// флаги перекрывают значения из профиля
	cfg := profile.Config
	if v, _ := pf.GetString("type-system"); v != "" {
		ts, err := pipeline.ParseTypeSystem(v)
		if err != nil {
			return nil, fmt.Errorf("--type-system: %w", err)
		}
		cfg.TypeSystem = ts
	}
	if v, _ := pf.GetString("purity"); v != "" {
		p, err := pipeline.ParsePurityLevel(v)
		if err != nil {
			return nil, fmt.Errorf("--purity: %w", err)
		}
		cfg.Purity = p
	}
	if v, _ := pf.GetString("optimization"); v != "" {
		o, err := pipeline.ParseOptimizationLevel(v)
		if err != nil {
			return nil, fmt.Errorf("--optimization: %w", err)
		}
		cfg.Optimization = o
	}
	if v, _ := pf.GetString("source-language"); v != "" {
		cfg.SourceLanguage = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	profile.Config = cfg

	s := &settings{profile: profile}
	format, err := pf.GetString("format")
	if err != nil {
		return nil, fmt.Errorf("failed to get format flag: %w", err)
	}
	s.format = strings.ToLower(format)
	if s.format != "pretty" && s.format != "json" {
		return nil, fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
	colorFlag, err := pf.GetString("color")
	if err != nil {
		return nil, fmt.Errorf("failed to get color flag: %w", err)
	}
	switch colorFlag {
	case "on":
		s.color = true
	case "off":
		s.color = false
	case "auto":
		s.color = isTerminal(os.Stderr)
	default:
		return nil, fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorFlag)
	}
	if s.timings, err = pf.GetBool("timings"); err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if s.maxDiag, err = pf.GetInt("max-diagnostics"); err != nil {
		return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if wd, err := os.Getwd(); err == nil {
		s.baseDir = wd
	}
	return s, nil
}

// driverOptions builds the options shared by every command.
func (s *settings) driverOptions(cmd *cobra.Command) driver.Options {
	return driver.Options{
		Config:         s.profile.Config,
		Limits:         s.profile.Limits,
		Allow:          s.profile.Sandbox,
		Host:           eval.OSHost{Stdout: cmd.OutOrStdout()},
		Tracer:         trace.FromContext(cmd.Context()),
		Timings:        s.timings,
		MaxDiagnostics: s.maxDiag,
	}
}

// printDiagnostics writes bag to stderr in the selected format.
func (s *settings) printDiagnostics(cmd *cobra.Command, bag *diag.Bag, files *source.FileSet) error {
	if bag == nil || bag.Len() == 0 {
		return nil
	}
	out := cmd.ErrOrStderr()
	if s.format == "json" {
		return diagfmt.JSON(out, bag, diagfmt.JSONOpts{BaseDir: s.baseDir, IncludeNotes: true})
	}
	if files == nil {
		files = source.NewFileSet()
	}
	diagfmt.Pretty(out, bag, files, diagfmt.PrettyOpts{
		Color:     s.color,
		Context:   1,
		BaseDir:   s.baseDir,
		ShowNotes: true,
	})
	return nil
}

// filesFor loads the sources named by diagnostic spans so snippets can be shown.
func filesFor(diags []diag.Diagnostic) *source.FileSet {
	fs := source.NewFileSet()
	for _, d := range diags {
		path := d.Primary.File
		if path == "" {
			continue
		}
		if _, ok := fs.GetByPath(path); ok {
			continue
		}
		// файл мог исчезнуть, тогда печатаем без сниппета
		_, _ = fs.Load(path)
	}
	return fs
}

func bagOf(diags []diag.Diagnostic, max int) *diag.Bag {
	bag := diag.NewBag(max)
	for _, d := range diags {
		bag.Add(d)
	}
	bag.Sort()
	return bag
}
