// Package pipeline holds the per-unit policy record threaded through every stage.
package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

type TypeSystem uint8

const (
	Dynamic TypeSystem = iota
	Inferred
	Gradual
	Dependent
)

var typeSystemNames = [...]string{
	Dynamic:   "dynamic",
	Inferred:  "inferred",
	Gradual:   "gradual",
	Dependent: "dependent",
}

func (t TypeSystem) String() string {
	if int(t) < len(typeSystemNames) {
		return typeSystemNames[t]
	}
	return fmt.Sprintf("TypeSystem(%d)", uint8(t))
}

// Valid reports whether t names one of the four disciplines.
func (t TypeSystem) Valid() bool { return int(t) < len(typeSystemNames) }

func ParseTypeSystem(s string) (TypeSystem, error) {
	for i, name := range typeSystemNames {
		if strings.EqualFold(s, name) {
			return TypeSystem(i), nil
		}
	}
	return 0, fmt.Errorf("unknown type system %q (want dynamic|inferred|gradual|dependent)", s)
}

type PurityLevel uint8

const (
	Pure PurityLevel = iota
	Sandbox
	Unrestricted
)

var purityNames = [...]string{
	Pure:         "pure",
	Sandbox:      "sandbox",
	Unrestricted: "unrestricted",
}

func (p PurityLevel) String() string {
	if int(p) < len(purityNames) {
		return purityNames[p]
	}
	return fmt.Sprintf("PurityLevel(%d)", uint8(p))
}

func (p PurityLevel) Valid() bool { return int(p) < len(purityNames) }

func ParsePurityLevel(s string) (PurityLevel, error) {
	for i, name := range purityNames {
		if strings.EqualFold(s, name) {
			return PurityLevel(i), nil
		}
	}
	return 0, fmt.Errorf("unknown purity level %q (want pure|sandbox|unrestricted)", s)
}

type OptimizationLevel uint8

const (
	Debug OptimizationLevel = iota
	Release
	Aggressive
)

var optimizationNames = [...]string{
	Debug:      "debug",
	Release:    "release",
	Aggressive: "aggressive",
}

func (o OptimizationLevel) String() string {
	if int(o) < len(optimizationNames) {
		return optimizationNames[o]
	}
	return fmt.Sprintf("OptimizationLevel(%d)", uint8(o))
}

func (o OptimizationLevel) Valid() bool { return int(o) < len(optimizationNames) }

func ParseOptimizationLevel(s string) (OptimizationLevel, error) {
	for i, name := range optimizationNames {
		if strings.EqualFold(s, name) {
			return OptimizationLevel(i), nil
		}
	}
	return 0, fmt.Errorf("unknown optimization level %q (want debug|release|aggressive)", s)
}

// Config is created once per unit and never mutated afterwards.
// SourceLanguage is informational only.
type Config struct {
	SourceLanguage string
	TypeSystem     TypeSystem
	Purity         PurityLevel
	Optimization   OptimizationLevel
}

const UnknownLanguage = "unknown"

func Default() Config {
	return Config{
		SourceLanguage: UnknownLanguage,
		TypeSystem:     Inferred,
		Purity:         Sandbox,
		Optimization:   Release,
	}
}

var ErrInvalidConfig = errors.New("invalid pipeline config")

func (c Config) Validate() error {
	var errs []error
	if !c.TypeSystem.Valid() {
		errs = append(errs, fmt.Errorf("%w: type system %d out of range", ErrInvalidConfig, c.TypeSystem))
	}
	if !c.Purity.Valid() {
		errs = append(errs, fmt.Errorf("%w: purity level %d out of range", ErrInvalidConfig, c.Purity))
	}
	if !c.Optimization.Valid() {
		errs = append(errs, fmt.Errorf("%w: optimization level %d out of range", ErrInvalidConfig, c.Optimization))
	}
	return errors.Join(errs...)
}

func (c Config) String() string {
	lang := c.SourceLanguage
	if lang == "" {
		lang = UnknownLanguage
	}
	return fmt.Sprintf("%s/%s/%s/%s", lang, c.TypeSystem, c.Purity, c.Optimization)
}

// WithTypeSystem and friends return modified copies; Config itself stays immutable.
func (c Config) WithTypeSystem(t TypeSystem) Config { c.TypeSystem = t; return c }

func (c Config) WithPurity(p PurityLevel) Config { c.Purity = p; return c }

func (c Config) WithOptimization(o OptimizationLevel) Config { c.Optimization = o; return c }
