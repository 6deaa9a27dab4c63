package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ProfileFile is the name looked up by FindProfile.
const ProfileFile = "langlang.toml"

// Profile is the decoded langlang.toml together with the defaults it overrides.
type Profile struct {
	Path    string
	Config  Config
	Limits  Limits
	Sandbox Allowlist
}

type profileFile struct {
	Pipeline struct {
		SourceLanguage string `toml:"source_language"`
		TypeSystem     string `toml:"type_system"`
		Purity         string `toml:"purity"`
		Optimization   string `toml:"optimization"`
	} `toml:"pipeline"`
	Limits struct {
		NormalizeFuel int `toml:"normalize_fuel"`
		EvalSteps     int `toml:"eval_steps"`
		EvalDepth     int `toml:"eval_depth"`
	} `toml:"limits"`
	Sandbox struct {
		Allow []string `toml:"allow"`
	} `toml:"sandbox"`
}

// DefaultProfile is used when no langlang.toml exists.
func DefaultProfile() Profile {
	return Profile{
		Config:  Default(),
		Limits:  DefaultLimits(),
		Sandbox: DefaultAllowlist(),
	}
}

// FindProfile walks from startDir to the filesystem root looking for langlang.toml.
func FindProfile(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ProfileFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadProfile decodes path. Keys that are absent keep their defaults.
func LoadProfile(path string) (Profile, error) {
	var raw profileFile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Profile{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Profile{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	p := DefaultProfile()
	p.Path = path
	if meta.IsDefined("pipeline", "source_language") {
		p.Config.SourceLanguage = strings.TrimSpace(raw.Pipeline.SourceLanguage)
	}
	if meta.IsDefined("pipeline", "type_system") {
		ts, err := ParseTypeSystem(raw.Pipeline.TypeSystem)
		if err != nil {
			return Profile{}, fmt.Errorf("%s: [pipeline].type_system: %w", path, err)
		}
		p.Config.TypeSystem = ts
	}
	if meta.IsDefined("pipeline", "purity") {
		pl, err := ParsePurityLevel(raw.Pipeline.Purity)
		if err != nil {
			return Profile{}, fmt.Errorf("%s: [pipeline].purity: %w", path, err)
		}
		p.Config.Purity = pl
	}
	if meta.IsDefined("pipeline", "optimization") {
		ol, err := ParseOptimizationLevel(raw.Pipeline.Optimization)
		if err != nil {
			return Profile{}, fmt.Errorf("%s: [pipeline].optimization: %w", path, err)
		}
		p.Config.Optimization = ol
	}
	if meta.IsDefined("limits", "normalize_fuel") {
		p.Limits.NormalizeFuel = raw.Limits.NormalizeFuel
	}
	if meta.IsDefined("limits", "eval_steps") {
		p.Limits.EvalSteps = raw.Limits.EvalSteps
	}
	if meta.IsDefined("limits", "eval_depth") {
		p.Limits.EvalDepth = raw.Limits.EvalDepth
	}
	if p.Limits.NormalizeFuel <= 0 || p.Limits.EvalSteps <= 0 || p.Limits.EvalDepth <= 0 {
		return Profile{}, fmt.Errorf("%s: [limits] values must be positive", path)
	}
	if meta.IsDefined("sandbox", "allow") {
		p.Sandbox = Allowlist(raw.Sandbox.Allow)
	}
	return p, nil
}

// LoadNearestProfile finds and loads langlang.toml, falling back to defaults.
func LoadNearestProfile(startDir string) (Profile, error) {
	path, ok, err := FindProfile(startDir)
	if err != nil {
		return Profile{}, err
	}
	if !ok {
		return DefaultProfile(), nil
	}
	return LoadProfile(path)
}
