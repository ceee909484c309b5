package project

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config mirrors oxide.toml.
type Config struct {
	Parse   ParseConfig   `toml:"parse"`
	Output  OutputConfig  `toml:"output"`
	Project ProjectConfig `toml:"project"`
}

type ParseConfig struct {
	MaxDepth       int  `toml:"max_depth"`
	MaxTokens      int  `toml:"max_tokens"`
	MaxDiagnostics uint `toml:"max_diagnostics"`
}

type OutputConfig struct {
	// Color: auto|on|off
	Color string `toml:"color"`
	// Context: строк исходника вокруг диагностики
	Context  int    `toml:"context"`
	PathMode string `toml:"path_mode"`
}

type ProjectConfig struct {
	Include    []string `toml:"include"`
	Extensions []string `toml:"extensions"`
	Jobs       int      `toml:"jobs"`
}

// Manifest is a loaded oxide.toml together with its location.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// DefaultConfig returns the settings used when no manifest exists.
func DefaultConfig() Config {
	return Config{
		Parse: ParseConfig{
			MaxDepth:       256,
			MaxTokens:      1 << 20,
			MaxDiagnostics: 1000,
		},
		Output: OutputConfig{
			Color:    "auto",
			Context:  2,
			PathMode: "auto",
		},
		Project: ProjectConfig{
			Include:    []string{"src"},
			Extensions: []string{".rs"},
		},
	}
}

var (
	colorModes = []string{"auto", "on", "off"}
	pathModes  = []string{"auto", "relative", "absolute", "basename"}
)

// LoadManifest finds oxide.toml above startDir and decodes it over the
// defaults. ok is false when there is no manifest.
func LoadManifest(startDir string) (*Manifest, bool, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, true, nil
}

// LoadConfig decodes one manifest file. Keys that are absent keep their
// default values; unknown keys are an error.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	cfg, err := DecodeConfig(string(data))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func DecodeConfig(data string) (Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.Decode(data, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Parse.MaxDepth < 0 {
		return fmt.Errorf("[parse].max_depth must not be negative")
	}
	if c.Parse.MaxTokens < 0 {
		return fmt.Errorf("[parse].max_tokens must not be negative")
	}
	if !slices.Contains(colorModes, c.Output.Color) {
		return fmt.Errorf("[output].color must be one of %s, got %q", strings.Join(colorModes, "|"), c.Output.Color)
	}
	if !slices.Contains(pathModes, c.Output.PathMode) {
		return fmt.Errorf("[output].path_mode must be one of %s, got %q", strings.Join(pathModes, "|"), c.Output.PathMode)
	}
	if c.Output.Context < 0 {
		return fmt.Errorf("[output].context must not be negative")
	}
	for _, ext := range c.Project.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("[project].extensions: %q must start with '.'", ext)
		}
	}
	if c.Project.Jobs < 0 {
		return fmt.Errorf("[project].jobs must not be negative")
	}
	return nil
}

// MatchesExtension reports whether path has one of the project extensions.
func (c ProjectConfig) MatchesExtension(path string) bool {
	exts := c.Extensions
	if len(exts) == 0 {
		exts = []string{".rs"}
	}
	return slices.Contains(exts, filepath.Ext(path))
}

// Encode renders cfg as TOML with a header comment.
func (c Config) Encode() (string, error) {
	var buf bytes.Buffer
	buf.WriteString("# oxide project manifest\n")
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return "", fmt.Errorf("failed to encode manifest: %w", err)
	}
	return buf.String(), nil
}
