// Package config loads the slidewin YAML configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/observe-l/slidewin/window"
)

type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Matcher MatcherConfig `yaml:"matcher"`
	Pool    PoolConfig    `yaml:"pool"`
	Budget  Budget        `yaml:"budget"`
	Log     LogConfig     `yaml:"log"`
	RPC     RPCConfig     `yaml:"rpc"`
}

type WindowConfig struct {
	Size            int  `yaml:"size"`
	Overlap         int  `yaml:"overlap"`
	NumRounds       int  `yaml:"num_rounds"` // 0 infers from the detector count
	BatchWindows    bool `yaml:"batch_windows"`
	BatchShots      int  `yaml:"batch_shots"`
	StrictInference bool `yaml:"strict_inference"`
}

// Options converts the section into window.Options without logger or metrics.
func (w WindowConfig) Options() window.Options {
	return window.Options{
		WindowSize:      w.Size,
		Overlap:         w.Overlap,
		NumRounds:       w.NumRounds,
		BatchWindows:    w.BatchWindows,
		BatchShots:      w.BatchShots,
		StrictInference: w.StrictInference,
	}
}

// Matcher kinds.
const (
	MatcherLookup = "lookup"
	MatcherExtern = "extern"
)

type MatcherConfig struct {
	Kind string `yaml:"kind"`
	// Command is the argv template of an external matcher, see matching/extern.
	Command []string      `yaml:"command"`
	Timeout time.Duration `yaml:"timeout"`
}

type PoolConfig struct {
	Workers    int `yaml:"workers"`
	ChunkShots int `yaml:"chunk_shots"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type RPCConfig struct {
	Listen          string `yaml:"listen"`
	MaxMessageBytes int    `yaml:"max_message_bytes"`
}

func Default() Config {
	return Config{
		Window: WindowConfig{Size: 10, Overlap: 0, BatchShots: 1},
		Matcher: MatcherConfig{
			Kind:    MatcherLookup,
			Timeout: 5 * time.Minute,
		},
		Pool:   PoolConfig{Workers: 10, ChunkShots: 1024},
		Budget: DefaultBudget(),
		Log:    LogConfig{Level: "info", Format: "json"},
		RPC:    RPCConfig{Listen: ":50051", MaxMessageBytes: 64 << 20},
	}
}

// Load reads path over Default. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}
	check(c.Window.Size >= 1, "window.size must be >= 1, got %d", c.Window.Size)
	check(c.Window.Overlap >= 0, "window.overlap must be >= 0, got %d", c.Window.Overlap)
	check(c.Window.NumRounds >= 0, "window.num_rounds must be >= 0, got %d", c.Window.NumRounds)
	switch c.Matcher.Kind {
	case MatcherLookup:
	case MatcherExtern:
		check(len(c.Matcher.Command) > 0, "matcher.command is required for the extern matcher")
	default:
		errs = append(errs, fmt.Errorf("matcher.kind %q is not one of lookup, extern", c.Matcher.Kind))
	}
	check(c.Matcher.Timeout >= 0, "matcher.timeout must be >= 0, got %s", c.Matcher.Timeout)
	check(c.Pool.Workers >= 1, "pool.workers must be >= 1, got %d", c.Pool.Workers)
	check(c.Pool.ChunkShots >= 1, "pool.chunk_shots must be >= 1, got %d", c.Pool.ChunkShots)
	if err := c.Budget.Validate(); err != nil {
		errs = append(errs, err)
	}
	check(c.Log.Format == "json" || c.Log.Format == "console", "log.format %q is not one of json, console", c.Log.Format)
	check(c.RPC.MaxMessageBytes >= 0, "rpc.max_message_bytes must be >= 0, got %d", c.RPC.MaxMessageBytes)
	return errors.Join(errs...)
}
