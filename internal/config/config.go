// Package config loads the optional tinybc.toml that supplies defaults for
// flags the CLI would otherwise need on every invocation: the default
// target and the optimizer pass count. It also loads a [toolchain] table of
// external tool names, which no backend reads: the assemble/link commands
// always use their fixed tool names.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/cwbudde/tinybc/internal/optimize"
)

// Toolchain holds the [toolchain] table of tinybc.toml: names of the external
// binaries the backends shell out to. It is loaded and defaulted here only;
// the backends' assemble/link commands do not consult it.
type Toolchain struct {
	Fasm     string `toml:"fasm"`
	As       string `toml:"as"`
	Gcc      string `toml:"gcc"`
	Wat2Wasm string `toml:"wat2wasm"`
	WasmEdge string `toml:"wasmedgec"`
}

// Config is the shape of tinybc.toml.
type Config struct {
	DefaultTarget string    `toml:"default_target"`
	OptimizePasses int      `toml:"optimize_passes"`
	Toolchain     Toolchain `toml:"toolchain"`
}

// Default returns the configuration used when no tinybc.toml is present.
func Default() *Config {
	return &Config{
		DefaultTarget:  "x86_64",
		OptimizePasses: optimize.MaxPasses,
		Toolchain: Toolchain{
			Fasm:     "fasm",
			As:       "as",
			Gcc:      "gcc",
			Wat2Wasm: "wat2wasm",
			WasmEdge: "wasmedgec",
		},
	}
}

// Load reads tinybc.toml from path. A missing file is not an error: it
// yields Default(). A present-but-malformed file is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.OptimizePasses > optimize.MaxPasses {
		cfg.OptimizePasses = optimize.MaxPasses
	}
	if cfg.OptimizePasses < 0 {
		cfg.OptimizePasses = 0
	}

	return cfg, nil
}
