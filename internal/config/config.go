// Package config loads the optional TOML configuration file. Values from
// the file set the engine's startup defaults; UCI setoption commands
// override them at runtime.
package config

import (
	"errors"
	"io/fs"

	"github.com/BurntSushi/toml"
)

// Config is the top-level file layout.
type Config struct {
	Engine     Engine     `toml:"engine"`
	Book       Book       `toml:"book"`
	Experience Experience `toml:"experience"`
}

// Engine holds the core engine defaults.
type Engine struct {
	HashMb     int    `toml:"hash_mb"`
	OverheadMs int    `toml:"overhead_ms"`
	Threads    int    `toml:"threads"`
	EvalFile   string `toml:"eval_file"`
}

// Book configures the opening book.
type Book struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Experience configures the persistent experience store.
type Experience struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Engine: Engine{
			HashMb:     25,
			OverheadMs: 25,
			Threads:    1,
		},
		Experience: Experience{
			Dir: "galumph-experience",
		},
	}
}

// Load reads the file at path over the defaults. A missing file is not an
// error; the defaults are returned unchanged.
func Load(path string) (Config, error) {
	cfg := Default()

	_, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	return cfg, nil
}
