// Package pipeline orchestrates the middle-end's passes as one call, for
// hosts that would rather script LVN→DCE→dataflow→dominators→SSA→loop than
// invoke each cmd/* tool separately, and for the --verbose logger every
// tool shares (only Run itself logs per-pass timings).
package pipeline

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// DefaultPassOrder is the pipeline run when no config file names one.
var DefaultPassOrder = []string{"lvn", "dce", "reaching", "live", "dom", "into-ssa"}

// Config is the optional cs6120.toml schema: which passes run, and in what
// order. No cmd/* tool loads a Config or merges one with its flags.
type Config struct {
	Pipeline struct {
		Passes []string `toml:"passes"`
	} `toml:"pipeline"`
}

// Load reads and parses a cs6120.toml file. A missing file is not an
// error — callers fall back to DefaultPassOrder.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return &cfg, nil
}

// Passes returns the configured pass order, or DefaultPassOrder if the
// config named none.
func (c *Config) Passes() []string {
	if c == nil || len(c.Pipeline.Passes) == 0 {
		return DefaultPassOrder
	}
	return c.Pipeline.Passes
}
