package ssa

import (
	"github.com/pkg/errors"

	"github.com/ethanuppal/cs6120/internal/cfg"
)

// ValidateStrict asserts the postcondition of §4.G "Into SSA": every
// destination is defined at most once across the entire function.
func ValidateStrict(c *cfg.FunctionCfg) error {
	seen := make(map[string]bool)
	for _, idx := range c.Blocks() {
		b := c.MustBlock(idx)
		for _, instr := range b.Instructions {
			d, ok := instr.Kill()
			if !ok {
				continue
			}
			if seen[d] {
				return errors.Errorf("strict SSA violation: %q is defined more than once", d)
			}
			seen[d] = true
		}
	}
	return nil
}
