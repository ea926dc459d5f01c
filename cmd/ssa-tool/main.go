// Command ssa-tool converts a function into or out of get/set SSA form
// (§6 "SSA").
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ethanuppal/cs6120/internal/cfg"
	"github.com/ethanuppal/cs6120/internal/clihelpers"
	"github.com/ethanuppal/cs6120/internal/ir"
	"github.com/ethanuppal/cs6120/internal/pipeline"
	"github.com/ethanuppal/cs6120/internal/ssa"
)

func main() {
	var intoSSA, fromSSA, skipPostPhi, debug, verbose bool

	cmd := &cobra.Command{
		Use:   "ssa-tool [input]",
		Short: "Convert a function into or out of get/set SSA form",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return run(path, intoSSA, fromSSA, skipPostPhi, verbose)
		},
	}
	cmd.Flags().BoolVar(&intoSSA, "into-ssa", false, "convert into get/set SSA form")
	cmd.Flags().BoolVar(&fromSSA, "from-ssa", false, "convert out of get/set SSA form")
	cmd.Flags().BoolVar(&skipPostPhi, "skip-post-phi-insertion", false, "stop after phi placement, before renaming (diagnostic only)")
	cmd.Flags().BoolVar(&debug, "debug", false, "print a full stack trace on error")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "log per-function pass progress to stderr")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	if err := cmd.Execute(); err != nil {
		clihelpers.Fail(err, debug)
	}
}

func run(path string, intoSSA, fromSSA, skipPostPhi, verbose bool) error {
	if intoSSA && fromSSA {
		return fmt.Errorf("--into-ssa and --from-ssa are mutually exclusive")
	}
	if !intoSSA && !fromSSA {
		return fmt.Errorf("one of --into-ssa or --from-ssa is required")
	}

	log, sync, err := pipeline.NewLogger(verbose)
	if err != nil {
		return err
	}
	defer sync()

	data, err := clihelpers.ReadInput(path)
	if err != nil {
		return err
	}
	prog, err := clihelpers.ParseProgram(data)
	if err != nil {
		return err
	}

	for i := range prog.Functions {
		fn := &prog.Functions[i]
		c, err := cfg.Build(fn, true)
		if err != nil {
			return err
		}

		if intoSSA {
			if skipPostPhi {
				if err := ssa.InsertPhisOnly(c); err != nil {
					return err
				}
			} else if err := ssa.IntoSSA(c); err != nil {
				return err
			}
		} else if err := ssa.OutOfSSA(c); err != nil {
			return err
		}
		log.Infow("ssa conversion complete", "function", fn.Signature.Name, "into_ssa", intoSSA)

		fmt.Print(ir.PrintFunction(cfg.Linearize(c)))
	}
	return nil
}
