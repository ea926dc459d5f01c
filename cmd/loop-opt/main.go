// Command loop-opt detects natural loops and runs preheader insertion and
// loop-invariant code motion (§6 "Loop optimizer").
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ethanuppal/cs6120/internal/cfg"
	"github.com/ethanuppal/cs6120/internal/clihelpers"
	"github.com/ethanuppal/cs6120/internal/dom"
	"github.com/ethanuppal/cs6120/internal/ir"
	"github.com/ethanuppal/cs6120/internal/loop"
	"github.com/ethanuppal/cs6120/internal/pipeline"
)

func main() {
	var stage int
	var debug, verbose bool

	cmd := &cobra.Command{
		Use:   "loop-opt [input]",
		Short: "Insert loop preheaders and run loop-invariant code motion",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return run(path, stage, verbose)
		},
	}
	cmd.Flags().IntVar(&stage, "stage", 1, "0 = stop after preheader insertion, 1 = run LICM too")
	cmd.Flags().BoolVar(&debug, "debug", false, "print a full stack trace on error")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "log per-function pass progress to stderr")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	if err := cmd.Execute(); err != nil {
		clihelpers.Fail(err, debug)
	}
}

func run(path string, stage int, verbose bool) error {
	if stage != 0 && stage != 1 {
		return fmt.Errorf("--stage must be 0 or 1, got %d", stage)
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

		doms := dom.Compute(c)
		loops := loop.DetectLoops(c, doms)
		log.Infow("loops detected", "function", fn.Signature.Name, "count", len(loops))

		moved := 0
		for _, l := range loops {
			pre := loop.InsertPreheader(c, l)
			if stage == 1 {
				moved += loop.RunLICM(c, l, pre)
			}
		}
		log.Infow("licm complete", "function", fn.Signature.Name, "moved", moved)

		fmt.Print(ir.PrintFunction(cfg.Linearize(c)))
	}
	return nil
}
