// Command dom-tool computes dominators, the immediate-dominator tree, or
// dominance frontiers for each function's CFG (§6 "Dominator tool").
package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ethanuppal/cs6120/internal/cfg"
	"github.com/ethanuppal/cs6120/internal/clihelpers"
	"github.com/ethanuppal/cs6120/internal/dataflow"
	"github.com/ethanuppal/cs6120/internal/dom"
	"github.com/ethanuppal/cs6120/internal/pipeline"
)

func main() {
	var algo string
	var debug, verbose bool

	cmd := &cobra.Command{
		Use:   "dom-tool [input]",
		Short: "Compute dominators, the dominator tree, or dominance frontiers",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return run(path, algo, verbose)
		},
	}
	cmd.Flags().StringVar(&algo, "algo", "dom", "dom|tree|front")
	cmd.Flags().BoolVar(&debug, "debug", false, "print a full stack trace on error")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "log per-function pass progress to stderr")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	if err := cmd.Execute(); err != nil {
		clihelpers.Fail(err, debug)
	}
}

func run(path, algo string, verbose bool) error {
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
		log.Infow("dominators computed", "function", fn.Signature.Name, "blocks", c.NumBlocks())

		fmt.Printf("@%s\n", fn.Signature.Name)
		switch algo {
		case "dom":
			for _, idx := range c.Blocks() {
				fmt.Printf("  %s: dom = %v\n", idx, sortedBlocks(doms[idx]))
			}
		case "tree":
			tree := dom.BuildTree(c, doms)
			for _, idx := range c.Blocks() {
				if idx == tree.Entry {
					fmt.Printf("  %s: (root)\n", idx)
					continue
				}
				fmt.Printf("  %s: idom = %s\n", idx, tree.Parent[idx])
			}
		case "front":
			fronts := dom.ComputeFrontiers(c, doms)
			for _, idx := range c.Blocks() {
				fmt.Printf("  %s: df = %v\n", idx, sortedBlocks(fronts[idx]))
			}
		default:
			return fmt.Errorf("unknown --algo %q", algo)
		}
	}
	return nil
}

func sortedBlocks(s dataflow.Set[cfg.BasicBlockIdx]) []string {
	out := make([]string, 0, len(s))
	for b := range s {
		out = append(out, b.String())
	}
	sort.Strings(out)
	return out
}
