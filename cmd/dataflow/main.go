// Command dataflow runs the generic forward/backward worklist driver's two
// instances — reaching definitions and live variables — over each
// function's CFG and prints the per-block result sets (§6 "Dataflow").
package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ethanuppal/cs6120/internal/cfg"
	"github.com/ethanuppal/cs6120/internal/clihelpers"
	"github.com/ethanuppal/cs6120/internal/dataflow"
	"github.com/ethanuppal/cs6120/internal/pipeline"
)

func main() {
	var analysis string
	var debug, verbose bool

	cmd := &cobra.Command{
		Use:   "dataflow [input]",
		Short: "Run reaching-definitions or live-variables analysis",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return run(path, analysis, verbose)
		},
	}
	cmd.Flags().StringVar(&analysis, "analysis", "def", "def|live")
	cmd.Flags().BoolVar(&debug, "debug", false, "print a full stack trace on error")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "log per-function pass progress to stderr")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	if err := cmd.Execute(); err != nil {
		clihelpers.Fail(err, debug)
	}
}

func run(path, analysis string, verbose bool) error {
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

		switch analysis {
		case "def":
			reaching := dataflow.ReachingDefinitions(c)
			log.Infow("reaching definitions computed", "function", fn.Signature.Name, "blocks", c.NumBlocks())
			printReaching(fn.Signature.Name, c, reaching)
		case "live":
			live := dataflow.LiveVariables(c)
			log.Infow("live variables computed", "function", fn.Signature.Name, "blocks", c.NumBlocks())
			printLive(fn.Signature.Name, c, live)
		default:
			return fmt.Errorf("unknown --analysis %q", analysis)
		}
	}
	return nil
}

func printReaching(name string, c *cfg.FunctionCfg, sets map[cfg.BasicBlockIdx]dataflow.Set[dataflow.Definition]) {
	fmt.Printf("@%s\n", name)
	for _, idx := range c.Blocks() {
		names := make([]string, 0, len(sets[idx]))
		for d := range sets[idx] {
			names = append(names, d.Name)
		}
		sort.Strings(names)
		fmt.Printf("  %s: out = %v\n", idx, names)
	}
}

func printLive(name string, c *cfg.FunctionCfg, sets map[cfg.BasicBlockIdx]dataflow.Set[string]) {
	fmt.Printf("@%s\n", name)
	for _, idx := range c.Blocks() {
		fmt.Printf("  %s: in = %v\n", idx, dataflow.SortedStrings(sets[idx]))
	}
}
