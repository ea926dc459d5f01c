// Package clihelpers holds the small pieces every cmd/* tool shares: input
// reading (path argument or stdin), parsing, and --debug stack-trace
// rendering (the --verbose logger lives in internal/pipeline), so each
// tool's main.go stays a thin cobra wrapper
// around one internal package's real work, matching the teacher's
// one-binary-per-tool layout.
package clihelpers

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/ethanuppal/cs6120/internal/ir"
)

// ReadInput reads the textual IR from a positional path argument, or from
// stdin when path is "" or "-" (§6 "single positional input path, or -/
// omitted for stdin").
func ReadInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, errors.Wrap(err, "reading stdin")
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return data, nil
}

// ParseProgram parses textual IR and reports a PosError-shaped message on
// failure.
func ParseProgram(data []byte) (*ir.Program, error) {
	prog, err := ir.ParseText(string(data))
	if err != nil {
		return nil, errors.Wrap(err, "parsing input")
	}
	return prog, nil
}

// Fail prints a diagnostic to stderr — the one-line message by default, or
// a full %+v stack trace under --debug — and exits non-zero (§7 "I/O and
// parse errors: surfaced with a one-line human message; exit non-zero").
func Fail(err error, debug bool) {
	if debug {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
	} else {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(1)
}
