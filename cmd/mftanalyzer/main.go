// Command mftanalyzer is the CLI entry point: it streams an MFT (or an image containing one) through
// the decode/path-resolve/hash/anomaly pipeline and serializes the result in one of several formats
// (spec §6), plus the supplemented `extract` and `synth` utility subcommands (SPEC_FULL.md §7).
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFromError(err))
	}
}
