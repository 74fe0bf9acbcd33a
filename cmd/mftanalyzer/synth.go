package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dfir-toolkit/ntfsmft/internal/mft"
	"github.com/dfir-toolkit/ntfsmft/internal/testmft"
)

// synthFlags configures the `synth` subcommand's small fixed fixture: a root directory plus one
// resident-data file and one deleted file, enough to exercise the full pipeline end to end.
type synthFlags struct {
	withDeleted bool
}

// newSynthCommand builds the `synth` subcommand (SPEC_FULL.md §2.5, §7): a thin wrapper around
// internal/testmft for generating hand-inspectable fixture images without a real NTFS volume on hand.
func newSynthCommand() *cobra.Command {
	flags := &synthFlags{}

	cmd := &cobra.Command{
		Use:   "synth <output-file>",
		Short: "Generate a small synthetic MFT fixture for manual testing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSynth(args[0], flags)
		},
	}
	cmd.Flags().BoolVar(&flags.withDeleted, "with-deleted", true, "include a deleted (not-in-use) record in the fixture")
	return cmd
}

func runSynth(outPath string, flags *synthFlags) error {
	const inUse = 0x0001
	const isDirectory = 0x0002

	root := testmft.Builder{
		Number: 5, Sequence: 1, Flags: inUse | isDirectory,
		StandardInformation: true,
		FileNames: []testmft.FileNameEntry{
			{Parent: 5, ParentSequence: 1, Name: ".", Namespace: mft.FileNameNamespacePosix},
		},
	}

	file := testmft.Builder{
		Number: 40, Sequence: 1, Flags: inUse,
		StandardInformation: true,
		FileNames: []testmft.FileNameEntry{
			{Parent: 5, ParentSequence: 1, Name: "notes.txt", Namespace: mft.FileNameNamespaceWin32, RealSize: 11},
		},
		ResidentData: []byte("hello world"),
	}

	builders := []testmft.Builder{root, file}

	if flags.withDeleted {
		deleted := testmft.Builder{
			Number: 41, Sequence: 2, Flags: 0, // not in-use
			StandardInformation: true,
			FileNames: []testmft.FileNameEntry{
				{Parent: 5, ParentSequence: 1, Name: "deleted.txt", Namespace: mft.FileNameNamespaceWin32, RealSize: 0},
			},
		}
		builders = append(builders, deleted)
	}

	image := testmft.Chain(builders...)

	if err := os.WriteFile(outPath, image, 0o644); err != nil {
		return outputErrorf("unable to write synthetic fixture: %v", err)
	}
	return nil
}
