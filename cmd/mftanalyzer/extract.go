package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dfir-toolkit/ntfsmft/internal/bootsect"
	"github.com/dfir-toolkit/ntfsmft/internal/fragment"
	"github.com/dfir-toolkit/ntfsmft/internal/mft"
	"github.com/dfir-toolkit/ntfsmft/internal/record"
)

const supportedOemId = "NTFS    "

// extractFlags mirrors the teacher's cmd/mftdump flags, generalized to an explicit
// volume/output positional pair under cobra instead of package-global state.
type extractFlags struct {
	force bool
}

// newExtractCommand builds the `extract` subcommand (SPEC_FULL.md §7.1): read a raw NTFS volume
// image, parse its boot sector, locate the $MFT's own record, decode its $DATA data-runs, and copy
// the resulting byte ranges to a plain file — the one place outside internal/mft where data-run
// decoding turns into actual bytes read, mirroring teacher cmd/mftdump.
func newExtractCommand() *cobra.Command {
	flags := &extractFlags{}

	cmd := &cobra.Command{
		Use:   "extract <volume-image> <output-file>",
		Short: "Extract the $MFT out of a raw NTFS volume image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(args[0], args[1], flags)
		},
	}
	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "overwrite the output file if it already exists")
	return cmd
}

func runExtract(volumePath, outPath string, flags *extractFlags) error {
	in, err := os.Open(volumePath)
	if err != nil {
		return inputErrorf("unable to open volume image: %v", err)
	}
	defer in.Close()

	bootSectorData := make([]byte, bootsect.MinLength)
	if _, err := io.ReadFull(in, bootSectorData); err != nil {
		return inputErrorf("unable to read boot sector: %v", err)
	}

	boot, err := bootsect.Parse(bootSectorData)
	if err != nil {
		return parseErrorf("unable to parse boot sector: %v", err)
	}
	if boot.OemId != supportedOemId {
		return parseErrorf("unknown OemId %q, expected %q: not an NTFS volume", boot.OemId, supportedOemId)
	}

	if _, err := in.Seek(boot.MftOffset(), io.SeekStart); err != nil {
		return inputErrorf("unable to seek to $MFT position: %v", err)
	}

	mftRecordBuf := make([]byte, boot.RecordSizeInBytes)
	if _, err := io.ReadFull(in, mftRecordBuf); err != nil {
		return inputErrorf("unable to read $MFT's own record: %v", err)
	}

	mftRecord, err := record.Assemble(mftRecordBuf, record.Options{})
	if err != nil {
		return parseErrorf("unable to parse $MFT's own record: %v", err)
	}
	if mftRecord.UnnamedDataResident {
		return parseErrorf("$MFT's $DATA attribute is resident, nothing to extract via data-runs")
	}
	if len(mftRecord.UnnamedDataRuns) == 0 {
		return parseErrorf("no $DATA data-runs found in $MFT's own record")
	}

	fragments := mft.DataRunsToFragments(mftRecord.UnnamedDataRuns, boot.BytesPerCluster())
	var totalLength int64
	for _, f := range fragments {
		totalLength += f.Length
	}

	openFlags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if flags.force {
		openFlags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	out, err := os.OpenFile(outPath, openFlags, 0o666)
	if err != nil {
		return outputErrorf("unable to open output file: %v", err)
	}
	defer out.Close()

	n, err := io.Copy(out, fragment.NewReader(in, fragments))
	if err != nil {
		return outputErrorf("error copying $MFT data: %v", err)
	}
	if n != totalLength {
		return outputErrorf("expected to copy %d bytes, copied %d", totalLength, n)
	}

	return nil
}
