package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dfir-toolkit/ntfsmft/internal/anomaly"
	"github.com/dfir-toolkit/ntfsmft/internal/config"
	"github.com/dfir-toolkit/ntfsmft/internal/driver"
	"github.com/dfir-toolkit/ntfsmft/internal/hashpipeline"
	"github.com/dfir-toolkit/ntfsmft/internal/logging"
	"github.com/dfir-toolkit/ntfsmft/internal/output"
	"github.com/dfir-toolkit/ntfsmft/internal/output/bodyfile"
	"github.com/dfir-toolkit/ntfsmft/internal/output/csvout"
	"github.com/dfir-toolkit/ntfsmft/internal/output/jsonout"
	"github.com/dfir-toolkit/ntfsmft/internal/output/l2t"
	"github.com/dfir-toolkit/ntfsmft/internal/output/sqliteout"
	"github.com/dfir-toolkit/ntfsmft/internal/output/tsk"
	"github.com/dfir-toolkit/ntfsmft/internal/output/xmlout"
	"github.com/dfir-toolkit/ntfsmft/internal/pathresolve"
	"github.com/dfir-toolkit/ntfsmft/internal/record"
)

// analyzeFlags mirrors spec §6's CLI surface.
type analyzeFlags struct {
	inputPath  string
	outputPath string

	formatCSV      bool
	formatJSON     bool
	formatXML      bool
	formatExcel    bool
	formatBody     bool
	formatTimeline bool
	formatSQLite   bool
	formatTSK      bool
	formatL2T      bool

	hash                    bool
	chunkSize               int
	hashProcesses           int
	noMultiprocessingHashes bool
	profile                 string
	configPath              string
	summaryJSONPath         string

	verboseCount int
	debugCount   int
}

// summary is the §7 final-run summary, in both tablewriter and --summary-json form.
type summary struct {
	Processed        int            `json:"processed"`
	Active           int            `json:"active"`
	Deleted          int            `json:"deleted"`
	Directories      int            `json:"directories"`
	Files            int            `json:"files"`
	WithErrors       int            `json:"with_errors"`
	Cancelled        bool           `json:"cancelled"`
	UniqueHashCounts map[string]int `json:"unique_hash_counts,omitempty"`
}

func newRootCommand() *cobra.Command {
	flags := &analyzeFlags{}

	cmd := &cobra.Command{
		Use:           "mftanalyzer",
		Short:         "Parse an NTFS $MFT and export its records in a variety of forensic formats",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.inputPath, "file", "f", "", "input $MFT file (required)")
	cmd.Flags().StringVarP(&flags.outputPath, "output", "o", "", "output file (required)")

	cmd.Flags().BoolVar(&flags.formatCSV, "csv", false, "CSV output (default format)")
	cmd.Flags().BoolVar(&flags.formatJSON, "json", false, "JSON output")
	cmd.Flags().BoolVar(&flags.formatXML, "xml", false, "XML output")
	cmd.Flags().BoolVar(&flags.formatExcel, "excel", false, "CSV output with Excel-friendly dates")
	cmd.Flags().BoolVar(&flags.formatBody, "body", false, "mactime body-file output")
	cmd.Flags().BoolVar(&flags.formatTimeline, "timeline", false, "TSK-style timeline output")
	cmd.Flags().BoolVar(&flags.formatSQLite, "sqlite", false, "SQLite database output")
	cmd.Flags().BoolVar(&flags.formatTSK, "tsk", false, "alias of --timeline")
	cmd.Flags().BoolVar(&flags.formatL2T, "l2t", false, "log2timeline 17-column CSV output")

	cmd.Flags().BoolVarP(&flags.hash, "hash", "H", false, "compute MD5/SHA-256/SHA-512/CRC-32 over resident $DATA")
	cmd.Flags().IntVar(&flags.chunkSize, "chunk-size", 0, "records read per batch (0 = profile default)")
	cmd.Flags().IntVar(&flags.hashProcesses, "hash-processes", 0, "hash worker pool size (0 = profile default)")
	cmd.Flags().BoolVar(&flags.noMultiprocessingHashes, "no-multiprocessing-hashes", false, "hash sequentially instead of with a worker pool")
	cmd.Flags().StringVar(&flags.profile, "profile", "", "default|quick|forensic|performance")
	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "YAML/JSON config file")
	cmd.Flags().StringVar(&flags.summaryJSONPath, "summary-json", "", "also write the run summary as JSON to this path")

	cmd.Flags().CountVarP(&flags.verboseCount, "verbose", "v", "increase log verbosity (repeatable)")
	cmd.Flags().CountVarP(&flags.debugCount, "debug", "d", "raise log verbosity straight to trace (repeatable)")

	cmd.AddCommand(newExtractCommand())
	cmd.AddCommand(newSynthCommand())

	return cmd
}

func runAnalyze(cmd *cobra.Command, flags *analyzeFlags) error {
	if flags.inputPath == "" || flags.outputPath == "" {
		return usageErrorf("both -f/--file and -o/--output are required")
	}

	selected, err := selectFormat(flags)
	if err != nil {
		return err
	}

	verbosity := flags.verboseCount + flags.debugCount
	if flags.debugCount > 0 {
		// -d starts past the debug threshold: a single -d already selects trace.
		verbosity += 2
	}
	log := logging.New(logging.Options{Verbosity: logging.Verbosity(verbosity)})
	logrus.SetLevel(log.Level)
	logrus.SetFormatter(log.Formatter)
	logrus.SetOutput(log.Out)

	overrides := overridesFromFlags(flags)
	resolvedCfg, err := config.Load(config.Profile(flags.profile), flags.configPath, overrides)
	if err != nil {
		return usageErrorf("%v", err)
	}

	in, err := os.Open(flags.inputPath)
	if err != nil {
		return inputErrorf("unable to open input: %v", err)
	}
	defer in.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	residentDataCap := 0
	if resolvedCfg.Hash {
		// A resident attribute can never exceed the MFT record size itself; 4096 covers both record
		// sizes the driver tolerates (spec §4.G).
		residentDataCap = 4096
	}

	result, err := driver.Run(ctx, in, driver.Options{
		ChunkSize:       resolvedCfg.ChunkSize,
		ResidentDataCap: residentDataCap,
		Log:             log,
	})
	if err != nil {
		return parseErrorf("%v", err)
	}

	primaries := make(map[uint64]*record.Record)
	extensions := make(map[uint64]*record.Record)
	for number, rec := range result.ByNumber {
		if rec.IsExtension() {
			extensions[number] = rec
		} else {
			primaries[number] = rec
		}
	}
	record.ResolveExtensions(primaries, extensions, record.Options{})

	pathresolve.Resolve(result.ByNumber, pathresolve.Options{Log: log})

	if resolvedCfg.Anomaly {
		activeDirs := func(n uint64) bool {
			rec, ok := result.ByNumber[n]
			return ok && rec.Active() && rec.IsDirectory()
		}
		for _, rec := range result.Records {
			anomaly.Run(rec, activeDirs)
		}
	}

	if resolvedCfg.Hash {
		hashOpts := hashpipeline.Options{Workers: resolvedCfg.HashWorkers, Sequential: resolvedCfg.NoMultiprocessingHashes}
		if err := hashpipeline.Run(ctx, result.Records, hashOpts); err != nil {
			return parseErrorf("hashing failed: %v", err)
		}
	}

	rows := make([]output.Row, 0, len(result.Records))
	for _, rec := range result.Records {
		rows = append(rows, output.FromRecord(rec))
	}

	if err := writeOutput(selected, flags.outputPath, result, rows); err != nil {
		return err
	}

	sum := buildSummary(result, rows)
	printSummary(cmd, sum)

	if flags.summaryJSONPath != "" {
		if err := writeSummaryJSON(flags.summaryJSONPath, sum); err != nil {
			return outputErrorf("unable to write summary JSON: %v", err)
		}
	}

	return nil
}

// format identifies which of spec §6's mutually exclusive output formats was selected.
type format int

const (
	formatCSV format = iota
	formatJSON
	formatXML
	formatExcel
	formatBody
	formatTimeline
	formatSQLite
	formatL2T
)

func selectFormat(flags *analyzeFlags) (format, error) {
	selected := make([]format, 0, 1)
	if flags.formatCSV {
		selected = append(selected, formatCSV)
	}
	if flags.formatJSON {
		selected = append(selected, formatJSON)
	}
	if flags.formatXML {
		selected = append(selected, formatXML)
	}
	if flags.formatExcel {
		selected = append(selected, formatExcel)
	}
	if flags.formatBody {
		selected = append(selected, formatBody)
	}
	if flags.formatTimeline || flags.formatTSK {
		selected = append(selected, formatTimeline)
	}
	if flags.formatSQLite {
		selected = append(selected, formatSQLite)
	}
	if flags.formatL2T {
		selected = append(selected, formatL2T)
	}

	switch len(selected) {
	case 0:
		return formatCSV, nil
	case 1:
		return selected[0], nil
	default:
		return 0, usageErrorf("exactly one of --csv|--json|--xml|--excel|--body|--timeline|--sqlite|--tsk|--l2t may be given")
	}
}

func overridesFromFlags(flags *analyzeFlags) config.Overrides {
	var overrides config.Overrides
	if flags.chunkSize > 0 {
		overrides.ChunkSize = &flags.chunkSize
	}
	if flags.hash {
		overrides.Hash = &flags.hash
	}
	if flags.hashProcesses > 0 {
		overrides.HashWorkers = &flags.hashProcesses
	}
	if flags.noMultiprocessingHashes {
		overrides.NoMultiprocessingHashes = &flags.noMultiprocessingHashes
	}
	return overrides
}

func writeOutput(f format, outputPath string, result *driver.Result, rows []output.Row) error {
	if f == formatSQLite {
		db, err := sqliteout.Open(outputPath)
		if err != nil {
			return outputErrorf("%v", err)
		}
		for i, rec := range result.Records {
			if err := sqliteout.WriteRecord(db, rec, rows[i]); err != nil {
				return outputErrorf("%v", err)
			}
		}
		return nil
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return outputErrorf("unable to create output file: %v", err)
	}
	defer out.Close()

	switch f {
	case formatCSV:
		err = csvout.Write(out, rows, csvout.Options{})
	case formatJSON:
		err = jsonout.Write(out, rows)
	case formatXML:
		err = xmlout.Write(out, rows)
	case formatExcel:
		err = csvout.Write(out, rows, csvout.Options{ExcelDates: true})
	case formatBody:
		err = bodyfile.Write(out, rows)
	case formatTimeline:
		err = tsk.Write(out, rows)
	case formatL2T:
		err = l2t.Write(out, rows)
	}
	if err != nil {
		return outputErrorf("%v", err)
	}
	return nil
}

func buildSummary(result *driver.Result, rows []output.Row) summary {
	sum := summary{
		Processed:  result.Totals.Processed,
		Active:     result.Totals.Active,
		Directories: result.Totals.Directory,
		WithErrors: result.Totals.WithErrors,
		Cancelled:  result.Cancelled,
	}
	sum.Deleted = sum.Processed - sum.Active
	sum.Files = sum.Processed - sum.Directories

	hashSets := map[string]map[string]bool{"md5": {}, "sha256": {}, "sha512": {}, "crc32": {}}
	for _, row := range rows {
		if row.MD5 != "" {
			hashSets["md5"][row.MD5] = true
		}
		if row.SHA256 != "" {
			hashSets["sha256"][row.SHA256] = true
		}
		if row.SHA512 != "" {
			hashSets["sha512"][row.SHA512] = true
		}
		if row.CRC32 != "" {
			hashSets["crc32"][row.CRC32] = true
		}
	}
	sum.UniqueHashCounts = make(map[string]int, len(hashSets))
	for name, set := range hashSets {
		if len(set) > 0 {
			sum.UniqueHashCounts[name] = len(set)
		}
	}
	return sum
}

func printSummary(cmd *cobra.Command, sum summary) {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"metric", "value"})
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)

	table.Append([]string{"processed", fmt.Sprint(sum.Processed)})
	table.Append([]string{"active", fmt.Sprint(sum.Active)})
	table.Append([]string{"deleted", fmt.Sprint(sum.Deleted)})
	table.Append([]string{"directories", fmt.Sprint(sum.Directories)})
	table.Append([]string{"files", fmt.Sprint(sum.Files)})
	table.Append([]string{"with_errors", fmt.Sprint(sum.WithErrors)})
	table.Append([]string{"cancelled", fmt.Sprint(sum.Cancelled)})
	for _, name := range []string{"md5", "sha256", "sha512", "crc32"} {
		if n, ok := sum.UniqueHashCounts[name]; ok {
			table.Append([]string{"unique_" + name, fmt.Sprint(n)})
		}
	}
	table.Render()
}

func writeSummaryJSON(path string, sum summary) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(sum)
}
