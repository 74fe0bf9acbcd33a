// Package logging constructs the logrus.FieldLogger instances threaded through the driver, path
// resolver, and hash pipeline (spec §2.1). It never mutates logrus's package-level global state on
// its own; only cmd/mftanalyzer wires a constructed logger as the process-wide standard logger.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Verbosity maps the CLI's repeatable -v/-d flags to a logrus level, per spec §2.1:
//
//	0 = warn, 1 = info (per-thousand-record progress), 2 = debug (per-attribute-type counts),
//	3+ = trace (per-record offsets).
type Verbosity int

// Level returns the logrus.Level this verbosity maps to.
func (v Verbosity) Level() logrus.Level {
	switch {
	case v <= 0:
		return logrus.WarnLevel
	case v == 1:
		return logrus.InfoLevel
	case v == 2:
		return logrus.DebugLevel
	default:
		return logrus.TraceLevel
	}
}

// Options configures New.
type Options struct {
	// Verbosity is the combined count of -v and -d flags (spec §6); -d is treated as already having
	// crossed the debug threshold, so callers add two to the count whenever -d is given.
	Verbosity Verbosity
	// JSON selects logrus.JSONFormatter instead of the default TextFormatter; forensic tooling that
	// feeds logs into a collector usually wants structured output.
	JSON bool
	// Output is where log lines are written. Nil defaults to os.Stderr, keeping stdout free for the
	// data the analyzer actually emits (spec §6's -o is a separate, data-only destination).
	Output io.Writer
}

// New builds a standalone *logrus.Logger from opts. Library packages (driver, pathresolve,
// hashpipeline) take a logrus.FieldLogger via constructor injection rather than calling this
// directly; only cmd/mftanalyzer calls New and then optionally installs the result as
// logrus.StandardLogger() for any code that still reaches for the package-level helpers.
func New(opts Options) *logrus.Logger {
	log := logrus.New()
	log.SetLevel(opts.Verbosity.Level())

	if opts.JSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if opts.Output != nil {
		log.SetOutput(opts.Output)
	} else {
		log.SetOutput(os.Stderr)
	}

	return log
}

// Discard returns a logger that drops everything it's given, for tests and library code exercised
// without a caller-supplied logger.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
