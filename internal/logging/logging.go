// Package logging configures the process-wide structured logger.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Verbosity selects how much of the reconciliation narrative is logged.
// The zero value is Normal.
type Verbosity int

const (
	Quiet   Verbosity = iota - 1 // errors only
	Normal                       // progress and warnings
	Verbose                      // per-operation detail
)

// FromFlags maps the command line's --verbose and --quiet switches to a
// verbosity. Quiet wins when both are set.
func FromFlags(verbose, quiet bool) Verbosity {
	switch {
	case quiet:
		return Quiet
	case verbose:
		return Verbose
	default:
		return Normal
	}
}

// Level returns the slog level floor for the verbosity.
func (v Verbosity) Level() slog.Level {
	switch {
	case v <= Quiet:
		return slog.LevelError
	case v >= Verbose:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// Setup creates a text logger filtered to the given verbosity.
// If w is nil, writes to os.Stderr.
func Setup(v Verbosity, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level: v.Level(),
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// SetDefault sets up a logger for the verbosity, installs it as the
// process default and returns it.
func SetDefault(v Verbosity) *slog.Logger {
	log := Setup(v, nil)
	slog.SetDefault(log)
	return log
}
