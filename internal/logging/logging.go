// Package logging builds the zap-backed logr.Logger used by the manager and
// every controller.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	ctrlzap "sigs.k8s.io/controller-runtime/pkg/log/zap"
)

// Supported formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// New returns a logger writing to w at the given level ("debug", "info",
// "warn" or "error"). An empty format selects console output when w is a
// terminal and JSON otherwise. extra is applied last, so options derived
// from the --zap-* flags win.
func New(level, format string, w io.Writer, extra ...ctrlzap.Opts) (logr.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return logr.Discard(), fmt.Errorf("invalid log level %q: %w", level, err)
	}

	opts := []ctrlzap.Opts{
		ctrlzap.WriteTo(w),
		ctrlzap.Level(zap.NewAtomicLevelAt(lvl)),
	}

	switch ResolveFormat(format, w) {
	case FormatJSON:
		opts = append(opts, ctrlzap.JSONEncoder(timeEncoder))
	case FormatConsole:
		opts = append(opts, ctrlzap.ConsoleEncoder(timeEncoder))
	default:
		return logr.Discard(), fmt.Errorf("invalid log format %q", format)
	}

	return ctrlzap.New(append(opts, extra...)...), nil
}

// ResolveFormat applies the terminal detection for an empty format.
func ResolveFormat(format string, w io.Writer) string {
	if format != "" {
		return format
	}
	if isTerminal(w) {
		return FormatConsole
	}
	return FormatJSON
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func timeEncoder(cfg *zapcore.EncoderConfig) {
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
}

// FlagOverrides applies the settings a user passed through the --zap-* flags
// on top of the options built by New. Unset flags leave New's choices alone.
func FlagOverrides(in *ctrlzap.Options) ctrlzap.Opts {
	return func(o *ctrlzap.Options) {
		if in.Development {
			o.Development = true
		}
		if in.Level != nil {
			o.Level = in.Level
		}
		if in.StacktraceLevel != nil {
			o.StacktraceLevel = in.StacktraceLevel
		}
		if in.NewEncoder != nil {
			o.Encoder = nil
			o.NewEncoder = in.NewEncoder
		}
		if in.TimeEncoder != nil {
			o.TimeEncoder = in.TimeEncoder
		}
	}
}
