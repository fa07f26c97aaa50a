package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

// newLogger builds the process logger on w. Warnings and errors only,
// unless --verbose.
func newLogger(w io.Writer, g *globalOptions) *slog.Logger {
	level := slog.LevelWarn
	if g.verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if g.logJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func commandLogger(cmd *cobra.Command, g *globalOptions) *slog.Logger {
	return newLogger(cmd.ErrOrStderr(), g)
}
