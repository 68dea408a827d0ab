package log

import (
	"io"
	"log/slog"
)

// Options configures NewLogger.
type Options struct {
	// Verbose lowers the level to Debug. Otherwise only warnings and errors
	// are logged.
	Verbose bool

	// JSON selects the JSON handler instead of the text handler.
	JSON bool

	// RedactKeys are extra attribute keys to mask, typically the names of
	// custom request headers configured for the site.
	RedactKeys []string
}

// NewLogger creates a redacting slog.Logger writing to w.
func NewLogger(w io.Writer, opts Options) *slog.Logger {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if opts.JSON {
		h = slog.NewJSONHandler(w, handlerOpts)
	} else {
		h = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(NewRedactingHandler(h, opts.RedactKeys...))
}

// Discard returns a logger that drops everything. Components fall back to it
// when no logger is configured.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
