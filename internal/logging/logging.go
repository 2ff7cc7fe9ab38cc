package logging

import (
	"io"
	"log/slog"
)

// New returns a text logger writing to w. Debug records are kept only when
// verbose is set.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			if attr.Key == slog.TimeKey && !verbose {
				return slog.Attr{}
			}
			return attr
		},
	}))
}

// Discard drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
