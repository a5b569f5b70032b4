package main

import (
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// NewLogger returns a structured JSON slog.Logger writing to w with the given level.
// Every record carries a per-run session id. Stdout stays free for the label prompt.
func NewLogger(w io.Writer, level slog.Leveler) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("session", uuid.NewString())
}
