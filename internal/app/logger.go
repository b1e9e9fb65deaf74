package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/heartmarshall/envi-dictionary/internal/config"
	"github.com/heartmarshall/envi-dictionary/pkg/ctxutil"
)

// NewLogger creates a *slog.Logger based on the provided LogConfig
// and sets it as the default logger via slog.SetDefault.
//
// Format "json" produces structured JSON output (batch runs under cron).
// Format "text" produces human-readable output with source info (local runs).
// Level is one of: debug, info, warn, error (case-insensitive); defaults to info.
// Records logged with a context carrying a word (see ctxutil.WithWord) get a
// "word" attribute. Output is always os.Stderr.
func NewLogger(cfg config.LogConfig) *slog.Logger {
	logger := newLogger(os.Stderr, cfg)
	slog.SetDefault(logger)
	return logger
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: strings.EqualFold(cfg.Format, "text"),
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(wordHandler{handler})
}

// wordHandler tags records with the word in flight unless the record
// already names one.
type wordHandler struct{ slog.Handler }

func (h wordHandler) Handle(ctx context.Context, r slog.Record) error {
	if word := ctxutil.WordFromCtx(ctx); word != "" && !hasAttr(r, "word") {
		r = r.Clone()
		r.AddAttrs(slog.String("word", word))
	}
	return h.Handler.Handle(ctx, r)
}

func (h wordHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return wordHandler{h.Handler.WithAttrs(attrs)}
}

func (h wordHandler) WithGroup(name string) slog.Handler {
	return wordHandler{h.Handler.WithGroup(name)}
}

func hasAttr(r slog.Record, key string) bool {
	found := false
	r.Attrs(func(a slog.Attr) bool {
		found = a.Key == key
		return !found
	})
	return found
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
