// Package ctxutil carries per-word crawl metadata through contexts so that
// lower layers (HTTP transport, providers) can tag their logs.
package ctxutil

import (
	"context"
	"log/slog"
)

type ctxKey string

const (
	wordKey ctxKey = "word"
	passKey ctxKey = "pass"
)

// WithWord stores the word being fetched in the context.
func WithWord(ctx context.Context, word string) context.Context {
	return context.WithValue(ctx, wordKey, word)
}

// WordFromCtx extracts the word being fetched.
// Returns an empty string if absent.
func WordFromCtx(ctx context.Context) string {
	w, _ := ctx.Value(wordKey).(string)
	return w
}

// WithPass stores the pass name in the context.
func WithPass(ctx context.Context, pass string) context.Context {
	return context.WithValue(ctx, passKey, pass)
}

// PassFromCtx extracts the pass name. Returns an empty string if absent.
func PassFromCtx(ctx context.Context) string {
	p, _ := ctx.Value(passKey).(string)
	return p
}

// LogAttrs returns the metadata present in ctx as slog attributes.
func LogAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr
	if p := PassFromCtx(ctx); p != "" {
		attrs = append(attrs, slog.String("pass", p))
	}
	if w := WordFromCtx(ctx); w != "" {
		attrs = append(attrs, slog.String("word", w))
	}
	return attrs
}
