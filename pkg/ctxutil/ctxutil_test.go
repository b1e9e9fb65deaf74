package ctxutil

import (
	"context"
	"log/slog"
	"testing"
)

func TestWithWord_And_WordFromCtx(t *testing.T) {
	t.Parallel()

	ctx := WithWord(context.Background(), "hello")
	if got := WordFromCtx(ctx); got != "hello" {
		t.Fatalf("expected hello, got %q", got)
	}
}

func TestWordFromCtx_EmptyContext(t *testing.T) {
	t.Parallel()

	if got := WordFromCtx(context.Background()); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestWordFromCtx_WrongType(t *testing.T) {
	t.Parallel()

	ctx := context.WithValue(context.Background(), wordKey, 42)
	if got := WordFromCtx(ctx); got != "" {
		t.Fatalf("expected empty string for wrong type, got %q", got)
	}
}

func TestWithPass_And_PassFromCtx(t *testing.T) {
	t.Parallel()

	ctx := WithPass(context.Background(), "retry")
	if got := PassFromCtx(ctx); got != "retry" {
		t.Fatalf("expected retry, got %q", got)
	}
}

func TestLogAttrs(t *testing.T) {
	t.Parallel()

	if attrs := LogAttrs(context.Background()); len(attrs) != 0 {
		t.Fatalf("expected no attrs, got %v", attrs)
	}

	ctx := WithWord(WithPass(context.Background(), "initial"), "hello")
	attrs := LogAttrs(ctx)
	want := []slog.Attr{slog.String("pass", "initial"), slog.String("word", "hello")}
	if len(attrs) != len(want) {
		t.Fatalf("expected %d attrs, got %v", len(want), attrs)
	}
	for i := range want {
		if !attrs[i].Equal(want[i]) {
			t.Errorf("attr %d = %v, want %v", i, attrs[i], want[i])
		}
	}
}
