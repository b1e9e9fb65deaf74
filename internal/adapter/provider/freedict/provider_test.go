package freedict

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/heartmarshall/envi-dictionary/internal/domain"
	"github.com/heartmarshall/envi-dictionary/internal/provider"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewProvider(srv.Client(), srv.URL, newTestLogger())
}

func jsonHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(body))
	}
}

func TestProvider_FetchEntry_Success(t *testing.T) {
	t.Parallel()

	body := `[{
		"word": "hello",
		"phonetic": "/həˈloʊ/",
		"phonetics": [
			{"text": "/hɛˈləʊ/", "audio": "https://example.com/hello-uk.mp3"}
		],
		"meanings": [
			{
				"partOfSpeech": "interjection",
				"definitions": [
					{"definition": "A greeting (salutation) said when meeting someone.", "example": "Hello, everyone."},
					{"definition": "Used to attract attention."}
				]
			},
			{
				"partOfSpeech": "noun",
				"definitions": [{"definition": "\"Hello!\" or an equivalent greeting."}]
			}
		]
	}]`

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/entries/en/hello" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		jsonHandler(body)(w, r)
	})

	result, err := p.FetchEntry(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil {
		t.Fatal("expected non-nil result")
	}

	if result.Word != "hello" {
		t.Errorf("Word = %q, want %q", result.Word, "hello")
	}
	if result.Phonetic != "/həˈloʊ/" {
		t.Errorf("Phonetic = %q, want top-level /həˈloʊ/", result.Phonetic)
	}
	if result.PartOfSpeech != "interjection" {
		t.Errorf("PartOfSpeech = %q, want interjection (first meaning group)", result.PartOfSpeech)
	}
	if result.Gloss != "A greeting (salutation) said when meeting someone." {
		t.Errorf("Gloss = %q", result.Gloss)
	}
}

func TestProvider_FetchEntry_PhoneticFallsBackToFirstPopulated(t *testing.T) {
	t.Parallel()

	body := `[{
		"word": "test",
		"phonetics": [
			{"text": "", "audio": "https://example.com/test.mp3"},
			{"text": "/tɛst/"},
			{"text": "/tɛːst/"}
		],
		"meanings": []
	}]`

	p := newTestProvider(t, jsonHandler(body))
	result, err := p.FetchEntry(context.Background(), "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Phonetic != "/tɛst/" {
		t.Errorf("Phonetic = %q, want /tɛst/", result.Phonetic)
	}
	if result.PartOfSpeech != "" || result.Gloss != "" {
		t.Errorf("expected empty POS and gloss, got %q / %q", result.PartOfSpeech, result.Gloss)
	}
}

func TestProvider_FetchEntry_OnlyFirstEntryUsed(t *testing.T) {
	t.Parallel()

	body := `[
		{"word": "run", "meanings": [{"partOfSpeech": "verb", "definitions": [{"definition": "To move fast."}]}]},
		{"word": "run", "phonetic": "/rʌn/", "meanings": [{"partOfSpeech": "noun", "definitions": [{"definition": "An act of running."}]}]}
	]`

	p := newTestProvider(t, jsonHandler(body))
	result, err := p.FetchEntry(context.Background(), "run")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.PartOfSpeech != "verb" {
		t.Errorf("PartOfSpeech = %q, want verb", result.PartOfSpeech)
	}
	if result.Phonetic != "" {
		t.Errorf("Phonetic = %q, want empty (second entry ignored)", result.Phonetic)
	}
}

func TestProvider_FetchEntry_NotFound(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"title":"No Definitions Found"}`))
	})

	result, err := p.FetchEntry(context.Background(), "xyzzy123notaword")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != nil {
		t.Fatalf("expected nil result for 404, got %+v", result)
	}
}

func TestProvider_FetchEntry_EmptyList(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, jsonHandler(`[]`))

	result, err := p.FetchEntry(context.Background(), "nothing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != nil {
		t.Fatalf("expected nil result for empty list, got %+v", result)
	}
}

func TestProvider_FetchEntry_UnexpectedStatus(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := p.FetchEntry(context.Background(), "fail")
	if err == nil {
		t.Fatal("expected error for 500")
	}

	var se *provider.StatusError
	if !errors.As(err, &se) || se.Code != http.StatusInternalServerError {
		t.Errorf("expected StatusError 500, got %v", err)
	}
}

func TestProvider_FetchEntry_InvalidJSON(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, jsonHandler(`not valid json`))

	_, err := p.FetchEntry(context.Background(), "bad")
	if !errors.Is(err, domain.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestProvider_FetchEntry_ObjectInsteadOfList(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, jsonHandler(`{"word":"odd"}`))

	_, err := p.FetchEntry(context.Background(), "odd")
	if !errors.Is(err, domain.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestProvider_FetchEntry_EscapesWord(t *testing.T) {
	t.Parallel()

	var gotPath string
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusNotFound)
	})

	if _, err := p.FetchEntry(context.Background(), "ice cream"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/api/v2/entries/en/ice%20cream" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestProvider_FetchEntry_ContextCancelled(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, jsonHandler(`[]`))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.FetchEntry(ctx, "hello")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
