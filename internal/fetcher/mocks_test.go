package fetcher

import (
	"context"
	"io"
	"log/slog"

	"github.com/heartmarshall/envi-dictionary/internal/provider"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockDictionary struct {
	fetchFn func(ctx context.Context, word string) (*provider.DictionaryResult, error)
}

func (m *mockDictionary) FetchEntry(ctx context.Context, word string) (*provider.DictionaryResult, error) {
	return m.fetchFn(ctx, word)
}

type mockTranslator struct {
	translateFn func(ctx context.Context, text string) (string, error)
}

func (m *mockTranslator) Translate(ctx context.Context, text string) (string, error) {
	return m.translateFn(ctx, text)
}

type mockDefinition struct {
	defineFn func(ctx context.Context, word string) (*provider.Definition, error)
}

func (m *mockDefinition) Define(ctx context.Context, word string) (*provider.Definition, error) {
	return m.defineFn(ctx, word)
}

func dictReturning(res *provider.DictionaryResult, err error) *mockDictionary {
	return &mockDictionary{fetchFn: func(context.Context, string) (*provider.DictionaryResult, error) {
		return res, err
	}}
}

func translatorReturning(s string, err error) *mockTranslator {
	return &mockTranslator{translateFn: func(context.Context, string) (string, error) {
		return s, err
	}}
}

var helloEntry = &provider.DictionaryResult{
	Word:         "hello",
	Phonetic:     "/həˈloʊ/",
	PartOfSpeech: "interjection",
	Gloss:        "A greeting (salutation) said when meeting someone or acknowledging someone's arrival or presence.",
}
