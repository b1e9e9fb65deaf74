package fetcher

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/envi-dictionary/internal/domain"
	"github.com/heartmarshall/envi-dictionary/internal/provider"
)

func initialConfig() PrimaryConfig {
	return PrimaryConfig{
		DictionaryTimeout: time.Second,
		TranslateTimeout:  time.Second,
		GlossMaxLen:       200,
		Source:            domain.SourceAPI,
	}
}

func TestPrimary_Success(t *testing.T) {
	t.Parallel()

	p := NewPrimary(dictReturning(helloEntry, nil), translatorReturning("xin chào", nil), initialConfig(), discardLogger())

	out := p.Fetch(context.Background(), "hello")

	require.True(t, out.OK(), "failure: %v", out.Failure)
	assert.Equal(t, "hello", out.Word)
	assert.Equal(t, "xin chào", out.Record.Meaning)
	assert.Equal(t, "interjection", out.Record.POS())
	assert.Equal(t, "Thán từ", out.Record.PartOfSpeechLocalized)
	require.NotNil(t, out.Record.Phonetic)
	assert.Equal(t, "/həˈloʊ/", *out.Record.Phonetic)
	assert.Equal(t, domain.SourceAPI, out.Record.Source)
}

func TestPrimary_NotFound(t *testing.T) {
	t.Parallel()

	translated := false
	tr := &mockTranslator{translateFn: func(context.Context, string) (string, error) {
		translated = true
		return "x", nil
	}}
	p := NewPrimary(dictReturning(nil, nil), tr, initialConfig(), discardLogger())

	out := p.Fetch(context.Background(), "xyzzy123notaword")

	require.False(t, out.OK())
	assert.Equal(t, ReasonNoDefinition, out.Failure.Reason)
	assert.False(t, translated, "translation must not be called without a definition")
}

func TestPrimary_DictionaryStatusError(t *testing.T) {
	t.Parallel()

	p := NewPrimary(
		dictReturning(nil, &provider.StatusError{Provider: "freedict", Code: 400}),
		translatorReturning("x", nil), initialConfig(), discardLogger())

	out := p.Fetch(context.Background(), "bad")
	require.False(t, out.OK())
	assert.Equal(t, ReasonNoDefinition, out.Failure.Reason)
}

func TestPrimary_DictionaryMalformed(t *testing.T) {
	t.Parallel()

	p := NewPrimary(
		dictReturning(nil, domain.ErrMalformed),
		translatorReturning("x", nil), initialConfig(), discardLogger())

	out := p.Fetch(context.Background(), "bad")
	require.False(t, out.OK())
	assert.Equal(t, ReasonMalformed, out.Failure.Reason)
}

func TestPrimary_DictionaryNetworkError(t *testing.T) {
	t.Parallel()

	p := NewPrimary(
		dictReturning(nil, errors.New("dial tcp: connection refused")),
		translatorReturning("x", nil), initialConfig(), discardLogger())

	out := p.Fetch(context.Background(), "hello")
	require.False(t, out.OK())
	assert.Equal(t, ReasonNetwork, out.Failure.Reason)
}

func TestPrimary_EchoRejected(t *testing.T) {
	t.Parallel()

	p := NewPrimary(dictReturning(helloEntry, nil), translatorReturning("hello", nil), initialConfig(), discardLogger())

	out := p.Fetch(context.Background(), "hello")

	require.False(t, out.OK())
	assert.Equal(t, ReasonEchoOrEmpty, out.Failure.Reason)
}

func TestPrimary_TranslationErrorFallsBackToGloss(t *testing.T) {
	t.Parallel()

	p := NewPrimary(dictReturning(helloEntry, nil), translatorReturning("", errors.New("timeout")), initialConfig(), discardLogger())

	out := p.Fetch(context.Background(), "hello")

	require.True(t, out.OK(), "failure: %v", out.Failure)
	assert.Equal(t, helloEntry.Gloss, out.Record.Meaning)
}

func TestPrimary_EmptyTranslationFallsBackToTruncatedGloss(t *testing.T) {
	t.Parallel()

	entry := *helloEntry
	entry.Gloss = strings.Repeat("g", 300)
	p := NewPrimary(dictReturning(&entry, nil), translatorReturning("  ", nil), initialConfig(), discardLogger())

	out := p.Fetch(context.Background(), "hello")

	require.True(t, out.OK())
	assert.Len(t, out.Record.Meaning, 200)
}

func TestPrimary_NoTranslationNoGloss(t *testing.T) {
	t.Parallel()

	entry := *helloEntry
	entry.Gloss = ""
	p := NewPrimary(dictReturning(&entry, nil), translatorReturning("", nil), initialConfig(), discardLogger())

	out := p.Fetch(context.Background(), "hello")

	require.False(t, out.OK())
	assert.Equal(t, ReasonEchoOrEmpty, out.Failure.Reason)
}

func TestPrimary_FallbackOnEcho(t *testing.T) {
	t.Parallel()

	cfg := initialConfig()
	cfg.FallbackOnEcho = true
	cfg.Source = domain.SourceAPIRetry
	p := NewPrimary(dictReturning(helloEntry, nil), translatorReturning("hello", nil), cfg, discardLogger())

	out := p.Fetch(context.Background(), "hello")

	require.True(t, out.OK())
	assert.Equal(t, helloEntry.Gloss, out.Record.Meaning)
	assert.Equal(t, domain.SourceAPIRetry, out.Record.Source)
}

func TestPrimary_WaitsBeforeTranslation(t *testing.T) {
	t.Parallel()

	var dictAt, trAt time.Time
	dict := &mockDictionary{fetchFn: func(context.Context, string) (*provider.DictionaryResult, error) {
		dictAt = time.Now()
		return helloEntry, nil
	}}
	tr := &mockTranslator{translateFn: func(context.Context, string) (string, error) {
		trAt = time.Now()
		return "xin chào", nil
	}}

	cfg := initialConfig()
	cfg.TranslateDelay = 30 * time.Millisecond
	p := NewPrimary(dict, tr, cfg, discardLogger())

	require.True(t, p.Fetch(context.Background(), "hello").OK())
	assert.GreaterOrEqual(t, trAt.Sub(dictAt), 30*time.Millisecond)
}

func TestPrimary_AppliesPerCallTimeouts(t *testing.T) {
	t.Parallel()

	var dictDeadline, trDeadline time.Duration
	dict := &mockDictionary{fetchFn: func(ctx context.Context, _ string) (*provider.DictionaryResult, error) {
		d, ok := ctx.Deadline()
		require.True(t, ok)
		dictDeadline = time.Until(d)
		return helloEntry, nil
	}}
	tr := &mockTranslator{translateFn: func(ctx context.Context, _ string) (string, error) {
		d, ok := ctx.Deadline()
		require.True(t, ok)
		trDeadline = time.Until(d)
		return "xin chào", nil
	}}

	cfg := initialConfig()
	cfg.DictionaryTimeout = 15 * time.Second
	cfg.TranslateTimeout = 10 * time.Second
	p := NewPrimary(dict, tr, cfg, discardLogger())

	require.True(t, p.Fetch(context.Background(), "hello").OK())
	assert.InDelta(t, 15*time.Second, dictDeadline, float64(time.Second))
	assert.InDelta(t, 10*time.Second, trDeadline, float64(time.Second))
}

func TestPrimary_CancelledDuringDelay(t *testing.T) {
	t.Parallel()

	cfg := initialConfig()
	cfg.TranslateDelay = time.Hour
	p := NewPrimary(dictReturning(helloEntry, nil), translatorReturning("xin chào", nil), cfg, discardLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	out := p.Fetch(ctx, "hello")
	require.False(t, out.OK())
	assert.Equal(t, ReasonNetwork, out.Failure.Reason)
	assert.ErrorIs(t, out.Failure, context.DeadlineExceeded)
}
