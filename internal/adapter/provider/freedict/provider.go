package freedict

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/heartmarshall/envi-dictionary/internal/domain"
	"github.com/heartmarshall/envi-dictionary/internal/provider"
)

// DefaultBaseURL is the public FreeDictionary API host.
const DefaultBaseURL = "https://api.dictionaryapi.dev"

const entriesPath = "/api/v2/entries/en/"

// Provider fetches dictionary data from the FreeDictionary API.
// Retries and timeouts are the responsibility of the injected client and
// the caller's context.
type Provider struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewProvider creates a Provider. An empty baseURL selects DefaultBaseURL.
func NewProvider(client *http.Client, baseURL string, logger *slog.Logger) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Provider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
		log:        logger.With("adapter", "freedict"),
	}
}

// FetchEntry fetches the first dictionary entry for the given word.
// Returns nil, nil if the word is not found (HTTP 404 or an empty entry list).
func (p *Provider) FetchEntry(ctx context.Context, word string) (*provider.DictionaryResult, error) {
	reqURL := p.baseURL + entriesPath + url.PathEscape(word)

	p.log.DebugContext(ctx, "freedict request", slog.String("word", word))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("freedict: create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("freedict: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("freedict: %w", &provider.StatusError{Provider: "freedict", Code: resp.StatusCode})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("freedict: read body: %w", err)
	}

	var entries []apiEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("freedict: decode json: %w: %w", domain.ErrMalformed, err)
	}

	if len(entries) == 0 {
		return nil, nil
	}

	result := mapAPIEntry(entries[0])

	p.log.DebugContext(ctx, "freedict response",
		slog.String("word", word),
		slog.String("pos", result.PartOfSpeech),
		slog.Bool("has_phonetic", result.Phonetic != ""),
	)

	return result, nil
}

// mapAPIEntry reduces one API entry to a provider.DictionaryResult.
func mapAPIEntry(entry apiEntry) *provider.DictionaryResult {
	result := &provider.DictionaryResult{
		Word:     entry.Word,
		Phonetic: entry.Phonetic,
	}

	if result.Phonetic == "" {
		for _, ph := range entry.Phonetics {
			if ph.Text != "" {
				result.Phonetic = ph.Text
				break
			}
		}
	}

	if len(entry.Meanings) > 0 {
		first := entry.Meanings[0]
		result.PartOfSpeech = first.PartOfSpeech
		if len(first.Definitions) > 0 {
			result.Gloss = first.Definitions[0].Definition
		}
	}

	return result
}
