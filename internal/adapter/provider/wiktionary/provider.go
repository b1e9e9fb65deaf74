package wiktionary

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/heartmarshall/envi-dictionary/internal/domain"
	"github.com/heartmarshall/envi-dictionary/internal/provider"
)

// DefaultBaseURL is the public English Wiktionary host.
const DefaultBaseURL = "https://en.wiktionary.org"

const definitionPath = "/api/rest_v1/page/definition/"

// Provider looks up English definitions through the Wiktionary REST API.
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
		log:        logger.With("adapter", "wiktionary"),
	}
}

// apiUsage is one part-of-speech block of a language section.
type apiUsage struct {
	PartOfSpeech string          `json:"partOfSpeech"`
	Language     string          `json:"language"`
	Definitions  []apiDefinition `json:"definitions"`
}

type apiDefinition struct {
	Definition string `json:"definition"`
}

// Define returns the part of speech and the first definition of the English
// section with markup removed. Returns nil, nil if the word is not found or
// has no English definitions.
func (p *Provider) Define(ctx context.Context, word string) (*provider.Definition, error) {
	reqURL := p.baseURL + definitionPath + url.PathEscape(word)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("wiktionary: create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wiktionary: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wiktionary: %w", &provider.StatusError{Provider: "wiktionary", Code: resp.StatusCode})
	}

	var sections map[string][]apiUsage
	if err := json.NewDecoder(resp.Body).Decode(&sections); err != nil {
		return nil, fmt.Errorf("wiktionary: decode json: %w: %w", domain.ErrMalformed, err)
	}

	usages := sections["en"]
	if len(usages) == 0 {
		return nil, nil
	}
	first := usages[0]
	if len(first.Definitions) == 0 {
		return nil, fmt.Errorf("wiktionary: %q has no definitions: %w", word, domain.ErrMalformed)
	}

	text, err := StripMarkup(first.Definitions[0].Definition)
	if err != nil {
		return nil, fmt.Errorf("wiktionary: strip markup: %w", err)
	}

	p.log.DebugContext(ctx, "wiktionary response",
		slog.String("word", word),
		slog.String("pos", first.PartOfSpeech),
	)

	return &provider.Definition{
		PartOfSpeech: strings.ToLower(first.PartOfSpeech),
		Text:         text,
	}, nil
}

// StripMarkup returns the text content of an HTML fragment with runs of
// whitespace collapsed.
func StripMarkup(fragment string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", err
	}
	return strings.Join(strings.Fields(doc.Text()), " "), nil
}
