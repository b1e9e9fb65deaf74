package gtranslate

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

// DefaultBaseURL is the public Google Translate host used by the gtx client.
const DefaultBaseURL = "https://translate.googleapis.com"

const translatePath = "/translate_a/single"

// Provider translates English text to Vietnamese through the unauthenticated
// gtx endpoint.
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
		log:        logger.With("adapter", "gtranslate"),
	}
}

// Translate returns the first translated segment of text.
// An empty string with a nil error means the service had no translation.
func (p *Provider) Translate(ctx context.Context, text string) (string, error) {
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", "en")
	q.Set("tl", "vi")
	q.Set("dt", "t")
	q.Set("q", text)
	reqURL := p.baseURL + translatePath + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("gtranslate: create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gtranslate: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gtranslate: %w", &provider.StatusError{Provider: "gtranslate", Code: resp.StatusCode})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("gtranslate: read body: %w", err)
	}

	translated, err := firstSegment(body)
	if err != nil {
		return "", fmt.Errorf("gtranslate: %w", err)
	}

	p.log.DebugContext(ctx, "gtranslate response",
		slog.String("text", text),
		slog.String("translation", domain.Truncate(translated, 30)),
	)

	return translated, nil
}

// firstSegment extracts payload[0][0][0]. The payload is a positional array:
// [[["xin chào","hello",null,null,10]],null,"en",...].
// A null or empty segment list yields "".
func firstSegment(body []byte) (string, error) {
	var payload []json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode json: %w: %w", domain.ErrMalformed, err)
	}
	if len(payload) == 0 {
		return "", nil
	}

	var segments [][]json.RawMessage
	if err := json.Unmarshal(payload[0], &segments); err != nil {
		return "", fmt.Errorf("decode segments: %w: %w", domain.ErrMalformed, err)
	}
	if len(segments) == 0 || len(segments[0]) == 0 {
		return "", nil
	}

	var translated *string
	if err := json.Unmarshal(segments[0][0], &translated); err != nil {
		return "", fmt.Errorf("decode segment: %w: %w", domain.ErrMalformed, err)
	}
	if translated == nil {
		return "", nil
	}
	return *translated, nil
}
