package mymemory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/heartmarshall/envi-dictionary/internal/domain"
	"github.com/heartmarshall/envi-dictionary/internal/provider"
)

// DefaultBaseURL is the public MyMemory translation host.
const DefaultBaseURL = "https://api.mymemory.translated.net"

// Provider translates English text to Vietnamese through the MyMemory API.
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
		log:        logger.With("adapter", "mymemory"),
	}
}

type apiResponse struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
	ResponseStatus status `json:"responseStatus"`
}

// status accepts both 200 and "200"; the API is inconsistent about it.
type status int

func (s *status) UnmarshalJSON(b []byte) error {
	raw := strings.Trim(string(b), `"`)
	if raw == "" || raw == "null" {
		*s = 0
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("responseStatus %q: %w", raw, err)
	}
	*s = status(n)
	return nil
}

// Translate returns the translated text when the API reports success.
// A non-200 responseStatus inside a 200 reply is reported as a *provider.StatusError.
func (p *Provider) Translate(ctx context.Context, text string) (string, error) {
	q := url.Values{}
	q.Set("q", text)
	q.Set("langpair", "en|vi")
	reqURL := p.baseURL + "/get?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("mymemory: create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("mymemory: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("mymemory: %w", &provider.StatusError{Provider: "mymemory", Code: resp.StatusCode})
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("mymemory: decode json: %w: %w", domain.ErrMalformed, err)
	}

	if body.ResponseStatus != http.StatusOK {
		return "", fmt.Errorf("mymemory: %w", &provider.StatusError{Provider: "mymemory", Code: int(body.ResponseStatus)})
	}

	p.log.DebugContext(ctx, "mymemory response",
		slog.String("text", text),
		slog.String("translation", domain.Truncate(body.ResponseData.TranslatedText, 30)),
	)

	return body.ResponseData.TranslatedText, nil
}
