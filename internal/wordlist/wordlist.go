// Package wordlist loads the newline-delimited list of words to crawl.
package wordlist

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/heartmarshall/envi-dictionary/internal/domain"
	"github.com/heartmarshall/envi-dictionary/internal/provider"
)

// Load reads a word list from a local path or an http(s) URL.
// Blank lines and lines starting with '#' are skipped; words are normalized
// and de-duplicated keeping the first occurrence.
func Load(ctx context.Context, client *http.Client, source string) ([]string, error) {
	if isURL(source) {
		return download(ctx, client, source)
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("wordlist: open %s: %w", source, err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads words from r.
func Parse(r io.Reader) ([]string, error) {
	var words []string
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		word := domain.NormalizeText(line)
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		words = append(words, word)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("wordlist: read: %w", err)
	}
	return words, nil
}

func download(ctx context.Context, client *http.Client, rawURL string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("wordlist: create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wordlist: download %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wordlist: download %s: %w", rawURL, &provider.StatusError{Provider: "wordlist", Code: resp.StatusCode})
	}

	return Parse(resp.Body)
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
