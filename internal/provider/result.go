package provider

import (
	"fmt"
	"net/http"
)

// DictionaryResult is the first entry returned by a dictionary provider,
// reduced to the fields the crawler persists.
type DictionaryResult struct {
	Word string
	// Phonetic is the entry-level transcription, or the first populated
	// transcription of the entry when the top-level one is missing.
	Phonetic string
	// PartOfSpeech comes from the first meaning group.
	PartOfSpeech string
	// Gloss is the first English definition of the first meaning group.
	Gloss string
}

// Definition is a monolingual definition returned by a cross-reference source.
type Definition struct {
	PartOfSpeech string
	Text         string
}

// StatusError reports an upstream response with an unexpected HTTP status.
type StatusError struct {
	Provider string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d %s", e.Provider, e.Code, http.StatusText(e.Code))
}
