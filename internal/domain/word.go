package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxMeaningLen is the maximum number of runes stored in the meanings column.
const MaxMeaningLen = 500

// Provenance tags stored in the source column.
const (
	SourceAPI                = "api"
	SourceAPIRetry           = "api_retry"
	SourceAPIRetryMyMemory   = "api_retry_mymemory"
	SourceAPIRetryWiktionary = "api_retry_wiktionary"
	SourceMerge              = "vi+en"
)

// ConflictPolicy selects what a batch write does when a word already exists.
type ConflictPolicy int

const (
	// ConflictIgnore keeps the stored row (ON CONFLICT DO NOTHING).
	ConflictIgnore ConflictPolicy = iota
	// ConflictUpdate overwrites meaning, part of speech and phonetic (ON CONFLICT DO UPDATE).
	ConflictUpdate
)

func (p ConflictPolicy) String() string {
	switch p {
	case ConflictIgnore:
		return "ignore"
	case ConflictUpdate:
		return "update"
	}
	return fmt.Sprintf("ConflictPolicy(%d)", int(p))
}

// WordRecord is one row of the dictionary table.
// Records are built once per fetch attempt and never mutated afterwards.
type WordRecord struct {
	Word                  string
	PartOfSpeech          *string
	PartOfSpeechLocalized string
	Phonetic              *string
	Meaning               string
	Definitions           *string
	Source                string
}

// NewWordRecord builds a record, deriving the localized part of speech and
// truncating the meaning to MaxMeaningLen runes. Empty pos/phonetic become nil.
func NewWordRecord(word, pos, phonetic, meaning, source string) WordRecord {
	rec := WordRecord{
		Word:                  word,
		PartOfSpeechLocalized: LocalizePOS(pos),
		Meaning:               Truncate(strings.TrimSpace(meaning), MaxMeaningLen),
		Source:                source,
	}
	if pos != "" {
		rec.PartOfSpeech = &pos
	}
	if phonetic != "" {
		rec.Phonetic = &phonetic
	}
	return rec
}

// POS returns the part of speech or "" when unknown.
func (r WordRecord) POS() string {
	if r.PartOfSpeech == nil {
		return ""
	}
	return *r.PartOfSpeech
}

// ValidateMeaning reports whether meaning is usable for word: it must be
// non-empty and must not be the word itself (an untranslated echo).
func ValidateMeaning(word, meaning string) error {
	meaning = strings.TrimSpace(meaning)
	if meaning == "" {
		return ErrEmptyMeaning
	}
	if meaning == word {
		return ErrEchoMeaning
	}
	return nil
}

// Validate checks the record invariants required before persistence.
func (r WordRecord) Validate() error {
	if r.Word == "" {
		return fmt.Errorf("word: %w", ErrValidation)
	}
	return ValidateMeaning(r.Word, r.Meaning)
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
