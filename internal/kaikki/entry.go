// Package kaikki reads Wiktionary dumps in the kaikki.org JSONL format.
package kaikki

import (
	"strings"

	"github.com/heartmarshall/envi-dictionary/internal/domain"
)

// Entry is one line of a kaikki.org dump. Only the fields used by the merge
// are decoded.
type Entry struct {
	Word         string        `json:"word"`
	Lang         string        `json:"lang"`
	LangCode     string        `json:"lang_code"`
	POS          string        `json:"pos"`
	Senses       []Sense       `json:"senses"`
	Sounds       []Sound       `json:"sounds"`
	Translations []Translation `json:"translations"`
}

// Sense is a single meaning of an entry.
type Sense struct {
	Glosses      []string      `json:"glosses"`
	Translations []Translation `json:"translations"`
}

// Sound is a pronunciation.
type Sound struct {
	IPA  string   `json:"ipa"`
	Tags []string `json:"tags"`
}

// Translation points at the same word in another language. Dumps spell the
// language field either lang_code or code.
type Translation struct {
	LangCode string `json:"lang_code"`
	Code     string `json:"code"`
	Word     string `json:"word"`
}

// Lang returns the language code of the translation.
func (t Translation) Lang() string {
	if t.LangCode != "" {
		return t.LangCode
	}
	return t.Code
}

// Key is the lookup key of the entry: the normalized headword.
func (e *Entry) Key() string {
	return domain.NormalizeText(e.Word)
}

// Glosses returns every cleaned, non-empty gloss of every sense, in order,
// without duplicates.
func (e *Entry) Glosses() []string {
	var out []string
	seen := make(map[string]struct{})
	for _, s := range e.Senses {
		for _, g := range s.Glosses {
			g = CleanGloss(g)
			if g == "" {
				continue
			}
			if _, ok := seen[g]; ok {
				continue
			}
			seen[g] = struct{}{}
			out = append(out, g)
		}
	}
	return out
}

// IPA returns the first non-empty IPA transcription, or "".
func (e *Entry) IPA() string {
	for _, s := range e.Sounds {
		if ipa := strings.TrimSpace(s.IPA); ipa != "" {
			return ipa
		}
	}
	return ""
}

// TranslationTo returns the first translation into lang, looking at the
// entry level first and then at each sense.
func (e *Entry) TranslationTo(lang string) string {
	for _, t := range e.Translations {
		if t.Lang() == lang && strings.TrimSpace(t.Word) != "" {
			return strings.TrimSpace(t.Word)
		}
	}
	for _, s := range e.Senses {
		for _, t := range s.Translations {
			if t.Lang() == lang && strings.TrimSpace(t.Word) != "" {
				return strings.TrimSpace(t.Word)
			}
		}
	}
	return ""
}
