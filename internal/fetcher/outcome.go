// Package fetcher resolves a single word into a dictionary record by
// querying upstream sources in a fixed priority order.
package fetcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/sony/gobreaker"

	"github.com/heartmarshall/envi-dictionary/internal/domain"
	"github.com/heartmarshall/envi-dictionary/internal/provider"
)

// Reason classifies why a word produced no usable record.
type Reason string

const (
	ReasonNoDefinition Reason = "no-definition"
	ReasonMalformed    Reason = "malformed-response"
	ReasonEchoOrEmpty  Reason = "echo-or-empty-translation"
	ReasonNetwork      Reason = "network"
	ReasonExhausted    Reason = "exhausted"
	ReasonPanic        Reason = "panic"
)

// Failure is the terminal error of one word.
type Failure struct {
	Reason Reason
	Err    error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return string(f.Reason)
	}
	return fmt.Sprintf("%s: %v", f.Reason, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Outcome is the result of fetching one word: either a record or a failure.
type Outcome struct {
	Word    string
	Record  domain.WordRecord
	Failure *Failure
}

// OK reports whether the outcome carries a record.
func (o Outcome) OK() bool { return o.Failure == nil }

// Success wraps a record in an Outcome.
func Success(rec domain.WordRecord) Outcome {
	return Outcome{Word: rec.Word, Record: rec}
}

// Fail builds a failed Outcome.
func Fail(word string, reason Reason, err error) Outcome {
	return Outcome{Word: word, Failure: &Failure{Reason: reason, Err: err}}
}

// Fetcher resolves one word. Implementations never panic on upstream errors
// and report every problem through the returned Outcome.
type Fetcher interface {
	Fetch(ctx context.Context, word string) Outcome
}

// Classify maps an error returned by a source or a strategy to a Reason.
func Classify(err error) Reason {
	var se *provider.StatusError

	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrEmptyMeaning), errors.Is(err, domain.ErrEchoMeaning):
		return ReasonEchoOrEmpty
	case errors.Is(err, domain.ErrMalformed):
		return ReasonMalformed
	case errors.Is(err, domain.ErrNotFound):
		return ReasonNoDefinition
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return ReasonNetwork
	case errors.As(err, &se):
		if se.Code == 429 || se.Code >= 500 {
			return ReasonNetwork
		}
		return ReasonNoDefinition
	default:
		return ReasonNetwork
	}
}
