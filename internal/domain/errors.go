package domain

import (
	"errors"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound     = errors.New("not found")
	ErrMalformed    = errors.New("malformed payload")
	ErrEmptyMeaning = errors.New("empty meaning")
	ErrEchoMeaning  = errors.New("meaning echoes the word")
	ErrValidation   = errors.New("validation error")

	ErrAlreadyExists = errors.New("already exists")
	ErrSchemaMissing = errors.New("schema not migrated")
)
