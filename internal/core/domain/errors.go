package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrEmptyCorpus indicates corpus loading yielded zero chunks.
	// An index cannot be built from nothing, so this is fatal to
	// index construction even though individual document failures
	// are not.
	ErrEmptyCorpus = errors.New("corpus produced no chunks")

	// ErrNotReady indicates a query was issued before the index
	// was built.
	ErrNotReady = errors.New("index not ready")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates the configuration failed validation
	// at startup. Queries never run against an invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrDimensionMismatch indicates the query-time embedding dimension
	// differs from the build-time dimension. This is a configuration
	// fault (wrong model identity), never a silent wrong answer.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// TransportError wraps a failure to reach the embedding or language
// model service. Transport failures propagate to the caller of a
// query; they are never converted into the fallback answer, which is
// reserved for insufficient evidence.
type TransportError struct {
	// Service names the collaborator that failed ("embedding" or "llm").
	Service string

	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s service: %v", e.Service, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// GenerationError wraps a language model call failure during answer
// generation (timeout, auth, rate limit). It exists so callers can
// distinguish "service unavailable" from "insufficient evidence":
// the latter is modeled as data (the fallback answer), not an error.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
