package entity

import (
	"errors"
	"fmt"
)

// Standard domain errors
var (
	ErrRateLimitExceeded = errors.New("rate limit exceeded: daily menu request budget used up")
	ErrInvalidRequest    = errors.New("invalid request parameters")
	ErrUnknownBackend    = errors.New("unknown generation backend")
	ErrEmptyCompletion   = errors.New("backend returned an empty completion")
)

// GenerationError is the single fatal failure class for backend calls:
// network or auth failure, rate limiting, timeout, empty completion. It
// always carries the backend identity and the underlying cause, and is
// never masked as a successful-but-empty plan.
type GenerationError struct {
	Backend Backend
	Model   string
	Err     error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed on %s (%s): %v", e.Backend, e.Model, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// DecodeStage tells which stage of response decoding rejected the reply.
type DecodeStage string

const (
	StageExtract DecodeStage = "extract" // no structured block found
	StageParse   DecodeStage = "parse"   // malformed JSON syntax
	StageSlots   DecodeStage = "slots"   // fewer than five meal slots
)

// DecodeError is a fatal rejection of the model's reply. Raw retains the
// full model output for diagnosis.
type DecodeError struct {
	Stage DecodeStage
	Raw   string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("menu plan rejected at %s stage: %v", e.Stage, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
