package core

import (
	"errors"
	"fmt"
)

// Failure classes the pipeline distinguishes. The transport maps these to
// status codes; guardrail-driven rejections are designed soft failures and
// carry a fixed user-visible message.
var (
	ErrClient              = errors.New("client error")
	ErrValidationRejected  = errors.New("input failed validation")
	ErrInsufficientContext = errors.New("insufficient context")
	ErrUpstream            = errors.New("upstream call failed")
	ErrUpstreamTimeout     = errors.New("upstream call timed out")
	ErrOutputRejected      = errors.New("output failed validation")
	ErrCacheUnavailable    = errors.New("cache unavailable")
	ErrOverloaded          = errors.New("too many in-flight requests")
)

// PipelineError attaches the failing stage to a failure class.
type PipelineError struct {
	Stage string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

func StageError(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &PipelineError{Stage: stage, Err: err}
}
