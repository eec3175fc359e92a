package models

import (
	"errors"
	"fmt"
)

// Application-wide standard errors
var (
	// Caller input
	ErrValidation = errors.New("validation error")

	// Session state
	ErrStoryNotGenerated = errors.New("story has not been generated yet")

	// Configuration
	ErrMissingCredential = errors.New("api credential is not configured")

	// Upstream services
	ErrUpstream          = errors.New("upstream service error")
	ErrRateLimited       = errors.New("upstream rate limit exceeded")
	ErrPermissionDenied  = errors.New("upstream permission denied")
	ErrMalformedResponse = errors.New("malformed upstream response")
	ErrGenerationTimeout = errors.New("generation timed out")

	// Story data
	ErrStoryParse       = errors.New("failed to parse story JSON")
	ErrUnknownCharacter = errors.New("scene references unknown character")
	ErrSceneIncomplete  = errors.New("scene data is incomplete")
)

// UpstreamError is returned when a generative service answers with a failure.
// Kind is one of ErrUpstream, ErrRateLimited or ErrPermissionDenied.
type UpstreamError struct {
	Service    string
	Kind       error
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Service, e.Kind)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *UpstreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// ParseError carries the text that could not be decoded as a story.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v: %v", ErrStoryParse, e.Err)
	}
	return ErrStoryParse.Error()
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrStoryParse}
	}
	return []error{ErrStoryParse, e.Err}
}
