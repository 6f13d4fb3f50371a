package ai

import "errors"

var (
	// ErrEmptyResponse indicates that the model returned no choices.
	ErrEmptyResponse = errors.New("model returned empty response")
)
