// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"strings"

	"github.com/pdiddy/article-engine/pkg/types"
)

// Request is the input to one pipeline run.
type Request struct {
	Topic string     `json:"topic" yaml:"topic"`
	Tone  types.Tone `json:"tone,omitempty" yaml:"tone,omitempty"`
}

// ValidationError reports a malformed request. It is distinct from every
// pipeline status: no stage runs for an invalid request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Validate trims the topic, defaults an empty tone and rejects a blank
// topic or an unknown tone.
func (r *Request) Validate() error {
	r.Topic = strings.TrimSpace(r.Topic)
	if r.Topic == "" {
		return &ValidationError{Field: "topic", Message: "topic is required"}
	}
	r.Tone = types.Tone(strings.ToLower(strings.TrimSpace(string(r.Tone))))
	if r.Tone == "" {
		r.Tone = types.DefaultTone
	}
	if !r.Tone.Valid() {
		return &ValidationError{
			Field:   "tone",
			Message: fmt.Sprintf("unknown tone %q (want one of %s)", r.Tone, joinTones()),
		}
	}
	return nil
}

func joinTones() string {
	names := make([]string, len(types.Tones))
	for i, t := range types.Tones {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
