// Package llm defines the interface for text-generation services.
package llm

import (
	"context"
)

// Prompt carries the two message roles the generation services accept.
type Prompt struct {
	// System is the fixed instruction framing the task.
	System string
	// User is the request payload, typically embedding the source text.
	User string
}

// Provider defines the interface for interacting with LLM services.
type Provider interface {
	// GenerateText sends a prompt under the named profile and returns the
	// text response.
	GenerateText(ctx context.Context, name string, prompt Prompt) (string, error)

	// HasProfile checks if the provider has a specific profile configured.
	HasProfile(name string) bool
}
