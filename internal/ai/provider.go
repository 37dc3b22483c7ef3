// Package ai implements the fallback responder: prompt/context assembly,
// provider dispatch, response caching, and bounded retries.
package ai

import "context"

// Message is one role-tagged turn in a provider request.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Request carries everything a provider needs to generate a reply. Context
// is the assembled supplementary text; each provider places it where its
// API expects system-level content.
type Request struct {
	Model       string
	System      string
	Context     string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// Provider generates a text reply from a role-tagged message sequence.
// Implementations are interchangeable strategies: same inputs, same
// text-or-error output.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}
