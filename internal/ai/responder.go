package ai

import (
	"context"
	"log"

	"github.com/bellhop/bellhop/internal/models"
)

const (
	// DefaultMaxRetries bounds provider attempts per message.
	DefaultMaxRetries = 3
	// historyTurnCap truncates long history turns to keep prompts small.
	historyTurnCap = 200

	defaultModelMaxTokens = 500
	defaultSystemPrompt   = "You are a helpful assistant."
)

// Settings configures one responder invocation, taken from the bot
// settings snapshot.
type Settings struct {
	Model          string
	SystemPrompt   string
	MaxTokens      int
	Temperature    float64
	IncludeHistory bool
	HistoryLimit   int
}

// Responder generates AI replies when no deterministic match exists. It
// consults the cache first, assembles context, dispatches to the provider
// with bounded retries, and caches successful responses.
type Responder struct {
	Provider   Provider
	Cache      *Cache
	Context    *ContextBuilder
	MaxRetries int
}

// Respond returns the reply text, or "" when no AI response is available.
// It never returns an error to surface to the end user: provider failures
// are logged and demoted to "no response".
func (r *Responder) Respond(ctx context.Context, sender, message string, history []models.SessionMessage, s Settings) string {
	if r.Provider == nil {
		return ""
	}

	key := Key(sender, message)
	if r.Cache != nil {
		if cached, ok := r.Cache.Get(key); ok {
			return cached
		}
	}

	req := r.buildRequest(sender, message, history, s)

	maxRetries := r.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	for attempt := 1; attempt <= maxRetries; attempt++ {
		text, err := r.Provider.Generate(ctx, req)
		if err != nil {
			log.Printf("ai: %s generate failed (attempt %d/%d): %v",
				r.Provider.Name(), attempt, maxRetries, err)
			continue
		}
		if text == "" {
			// Nothing is cached on an empty result so the next call is
			// not throttled by it.
			return ""
		}
		if r.Cache != nil {
			r.Cache.Set(key, text)
		}
		return text
	}

	log.Printf("ai: %s retries exhausted for %q", r.Provider.Name(), truncate(message, 50))
	return ""
}

// buildRequest assembles the role-tagged message sequence: assembled
// context, a trailing window of history turns truncated per turn, and the
// current user message.
func (r *Responder) buildRequest(sender, message string, history []models.SessionMessage, s Settings) Request {
	req := Request{
		Model:       s.Model,
		System:      s.SystemPrompt,
		MaxTokens:   s.MaxTokens,
		Temperature: s.Temperature,
	}
	if req.System == "" {
		req.System = defaultSystemPrompt
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = defaultModelMaxTokens
	}

	if r.Context != nil {
		req.Context = r.Context.Build(message, sender)
	}

	if s.IncludeHistory && len(history) > 0 {
		limit := s.HistoryLimit
		if limit <= 0 {
			limit = 4
		}
		if len(history) > limit {
			history = history[len(history)-limit:]
		}
		for _, msg := range history {
			role := "assistant"
			if msg.Direction == models.DirectionIncoming {
				role = "user"
			}
			req.Messages = append(req.Messages, Message{
				Role:    role,
				Content: truncate(msg.Body, historyTurnCap),
			})
		}
	}

	req.Messages = append(req.Messages, Message{Role: "user", Content: message})
	return req
}
