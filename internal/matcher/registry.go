package matcher

import (
	"fmt"
	"sort"

	"github.com/bellhop/bellhop/internal/models"
)

// Context carries the message and session details passed to a custom
// response handler.
type Context struct {
	Sender  string
	Account string
	Text    string
	Session *models.ChatSession
}

// HandlerFunc produces a textual reply for a Custom keyword rule.
type HandlerFunc func(ctx Context) (string, error)

// Registry maps capability names to custom response handlers. Names act as
// an allow-list: rules referencing unregistered names are rejected at
// configuration time, never resolved dynamically at request time.
type Registry struct {
	handlers map[string]HandlerFunc
}

// NewRegistry creates an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]HandlerFunc)}
}

// Register adds a handler under a capability name. Duplicate names and nil
// handlers are rejected.
func (r *Registry) Register(name string, fn HandlerFunc) error {
	if name == "" {
		return fmt.Errorf("matcher: register: name is required")
	}
	if fn == nil {
		return fmt.Errorf("matcher: register %q: handler is nil", name)
	}
	if _, exists := r.handlers[name]; exists {
		return fmt.Errorf("matcher: register %q: already registered", name)
	}
	r.handlers[name] = fn
	return nil
}

// Resolve looks up a handler by name.
func (r *Registry) Resolve(name string) (HandlerFunc, bool) {
	fn, ok := r.handlers[name]
	return fn, ok
}

// Names returns the registered capability names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateRules checks every enabled Custom rule against the registry's
// allow-list so misconfigured handlers are caught at load time.
func ValidateRules(rules []models.KeywordReply, reg *Registry) error {
	for _, rule := range rules {
		if !rule.Enabled || rule.ResponseType != models.ReplyCustom {
			continue
		}
		if rule.CustomHandler == "" {
			return fmt.Errorf("matcher: rule %d: custom handler name is empty", rule.ID)
		}
		if reg == nil {
			return fmt.Errorf("matcher: rule %d: handler %q but no registry configured", rule.ID, rule.CustomHandler)
		}
		if _, ok := reg.Resolve(rule.CustomHandler); !ok {
			return fmt.Errorf("matcher: rule %d: handler %q is not registered", rule.ID, rule.CustomHandler)
		}
	}
	return nil
}
