// Package matcher evaluates keyword rules and flow steps against incoming
// messages to select a deterministic response. It is side-effect free: flow
// cursor changes are returned as directives for the caller to apply through
// the session store.
package matcher

import (
	"log"
	"sort"
	"strings"

	"github.com/bellhop/bellhop/internal/models"
)

// Response is a deterministic reply selected by the matcher, plus the
// session-state directives the caller must apply.
type Response struct {
	Text     string
	Type     string // models.ResponseType*
	FlowName string
	StepKey  string
	SetFlow  bool // set the session cursor to (FlowName, StepKey)
	Complete bool // mark the session Completed and clear the cursor
}

// Matcher holds the rule set for one account, taken from an immutable
// configuration snapshot.
type Matcher struct {
	Rules    []models.KeywordReply
	Flows    []models.Flow
	Steps    []models.FlowStep
	Registry *Registry
}

// Match selects a deterministic response for the message, or nil to signal
// the caller to fall through to the AI responder. A session with an active
// flow cursor is evaluated only against its current step.
func (m *Matcher) Match(text string, sess *models.ChatSession) *Response {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if sess != nil && sess.CurrentFlow != "" && sess.CurrentStep != "" {
		return m.matchFlowStep(text, sess)
	}
	return m.matchRules(text, sess)
}

// matchRules scans enabled keyword rules ordered by priority desc then
// declaration order; the first rule with any matching keyword wins.
func (m *Matcher) matchRules(text string, sess *models.ChatSession) *Response {
	rules := make([]models.KeywordReply, 0, len(m.Rules))
	for _, r := range m.Rules {
		if r.Enabled {
			rules = append(rules, r)
		}
	}
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority > rules[j].Priority
		}
		return rules[i].Position < rules[j].Position
	})

	for _, rule := range rules {
		if !anyKeywordMatches(text, rule.Keywords, rule.MatchType) {
			continue
		}

		switch rule.ResponseType {
		case models.ReplyFlow:
			if resp := m.enterFlow(rule.FlowName); resp != nil {
				return resp
			}
			// Broken flow reference: keep scanning lower-priority rules.
		case models.ReplyCustom:
			return m.dispatchCustom(rule, text, sess)
		default:
			return &Response{Text: rule.Response, Type: models.ResponseTypeText}
		}
	}
	return nil
}

// enterFlow moves the session onto the flow's entry step and returns the
// entry step's response. Returns nil if the flow or its entry step is
// missing or disabled.
func (m *Matcher) enterFlow(flowName string) *Response {
	flow := m.findFlow(flowName)
	if flow == nil || !flow.Enabled {
		log.Printf("matcher: flow %q not found or disabled", flowName)
		return nil
	}
	entry := m.findStep(flow.Name, flow.EntryStep)
	if entry == nil {
		log.Printf("matcher: flow %q entry step %q not found", flow.Name, flow.EntryStep)
		return nil
	}
	return m.arriveAt(flow.Name, entry)
}

// dispatchCustom invokes the rule's registered handler. Handler failures
// are logged and treated as no-match so the caller falls through to AI.
func (m *Matcher) dispatchCustom(rule models.KeywordReply, text string, sess *models.ChatSession) *Response {
	if m.Registry == nil {
		log.Printf("matcher: rule %d: no handler registry configured", rule.ID)
		return nil
	}
	handler, ok := m.Registry.Resolve(rule.CustomHandler)
	if !ok {
		log.Printf("matcher: rule %d: handler %q not registered", rule.ID, rule.CustomHandler)
		return nil
	}

	ctx := Context{Text: text, Session: sess}
	if sess != nil {
		ctx.Sender = sess.Sender
		ctx.Account = sess.Account
	}
	reply, err := handler(ctx)
	if err != nil {
		log.Printf("matcher: handler %q failed: %v", rule.CustomHandler, err)
		return nil
	}
	if reply == "" {
		return nil
	}
	return &Response{Text: reply, Type: models.ResponseTypeCustom}
}

// anyKeywordMatches tests the message against a comma-separated keyword
// list using the rule's match type. Empty tokens are ignored.
func anyKeywordMatches(text, keywords, matchType string) bool {
	lower := strings.ToLower(text)
	for _, kw := range splitList(keywords) {
		if keywordMatches(lower, strings.ToLower(kw), matchType) {
			return true
		}
	}
	return false
}

// keywordMatches tests one lowercased keyword against the lowercased text.
func keywordMatches(text, keyword, matchType string) bool {
	switch matchType {
	case models.MatchExact:
		return text == keyword
	case models.MatchStartsWith:
		return strings.HasPrefix(text, keyword)
	default: // Contains
		return strings.Contains(text, keyword)
	}
}

// splitList splits a comma-separated list, trimming whitespace and dropping
// empty tokens.
func splitList(list string) []string {
	var out []string
	for _, tok := range strings.Split(list, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

func (m *Matcher) findFlow(name string) *models.Flow {
	for i := range m.Flows {
		if m.Flows[i].Name == name {
			return &m.Flows[i]
		}
	}
	return nil
}

func (m *Matcher) findStep(flowName, stepKey string) *models.FlowStep {
	for i := range m.Steps {
		if m.Steps[i].FlowName == flowName && m.Steps[i].StepKey == stepKey {
			return &m.Steps[i]
		}
	}
	return nil
}
