package matcher

import (
	"errors"
	"testing"

	"github.com/bellhop/bellhop/internal/models"
)

func textRule(id uint, keywords, matchType, response string, priority int) models.KeywordReply {
	return models.KeywordReply{
		ID:           id,
		Keywords:     keywords,
		MatchType:    matchType,
		ResponseType: models.ReplyText,
		Response:     response,
		Priority:     priority,
		Position:     int(id),
		Enabled:      true,
	}
}

func TestMatch_MatchTypes(t *testing.T) {
	tests := []struct {
		name      string
		matchType string
		keywords  string
		text      string
		want      bool
	}{
		{"exact hit", models.MatchExact, "hi", "Hi", true},
		{"exact miss on extra words", models.MatchExact, "hi", "hi there", false},
		{"contains hit", models.MatchContains, "price", "what is the price?", true},
		{"contains miss", models.MatchContains, "price", "hello", false},
		{"starts with hit", models.MatchStartsWith, "order", "Order #123 status", true},
		{"starts with miss", models.MatchStartsWith, "order", "my order", false},
		{"second keyword hits", models.MatchContains, "cost, price", "the price please", true},
		{"empty tokens ignored", models.MatchContains, " , ,price", "price?", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Matcher{Rules: []models.KeywordReply{textRule(1, tt.keywords, tt.matchType, "reply", 0)}}
			resp := m.Match(tt.text, nil)
			if got := resp != nil; got != tt.want {
				t.Errorf("Match(%q) matched = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestMatch_BlankTextNeverMatches(t *testing.T) {
	m := &Matcher{Rules: []models.KeywordReply{textRule(1, "hi", models.MatchContains, "reply", 0)}}

	for _, text := range []string{"", "   ", "\n\t"} {
		if m.Match(text, nil) != nil {
			t.Errorf("Match(%q) matched, want nil", text)
		}
	}
}

func TestMatch_PriorityThenDeclarationOrder(t *testing.T) {
	m := &Matcher{Rules: []models.KeywordReply{
		textRule(1, "hello", models.MatchContains, "low", 0),
		textRule(2, "hello", models.MatchContains, "high", 5),
		textRule(3, "hello", models.MatchContains, "also high", 5),
	}}

	resp := m.Match("hello there", nil)
	if resp == nil {
		t.Fatal("expected a match")
	}
	if resp.Text != "high" {
		t.Errorf("Text = %q, want %q (priority desc, then declaration order)", resp.Text, "high")
	}
}

func TestMatch_DisabledRulesExcluded(t *testing.T) {
	disabled := textRule(1, "hello", models.MatchContains, "disabled reply", 10)
	disabled.Enabled = false

	m := &Matcher{Rules: []models.KeywordReply{
		disabled,
		textRule(2, "hello", models.MatchContains, "enabled reply", 0),
	}}

	resp := m.Match("hello", nil)
	if resp == nil {
		t.Fatal("expected a match")
	}
	if resp.Text != "enabled reply" {
		t.Errorf("Text = %q, want the enabled rule's reply", resp.Text)
	}
}

func TestMatch_NoRuleMatches(t *testing.T) {
	m := &Matcher{Rules: []models.KeywordReply{textRule(1, "price", models.MatchContains, "reply", 0)}}

	if resp := m.Match("tell me a joke", nil); resp != nil {
		t.Errorf("Match = %+v, want nil (fall through to AI)", resp)
	}
}

func TestMatch_CustomHandler(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register("order_status", func(ctx Context) (string, error) {
		return "Your order ships tomorrow, " + ctx.Sender, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	rule := textRule(1, "order", models.MatchContains, "", 0)
	rule.ResponseType = models.ReplyCustom
	rule.CustomHandler = "order_status"

	m := &Matcher{Rules: []models.KeywordReply{rule}, Registry: reg}
	sess := &models.ChatSession{ID: 1, Sender: "+15550001111", Account: "A"}

	resp := m.Match("where is my order?", sess)
	if resp == nil {
		t.Fatal("expected a match")
	}
	if resp.Type != models.ResponseTypeCustom {
		t.Errorf("Type = %q, want Custom", resp.Type)
	}
	if resp.Text != "Your order ships tomorrow, +15550001111" {
		t.Errorf("Text = %q", resp.Text)
	}
}

func TestMatch_CustomHandlerFailureFallsThrough(t *testing.T) {
	reg := NewRegistry()
	reg.Register("broken", func(ctx Context) (string, error) {
		return "", errors.New("upstream down")
	})

	rule := textRule(1, "order", models.MatchContains, "", 0)
	rule.ResponseType = models.ReplyCustom
	rule.CustomHandler = "broken"

	m := &Matcher{Rules: []models.KeywordReply{rule}, Registry: reg}

	if resp := m.Match("order please", nil); resp != nil {
		t.Errorf("Match = %+v, want nil (handler failure falls through to AI)", resp)
	}
}

func TestMatch_CustomHandlerUnregistered(t *testing.T) {
	rule := textRule(1, "order", models.MatchContains, "", 0)
	rule.ResponseType = models.ReplyCustom
	rule.CustomHandler = "ghost"

	m := &Matcher{Rules: []models.KeywordReply{rule}, Registry: NewRegistry()}

	if resp := m.Match("order please", nil); resp != nil {
		t.Errorf("Match = %+v, want nil", resp)
	}
}
