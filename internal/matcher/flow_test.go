package matcher

import (
	"testing"

	"github.com/bellhop/bellhop/internal/models"
)

// orderFlow is a three-step flow with a two-way branch after the entry step.
func orderFlow() *Matcher {
	flowRule := models.KeywordReply{
		ID:           1,
		Keywords:     "order",
		MatchType:    models.MatchContains,
		ResponseType: models.ReplyFlow,
		FlowName:     "order",
		Enabled:      true,
	}
	return &Matcher{
		Rules: []models.KeywordReply{flowRule},
		Flows: []models.Flow{{Name: "order", EntryStep: "ask_kind", Enabled: true}},
		Steps: []models.FlowStep{
			{FlowName: "order", StepKey: "ask_kind", Trigger: "", Response: "New order or existing order?", NextSteps: "new_order, track_order"},
			{FlowName: "order", StepKey: "new_order", Trigger: "new", Response: "What would you like to order?", NextSteps: "confirm"},
			{FlowName: "order", StepKey: "track_order", Trigger: "existing, track", Response: "Send your order number.", NextSteps: "confirm"},
			{FlowName: "order", StepKey: "confirm", Trigger: "", Response: "Thanks, we are on it!", NextSteps: ""},
		},
	}
}

func inFlow(flow, step string) *models.ChatSession {
	return &models.ChatSession{ID: 1, Sender: "+15550001111", CurrentFlow: flow, CurrentStep: step}
}

func TestFlowEntry(t *testing.T) {
	m := orderFlow()

	resp := m.Match("I want to order", nil)
	if resp == nil {
		t.Fatal("expected flow entry")
	}
	if resp.Type != models.ResponseTypeFlow {
		t.Errorf("Type = %q, want Flow", resp.Type)
	}
	if resp.Text != "New order or existing order?" {
		t.Errorf("Text = %q, want entry step response", resp.Text)
	}
	if !resp.SetFlow || resp.FlowName != "order" || resp.StepKey != "ask_kind" {
		t.Errorf("cursor directive = %+v, want SetFlow to order/ask_kind", resp)
	}
}

func TestFlowBranch_FirstMatchingCandidate(t *testing.T) {
	m := orderFlow()

	resp := m.Match("track my existing order", inFlow("order", "ask_kind"))
	if resp == nil {
		t.Fatal("expected branch advance")
	}
	if resp.StepKey != "track_order" {
		t.Errorf("StepKey = %q, want track_order", resp.StepKey)
	}
	if resp.Text != "Send your order number." {
		t.Errorf("Text = %q, want arrived step response", resp.Text)
	}
}

func TestFlowBranch_NoCandidateMatches(t *testing.T) {
	m := orderFlow()

	if resp := m.Match("purple monkey dishwasher", inFlow("order", "ask_kind")); resp != nil {
		t.Errorf("Match = %+v, want nil when no branch accepts the input", resp)
	}
}

func TestFlowSingleNext_AdvancesUnconditionally(t *testing.T) {
	m := orderFlow()

	resp := m.Match("new shoes please", inFlow("order", "new_order"))
	if resp == nil {
		t.Fatal("expected advance")
	}
	if resp.StepKey != "confirm" {
		t.Errorf("StepKey = %q, want confirm", resp.StepKey)
	}
}

func TestFlowTerminalStep_Completes(t *testing.T) {
	m := orderFlow()

	// new_order's trigger is "new"; its single next step (confirm) is terminal.
	resp := m.Match("new", inFlow("order", "new_order"))
	if resp == nil {
		t.Fatal("expected advance to terminal step")
	}
	if !resp.Complete {
		t.Error("arriving at a step with no next steps must complete the session")
	}
	if resp.SetFlow {
		t.Error("terminal arrival must not set the cursor")
	}
	if resp.Text != "Thanks, we are on it!" {
		t.Errorf("Text = %q, want terminal step response", resp.Text)
	}
}

func TestFlowStep_TriggerMiss(t *testing.T) {
	m := orderFlow()

	// new_order awaits "new"; other text falls through to AI without
	// touching the keyword rules.
	if resp := m.Match("order", inFlow("order", "new_order")); resp != nil {
		t.Errorf("Match = %+v, want nil (only the current step is evaluated)", resp)
	}
}

func TestFlowMissingStep(t *testing.T) {
	m := orderFlow()

	if resp := m.Match("anything", inFlow("order", "ghost_step")); resp != nil {
		t.Errorf("Match = %+v, want nil for missing step", resp)
	}
}

func TestFlowRule_DisabledFlowSkipped(t *testing.T) {
	m := orderFlow()
	m.Flows[0].Enabled = false
	m.Rules = append(m.Rules, models.KeywordReply{
		ID: 2, Keywords: "order", MatchType: models.MatchContains,
		ResponseType: models.ReplyText, Response: "fallback", Priority: -1, Position: 2, Enabled: true,
	})

	resp := m.Match("order", nil)
	if resp == nil {
		t.Fatal("expected fallback rule to match")
	}
	if resp.Text != "fallback" {
		t.Errorf("Text = %q, want lower-priority fallback when flow is disabled", resp.Text)
	}
}

func TestFlowEntry_TerminalEntryCompletesImmediately(t *testing.T) {
	m := &Matcher{
		Rules: []models.KeywordReply{{
			ID: 1, Keywords: "bye", MatchType: models.MatchContains,
			ResponseType: models.ReplyFlow, FlowName: "farewell", Enabled: true,
		}},
		Flows: []models.Flow{{Name: "farewell", EntryStep: "goodbye", Enabled: true}},
		Steps: []models.FlowStep{{FlowName: "farewell", StepKey: "goodbye", Response: "Bye!", NextSteps: ""}},
	}

	resp := m.Match("bye", nil)
	if resp == nil {
		t.Fatal("expected match")
	}
	if !resp.Complete || resp.SetFlow {
		t.Errorf("single-step flow must complete on entry, got %+v", resp)
	}
}
