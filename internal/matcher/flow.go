package matcher

import (
	"log"

	"github.com/bellhop/bellhop/internal/models"
)

// matchFlowStep evaluates the session's current step against the message.
// On a trigger match the cursor advances per the step's next-step rule:
// a single candidate is taken unconditionally, multiple candidates branch
// to the first whose own trigger matches the message. The response emitted
// is that of the step arrived at.
func (m *Matcher) matchFlowStep(text string, sess *models.ChatSession) *Response {
	current := m.findStep(sess.CurrentFlow, sess.CurrentStep)
	if current == nil {
		log.Printf("matcher: session %d points at missing step %s/%s",
			sess.ID, sess.CurrentFlow, sess.CurrentStep)
		return nil
	}

	if !triggerMatches(text, current.Trigger) {
		return nil
	}

	next := m.selectNext(text, current)
	if next == nil {
		// Current step was awaiting input but no branch accepts it.
		return nil
	}
	return m.arriveAt(current.FlowName, next)
}

// selectNext picks the step the cursor advances to. Candidates referencing
// missing steps are skipped.
func (m *Matcher) selectNext(text string, current *models.FlowStep) *models.FlowStep {
	candidates := splitList(current.NextSteps)

	if len(candidates) == 1 {
		next := m.findStep(current.FlowName, candidates[0])
		if next == nil {
			log.Printf("matcher: flow %q step %q references missing step %q",
				current.FlowName, current.StepKey, candidates[0])
		}
		return next
	}

	for _, key := range candidates {
		next := m.findStep(current.FlowName, key)
		if next == nil {
			log.Printf("matcher: flow %q step %q references missing step %q",
				current.FlowName, current.StepKey, key)
			continue
		}
		if triggerMatches(text, next.Trigger) {
			return next
		}
	}
	return nil
}

// arriveAt emits the step's response and either completes the session
// (terminal step, no next candidates) or parks the cursor on the step.
func (m *Matcher) arriveAt(flowName string, step *models.FlowStep) *Response {
	resp := &Response{
		Text:     step.Response,
		Type:     models.ResponseTypeFlow,
		FlowName: flowName,
		StepKey:  step.StepKey,
	}
	if len(splitList(step.NextSteps)) == 0 {
		resp.Complete = true
	} else {
		resp.SetFlow = true
	}
	return resp
}

// triggerMatches tests a step trigger against the message. An empty trigger
// accepts any non-empty text; otherwise any keyword containment matches.
func triggerMatches(text, trigger string) bool {
	if trigger == "" {
		return text != ""
	}
	return anyKeywordMatches(text, trigger, models.MatchContains)
}
