package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bellhop/bellhop/internal/ai"
	"github.com/bellhop/bellhop/internal/channel"
	"github.com/bellhop/bellhop/internal/gatekeeper"
	"github.com/bellhop/bellhop/internal/matcher"
	"github.com/bellhop/bellhop/internal/models"
	"github.com/bellhop/bellhop/internal/session"
	"gorm.io/gorm"
)

// Processor runs one inbound message through the full pipeline: gate
// checks, session lookup, deterministic matching, AI fallback, delivery,
// and bookkeeping.
type Processor struct {
	db        *gorm.DB
	store     *session.Store
	sender    channel.Sender
	responder *ai.Responder
	registry  *matcher.Registry
	account   string
}

// ProcessorOpts collects the processor's collaborators. DB, Store, and
// Sender are required; Responder and Registry are optional.
type ProcessorOpts struct {
	DB        *gorm.DB
	Store     *session.Store
	Sender    channel.Sender
	Responder *ai.Responder
	Registry  *matcher.Registry
	Account   string
}

// NewProcessor creates a Processor.
func NewProcessor(opts ProcessorOpts) (*Processor, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("bot: processor: db is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("bot: processor: store is required")
	}
	if opts.Sender == nil {
		return nil, fmt.Errorf("bot: processor: sender is required")
	}
	if opts.Account == "" {
		return nil, fmt.Errorf("bot: processor: account is required")
	}
	return &Processor{
		db:        opts.DB,
		store:     opts.Store,
		sender:    opts.Sender,
		responder: opts.Responder,
		registry:  opts.Registry,
		account:   opts.Account,
	}, nil
}

// Process handles one inbound message end to end. A suppressed message (gate
// checks) or one producing no reply leaves at most the incoming record
// behind; an error before the session lookup leaves no trace at all.
func (p *Processor) Process(ctx context.Context, msg channel.InboundMessage) error {
	// The processor is bound to one account; its snapshot, gate checks, and
	// session rows all assume it. A message for another account must not be
	// processed under this account's settings.
	if msg.Account == "" {
		msg.Account = p.account
	} else if msg.Account != p.account {
		return fmt.Errorf("bot: message for account %q on processor bound to %q", msg.Account, p.account)
	}

	snap, err := LoadSnapshot(p.db, p.account)
	if err != nil {
		return err
	}

	if !gatekeeper.ShouldProcess(msg, snap.Gatekeeper(), p.store, time.Now()) {
		return nil
	}

	sess, err := p.store.GetOrCreate(msg.Sender, msg.Account)
	if err != nil {
		return err
	}
	if err := p.store.AppendMessage(sess.ID, models.DirectionIncoming, msg.Text, sess.CurrentStep); err != nil {
		return err
	}

	reply, responseType, stepName := p.selectReply(ctx, snap, msg, sess)
	if strings.TrimSpace(reply) == "" {
		return nil
	}

	if err := p.sender.Send(msg.Account, msg.Sender, reply); err != nil {
		return fmt.Errorf("bot: send reply to %s: %w", msg.Sender, err)
	}

	if err := p.store.AppendMessage(sess.ID, models.DirectionOutgoing, reply, stepName); err != nil {
		return err
	}
	if err := p.store.SetLastResponseType(sess.ID, responseType); err != nil {
		return err
	}
	return nil
}

// selectReply runs the matcher, applies its session-state directives, and
// falls through to the AI responder when nothing deterministic matched.
func (p *Processor) selectReply(ctx context.Context, snap *Snapshot, msg channel.InboundMessage, sess *models.ChatSession) (reply, responseType, stepName string) {
	if resp := snap.Matcher(p.registry).Match(msg.Text, sess); resp != nil {
		p.applyDirectives(sess.ID, resp)
		return resp.Text, resp.Type, resp.StepKey
	}

	if p.responder == nil {
		return "", "", ""
	}
	return p.aiReply(ctx, snap, msg, sess), models.ResponseTypeAI, ""
}

// applyDirectives applies the matcher's flow-cursor directives through the
// store. Failures are logged; the reply itself still goes out.
func (p *Processor) applyDirectives(sessionID uint, resp *matcher.Response) {
	switch {
	case resp.Complete:
		if err := p.store.MarkCompleted(sessionID); err != nil {
			log.Printf("bot: complete session %d: %v", sessionID, err)
		}
	case resp.SetFlow:
		if err := p.store.AdvanceFlow(sessionID, resp.FlowName, resp.StepKey); err != nil {
			log.Printf("bot: advance session %d: %v", sessionID, err)
		}
	}
}

// aiReply invokes the AI responder with the snapshot's context sources and
// the session's recent history.
func (p *Processor) aiReply(ctx context.Context, snap *Snapshot, msg channel.InboundMessage, sess *models.ChatSession) string {
	s := snap.AISettings()

	var history []models.SessionMessage
	if s.IncludeHistory {
		limit := s.HistoryLimit
		if limit <= 0 {
			limit = 4
		}
		// Fetch one extra and drop the tail: the just-appended incoming
		// message is passed to the responder separately.
		msgs, err := p.store.History(sess.ID, limit+1)
		if err != nil {
			log.Printf("bot: history for session %d: %v", sess.ID, err)
		} else if n := len(msgs); n > 0 {
			history = msgs[:n-1]
		}
	}

	responder := *p.responder
	responder.Context = snap.ContextBuilder(p.db)
	return responder.Respond(ctx, msg.Sender, msg.Text, history, s)
}
