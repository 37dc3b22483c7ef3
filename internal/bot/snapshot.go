// Package bot wires the processing pipeline together: gate checks, session
// bookkeeping, deterministic matching, and the AI fallback.
package bot

import (
	"fmt"

	"github.com/bellhop/bellhop/internal/ai"
	"github.com/bellhop/bellhop/internal/gatekeeper"
	"github.com/bellhop/bellhop/internal/matcher"
	"github.com/bellhop/bellhop/internal/models"
	"gorm.io/gorm"
)

// Snapshot is the immutable configuration slice one message is processed
// against. It is loaded once per message so a mid-processing config edit
// never produces a half-old, half-new decision.
type Snapshot struct {
	Settings models.BotSettings
	Excluded []models.ExcludedNumber
	Hours    []models.BusinessHours
	Rules    []models.KeywordReply
	Flows    []models.Flow
	Steps    []models.FlowStep
	AIRules  []models.AIContextRule
	KB       []models.KnowledgeBaseEntry
}

// LoadSnapshot reads the full configuration for an account.
func LoadSnapshot(db *gorm.DB, account string) (*Snapshot, error) {
	snap := &Snapshot{}

	if err := db.Where("account = ?", account).First(&snap.Settings).Error; err != nil {
		return nil, fmt.Errorf("bot: load settings for %q: %w", account, err)
	}
	if err := db.Find(&snap.Excluded).Error; err != nil {
		return nil, fmt.Errorf("bot: load excluded numbers: %w", err)
	}
	if err := db.Find(&snap.Hours).Error; err != nil {
		return nil, fmt.Errorf("bot: load business hours: %w", err)
	}
	if err := db.Order("priority DESC, position ASC").Find(&snap.Rules).Error; err != nil {
		return nil, fmt.Errorf("bot: load keyword rules: %w", err)
	}
	if err := db.Find(&snap.Flows).Error; err != nil {
		return nil, fmt.Errorf("bot: load flows: %w", err)
	}
	if err := db.Find(&snap.Steps).Error; err != nil {
		return nil, fmt.Errorf("bot: load flow steps: %w", err)
	}
	if err := db.Find(&snap.AIRules).Error; err != nil {
		return nil, fmt.Errorf("bot: load ai context rules: %w", err)
	}
	if err := db.Find(&snap.KB).Error; err != nil {
		return nil, fmt.Errorf("bot: load knowledge base: %w", err)
	}
	return snap, nil
}

// Gatekeeper returns the gate-check view of the snapshot.
func (s *Snapshot) Gatekeeper() gatekeeper.Settings {
	return gatekeeper.Settings{
		Enabled:  s.Settings.Enabled,
		Excluded: s.Excluded,
		Hours:    s.Hours,
	}
}

// Matcher returns a matcher over the snapshot's rules and flows.
func (s *Snapshot) Matcher(registry *matcher.Registry) *matcher.Matcher {
	return &matcher.Matcher{
		Rules:    s.Rules,
		Flows:    s.Flows,
		Steps:    s.Steps,
		Registry: registry,
	}
}

// AISettings returns the per-invocation responder settings.
func (s *Snapshot) AISettings() ai.Settings {
	return ai.Settings{
		Model:          s.Settings.AIModel,
		SystemPrompt:   s.Settings.AISystemPrompt,
		MaxTokens:      s.Settings.AIMaxTokens,
		Temperature:    s.Settings.AITemperature,
		IncludeHistory: s.Settings.AIIncludeHistory,
		HistoryLimit:   s.Settings.AIHistoryLimit,
	}
}

// ContextBuilder returns the AI context assembly view of the snapshot.
func (s *Snapshot) ContextBuilder(db *gorm.DB) *ai.ContextBuilder {
	return &ai.ContextBuilder{DB: db, Rules: s.AIRules, KB: s.KB}
}
