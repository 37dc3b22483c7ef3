package ai

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/bellhop/bellhop/internal/models"
	"github.com/bellhop/bellhop/internal/phone"
	"gorm.io/gorm"
)

// ContextBuilder assembles supplementary prompt text from configured
// context rules and the knowledge base. A single failing source is logged
// and skipped; it never aborts the whole assembly.
type ContextBuilder struct {
	DB    *gorm.DB // required only for table-query rules
	Rules []models.AIContextRule
	KB    []models.KnowledgeBaseEntry
}

// Build concatenates, in priority order, matching static-text rules, the
// serialized results of table-query rules, and matching knowledge-base
// entries formatted as Q/A pairs.
func (b *ContextBuilder) Build(message, senderPhone string) string {
	messageLower := strings.ToLower(message)

	rules := make([]models.AIContextRule, 0, len(b.Rules))
	for _, r := range b.Rules {
		if r.Enabled {
			rules = append(rules, r)
		}
	}
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})

	var parts []string
	for _, rule := range rules {
		if !triggerKeywordsMatch(rule.TriggerKeywords, messageLower) {
			continue
		}

		switch rule.ContextType {
		case models.ContextTableQuery:
			data, err := b.queryTable(rule, senderPhone)
			if err != nil {
				log.Printf("ai: context %q: %v", rule.Title, err)
				continue
			}
			if len(data) == 0 {
				continue
			}
			serialized, err := json.Marshal(data)
			if err != nil {
				log.Printf("ai: context %q: serialize: %v", rule.Title, err)
				continue
			}
			parts = append(parts, fmt.Sprintf("[%s]\n%s", rule.Title, serialized))
		default: // Static Text
			if rule.StaticContent != "" {
				parts = append(parts, fmt.Sprintf("[%s]\n%s", rule.Title, rule.StaticContent))
			}
		}
	}

	if kb := b.knowledgeBase(messageLower); kb != "" {
		parts = append(parts, kb)
	}

	return strings.Join(parts, "\n\n")
}

// queryTable runs a table-query rule against the database, optionally
// restricted to rows matching the sender's phone variants.
func (b *ContextBuilder) queryTable(rule models.AIContextRule, senderPhone string) ([]map[string]interface{}, error) {
	if rule.QueryTable == "" {
		return nil, fmt.Errorf("query table is empty")
	}
	if b.DB == nil {
		return nil, fmt.Errorf("no database configured")
	}

	query := b.DB.Table(rule.QueryTable)

	if rule.Filters != "" {
		filters := make(map[string]interface{})
		if err := json.Unmarshal([]byte(rule.Filters), &filters); err != nil {
			return nil, fmt.Errorf("parse filters: %w", err)
		}
		if len(filters) > 0 {
			query = query.Where(filters)
		}
	}

	if rule.UserSpecific && rule.PhoneField != "" && senderPhone != "" {
		query = query.Where(rule.PhoneField+" IN ?", phone.Variants(senderPhone))
	}

	if fields := splitList(rule.Fields); len(fields) > 0 {
		query = query.Select(fields)
	}

	limit := rule.MaxResults
	if limit <= 0 {
		limit = 10
	}

	var rows []map[string]interface{}
	if err := query.Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query %s: %w", rule.QueryTable, err)
	}
	return rows, nil
}

// knowledgeBase formats matching active entries as Q/A pairs. Entries
// match on keyword containment, or on topic substring when they carry no
// keywords.
func (b *ContextBuilder) knowledgeBase(messageLower string) string {
	var relevant []string
	for _, entry := range b.KB {
		if !entry.Active {
			continue
		}
		if matchesKB(entry, messageLower) {
			relevant = append(relevant, fmt.Sprintf("Q: %s\nA: %s", entry.Topic, entry.Content))
		}
	}
	if len(relevant) == 0 {
		return ""
	}
	return "[Knowledge Base]\n" + strings.Join(relevant, "\n---\n")
}

func matchesKB(entry models.KnowledgeBaseEntry, messageLower string) bool {
	keywords := splitList(entry.Keywords)
	if len(keywords) > 0 {
		for _, kw := range keywords {
			if strings.Contains(messageLower, strings.ToLower(kw)) {
				return true
			}
		}
		return false
	}
	return entry.Topic != "" && strings.Contains(messageLower, strings.ToLower(entry.Topic))
}

// triggerKeywordsMatch applies a rule's optional keyword filter. An empty
// filter always applies.
func triggerKeywordsMatch(keywords, messageLower string) bool {
	list := splitList(keywords)
	if len(list) == 0 {
		return true
	}
	for _, kw := range list {
		if strings.Contains(messageLower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// splitList splits a comma-separated list, trimming whitespace and
// dropping empty tokens.
func splitList(list string) []string {
	var out []string
	for _, tok := range strings.Split(list, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}
