package models

import "time"

// Keyword rule match types.
const (
	MatchExact      = "Exact"
	MatchContains   = "Contains"
	MatchStartsWith = "Starts With"
)

// Keyword rule response types.
const (
	ReplyText   = "Text"
	ReplyFlow   = "Flow"
	ReplyCustom = "Custom"
)

// KeywordReply maps a static keyword pattern to a response. Rules are
// evaluated first-match-wins ordered by priority desc, then by Position
// (declaration order).
type KeywordReply struct {
	ID            uint   `gorm:"primaryKey;autoIncrement"`
	Account       string `gorm:"size:64;index"`
	Keywords      string `gorm:"size:512;not null"` // comma-separated list
	MatchType     string `gorm:"size:16;default:Contains"`
	ResponseType  string `gorm:"size:16;default:Text"` // Text, Flow, Custom
	Response      string `gorm:"type:text"`
	FlowName      string `gorm:"size:128"` // for ResponseType Flow
	CustomHandler string `gorm:"size:128"` // registry name, for ResponseType Custom
	Priority      int    `gorm:"default:0;index"`
	Position      int    `gorm:"default:0"`
	Enabled       bool   `gorm:"default:true;index"`
	CreatedAt     time.Time
}

// Flow is a named multi-turn scripted interaction. The entry step is where
// a session lands when a Flow-type keyword rule matches.
type Flow struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	Name      string `gorm:"size:128;not null;uniqueIndex"`
	EntryStep string `gorm:"size:128;not null"`
	Enabled   bool   `gorm:"default:true"`
	CreatedAt time.Time

	Steps []FlowStep `gorm:"foreignKey:FlowName;references:Name"`
}

// FlowStep is one node in a flow's directed graph. NextSteps holds a
// comma-separated list of candidate step keys; advancing picks the single
// next step, or the first candidate whose trigger matches the message.
// An empty NextSteps marks a terminal step.
type FlowStep struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	FlowName  string `gorm:"size:128;not null;index"`
	StepKey   string `gorm:"size:128;not null;index"`
	Trigger   string `gorm:"size:512"` // comma-separated keywords; empty matches any text
	Response  string `gorm:"type:text;not null"`
	NextSteps string `gorm:"size:512"`
	CreatedAt time.Time
}
