package models

import "time"

// AI context rule types.
const (
	ContextStaticText = "Static Text"
	ContextTableQuery = "Table Query"
)

// AIContextRule describes one source of supplementary context fed to the
// AI responder. Static rules carry fixed text; table-query rules describe
// a database lookup serialized into the prompt.
type AIContextRule struct {
	ID              uint   `gorm:"primaryKey;autoIncrement"`
	Title           string `gorm:"size:128;not null"`
	Enabled         bool   `gorm:"default:true;index"`
	Priority        int    `gorm:"default:0;index"`
	TriggerKeywords string `gorm:"size:512"` // optional comma list; empty always applies
	ContextType     string `gorm:"size:16;default:Static Text"`
	StaticContent   string `gorm:"type:text"`
	QueryTable      string `gorm:"size:128"`
	Filters         string `gorm:"type:text"` // JSON object of column -> value
	Fields          string `gorm:"size:512"`  // comma-separated column list
	MaxResults      int    `gorm:"default:10"`
	UserSpecific    bool   `gorm:"default:false"` // filter rows by the sender's phone
	PhoneField      string `gorm:"size:64"`
	CreatedAt       time.Time
}

// KnowledgeBaseEntry is a Q/A item matched by simple keyword containment,
// not vector search.
type KnowledgeBaseEntry struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	Topic     string `gorm:"size:256;not null"`
	Keywords  string `gorm:"size:512"` // comma-separated list
	Content   string `gorm:"type:text;not null"`
	Category  string `gorm:"size:128"`
	Active    bool   `gorm:"default:true;index"`
	CreatedAt time.Time
}
