package models

import "time"

// Session statuses.
const (
	SessionActive    = "Active"
	SessionCompleted = "Completed"
	SessionExpired   = "Expired"
)

// Message directions.
const (
	DirectionIncoming = "Incoming"
	DirectionOutgoing = "Outgoing"
)

// Response types recorded on a session after a reply is dispatched.
const (
	ResponseTypeText   = "Text"
	ResponseTypeFlow   = "Flow"
	ResponseTypeCustom = "Custom"
	ResponseTypeAI     = "AI"
)

// ChatSession tracks one ongoing conversation with a sender on a channel
// account. Sessions are owned by the session store and mutated only through
// its append/transition operations.
type ChatSession struct {
	ID               uint      `gorm:"primaryKey;autoIncrement"`
	Sender           string    `gorm:"size:32;not null;index:idx_sender_account"`
	Account          string    `gorm:"size:64;index:idx_sender_account"`
	Status           string    `gorm:"size:16;default:Active;index"` // Active, Completed, Expired
	CurrentFlow      string    `gorm:"size:128"`
	CurrentStep      string    `gorm:"size:128"`
	MessageCount     int       `gorm:"default:0"`
	LastResponseType string    `gorm:"size:16"`
	LastActivity     time.Time `gorm:"index"`
	CreatedAt        time.Time

	Messages []SessionMessage `gorm:"foreignKey:SessionID"`
}

// SessionMessage is a single entry in a session's append-only conversation
// history. Insertion order is the conversation order.
type SessionMessage struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	SessionID uint   `gorm:"not null;index"`
	Direction string `gorm:"size:16;not null"` // Incoming, Outgoing
	Body      string `gorm:"type:text;not null"`
	StepName  string `gorm:"size:128"`
	CreatedAt time.Time

	Session ChatSession `gorm:"foreignKey:SessionID"`
}
