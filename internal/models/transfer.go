package models

import "time"

// Transfer statuses.
const (
	TransferActive  = "Active"
	TransferResumed = "Resumed"
)

// AgentTransfer routes a sender away from automated handling to a human
// agent. At most one Active transfer may exist per (phone, account) pair;
// creation is idempotent against that invariant.
type AgentTransfer struct {
	ID            uint      `gorm:"primaryKey;autoIncrement"`
	PhoneNumber   string    `gorm:"size:32;not null;index:idx_phone_account"`
	Account       string    `gorm:"size:64;index:idx_phone_account"`
	Agent         string    `gorm:"size:128"`
	Notes         string    `gorm:"type:text"`
	Status        string    `gorm:"size:16;default:Active;index"` // Active, Resumed
	TransferredAt time.Time
	ResumedAt     *time.Time
	ResumedBy     string `gorm:"size:128"`
	CreatedAt     time.Time
}
