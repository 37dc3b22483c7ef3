package models

import "time"

// BotSettings holds per-account chatbot configuration. The AI API key is
// deliberately not stored here; it comes from the environment at load time.
type BotSettings struct {
	ID               uint   `gorm:"primaryKey;autoIncrement"`
	Account          string `gorm:"size:64;uniqueIndex"`
	Enabled          bool   `gorm:"default:true"`
	SessionTTLMin    int    `gorm:"default:60"` // inactivity window before expiry
	AIProvider       string `gorm:"size:32"`    // empty disables the AI fallback
	AIModel          string `gorm:"size:64"`
	AISystemPrompt   string `gorm:"type:text"`
	AIMaxTokens      int    `gorm:"default:500"`
	AITemperature    float64 `gorm:"default:0.7"`
	AIIncludeHistory bool    `gorm:"default:false"`
	AIHistoryLimit   int     `gorm:"default:4"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ExcludedNumber suppresses all automated handling for a phone number.
type ExcludedNumber struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	Number    string `gorm:"size:32;not null;uniqueIndex"`
	Reason    string `gorm:"size:256"`
	CreatedAt time.Time
}

// BusinessHours restricts automated replies to a time window per weekday.
// No rows for a weekday means the bot is open all day.
type BusinessHours struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	Weekday   string `gorm:"size:16;not null"` // Monday .. Sunday
	OpenTime  string `gorm:"size:8"`           // "09:00"
	CloseTime string `gorm:"size:8"`           // "17:00"
	Closed    bool   `gorm:"default:false"`    // closed all day
	CreatedAt time.Time
}
