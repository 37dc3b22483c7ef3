package db

import (
	"fmt"

	"github.com/bellhop/bellhop/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AllModels returns the list of all GORM models for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.ChatSession{},
		&models.SessionMessage{},
		&models.AgentTransfer{},
		&models.KeywordReply{},
		&models.Flow{},
		&models.FlowStep{},
		&models.AIContextRule{},
		&models.KnowledgeBaseEntry{},
		&models.BotSettings{},
		&models.ExcludedNumber{},
		&models.BusinessHours{},
	}
}

// AutoMigrate creates or updates all chatbot tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// SeedSettings inserts a BotSettings row for an account if none exists, so
// a fresh database always has a configuration record to load.
func SeedSettings(db *gorm.DB, account string) error {
	settings := models.BotSettings{
		Account: account,
		Enabled: true,
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account"}},
		DoNothing: true,
	}).Create(&settings)
	if result.Error != nil {
		return fmt.Errorf("db: seed settings for %q: %w", account, result.Error)
	}
	return nil
}
