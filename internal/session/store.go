// Package session owns per-sender conversation state: the session records,
// their append-only message history, the flow cursor, and agent transfers.
// All mutations go through the Store so the read-modify-write shape stays
// atomic at the database boundary.
package session

import (
	"fmt"
	"time"

	"github.com/bellhop/bellhop/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store provides atomic operations over chat sessions and agent transfers.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store.
func NewStore(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("session: store: db is required")
	}
	return &Store{db: db}, nil
}

// GetOrCreate loads the most recent Active session for the sender, creating
// one if none exists. The find runs SELECT ... FOR UPDATE inside the
// transaction: on MySQL the gap lock serializes two near-simultaneous first
// messages from the same sender onto a single canonical session, where a
// plain snapshot read would let both transactions miss and both insert.
func (s *Store) GetOrCreate(sender, account string) (*models.ChatSession, error) {
	if sender == "" {
		return nil, fmt.Errorf("session: get-or-create: sender is required")
	}

	var sess *models.ChatSession
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.ChatSession
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("sender = ? AND account = ? AND status = ?",
				sender, account, models.SessionActive).
			Order("last_activity DESC").First(&existing)
		if result.Error == nil {
			sess = &existing
			return nil
		}
		if result.Error != gorm.ErrRecordNotFound {
			return fmt.Errorf("find session: %w", result.Error)
		}

		sess = &models.ChatSession{
			Sender:       sender,
			Account:      account,
			Status:       models.SessionActive,
			MessageCount: 0,
			LastActivity: time.Now(),
		}
		if err := tx.Create(sess).Error; err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("session: get-or-create %s: %w", sender, err)
	}
	return sess, nil
}

// Get loads a session by ID.
func (s *Store) Get(id uint) (*models.ChatSession, error) {
	var sess models.ChatSession
	if err := s.db.First(&sess, id).Error; err != nil {
		return nil, fmt.Errorf("session: get %d: %w", id, err)
	}
	return &sess, nil
}

// AppendMessage appends one SessionMessage and bumps the session's message
// count and last-activity timestamp. The count update uses a SQL expression
// so concurrent appends never lose increments.
func (s *Store) AppendMessage(sessionID uint, direction, text, stepName string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		msg := models.SessionMessage{
			SessionID: sessionID,
			Direction: direction,
			Body:      text,
			StepName:  stepName,
		}
		if err := tx.Create(&msg).Error; err != nil {
			return fmt.Errorf("create message: %w", err)
		}

		result := tx.Model(&models.ChatSession{}).
			Where("id = ?", sessionID).
			Updates(map[string]interface{}{
				"message_count": gorm.Expr("message_count + 1"),
				"last_activity": time.Now(),
			})
		if result.Error != nil {
			return fmt.Errorf("bump session: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("session %d not found", sessionID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("session: append message: %w", err)
	}
	return nil
}

// History returns the last limit messages of a session in conversation
// order. A limit <= 0 returns the full history.
func (s *Store) History(sessionID uint, limit int) ([]models.SessionMessage, error) {
	query := s.db.Where("session_id = ?", sessionID).Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var msgs []models.SessionMessage
	if err := query.Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("session: history %d: %w", sessionID, err)
	}
	// Reverse back to chronological order.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// AdvanceFlow sets the session's (flow, step) cursor.
func (s *Store) AdvanceFlow(sessionID uint, flowName, stepKey string) error {
	result := s.db.Model(&models.ChatSession{}).
		Where("id = ?", sessionID).
		Updates(map[string]interface{}{
			"current_flow": flowName,
			"current_step": stepKey,
		})
	if result.Error != nil {
		return fmt.Errorf("session: advance flow %d: %w", sessionID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("session: advance flow: session %d not found", sessionID)
	}
	return nil
}

// ClearFlow drops the session's flow cursor without changing its status.
func (s *Store) ClearFlow(sessionID uint) error {
	return s.AdvanceFlow(sessionID, "", "")
}

// MarkCompleted transitions a session to Completed and clears its flow
// cursor. Completed sessions are excluded from GetOrCreate lookups.
func (s *Store) MarkCompleted(sessionID uint) error {
	result := s.db.Model(&models.ChatSession{}).
		Where("id = ? AND status = ?", sessionID, models.SessionActive).
		Updates(map[string]interface{}{
			"status":       models.SessionCompleted,
			"current_flow": "",
			"current_step": "",
		})
	if result.Error != nil {
		return fmt.Errorf("session: mark completed %d: %w", sessionID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("session: mark completed: session %d not found or not active", sessionID)
	}
	return nil
}

// SetLastResponseType records which path produced the session's most recent
// outgoing reply.
func (s *Store) SetLastResponseType(sessionID uint, responseType string) error {
	result := s.db.Model(&models.ChatSession{}).
		Where("id = ?", sessionID).
		Update("last_response_type", responseType)
	if result.Error != nil {
		return fmt.Errorf("session: set response type %d: %w", sessionID, result.Error)
	}
	return nil
}
