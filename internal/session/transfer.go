package session

import (
	"fmt"
	"time"

	"github.com/bellhop/bellhop/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IsTransferred reports whether the phone number has an Active agent
// transfer on the account. An empty account matches any account.
func (s *Store) IsTransferred(phoneNumber, account string) (bool, error) {
	query := s.db.Model(&models.AgentTransfer{}).
		Where("phone_number = ? AND status = ?", phoneNumber, models.TransferActive)
	if account != "" {
		query = query.Where("account = ?", account)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("session: is transferred %s: %w", phoneNumber, err)
	}
	return count > 0, nil
}

// ActiveTransfer returns the Active transfer record for a phone number, or
// nil if the sender is not transferred.
func (s *Store) ActiveTransfer(phoneNumber, account string) (*models.AgentTransfer, error) {
	query := s.db.Where("phone_number = ? AND status = ?", phoneNumber, models.TransferActive)
	if account != "" {
		query = query.Where("account = ?", account)
	}

	var transfer models.AgentTransfer
	err := query.First(&transfer).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: active transfer %s: %w", phoneNumber, err)
	}
	return &transfer, nil
}

// TransferToAgent routes a sender to a human agent, suppressing automated
// replies. The operation is idempotent: an existing Active transfer for the
// (phone, account) pair is returned unchanged rather than duplicated. The
// find takes a FOR UPDATE lock so two concurrent transfer requests cannot
// both miss and insert a second Active record.
func (s *Store) TransferToAgent(phoneNumber, account, agent, notes string) (*models.AgentTransfer, error) {
	if phoneNumber == "" {
		return nil, fmt.Errorf("session: transfer: phone number is required")
	}

	var transfer *models.AgentTransfer
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.AgentTransfer
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("phone_number = ? AND account = ? AND status = ?",
				phoneNumber, account, models.TransferActive).First(&existing)
		if result.Error == nil {
			transfer = &existing
			return nil
		}
		if result.Error != gorm.ErrRecordNotFound {
			return fmt.Errorf("find transfer: %w", result.Error)
		}

		transfer = &models.AgentTransfer{
			PhoneNumber:   phoneNumber,
			Account:       account,
			Agent:         agent,
			Notes:         notes,
			Status:        models.TransferActive,
			TransferredAt: time.Now(),
		}
		if err := tx.Create(transfer).Error; err != nil {
			return fmt.Errorf("create transfer: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("session: transfer %s: %w", phoneNumber, err)
	}
	return transfer, nil
}

// ResumeChatbot resumes automated handling for a phone number by marking
// its Active transfers Resumed, recording when and by whom. Returns false
// if no active transfer existed.
func (s *Store) ResumeChatbot(phoneNumber, account, actor string) (bool, error) {
	if phoneNumber == "" {
		return false, fmt.Errorf("session: resume: phone number is required")
	}

	query := s.db.Model(&models.AgentTransfer{}).
		Where("phone_number = ? AND status = ?", phoneNumber, models.TransferActive)
	if account != "" {
		query = query.Where("account = ?", account)
	}

	result := query.Updates(map[string]interface{}{
		"status":     models.TransferResumed,
		"resumed_at": time.Now(),
		"resumed_by": actor,
	})
	if result.Error != nil {
		return false, fmt.Errorf("session: resume %s: %w", phoneNumber, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// ActiveTransfers lists Active transfer records, optionally filtered by
// account and assigned agent, most recent first.
func (s *Store) ActiveTransfers(account, agent string) ([]models.AgentTransfer, error) {
	query := s.db.Where("status = ?", models.TransferActive)
	if account != "" {
		query = query.Where("account = ?", account)
	}
	if agent != "" {
		query = query.Where("agent = ?", agent)
	}

	var transfers []models.AgentTransfer
	if err := query.Order("transferred_at DESC").Find(&transfers).Error; err != nil {
		return nil, fmt.Errorf("session: active transfers: %w", err)
	}
	return transfers, nil
}
