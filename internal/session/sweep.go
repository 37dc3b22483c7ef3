package session

import (
	"fmt"
	"log"
	"time"

	"github.com/bellhop/bellhop/internal/models"
)

// ExpireStale transitions Active sessions whose last activity is older than
// ttl to Expired. Expiry is a time-based sweep, not an error condition; the
// count of expired sessions is returned for logging.
func (s *Store) ExpireStale(ttl time.Duration) (int64, error) {
	cutoff := time.Now().Add(-ttl)

	result := s.db.Model(&models.ChatSession{}).
		Where("status = ? AND last_activity < ?", models.SessionActive, cutoff).
		Update("status", models.SessionExpired)
	if result.Error != nil {
		return 0, fmt.Errorf("session: expire stale: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		log.Printf("session: expired %d stale sessions [ttl=%s]", result.RowsAffected, ttl)
	}
	return result.RowsAffected, nil
}
