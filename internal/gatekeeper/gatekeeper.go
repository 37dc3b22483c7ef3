// Package gatekeeper decides whether the bot may respond to an inbound
// message at all, before any matching occurs.
package gatekeeper

import (
	"strings"
	"time"

	"github.com/bellhop/bellhop/internal/channel"
	"github.com/bellhop/bellhop/internal/models"
	"github.com/bellhop/bellhop/internal/phone"
)

// Settings is the immutable configuration slice the gatekeeper consults.
type Settings struct {
	Enabled  bool
	Excluded []models.ExcludedNumber
	Hours    []models.BusinessHours
}

// TransferChecker reports whether a sender currently has an active agent
// transfer on a channel account.
type TransferChecker interface {
	IsTransferred(phoneNumber, account string) (bool, error)
}

// ShouldProcess evaluates the gate checks in order, short-circuiting on the
// first negative. It has no side effects.
func ShouldProcess(msg channel.InboundMessage, s Settings, transfers TransferChecker, now time.Time) bool {
	if !s.Enabled {
		return false
	}
	if msg.Direction != models.DirectionIncoming {
		return false
	}
	if msg.Sender == "" || strings.TrimSpace(msg.Text) == "" {
		return false
	}
	if isExcluded(msg.Sender, s.Excluded) {
		return false
	}
	if !withinBusinessHours(s.Hours, now) {
		return false
	}
	if transfers != nil {
		transferred, err := transfers.IsTransferred(msg.Sender, msg.Account)
		if err != nil || transferred {
			// A lookup failure suppresses processing rather than risking a
			// bot reply into a human-handled conversation.
			return false
		}
	}
	return true
}

// isExcluded matches the sender against the exclusion list, exact or via
// normalized phone variants.
func isExcluded(sender string, excluded []models.ExcludedNumber) bool {
	for _, ex := range excluded {
		if ex.Number == sender || phone.Matches(sender, ex.Number) {
			return true
		}
	}
	return false
}

// withinBusinessHours checks now against the configured window for its
// weekday. No rows at all, or no row for the weekday, means always-open.
func withinBusinessHours(hours []models.BusinessHours, now time.Time) bool {
	if len(hours) == 0 {
		return true
	}

	weekday := now.Weekday().String()
	found := false
	for _, h := range hours {
		if !strings.EqualFold(h.Weekday, weekday) {
			continue
		}
		found = true
		if h.Closed {
			continue
		}
		if inWindow(h.OpenTime, h.CloseTime, now) {
			return true
		}
	}
	return !found
}

// inWindow reports whether now's clock time falls in [open, close).
// Unparseable or missing bounds are treated as unbounded on that side.
func inWindow(openTime, closeTime string, now time.Time) bool {
	minutes := now.Hour()*60 + now.Minute()

	if openTime != "" {
		open, ok := parseClock(openTime)
		if ok && minutes < open {
			return false
		}
	}
	if closeTime != "" {
		close, ok := parseClock(closeTime)
		if ok && minutes >= close {
			return false
		}
	}
	return true
}

// parseClock parses "15:04" into minutes since midnight.
func parseClock(s string) (int, bool) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}
