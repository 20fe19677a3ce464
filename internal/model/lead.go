package model

import (
	"errors"
	"strings"
	"time"
	"unicode"
)

// LeadStatus is the lifecycle state of a lead.
type LeadStatus string

const (
	LeadStatusActive       LeadStatus = "ACTIVE"
	LeadStatusInterested   LeadStatus = "INTERESTED"
	LeadStatusUnsubscribed LeadStatus = "UNSUBSCRIBED"
	LeadStatusCompleted    LeadStatus = "COMPLETED"
	LeadStatusError        LeadStatus = "ERROR"
)

func (s LeadStatus) Valid() bool {
	switch s {
	case LeadStatusActive, LeadStatusInterested, LeadStatusUnsubscribed, LeadStatusCompleted, LeadStatusError:
		return true
	}
	return false
}

// FinalDay is the last day of any nurturing sequence.
const FinalDay = 7

// DueWindow is the minimum gap between two messages to the same lead.
// Slightly under 24h so a cron trigger firing a few minutes early never
// skips a lead for a whole day.
const DueWindow = 23*time.Hour + 30*time.Minute

// MinPhoneDigits is the minimum accepted length of a sanitized phone number.
const MinPhoneDigits = 10

type Lead struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Phone           string     `json:"phone"`
	Email           *string    `json:"email,omitempty"`
	Status          LeadStatus `json:"status"`
	CurrentDay      int        `json:"current_day"`
	LastMessageSent *time.Time `json:"last_message_sent,omitempty"`
	CampaignID      *string    `json:"campaign_id,omitempty"`
	Campaign        *Campaign  `json:"campaign,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Due reports whether the lead is eligible for its next message at now.
// A lead without a campaign never advances.
func (l *Lead) Due(now time.Time) bool {
	if l.Status != LeadStatusActive || l.CurrentDay >= FinalDay || l.CampaignID == nil {
		return false
	}
	if l.LastMessageSent == nil {
		return true
	}
	return !l.LastMessageSent.After(now.Add(-DueWindow))
}

// NextDay is the day number of the message the lead should receive next.
func (l *Lead) NextDay() int {
	return l.CurrentDay + 1
}

// StatusAfterSend is the status a lead carries once the given day's message
// has gone out: COMPLETED on the final day, ACTIVE otherwise.
func StatusAfterSend(day int) LeadStatus {
	if day >= FinalDay {
		return LeadStatusCompleted
	}
	return LeadStatusActive
}

var (
	ErrMissingNameOrPhone = errors.New("name and phone are required")
	ErrInvalidPhone       = errors.New("invalid phone format")
)

// LeadImportRow is one row of a bulk import request.
type LeadImportRow struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email,omitempty"`
	Campaign string `json:"campaign,omitempty"`
}

func (r LeadImportRow) Validate() error {
	if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Phone) == "" {
		return ErrMissingNameOrPhone
	}
	if len(SanitizePhone(r.Phone)) < MinPhoneDigits {
		return ErrInvalidPhone
	}
	return nil
}

// SanitizePhone strips everything but digits.
func SanitizePhone(raw string) string {
	var b strings.Builder
	for _, c := range raw {
		if unicode.IsDigit(c) {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// LeadFilter controls List queries.
type LeadFilter struct {
	Status *LeadStatus // equals; nil means any
	Search *string     // substring match on name or phone
	Limit  int         // default 50
	Offset int
}
