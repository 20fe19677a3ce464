package model

import "time"

// MessageLog is one append-only record of a send attempt, success or failure.
// Rows are never updated; they only go away when their lead is deleted.
type MessageLog struct {
	ID          string    `json:"id"`
	LeadID      string    `json:"lead_id"`
	DayNumber   int       `json:"day_number"`
	MessageText string    `json:"message_text"`
	SentAt      time.Time `json:"sent_at"`
	Response    *string   `json:"response,omitempty"`
}

// ErrorTag prefixes the message text of a failed send's log row.
const ErrorTag = "[ERROR] "
