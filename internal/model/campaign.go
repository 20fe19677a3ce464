package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"
)

// MaxMessageLen is the longest message text the gateway template accepts.
const MaxMessageLen = 4096

type Campaign struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	IsActive  bool               `json:"is_active"`
	Messages  []*CampaignMessage `json:"messages,omitempty"`
	LeadCount int64              `json:"lead_count"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// MessageForDay returns the campaign message with the exact day number, or
// nil when the campaign has a gap on that day.
func (c *Campaign) MessageForDay(day int) *CampaignMessage {
	for _, m := range c.Messages {
		if m.DayNumber == day {
			return m
		}
	}
	return nil
}

type CampaignMessage struct {
	ID          string  `json:"id"`
	CampaignID  string  `json:"campaign_id"`
	DayNumber   int     `json:"day_number"`
	MessageText string  `json:"message_text"`
	ImageURL    *string `json:"image_url,omitempty"`
	Buttons     *string `json:"buttons,omitempty"` // serialized quick-reply list
}

// QuickReplyButtons parses the stored button specification. Invalid stored
// JSON yields nil, matching the send path which just drops bad buttons.
func (m *CampaignMessage) QuickReplyButtons() []QuickReplyButton {
	if m.Buttons == nil || *m.Buttons == "" {
		return nil
	}
	btns, err := ParseButtons(*m.Buttons)
	if err != nil {
		return nil
	}
	return btns
}

// QuickReplyButton is one quick-reply definition attached to a message.
type QuickReplyButton struct {
	Text string `json:"text"`
}

func ParseButtons(raw string) ([]QuickReplyButton, error) {
	var btns []QuickReplyButton
	if err := json.Unmarshal([]byte(raw), &btns); err != nil {
		return nil, err
	}
	return btns, nil
}

func EncodeButtons(btns []QuickReplyButton) (string, error) {
	b, err := json.Marshal(btns)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

var (
	ErrCampaignNameRequired = errors.New("name and at least one message are required")
)

// CampaignDraft is the input for creating or replacing a campaign. Saving a
// draft over an existing campaign replaces the whole message set.
type CampaignDraft struct {
	Name     string
	IsActive *bool // nil defaults to active
	Messages []CampaignMessageDraft
}

type CampaignMessageDraft struct {
	DayNumber   int
	MessageText string
	ImageURL    string
	Buttons     []QuickReplyButton
}

func (d CampaignDraft) Validate() error {
	if d.Name == "" || len(d.Messages) == 0 {
		return ErrCampaignNameRequired
	}
	for _, m := range d.Messages {
		if m.DayNumber < 1 || m.DayNumber > FinalDay {
			return fmt.Errorf("day number %d out of range 1..%d", m.DayNumber, FinalDay)
		}
		if m.MessageText == "" {
			return fmt.Errorf("day %d: message text is required", m.DayNumber)
		}
		if utf8.RuneCountInString(m.MessageText) > MaxMessageLen {
			return fmt.Errorf("day %d: message text exceeds %d characters", m.DayNumber, MaxMessageLen)
		}
	}
	return nil
}
