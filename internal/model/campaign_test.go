package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCampaign_MessageForDay(t *testing.T) {
	c := &Campaign{
		Messages: []*CampaignMessage{
			{DayNumber: 1, MessageText: "Hi!"},
			{DayNumber: 3, MessageText: "Still there?"},
		},
	}

	require.NotNil(t, c.MessageForDay(1))
	assert.Equal(t, "Hi!", c.MessageForDay(1).MessageText)
	assert.Nil(t, c.MessageForDay(2), "campaign gap has no message")
	assert.Nil(t, c.MessageForDay(4))
}

func TestButtons_RoundTrip(t *testing.T) {
	raw, err := EncodeButtons([]QuickReplyButton{{Text: "Yes"}, {Text: "No"}})
	require.NoError(t, err)

	btns, err := ParseButtons(raw)
	require.NoError(t, err)
	require.Len(t, btns, 2)
	assert.Equal(t, "Yes", btns[0].Text)
}

func TestCampaignMessage_QuickReplyButtons(t *testing.T) {
	t.Run("nil buttons", func(t *testing.T) {
		m := &CampaignMessage{}
		assert.Nil(t, m.QuickReplyButtons())
	})

	t.Run("invalid stored JSON is dropped", func(t *testing.T) {
		bad := "{not json"
		m := &CampaignMessage{Buttons: &bad}
		assert.Nil(t, m.QuickReplyButtons())
	})

	t.Run("valid stored JSON", func(t *testing.T) {
		raw := `[{"text":"Tell me more"}]`
		m := &CampaignMessage{Buttons: &raw}
		btns := m.QuickReplyButtons()
		require.Len(t, btns, 1)
		assert.Equal(t, "Tell me more", btns[0].Text)
	})
}

func TestCampaignDraft_Validate(t *testing.T) {
	valid := CampaignDraft{
		Name:     "Welcome",
		Messages: []CampaignMessageDraft{{DayNumber: 1, MessageText: "Hi!"}},
	}

	t.Run("valid draft", func(t *testing.T) {
		assert.NoError(t, valid.Validate())
	})

	t.Run("missing name", func(t *testing.T) {
		d := valid
		d.Name = ""
		assert.ErrorIs(t, d.Validate(), ErrCampaignNameRequired)
	})

	t.Run("no messages", func(t *testing.T) {
		d := valid
		d.Messages = nil
		assert.ErrorIs(t, d.Validate(), ErrCampaignNameRequired)
	})

	t.Run("day out of range", func(t *testing.T) {
		d := valid
		d.Messages = []CampaignMessageDraft{{DayNumber: 8, MessageText: "x"}}
		assert.Error(t, d.Validate())
	})

	t.Run("message too long", func(t *testing.T) {
		d := valid
		d.Messages = []CampaignMessageDraft{{DayNumber: 1, MessageText: strings.Repeat("a", MaxMessageLen+1)}}
		assert.Error(t, d.Validate())
	})
}
