package repository

import (
	"github.com/amulsh/nurture-gateway/internal/model"
	"github.com/amulsh/nurture-gateway/pkg/pg"
)

type CampaignEntity struct {
	pg.Model
	Name     string                   `gorm:"column:name;not null"`
	IsActive bool                     `gorm:"column:is_active;not null;default:true"`
	Messages []*CampaignMessageEntity `gorm:"foreignKey:CampaignID"`
}

func (CampaignEntity) TableName() string {
	return "campaigns"
}

type CampaignMessageEntity struct {
	pg.Model
	CampaignID  string  `gorm:"column:campaign_id;type:uuid;not null;index"`
	DayNumber   int     `gorm:"column:day_number;not null"`
	MessageText string  `gorm:"column:message_text;not null"`
	ImageURL    *string `gorm:"column:image_url"`
	Buttons     *string `gorm:"column:buttons"`
}

func (CampaignMessageEntity) TableName() string {
	return "campaign_messages"
}

func toCampaignEntity(c *model.Campaign) *CampaignEntity {
	if c == nil {
		return nil
	}
	e := &CampaignEntity{
		Model:    pg.Model{ID: c.ID, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt},
		Name:     c.Name,
		IsActive: c.IsActive,
	}
	for _, m := range c.Messages {
		e.Messages = append(e.Messages, toCampaignMessageEntity(m))
	}
	return e
}

func toCampaignMessageEntity(m *model.CampaignMessage) *CampaignMessageEntity {
	if m == nil {
		return nil
	}
	return &CampaignMessageEntity{
		Model:       pg.Model{ID: m.ID},
		CampaignID:  m.CampaignID,
		DayNumber:   m.DayNumber,
		MessageText: m.MessageText,
		ImageURL:    m.ImageURL,
		Buttons:     m.Buttons,
	}
}

func toCampaignModel(e *CampaignEntity) *model.Campaign {
	if e == nil {
		return nil
	}
	c := &model.Campaign{
		ID:        e.ID,
		Name:      e.Name,
		IsActive:  e.IsActive,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
	for _, m := range e.Messages {
		c.Messages = append(c.Messages, toCampaignMessageModel(m))
	}
	return c
}

func toCampaignMessageModel(e *CampaignMessageEntity) *model.CampaignMessage {
	if e == nil {
		return nil
	}
	return &model.CampaignMessage{
		ID:          e.ID,
		CampaignID:  e.CampaignID,
		DayNumber:   e.DayNumber,
		MessageText: e.MessageText,
		ImageURL:    e.ImageURL,
		Buttons:     e.Buttons,
	}
}

func toCampaignModels(entities []*CampaignEntity) []*model.Campaign {
	if entities == nil {
		return nil
	}
	models := make([]*model.Campaign, len(entities))
	for i, e := range entities {
		models[i] = toCampaignModel(e)
	}
	return models
}
