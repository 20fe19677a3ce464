package repository

import (
	"time"

	"github.com/amulsh/nurture-gateway/internal/model"
	"github.com/amulsh/nurture-gateway/pkg/pg"
)

type LeadEntity struct {
	pg.Model
	Name            string          `gorm:"column:name;not null"`
	Phone           string          `gorm:"column:phone;not null;uniqueIndex"`
	Email           *string         `gorm:"column:email"`
	Status          string          `gorm:"column:status;not null;default:ACTIVE;index"`
	CurrentDay      int             `gorm:"column:current_day;not null;default:0"`
	LastMessageSent *time.Time      `gorm:"column:last_message_sent"`
	CampaignID      *string         `gorm:"column:campaign_id;type:uuid;index"`
	Campaign        *CampaignEntity `gorm:"foreignKey:CampaignID;references:ID;constraint:OnDelete:SET NULL"`
}

func (LeadEntity) TableName() string {
	return "leads"
}

func toLeadEntity(l *model.Lead) *LeadEntity {
	if l == nil {
		return nil
	}
	return &LeadEntity{
		Model:           pg.Model{ID: l.ID, CreatedAt: l.CreatedAt, UpdatedAt: l.UpdatedAt},
		Name:            l.Name,
		Phone:           l.Phone,
		Email:           l.Email,
		Status:          string(l.Status),
		CurrentDay:      l.CurrentDay,
		LastMessageSent: l.LastMessageSent,
		CampaignID:      l.CampaignID,
	}
}

func toLeadModel(e *LeadEntity) *model.Lead {
	if e == nil {
		return nil
	}
	return &model.Lead{
		ID:              e.ID,
		Name:            e.Name,
		Phone:           e.Phone,
		Email:           e.Email,
		Status:          model.LeadStatus(e.Status),
		CurrentDay:      e.CurrentDay,
		LastMessageSent: e.LastMessageSent,
		CampaignID:      e.CampaignID,
		Campaign:        toCampaignModel(e.Campaign),
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func toLeadModels(entities []*LeadEntity) []*model.Lead {
	if entities == nil {
		return nil
	}
	models := make([]*model.Lead, len(entities))
	for i, e := range entities {
		models[i] = toLeadModel(e)
	}
	return models
}
