package repository

import (
	"time"

	"github.com/amulsh/nurture-gateway/internal/model"
	"github.com/amulsh/nurture-gateway/pkg/pg"
)

type MessageLogEntity struct {
	pg.Model
	LeadID      string      `gorm:"column:lead_id;type:uuid;not null;index"`
	Lead        *LeadEntity `gorm:"foreignKey:LeadID;references:ID;constraint:OnDelete:CASCADE"`
	DayNumber   int         `gorm:"column:day_number;not null"`
	MessageText string      `gorm:"column:message_text;not null"`
	SentAt      time.Time   `gorm:"column:sent_at;not null"`
	Response    *string     `gorm:"column:response"`
}

func (MessageLogEntity) TableName() string {
	return "message_logs"
}

func toMessageLogEntity(l *model.MessageLog) *MessageLogEntity {
	if l == nil {
		return nil
	}
	return &MessageLogEntity{
		Model:       pg.Model{ID: l.ID},
		LeadID:      l.LeadID,
		DayNumber:   l.DayNumber,
		MessageText: l.MessageText,
		SentAt:      l.SentAt,
		Response:    l.Response,
	}
}

func toMessageLogModel(e *MessageLogEntity) *model.MessageLog {
	if e == nil {
		return nil
	}
	return &model.MessageLog{
		ID:          e.ID,
		LeadID:      e.LeadID,
		DayNumber:   e.DayNumber,
		MessageText: e.MessageText,
		SentAt:      e.SentAt,
		Response:    e.Response,
	}
}

func toMessageLogModels(entities []*MessageLogEntity) []*model.MessageLog {
	if entities == nil {
		return nil
	}
	models := make([]*model.MessageLog, len(entities))
	for i, e := range entities {
		models[i] = toMessageLogModel(e)
	}
	return models
}
