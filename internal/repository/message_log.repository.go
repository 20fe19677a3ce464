package repository

import (
	"context"

	"github.com/amulsh/nurture-gateway/internal/model"
	"github.com/amulsh/nurture-gateway/pkg/pg"
)

type MessageLogRepository struct {
	*pg.DB
}

func NewMessageLogRepository(db *pg.DB) *MessageLogRepository {
	return &MessageLogRepository{
		db,
	}
}

func (r *MessageLogRepository) Create(ctx context.Context, log *model.MessageLog) (*model.MessageLog, error) {
	entity := toMessageLogEntity(log)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toMessageLogModel(entity), nil
}

func (r *MessageLogRepository) ListByLead(ctx context.Context, leadID string) ([]*model.MessageLog, error) {
	var entities []*MessageLogEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("lead_id = ?", leadID).
		Order("sent_at DESC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return toMessageLogModels(entities), nil
}
