package repository

import (
	"context"
	"errors"
	"time"

	"github.com/amulsh/nurture-gateway/internal/model"
	"github.com/amulsh/nurture-gateway/pkg/pg"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrLeadNotFound is returned when a lead does not exist.
	ErrLeadNotFound = errors.New("lead not found")
)

type LeadRepository struct {
	*pg.DB
}

func NewLeadRepository(db *pg.DB) *LeadRepository {
	return &LeadRepository{
		db,
	}
}

// Upsert inserts the lead or, when the phone number already exists,
// overwrites name, email and campaign assignment and restarts the
// nurturing sequence (ACTIVE, day 0, no last send). Re-importing a lead
// deliberately starts it over.
func (r *LeadRepository) Upsert(ctx context.Context, lead *model.Lead) (*model.Lead, error) {
	entity := toLeadEntity(lead)
	if entity.Status == "" {
		entity.Status = string(model.LeadStatusActive)
	}

	err := r.Write(ctx).WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "phone"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"name":              entity.Name,
			"email":             entity.Email,
			"campaign_id":       entity.CampaignID,
			"status":            string(model.LeadStatusActive),
			"current_day":       0,
			"last_message_sent": nil,
			"updated_at":        time.Now(),
		}),
	}).Create(entity).Error
	if err != nil {
		return nil, err
	}

	// On conflict the generated ID is discarded; read the row back by its
	// natural key.
	var saved LeadEntity
	if err := r.Write(ctx).WithContext(ctx).Where("phone = ?", entity.Phone).First(&saved).Error; err != nil {
		return nil, err
	}
	return toLeadModel(&saved), nil
}

func (r *LeadRepository) Get(ctx context.Context, id string) (*model.Lead, error) {
	var entity LeadEntity
	err := r.Read(ctx).WithContext(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}
	return toLeadModel(&entity), nil
}

func (r *LeadRepository) List(ctx context.Context, f model.LeadFilter) ([]*model.Lead, int64, error) {
	q := r.Read(ctx).WithContext(ctx).Model(&LeadEntity{})

	if f.Status != nil {
		q = q.Where("status = ?", string(*f.Status))
	}
	if f.Search != nil && *f.Search != "" {
		pattern := "%" + *f.Search + "%"
		q = q.Where("name LIKE ? OR phone LIKE ?", pattern, pattern)
	}

	// Count before pagination
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var entities []*LeadEntity
	err := q.Preload("Campaign").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entities).Error
	if err != nil {
		return nil, 0, err
	}

	return toLeadModels(entities), total, nil
}

// ListDue selects every lead eligible for its next message: ACTIVE, not
// finished, and last messaged at or before the cutoff (or never). The
// campaign and its messages ride along for the send loop.
func (r *LeadRepository) ListDue(ctx context.Context, cutoff time.Time) ([]*model.Lead, error) {
	var entities []*LeadEntity
	err := r.Read(ctx).WithContext(ctx).
		Preload("Campaign").
		Preload("Campaign.Messages").
		Where("status = ?", string(model.LeadStatusActive)).
		Where("current_day < ?", model.FinalDay).
		Where("last_message_sent IS NULL OR last_message_sent <= ?", cutoff).
		Order("created_at ASC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return toLeadModels(entities), nil
}

// Advance moves the lead to the given day after a successful send.
func (r *LeadRepository) Advance(ctx context.Context, id string, day int, sentAt time.Time, status model.LeadStatus) error {
	res := r.Write(ctx).WithContext(ctx).Model(&LeadEntity{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"current_day":       day,
			"last_message_sent": sentAt,
			"status":            string(status),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrLeadNotFound
	}
	return nil
}

func (r *LeadRepository) UpdateStatus(ctx context.Context, id string, status model.LeadStatus) (*model.Lead, error) {
	res := r.Write(ctx).WithContext(ctx).Model(&LeadEntity{}).
		Where("id = ?", id).
		Update("status", string(status))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrLeadNotFound
	}

	var entity LeadEntity
	if err := r.Write(ctx).WithContext(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		return nil, err
	}
	return toLeadModel(&entity), nil
}

// Delete removes the lead and its log rows in one transaction. Logs go
// first so the delete also works where the FK cascade is not enforced.
func (r *LeadRepository) Delete(ctx context.Context, id string) error {
	return r.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := r.Write(ctx).WithContext(ctx).Where("lead_id = ?", id).Delete(&MessageLogEntity{}).Error; err != nil {
			return err
		}
		res := r.Write(ctx).WithContext(ctx).Where("id = ?", id).Delete(&LeadEntity{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrLeadNotFound
		}
		return nil
	})
}
