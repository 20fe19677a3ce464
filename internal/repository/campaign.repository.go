package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/amulsh/nurture-gateway/internal/model"
	"github.com/amulsh/nurture-gateway/pkg/pg"
	"gorm.io/gorm"
)

var (
	// ErrCampaignNotFound is returned when a campaign does not exist.
	ErrCampaignNotFound = errors.New("campaign not found")
)

type CampaignRepository struct {
	*pg.DB
}

func NewCampaignRepository(db *pg.DB) *CampaignRepository {
	return &CampaignRepository{
		db,
	}
}

func (r *CampaignRepository) Create(ctx context.Context, c *model.Campaign) (*model.Campaign, error) {
	entity := toCampaignEntity(c)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toCampaignModel(entity), nil
}

// List returns all campaigns newest-first with their lead counts.
func (r *CampaignRepository) List(ctx context.Context) ([]*model.Campaign, error) {
	var entities []*CampaignEntity
	err := r.Read(ctx).WithContext(ctx).
		Order("created_at DESC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}

	type leadCount struct {
		CampaignID string `gorm:"column:campaign_id"`
		Count      int64  `gorm:"column:count"`
	}
	var counts []leadCount
	err = r.Read(ctx).WithContext(ctx).Model(&LeadEntity{}).
		Select("campaign_id, COUNT(*) AS count").
		Where("campaign_id IS NOT NULL").
		Group("campaign_id").
		Find(&counts).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[string]int64, len(counts))
	for _, c := range counts {
		byID[c.CampaignID] = c.Count
	}

	campaigns := toCampaignModels(entities)
	for _, c := range campaigns {
		c.LeadCount = byID[c.ID]
	}
	return campaigns, nil
}

func (r *CampaignRepository) Get(ctx context.Context, id string) (*model.Campaign, error) {
	var entity CampaignEntity
	err := r.Read(ctx).WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("day_number ASC")
		}).
		Where("id = ?", id).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}
	return toCampaignModel(&entity), nil
}

// FindByName resolves a campaign by case-insensitive, trimmed name and
// loads its messages. Import rows reference campaigns this way.
func (r *CampaignRepository) FindByName(ctx context.Context, name string) (*model.Campaign, error) {
	var entity CampaignEntity
	err := r.Read(ctx).WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("day_number ASC")
		}).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}
	return toCampaignModel(&entity), nil
}

// Update replaces the campaign's name, active flag and whole message set.
// The delete-and-recreate of messages runs inside one transaction so a
// half-replaced campaign is never visible.
func (r *CampaignRepository) Update(ctx context.Context, c *model.Campaign) (*model.Campaign, error) {
	err := r.WithinTransaction(ctx, func(ctx context.Context) error {
		res := r.Write(ctx).WithContext(ctx).Model(&CampaignEntity{}).
			Where("id = ?", c.ID).
			Updates(map[string]interface{}{
				"name":      c.Name,
				"is_active": c.IsActive,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCampaignNotFound
		}

		if err := r.Write(ctx).WithContext(ctx).Where("campaign_id = ?", c.ID).Delete(&CampaignMessageEntity{}).Error; err != nil {
			return err
		}

		for _, m := range c.Messages {
			entity := toCampaignMessageEntity(m)
			entity.ID = ""
			entity.CampaignID = c.ID
			if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.Get(ctx, c.ID)
}

// Delete removes the campaign with its messages and detaches its leads.
// Both are done explicitly rather than relying on FK actions.
func (r *CampaignRepository) Delete(ctx context.Context, id string) error {
	return r.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := r.Write(ctx).WithContext(ctx).Model(&LeadEntity{}).
			Where("campaign_id = ?", id).
			Update("campaign_id", nil).Error; err != nil {
			return err
		}
		if err := r.Write(ctx).WithContext(ctx).Where("campaign_id = ?", id).Delete(&CampaignMessageEntity{}).Error; err != nil {
			return err
		}
		res := r.Write(ctx).WithContext(ctx).Where("id = ?", id).Delete(&CampaignEntity{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCampaignNotFound
		}
		return nil
	})
}
