package services

import (
	"context"
	"fmt"

	"github.com/amulsh/nurture-gateway/internal/model"
)

type CampaignService struct {
	campaignRepo CampaignRepository
}

func NewCampaignService(campaignRepo CampaignRepository) *CampaignService {
	return &CampaignService{
		campaignRepo: campaignRepo,
	}
}

func (s *CampaignService) Create(ctx context.Context, draft model.CampaignDraft) (*model.Campaign, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	campaign, err := draftToCampaign(draft)
	if err != nil {
		return nil, err
	}
	return s.campaignRepo.Create(ctx, campaign)
}

func (s *CampaignService) List(ctx context.Context) ([]*model.Campaign, error) {
	return s.campaignRepo.List(ctx)
}

func (s *CampaignService) Get(ctx context.Context, id string) (*model.Campaign, error) {
	return s.campaignRepo.Get(ctx, id)
}

// Update replaces the campaign's name, active flag and entire message
// set with the draft's.
func (s *CampaignService) Update(ctx context.Context, id string, draft model.CampaignDraft) (*model.Campaign, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	campaign, err := draftToCampaign(draft)
	if err != nil {
		return nil, err
	}
	campaign.ID = id
	return s.campaignRepo.Update(ctx, campaign)
}

func (s *CampaignService) Delete(ctx context.Context, id string) error {
	return s.campaignRepo.Delete(ctx, id)
}

func draftToCampaign(draft model.CampaignDraft) (*model.Campaign, error) {
	campaign := &model.Campaign{
		Name:     draft.Name,
		IsActive: true,
	}
	if draft.IsActive != nil {
		campaign.IsActive = *draft.IsActive
	}

	for _, m := range draft.Messages {
		msg := &model.CampaignMessage{
			DayNumber:   m.DayNumber,
			MessageText: m.MessageText,
		}
		if m.ImageURL != "" {
			img := m.ImageURL
			msg.ImageURL = &img
		}
		if len(m.Buttons) > 0 {
			encoded, err := model.EncodeButtons(m.Buttons)
			if err != nil {
				return nil, fmt.Errorf("day %d: invalid buttons: %w", m.DayNumber, err)
			}
			msg.Buttons = &encoded
		}
		campaign.Messages = append(campaign.Messages, msg)
	}
	return campaign, nil
}
