package services

import (
	"context"
	"testing"

	"github.com/amulsh/nurture-gateway/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCampaignService_Create(t *testing.T) {
	t.Run("rejects an empty draft", func(t *testing.T) {
		campaignRepo := new(MockCampaignRepository)
		svc := NewCampaignService(campaignRepo)

		_, err := svc.Create(context.Background(), model.CampaignDraft{})
		assert.ErrorIs(t, err, model.ErrCampaignNameRequired)
		campaignRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects out-of-range days", func(t *testing.T) {
		svc := NewCampaignService(new(MockCampaignRepository))

		_, err := svc.Create(context.Background(), model.CampaignDraft{
			Name:     "Welcome",
			Messages: []model.CampaignMessageDraft{{DayNumber: 8, MessageText: "Hi"}},
		})
		assert.Error(t, err)
	})

	t.Run("encodes buttons and defaults to active", func(t *testing.T) {
		campaignRepo := new(MockCampaignRepository)
		svc := NewCampaignService(campaignRepo)

		campaignRepo.On("Create", mock.Anything, mock.MatchedBy(func(c *model.Campaign) bool {
			if !c.IsActive || len(c.Messages) != 1 {
				return false
			}
			m := c.Messages[0]
			return m.Buttons != nil && *m.Buttons == `[{"text":"Yes"}]` &&
				m.ImageURL != nil && *m.ImageURL == "https://cdn.example.com/a.png"
		})).Return(&model.Campaign{ID: "camp-1"}, nil)

		_, err := svc.Create(context.Background(), model.CampaignDraft{
			Name: "Welcome",
			Messages: []model.CampaignMessageDraft{{
				DayNumber:   1,
				MessageText: "Hi",
				ImageURL:    "https://cdn.example.com/a.png",
				Buttons:     []model.QuickReplyButton{{Text: "Yes"}},
			}},
		})
		require.NoError(t, err)
		campaignRepo.AssertExpectations(t)
	})

	t.Run("explicit inactive flag sticks", func(t *testing.T) {
		campaignRepo := new(MockCampaignRepository)
		svc := NewCampaignService(campaignRepo)

		inactive := false
		campaignRepo.On("Create", mock.Anything, mock.MatchedBy(func(c *model.Campaign) bool {
			return !c.IsActive
		})).Return(&model.Campaign{ID: "camp-1"}, nil)

		_, err := svc.Create(context.Background(), model.CampaignDraft{
			Name:     "Welcome",
			IsActive: &inactive,
			Messages: []model.CampaignMessageDraft{{DayNumber: 1, MessageText: "Hi"}},
		})
		require.NoError(t, err)
	})
}

func TestCampaignService_Update(t *testing.T) {
	campaignRepo := new(MockCampaignRepository)
	svc := NewCampaignService(campaignRepo)

	campaignRepo.On("Update", mock.Anything, mock.MatchedBy(func(c *model.Campaign) bool {
		return c.ID == "camp-1" && c.Name == "Renamed" && len(c.Messages) == 1
	})).Return(&model.Campaign{ID: "camp-1", Name: "Renamed"}, nil)

	updated, err := svc.Update(context.Background(), "camp-1", model.CampaignDraft{
		Name:     "Renamed",
		Messages: []model.CampaignMessageDraft{{DayNumber: 2, MessageText: "Hello again"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	t.Run("invalid draft never reaches the repo", func(t *testing.T) {
		_, err := svc.Update(context.Background(), "camp-1", model.CampaignDraft{Name: "x"})
		assert.Error(t, err)
	})
}
