package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/amulsh/nurture-gateway/internal/model"
	"github.com/amulsh/nurture-gateway/internal/repository"
	"github.com/amulsh/nurture-gateway/pkg/logger"
	"github.com/amulsh/nurture-gateway/pkg/prom"
)

type CampaignRepository interface {
	Create(ctx context.Context, c *model.Campaign) (*model.Campaign, error)
	List(ctx context.Context) ([]*model.Campaign, error)
	Get(ctx context.Context, id string) (*model.Campaign, error)
	FindByName(ctx context.Context, name string) (*model.Campaign, error)
	Update(ctx context.Context, c *model.Campaign) (*model.Campaign, error)
	Delete(ctx context.Context, id string) error
}

// ImportService upserts leads in bulk. Row errors never abort a batch.
type ImportService struct {
	leadRepo     LeadRepository
	campaignRepo CampaignRepository
	logRepo      MessageLogRepository
	gateway      MessageGateway
	now          func() time.Time
}

func NewImportService(leadRepo LeadRepository, campaignRepo CampaignRepository, logRepo MessageLogRepository, gw MessageGateway) *ImportService {
	return &ImportService{
		leadRepo:     leadRepo,
		campaignRepo: campaignRepo,
		logRepo:      logRepo,
		gateway:      gw,
		now:          time.Now,
	}
}

// Import processes the rows one by one. A row naming a campaign that
// does not exist is rejected even when a default campaign was given.
// Success counts upserted rows whether or not their welcome send went
// through.
func (s *ImportService) Import(ctx context.Context, rows []model.LeadImportRow, defaultCampaignID string) (*model.ImportSummary, error) {
	var defaultCampaign *model.Campaign
	if defaultCampaignID != "" {
		c, err := s.campaignRepo.Get(ctx, defaultCampaignID)
		if err != nil {
			if !errors.Is(err, repository.ErrCampaignNotFound) {
				return nil, err
			}
			logger.Warn("Default campaign not found, importing without one", "campaign_id", defaultCampaignID)
		} else {
			defaultCampaign = c
		}
	}

	summary := &model.ImportSummary{Errors: []model.ImportError{}}
	for _, row := range rows {
		if err := s.importRow(ctx, row, defaultCampaign); err != nil {
			summary.Errors = append(summary.Errors, model.ImportError{Lead: row, Error: err.Error()})
			prom.AddImportRow(prom.OutcomeError)
			continue
		}
		summary.Success++
		prom.AddImportRow(prom.OutcomeSuccess)
	}

	logger.Info("Import finished", "rows", len(rows), "success", summary.Success, "errors", len(summary.Errors))
	return summary, nil
}

func (s *ImportService) importRow(ctx context.Context, row model.LeadImportRow, defaultCampaign *model.Campaign) error {
	if err := row.Validate(); err != nil {
		return err
	}

	campaign := defaultCampaign
	if strings.TrimSpace(row.Campaign) != "" {
		c, err := s.campaignRepo.FindByName(ctx, row.Campaign)
		if err != nil {
			if errors.Is(err, repository.ErrCampaignNotFound) {
				return errors.New("campaign not found: " + strings.TrimSpace(row.Campaign))
			}
			return err
		}
		campaign = c
	}

	lead := &model.Lead{
		Name:  strings.TrimSpace(row.Name),
		Phone: model.SanitizePhone(row.Phone),
	}
	if row.Email != "" {
		email := row.Email
		lead.Email = &email
	}
	if campaign != nil {
		lead.CampaignID = &campaign.ID
	}

	saved, err := s.leadRepo.Upsert(ctx, lead)
	if err != nil {
		return err
	}

	s.sendWelcome(ctx, saved, campaign)
	return nil
}

// sendWelcome fires the campaign's Day-1 message right after import.
// Failures are swallowed: the lead stays at day 0 and the next
// scheduler pass picks it up.
func (s *ImportService) sendWelcome(ctx context.Context, lead *model.Lead, campaign *model.Campaign) {
	if campaign == nil {
		return
	}
	msg := campaign.MessageForDay(1)
	if msg == nil {
		return
	}

	receipt, err := s.gateway.Send(ctx, lead, msg)
	if err != nil {
		logger.Warn("Welcome send failed, lead stays at day 0", "lead_id", lead.ID, "error", err)
		return
	}

	sentAt := s.now()
	err = s.leadRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.leadRepo.Advance(ctx, lead.ID, 1, sentAt, model.StatusAfterSend(1)); err != nil {
			return err
		}
		response := receipt.Response
		_, err := s.logRepo.Create(ctx, &model.MessageLog{
			LeadID:      lead.ID,
			DayNumber:   1,
			MessageText: msg.MessageText,
			SentAt:      sentAt,
			Response:    &response,
		})
		return err
	})
	if err != nil {
		logger.Warn("Failed to record welcome send", "lead_id", lead.ID, "error", err)
		return
	}

	if receipt.Simulated {
		prom.AddMessageSent(prom.OutcomeSimulated)
	} else {
		prom.AddMessageSent(prom.OutcomeSuccess)
	}
}
