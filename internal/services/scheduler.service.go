package services

import (
	"context"
	"time"

	gateway "github.com/amulsh/nurture-gateway/internal/gateways"
	"github.com/amulsh/nurture-gateway/internal/model"
	"github.com/amulsh/nurture-gateway/pkg/logger"
	"github.com/amulsh/nurture-gateway/pkg/prom"
)

type LeadRepository interface {
	Upsert(ctx context.Context, lead *model.Lead) (*model.Lead, error)
	Get(ctx context.Context, id string) (*model.Lead, error)
	List(ctx context.Context, f model.LeadFilter) ([]*model.Lead, int64, error) // results, totalCount
	ListDue(ctx context.Context, cutoff time.Time) ([]*model.Lead, error)
	Advance(ctx context.Context, id string, day int, sentAt time.Time, status model.LeadStatus) error
	UpdateStatus(ctx context.Context, id string, status model.LeadStatus) (*model.Lead, error)
	Delete(ctx context.Context, id string) error
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type MessageLogRepository interface {
	Create(ctx context.Context, log *model.MessageLog) (*model.MessageLog, error)
	ListByLead(ctx context.Context, leadID string) ([]*model.MessageLog, error)
}

type MessageGateway interface {
	Send(ctx context.Context, lead *model.Lead, msg *model.CampaignMessage) (*gateway.Receipt, error)
}

// NurtureService runs the daily send pass: pick every due lead, send
// its next-day message, advance it. Sends are strictly sequential.
type NurtureService struct {
	leadRepo LeadRepository
	logRepo  MessageLogRepository
	gateway  MessageGateway
	now      func() time.Time
}

func NewNurtureService(leadRepo LeadRepository, logRepo MessageLogRepository, gw MessageGateway) *NurtureService {
	return &NurtureService{
		leadRepo: leadRepo,
		logRepo:  logRepo,
		gateway:  gw,
		now:      time.Now,
	}
}

// Run executes one full pass. A lead failure never aborts the pass;
// only the due-lead query itself can.
func (s *NurtureService) Run(ctx context.Context) (*model.RunSummary, error) {
	start := s.now()
	cutoff := start.Add(-model.DueWindow)

	leads, err := s.leadRepo.ListDue(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	prom.SetLeadsDue(len(leads))
	logger.Info("Scheduler pass started", "due_leads", len(leads))

	summary := &model.RunSummary{Results: []model.RunResult{}}
	for _, lead := range leads {
		result, ok := s.processLead(ctx, lead)
		if !ok {
			continue
		}
		summary.Results = append(summary.Results, result)
	}
	summary.Processed = len(summary.Results)

	prom.ObserveSchedulerRun(time.Since(start).Seconds())
	logger.Info("Scheduler pass finished", "processed", summary.Processed, "duration_ms", time.Since(start).Milliseconds())

	return summary, nil
}

// processLead sends the next-day message for one due lead. Returns
// ok=false when the lead was skipped without an attempt (no campaign,
// or the campaign has no message for that day).
func (s *NurtureService) processLead(ctx context.Context, lead *model.Lead) (model.RunResult, bool) {
	nextDay := lead.NextDay()

	if lead.Campaign == nil {
		logger.Debug("Lead has no campaign, skipping", "lead_id", lead.ID)
		return model.RunResult{}, false
	}
	msg := lead.Campaign.MessageForDay(nextDay)
	if msg == nil {
		// Day gaps are legitimate; the lead stays put until it
		// progresses past them or the campaign changes.
		logger.Debug("No message for day, skipping", "lead_id", lead.ID, "day", nextDay)
		return model.RunResult{}, false
	}

	receipt, err := s.gateway.Send(ctx, lead, msg)
	if err != nil {
		reason := err.Error()
		logger.Warn("Send failed", "lead_id", lead.ID, "day", nextDay, "error", reason)

		if _, logErr := s.logRepo.Create(ctx, &model.MessageLog{
			LeadID:      lead.ID,
			DayNumber:   nextDay,
			MessageText: model.ErrorTag + msg.MessageText,
			SentAt:      s.now(),
			Response:    &reason,
		}); logErr != nil {
			logger.Error("Failed to record error log", "lead_id", lead.ID, "error", logErr)
		}

		prom.AddMessageSent(prom.OutcomeError)
		return model.RunResult{Lead: lead.Name, Status: model.RunOutcomeError, Reason: reason}, true
	}

	sentAt := s.now()
	status := model.StatusAfterSend(nextDay)

	// Advance and log together so a crash between the two cannot leave
	// a sent message unaccounted for.
	err = s.leadRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.leadRepo.Advance(ctx, lead.ID, nextDay, sentAt, status); err != nil {
			return err
		}
		response := receipt.Response
		_, err := s.logRepo.Create(ctx, &model.MessageLog{
			LeadID:      lead.ID,
			DayNumber:   nextDay,
			MessageText: msg.MessageText,
			SentAt:      sentAt,
			Response:    &response,
		})
		return err
	})
	if err != nil {
		reason := err.Error()
		logger.Error("Failed to advance lead after send", "lead_id", lead.ID, "error", reason)
		prom.AddMessageSent(prom.OutcomeError)
		return model.RunResult{Lead: lead.Name, Status: model.RunOutcomeError, Reason: reason}, true
	}

	if receipt.Simulated {
		prom.AddMessageSent(prom.OutcomeSimulated)
	} else {
		prom.AddMessageSent(prom.OutcomeSuccess)
	}
	logger.Info("Lead advanced", "lead_id", lead.ID, "day", nextDay, "status", string(status), "simulated", receipt.Simulated)

	return model.RunResult{Lead: lead.Name, Status: model.RunOutcomeSuccess, Simulated: receipt.Simulated}, true
}
