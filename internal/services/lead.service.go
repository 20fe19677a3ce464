package services

import (
	"context"
	"errors"

	"github.com/amulsh/nurture-gateway/internal/model"
)

var (
	ErrInvalidStatus = errors.New("invalid lead status")
)

type LeadService struct {
	leadRepo LeadRepository
	logRepo  MessageLogRepository
}

func NewLeadService(leadRepo LeadRepository, logRepo MessageLogRepository) *LeadService {
	return &LeadService{
		leadRepo: leadRepo,
		logRepo:  logRepo,
	}
}

func (s *LeadService) List(ctx context.Context, f model.LeadFilter) ([]*model.Lead, int64, error) {
	if f.Status != nil && !f.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	return s.leadRepo.List(ctx, f)
}

func (s *LeadService) Get(ctx context.Context, id string) (*model.Lead, error) {
	return s.leadRepo.Get(ctx, id)
}

// UpdateStatus is how the dashboard marks a lead INTERESTED,
// UNSUBSCRIBED or re-activates it.
func (s *LeadService) UpdateStatus(ctx context.Context, id string, status model.LeadStatus) (*model.Lead, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.leadRepo.UpdateStatus(ctx, id, status)
}

func (s *LeadService) Delete(ctx context.Context, id string) error {
	return s.leadRepo.Delete(ctx, id)
}

// Logs returns the lead's send history, newest first. The lead is
// looked up first so a missing id surfaces as not-found instead of an
// empty list.
func (s *LeadService) Logs(ctx context.Context, id string) ([]*model.MessageLog, error) {
	if _, err := s.leadRepo.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.logRepo.ListByLead(ctx, id)
}
