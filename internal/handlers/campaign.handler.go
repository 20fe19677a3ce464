package handlers

import (
	"context"

	"github.com/amulsh/nurture-gateway/internal/model"
	xhttp "github.com/amulsh/nurture-gateway/pkg/http"
	"github.com/fasthttp/router"
)

type CampaignService interface {
	Create(ctx context.Context, draft model.CampaignDraft) (*model.Campaign, error)
	List(ctx context.Context) ([]*model.Campaign, error)
	Get(ctx context.Context, id string) (*model.Campaign, error)
	Update(ctx context.Context, id string, draft model.CampaignDraft) (*model.Campaign, error)
	Delete(ctx context.Context, id string) error
}

type CampaignHandler struct {
	svc CampaignService
}

func RegisterCampaignRoutes(e *router.Group, h *CampaignHandler) {
	e.POST("/campaigns", h.CreateCampaign)
	e.GET("/campaigns", h.ListCampaigns)
	e.GET("/campaigns/{id}", h.GetCampaign)
	e.PUT("/campaigns/{id}", h.UpdateCampaign)
	e.DELETE("/campaigns/{id}", h.DeleteCampaign)
}

func NewCampaignHandler(campaignService CampaignService) *CampaignHandler {
	return &CampaignHandler{
		svc: campaignService,
	}
}

type campaignMessageRequest struct {
	DayNumber   int                      `json:"day_number"`
	MessageText string                   `json:"message_text"`
	ImageURL    string                   `json:"image_url,omitempty"`
	Buttons     []model.QuickReplyButton `json:"buttons,omitempty"`
}

type campaignRequest struct {
	Name     string                   `json:"name"`
	IsActive *bool                    `json:"is_active,omitempty"`
	Messages []campaignMessageRequest `json:"messages"`
}

func (r campaignRequest) draft() model.CampaignDraft {
	d := model.CampaignDraft{
		Name:     r.Name,
		IsActive: r.IsActive,
	}
	for _, m := range r.Messages {
		d.Messages = append(d.Messages, model.CampaignMessageDraft{
			DayNumber:   m.DayNumber,
			MessageText: m.MessageText,
			ImageURL:    m.ImageURL,
			Buttons:     m.Buttons,
		})
	}
	return d
}

/* --------------------------------- Routes ----------------------------------- */

func (h *CampaignHandler) CreateCampaign(ctx *xhttp.RequestCtx) {
	var req campaignRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	campaign, err := h.svc.Create(ctx, req.draft())
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 201, campaign)
}

func (h *CampaignHandler) ListCampaigns(ctx *xhttp.RequestCtx) {
	campaigns, err := h.svc.List(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, map[string]interface{}{"items": campaigns})
}

func (h *CampaignHandler) GetCampaign(ctx *xhttp.RequestCtx) {
	campaign, err := h.svc.Get(ctx, param(ctx, "id"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, campaign)
}

func (h *CampaignHandler) UpdateCampaign(ctx *xhttp.RequestCtx) {
	var req campaignRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	campaign, err := h.svc.Update(ctx, param(ctx, "id"), req.draft())
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, campaign)
}

func (h *CampaignHandler) DeleteCampaign(ctx *xhttp.RequestCtx) {
	if err := h.svc.Delete(ctx, param(ctx, "id")); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, map[string]bool{"deleted": true})
}
