package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/amulsh/nurture-gateway/internal/model"
	"github.com/amulsh/nurture-gateway/internal/repository"
	"github.com/amulsh/nurture-gateway/internal/services"
	xhttp "github.com/amulsh/nurture-gateway/pkg/http"
	"github.com/fasthttp/router"
)

type LeadService interface {
	List(ctx context.Context, f model.LeadFilter) ([]*model.Lead, int64, error)
	UpdateStatus(ctx context.Context, id string, status model.LeadStatus) (*model.Lead, error)
	Delete(ctx context.Context, id string) error
	Logs(ctx context.Context, id string) ([]*model.MessageLog, error)
}

type ImportService interface {
	Import(ctx context.Context, rows []model.LeadImportRow, defaultCampaignID string) (*model.ImportSummary, error)
}

type LeadHandler struct {
	svc       LeadService
	importSvc ImportService
}

func RegisterLeadRoutes(e *router.Group, h *LeadHandler) {
	e.GET("/leads", h.ListLeads)
	e.POST("/leads/import", h.ImportLeads)
	e.PATCH("/leads/{id}", h.UpdateLead)
	e.DELETE("/leads/{id}", h.DeleteLead)
	e.GET("/leads/{id}/logs", h.ListLeadLogs)
}

func NewLeadHandler(leadService LeadService, importService ImportService) *LeadHandler {
	return &LeadHandler{
		svc:       leadService,
		importSvc: importService,
	}
}

type listLeadsResponse struct {
	Items []*model.Lead `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

type updateLeadRequest struct {
	Status string `json:"status"`
}

type importLeadsRequest struct {
	Leads      []model.LeadImportRow `json:"leads"`
	CampaignID string                `json:"campaign_id,omitempty"`
}

/* --------------------------------- Routes ----------------------------------- */

func (h *LeadHandler) ListLeads(ctx *xhttp.RequestCtx) {
	var f model.LeadFilter

	if v := query(ctx, "status"); v != "" {
		status := model.LeadStatus(v)
		f.Status = &status
	}
	if v := query(ctx, "search"); v != "" {
		f.Search = &v
	}

	limit := 50
	if v := query(ctx, "limit"); v != "" {
		if n, e := strconv.Atoi(v); e == nil && n > 0 {
			limit = n
		}
	}
	page := 1
	if v := query(ctx, "page"); v != "" {
		if n, e := strconv.Atoi(v); e == nil && n > 0 {
			page = n
		}
	}
	f.Limit = limit
	f.Offset = (page - 1) * limit

	items, total, err := h.svc.List(ctx, f)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, listLeadsResponse{Items: items, Total: total, Page: page, Limit: limit})
}

func (h *LeadHandler) UpdateLead(ctx *xhttp.RequestCtx) {
	var req updateLeadRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	lead, err := h.svc.UpdateStatus(ctx, param(ctx, "id"), model.LeadStatus(req.Status))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, lead)
}

func (h *LeadHandler) DeleteLead(ctx *xhttp.RequestCtx) {
	if err := h.svc.Delete(ctx, param(ctx, "id")); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, map[string]bool{"deleted": true})
}

func (h *LeadHandler) ListLeadLogs(ctx *xhttp.RequestCtx) {
	logs, err := h.svc.Logs(ctx, param(ctx, "id"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, map[string]interface{}{"items": logs})
}

func (h *LeadHandler) ImportLeads(ctx *xhttp.RequestCtx) {
	var req importLeadsRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	if len(req.Leads) == 0 {
		writeError(ctx, 400, "no leads to import")
		return
	}

	summary, err := h.importSvc.Import(ctx, req.Leads, req.CampaignID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, summary)
}

/* --------------------------------- Helpers ----------------------------------- */

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	body := ctx.PostBody()
	return json.Unmarshal(body, dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"error": msg})
}

// writeServiceError maps the service layer's sentinels onto statuses.
func writeServiceError(ctx *xhttp.RequestCtx, err error) {
	switch {
	case errors.Is(err, repository.ErrLeadNotFound), errors.Is(err, repository.ErrCampaignNotFound):
		writeError(ctx, 404, err.Error())
	case errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, model.ErrCampaignNameRequired),
		errors.Is(err, model.ErrMissingNameOrPhone),
		errors.Is(err, model.ErrInvalidPhone):
		writeError(ctx, 400, err.Error())
	default:
		writeError(ctx, 500, err.Error())
	}
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

func param(ctx *xhttp.RequestCtx, name string) string {
	if v, ok := ctx.UserValue(name).(string); ok {
		return v
	}
	return ""
}
