package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/amulsh/nurture-gateway/internal/model"
	"github.com/amulsh/nurture-gateway/internal/repository"
	"github.com/amulsh/nurture-gateway/internal/services"
	xhttp "github.com/amulsh/nurture-gateway/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

type MockLeadService struct {
	mock.Mock
}

func (m *MockLeadService) List(ctx context.Context, f model.LeadFilter) ([]*model.Lead, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.Lead), args.Get(1).(int64), args.Error(2)
}

func (m *MockLeadService) UpdateStatus(ctx context.Context, id string, status model.LeadStatus) (*model.Lead, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Lead), args.Error(1)
}

func (m *MockLeadService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLeadService) Logs(ctx context.Context, id string) ([]*model.MessageLog, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.MessageLog), args.Error(1)
}

type MockImportService struct {
	mock.Mock
}

func (m *MockImportService) Import(ctx context.Context, rows []model.LeadImportRow, defaultCampaignID string) (*model.ImportSummary, error) {
	args := m.Called(ctx, rows, defaultCampaignID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ImportSummary), args.Error(1)
}

func setupTestContext(method, path string, body []byte) *xhttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	if body != nil {
		ctx.Request.SetBody(body)
	}
	return ctx
}

func TestLeadHandler_ListLeads(t *testing.T) {
	t.Run("defaults and pagination", func(t *testing.T) {
		svc := new(MockLeadService)
		handler := NewLeadHandler(svc, new(MockImportService))

		svc.On("List", mock.Anything, mock.MatchedBy(func(f model.LeadFilter) bool {
			return f.Limit == 20 && f.Offset == 40 && f.Status == nil && f.Search == nil
		})).Return([]*model.Lead{{ID: "lead-1"}}, int64(41), nil)

		ctx := setupTestContext("GET", "/api/leads?page=3&limit=20", nil)
		handler.ListLeads(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())

		var resp listLeadsResponse
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
		assert.Equal(t, int64(41), resp.Total)
		assert.Equal(t, 3, resp.Page)
		svc.AssertExpectations(t)
	})

	t.Run("status and search filters", func(t *testing.T) {
		svc := new(MockLeadService)
		handler := NewLeadHandler(svc, new(MockImportService))

		svc.On("List", mock.Anything, mock.MatchedBy(func(f model.LeadFilter) bool {
			return f.Status != nil && *f.Status == model.LeadStatusInterested &&
				f.Search != nil && *f.Search == "maya"
		})).Return([]*model.Lead{}, int64(0), nil)

		ctx := setupTestContext("GET", "/api/leads?status=INTERESTED&search=maya", nil)
		handler.ListLeads(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())
		svc.AssertExpectations(t)
	})

	t.Run("invalid status filter", func(t *testing.T) {
		svc := new(MockLeadService)
		handler := NewLeadHandler(svc, new(MockImportService))

		svc.On("List", mock.Anything, mock.Anything).Return(nil, int64(0), services.ErrInvalidStatus)

		ctx := setupTestContext("GET", "/api/leads?status=SLEEPING", nil)
		handler.ListLeads(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
	})
}

func TestLeadHandler_UpdateLead(t *testing.T) {
	t.Run("updates status", func(t *testing.T) {
		svc := new(MockLeadService)
		handler := NewLeadHandler(svc, new(MockImportService))

		svc.On("UpdateStatus", mock.Anything, "lead-1", model.LeadStatusUnsubscribed).
			Return(&model.Lead{ID: "lead-1", Status: model.LeadStatusUnsubscribed}, nil)

		ctx := setupTestContext("PATCH", "/api/leads/lead-1", []byte(`{"status":"UNSUBSCRIBED"}`))
		ctx.SetUserValue("id", "lead-1")
		handler.UpdateLead(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())

		var lead model.Lead
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &lead))
		assert.Equal(t, model.LeadStatusUnsubscribed, lead.Status)
	})

	t.Run("unknown lead is 404", func(t *testing.T) {
		svc := new(MockLeadService)
		handler := NewLeadHandler(svc, new(MockImportService))

		svc.On("UpdateStatus", mock.Anything, "no-such-id", model.LeadStatusActive).
			Return(nil, repository.ErrLeadNotFound)

		ctx := setupTestContext("PATCH", "/api/leads/no-such-id", []byte(`{"status":"ACTIVE"}`))
		ctx.SetUserValue("id", "no-such-id")
		handler.UpdateLead(ctx)

		assert.Equal(t, 404, ctx.Response.StatusCode())
	})

	t.Run("invalid JSON", func(t *testing.T) {
		handler := NewLeadHandler(new(MockLeadService), new(MockImportService))

		ctx := setupTestContext("PATCH", "/api/leads/lead-1", []byte(`{broken`))
		ctx.SetUserValue("id", "lead-1")
		handler.UpdateLead(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
	})
}

func TestLeadHandler_DeleteLead(t *testing.T) {
	svc := new(MockLeadService)
	handler := NewLeadHandler(svc, new(MockImportService))

	svc.On("Delete", mock.Anything, "lead-1").Return(nil)

	ctx := setupTestContext("DELETE", "/api/leads/lead-1", nil)
	ctx.SetUserValue("id", "lead-1")
	handler.DeleteLead(ctx)

	assert.Equal(t, 200, ctx.Response.StatusCode())
	svc.AssertExpectations(t)
}

func TestLeadHandler_ListLeadLogs(t *testing.T) {
	svc := new(MockLeadService)
	handler := NewLeadHandler(svc, new(MockImportService))

	svc.On("Logs", mock.Anything, "lead-1").Return([]*model.MessageLog{{DayNumber: 1}}, nil)

	ctx := setupTestContext("GET", "/api/leads/lead-1/logs", nil)
	ctx.SetUserValue("id", "lead-1")
	handler.ListLeadLogs(ctx)

	assert.Equal(t, 200, ctx.Response.StatusCode())

	var resp struct {
		Items []*model.MessageLog `json:"items"`
	}
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.Len(t, resp.Items, 1)
}

func TestLeadHandler_ImportLeads(t *testing.T) {
	t.Run("successful import", func(t *testing.T) {
		importSvc := new(MockImportService)
		handler := NewLeadHandler(new(MockLeadService), importSvc)

		importSvc.On("Import", mock.Anything, mock.MatchedBy(func(rows []model.LeadImportRow) bool {
			return len(rows) == 2 && rows[0].Name == "A"
		}), "camp-1").Return(&model.ImportSummary{Success: 2, Errors: []model.ImportError{}}, nil)

		body := []byte(`{"leads":[{"name":"A","phone":"1234567891"},{"name":"B","phone":"9876543210"}],"campaign_id":"camp-1"}`)
		ctx := setupTestContext("POST", "/api/leads/import", body)
		handler.ImportLeads(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())

		var resp model.ImportSummary
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
		assert.Equal(t, 2, resp.Success)
		importSvc.AssertExpectations(t)
	})

	t.Run("empty batch", func(t *testing.T) {
		importSvc := new(MockImportService)
		handler := NewLeadHandler(new(MockLeadService), importSvc)

		ctx := setupTestContext("POST", "/api/leads/import", []byte(`{"leads":[]}`))
		handler.ImportLeads(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
		importSvc.AssertNotCalled(t, "Import", mock.Anything, mock.Anything, mock.Anything)
	})
}
