package handlers

import (
	"context"

	"github.com/amulsh/nurture-gateway/internal/model"
	xhttp "github.com/amulsh/nurture-gateway/pkg/http"
	"github.com/fasthttp/router"
)

type NurtureRunner interface {
	Run(ctx context.Context) (*model.RunSummary, error)
}

// CronHandler exposes the scheduler pass to an external cron trigger.
// With no secret configured the route is open, matching local setups.
type CronHandler struct {
	runner NurtureRunner
	secret string
}

func RegisterCronRoutes(e *router.Group, h *CronHandler) {
	e.GET("/cron/send-messages", h.SendMessages)
}

func NewCronHandler(runner NurtureRunner, secret string) *CronHandler {
	return &CronHandler{
		runner: runner,
		secret: secret,
	}
}

func (h *CronHandler) SendMessages(ctx *xhttp.RequestCtx) {
	if h.secret != "" {
		auth := string(ctx.Request.Header.Peek("Authorization"))
		if auth != "Bearer "+h.secret {
			writeError(ctx, 401, "unauthorized")
			return
		}
	}

	summary, err := h.runner.Run(ctx)
	if err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, summary)
}
