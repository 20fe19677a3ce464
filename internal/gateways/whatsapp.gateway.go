package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/amulsh/nurture-gateway/internal/model"
	"github.com/amulsh/nurture-gateway/pkg/logger"
	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"
)

const (
	DefaultTimeout  = 30 * time.Second
	DefaultMaxConns = 64
)

// GatewayError is any failed send: a non-2xx provider response or a
// network failure. The scheduler records Error() in the message log.
type GatewayError struct {
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("gateway: %s (status %d)", e.Message, e.StatusCode)
	}
	return "gateway: " + e.Message
}

type Config struct {
	BaseURL      string
	APIKey       string
	CampaignName string
	Timeout      time.Duration
	MaxConns     int
}

// Receipt is the outcome of one delivered (or simulated) message.
type Receipt struct {
	Simulated bool
	Response  string
}

// WhatsAppClient talks to the AiSensy campaign API. With no API key
// configured it simulates sends so the system runs without a live
// provider account.
type WhatsAppClient struct {
	config *Config
	client *fasthttp.Client
}

func NewWhatsAppClient(config *Config) (*WhatsAppClient, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if config.APIKey != "" && config.BaseURL == "" {
		return nil, errors.New("base url is required when an api key is set")
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.MaxConns <= 0 {
		config.MaxConns = DefaultMaxConns
	}

	c := &WhatsAppClient{
		config: config,
		client: &fasthttp.Client{
			MaxConnsPerHost:     config.MaxConns,
			ReadTimeout:         config.Timeout,
			WriteTimeout:        config.Timeout,
			MaxIdleConnDuration: 60 * time.Second,
		},
	}

	if config.APIKey == "" {
		logger.Warn("No provider API key configured, sends will be simulated")
	} else {
		logger.Info("WhatsApp client initialized", "base_url", config.BaseURL, "timeout", config.Timeout)
	}

	return c, nil
}

type mediaPayload struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

type buttonPayload struct {
	QuickReplyButtons []model.QuickReplyButton `json:"quickReplyButtons"`
}

type sendPayload struct {
	APIKey         string         `json:"apiKey"`
	CampaignName   string         `json:"campaignName"`
	Destination    string         `json:"destination"`
	UserName       string         `json:"userName"`
	TemplateParams []string       `json:"templateParams"`
	Media          *mediaPayload  `json:"media,omitempty"`
	ButtonParams   *buttonPayload `json:"buttonParams,omitempty"`
}

func (c *WhatsAppClient) buildPayload(lead *model.Lead, msg *model.CampaignMessage) *sendPayload {
	p := &sendPayload{
		APIKey:         c.config.APIKey,
		CampaignName:   c.config.CampaignName,
		Destination:    lead.Phone,
		UserName:       lead.Name,
		TemplateParams: []string{lead.Name},
	}
	if msg.ImageURL != nil && *msg.ImageURL != "" {
		p.Media = &mediaPayload{
			URL:      *msg.ImageURL,
			Filename: path.Base(*msg.ImageURL),
		}
	}
	if buttons := msg.QuickReplyButtons(); len(buttons) > 0 {
		p.ButtonParams = &buttonPayload{QuickReplyButtons: buttons}
	}
	return p
}

// Send delivers one campaign message to the lead. No retries: the
// caller decides what a failed send means.
func (c *WhatsAppClient) Send(ctx context.Context, lead *model.Lead, msg *model.CampaignMessage) (*Receipt, error) {
	if c.config.APIKey == "" {
		logger.Info("Simulated send", "phone", lead.Phone, "day", msg.DayNumber)
		return &Receipt{Simulated: true, Response: `{"simulated":true}`}, nil
	}

	body, err := json.Marshal(c.buildPayload(lead, msg))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.config.BaseURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.config.Timeout)
	}

	start := time.Now()
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, &GatewayError{Message: "network failure: " + err.Error()}
	}

	statusCode := resp.StatusCode()
	if statusCode < fasthttp.StatusOK || statusCode >= fasthttp.StatusMultipleChoices {
		return nil, errorFromResponse(statusCode, resp.Body())
	}

	logger.Info("Message sent", "phone", lead.Phone, "day", msg.DayNumber, "latency_ms", time.Since(start).Milliseconds())

	return &Receipt{Response: string(resp.Body())}, nil
}

// errorFromResponse prefers the provider's own {message} over the raw
// body.
func errorFromResponse(statusCode int, body []byte) *GatewayError {
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		return &GatewayError{StatusCode: statusCode, Message: parsed.Message}
	}
	msg := string(body)
	if msg == "" {
		msg = "provider request failed"
	}
	return &GatewayError{StatusCode: statusCode, Message: msg}
}
