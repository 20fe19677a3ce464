package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SendCampaignRequest mirrors the AiSensy campaign API body.
type SendCampaignRequest struct {
	APIKey         string   `json:"apiKey" binding:"required"`
	CampaignName   string   `json:"campaignName" binding:"required"`
	Destination    string   `json:"destination" binding:"required"`
	UserName       string   `json:"userName"`
	TemplateParams []string `json:"templateParams"`
	Media          *struct {
		URL      string `json:"url"`
		Filename string `json:"filename"`
	} `json:"media"`
	ButtonParams *struct {
		QuickReplyButtons []struct {
			Text string `json:"text"`
		} `json:"quickReplyButtons"`
	} `json:"buttonParams"`
}

type SendCampaignResponse struct {
	Success     string    `json:"success"`
	SubmittedID string    `json:"submitted_message_id"`
	ProcessedAt time.Time `json:"processed_at"`
}

// MockProvider simulates the WhatsApp campaign provider.
type MockProvider struct {
	failureRate float64
	minDelay    time.Duration
	maxDelay    time.Duration
	providerID  string
	rng         *rand.Rand
}

func NewMockProvider(failureRate float64, minDelay, maxDelay time.Duration) *MockProvider {
	return &MockProvider{
		failureRate: failureRate,
		minDelay:    minDelay,
		maxDelay:    maxDelay,
		providerID:  "MOCK_PROVIDER_" + uuid.New().String()[:8],
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (m *MockProvider) randomDelay() time.Duration {
	if m.maxDelay <= m.minDelay {
		return m.minDelay
	}
	return m.minDelay + time.Duration(m.rng.Int63n(int64(m.maxDelay-m.minDelay)))
}

func (m *MockProvider) shouldFail() bool {
	return m.rng.Float64() < m.failureRate
}

type Handler struct {
	provider *MockProvider
}

func NewHandler(provider *MockProvider) *Handler {
	return &Handler{provider: provider}
}

// SendCampaign handles a campaign message send.
func (h *Handler) SendCampaign(c *gin.Context) {
	var req SendCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid request: " + err.Error(),
		})
		return
	}

	time.Sleep(h.provider.randomDelay())

	if h.provider.shouldFail() {
		log.Warn().
			Str("destination", req.Destination).
			Str("campaign", req.CampaignName).
			Msg("Simulated delivery failure")
		c.JSON(http.StatusBadGateway, gin.H{
			"message": "Message could not be delivered",
		})
		return
	}

	log.Info().
		Str("destination", req.Destination).
		Str("campaign", req.CampaignName).
		Str("user", req.UserName).
		Bool("has_media", req.Media != nil).
		Msg("Campaign message delivered")

	c.JSON(http.StatusOK, SendCampaignResponse{
		Success:     "true",
		SubmittedID: uuid.NewString(),
		ProcessedAt: time.Now(),
	})
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"provider_id":  h.provider.providerID,
		"failure_rate": h.provider.failureRate,
		"timestamp":    time.Now(),
	})
}

// UpdateConfig changes the failure rate at runtime, handy for testing
// the error path end to end.
func (h *Handler) UpdateConfig(c *gin.Context) {
	var config struct {
		FailureRate *float64 `json:"failure_rate"`
	}
	if err := c.ShouldBindJSON(&config); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid request: " + err.Error(),
		})
		return
	}

	if config.FailureRate != nil && *config.FailureRate >= 0 && *config.FailureRate <= 1.0 {
		h.provider.failureRate = *config.FailureRate
		log.Info().Float64("rate", *config.FailureRate).Msg("Updated failure rate")
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Configuration updated",
		"failure_rate": h.provider.failureRate,
	})
}

func SetupRouter(handler *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request processed")
	})

	// same path shape as the real provider
	router.POST("/campaign/t1/api/v2", handler.SendCampaign)
	router.PUT("/config", handler.UpdateConfig)
	router.GET("/health", handler.HealthCheck)

	return router
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	port := getEnv("PORT", "8081")
	failureRate := getEnvFloat("FAILURE_RATE", 0)
	minDelay := getEnvDuration("MIN_DELAY", 50*time.Millisecond)
	maxDelay := getEnvDuration("MAX_DELAY", 500*time.Millisecond)

	log.Info().
		Str("port", port).
		Float64("failure_rate", failureRate).
		Dur("min_delay", minDelay).
		Dur("max_delay", maxDelay).
		Msg("Starting mock WhatsApp provider")

	provider := NewMockProvider(failureRate, minDelay, maxDelay)
	handler := NewHandler(provider)
	router := SetupRouter(handler)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down mock provider")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Forced shutdown")
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		fmt.Fprintf(os.Stderr, "invalid %s, using default\n", key)
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
