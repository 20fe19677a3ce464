package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/amulsh/nurture-gateway/internal/config"
	gateway "github.com/amulsh/nurture-gateway/internal/gateways"
	"github.com/amulsh/nurture-gateway/internal/handlers"
	"github.com/amulsh/nurture-gateway/internal/repository"
	"github.com/amulsh/nurture-gateway/internal/services"
	xhttp "github.com/amulsh/nurture-gateway/pkg/http"
	"github.com/amulsh/nurture-gateway/pkg/logger"
	"github.com/amulsh/nurture-gateway/pkg/pg"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Server.ReadBufferSize = 1024 * 16
	s.Server.WriteBufferSize = 1024 * 16
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.TimeoutMiddleware(time.Second * 30))
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	s.Router = xhttp.CreateDefaultRouter()

	readConf := pg.Config{
		User:     config.Get().PostgresReadUser,
		Host:     config.Get().PostgresReadHost,
		Port:     config.Get().PostgresReadPort,
		Password: config.Get().PostgresReadPassword,
		Database: config.Get().PostgresReadDatabase,
	}
	writeConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}

	pgDebug := false
	if config.Get().AppEnv == "dev" {
		pgDebug = true
	}
	db, err := pg.CreateReadWrite(readConf, writeConf, pgDebug)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	whatsapp, err := gateway.NewWhatsAppClient(&gateway.Config{
		BaseURL:      config.Get().AisensyBaseURL,
		APIKey:       config.Get().AisensyAPIKey,
		CampaignName: config.Get().AisensyCampaignName,
	})
	if err != nil {
		logger.Error("failed to create whatsapp client", "error", err)
		return
	}

	leadRepo := repository.NewLeadRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	logRepo := repository.NewMessageLogRepository(db)

	// services
	leadService := services.NewLeadService(leadRepo, logRepo)
	campaignService := services.NewCampaignService(campaignRepo)
	importService := services.NewImportService(leadRepo, campaignRepo, logRepo, whatsapp)
	nurtureService := services.NewNurtureService(leadRepo, logRepo, whatsapp)
	healthService := services.NewHealthService(db)

	// handlers
	leadHandler := handlers.NewLeadHandler(leadService, importService)
	campaignHandler := handlers.NewCampaignHandler(campaignService)
	cronHandler := handlers.NewCronHandler(nurtureService, config.Get().CronSecret)
	healthHandler := handlers.NewHealthHandler(healthService)

	g := s.Router.Group("/api")
	handlers.RegisterLeadRoutes(g, leadHandler)
	handlers.RegisterCampaignRoutes(g, campaignHandler)
	handlers.RegisterCronRoutes(g, cronHandler)
	handlers.RegisterHealthRoutes(g, healthHandler)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		var err = s.ListenAndServe(config.Get().HttpListenAddr)
		if err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	select {
	case <-c:
		s.Shutdown()
	}
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
