package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/amulsh/nurture-gateway/internal/config"
	gateway "github.com/amulsh/nurture-gateway/internal/gateways"
	"github.com/amulsh/nurture-gateway/internal/repository"
	"github.com/amulsh/nurture-gateway/internal/services"
	"github.com/amulsh/nurture-gateway/pkg/logger"
	"github.com/amulsh/nurture-gateway/pkg/pg"
	"github.com/amulsh/nurture-gateway/pkg/prom"
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
	logRepo := repository.NewMessageLogRepository(db)
	nurtureService := services.NewNurtureService(leadRepo, logRepo, whatsapp)

	var hostname string
	hostname, err = os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	err = prom.Create(hostname, config.Get().AppEnv, config.Get().PromNamespace)
	if err != nil {
		logger.Error("failed to create prometheus metrics", "error", err)
		return
	}

	go func() {
		prom.ListenAndServer(":9100", "/metrics")
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	interval := config.Get().SchedulerInterval
	if interval <= 0 {
		interval = time.Hour
	}
	logger.Info("scheduler started", "interval", interval)

	runOnce(nurtureService)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			runOnce(nurtureService)
		case <-c:
			logger.Info("scheduler stopping")
			return
		}
	}
}

func runOnce(svc *services.NurtureService) {
	summary, err := svc.Run(context.Background())
	if err != nil {
		logger.Error("scheduler run failed", "error", err)
		return
	}
	logger.Info("scheduler run complete", "processed", summary.Processed)
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
