package config

import (
	"time"

	"github.com/Netflix/go-env"
	"github.com/amulsh/nurture-gateway/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const ConfigTagName = "env"
const ConfigDefaultTagName = "default"

var config *Config

// Config holds every env-driven setting. Only this struct may be used to
// read configuration; no direct env access anywhere else.
//
// Absent values degrade rather than fail: no AISENSY_API_KEY means sends
// are simulated, no CRON_SECRET means the manual trigger is open.
type Config struct {
	AppEnv  string `env:"APP_ENV" default:"dev"`
	AppName string `env:"APP_NAME" default:"nurture_gateway"`

	HttpListenAddr string `env:"HTTP_LISTEN_ADDR" default:":8080"`

	PostgresReadHost     string `env:"POSTGRES_READ_HOST"`
	PostgresReadPort     string `env:"POSTGRES_READ_PORT"`
	PostgresReadUser     string `env:"POSTGRES_READ_USER"`
	PostgresReadPassword string `env:"POSTGRES_READ_PASSWORD"`
	PostgresReadDatabase string `env:"POSTGRES_READ_DBNAME"`

	PostgresWriteHost     string `env:"POSTGRES_WRITE_HOST"`
	PostgresWritePort     string `env:"POSTGRES_WRITE_PORT"`
	PostgresWriteUser     string `env:"POSTGRES_WRITE_USER"`
	PostgresWritePassword string `env:"POSTGRES_WRITE_PASSWORD"`
	PostgresWriteDatabase string `env:"POSTGRES_WRITE_DBNAME"`

	AisensyAPIKey       string `env:"AISENSY_API_KEY"`
	AisensyCampaignName string `env:"AISENSY_CAMPAIGN_NAME" default:"lead_nurturing_campaign"`
	AisensyBaseURL      string `env:"AISENSY_BASE_URL" default:"https://backend.aisensy.com/campaign/t1/api/v2"`

	CronSecret string `env:"CRON_SECRET"`

	SchedulerInterval time.Duration `env:"SCHEDULER_INTERVAL" default:"1h"`

	PromNamespace string `env:"PROM_NAMESPACE"`
}

func Load(path string) error {
	logger.Info("loading configs..", "path", path)
	c := &Config{}
	var err error
	if path != "" {
		logger.Info("trying to publish env from file", "path", path)
		err = godotenv.Load(path)
		if err != nil {
			return errors.New("failed to load configuration file " + path + " error: " + err.Error())
		}
	}

	_, err = env.UnmarshalFromEnviron(c)
	if err != nil {
		return errors.New("failed to map env variables to Configuration object " + " error: " + err.Error())
	}

	config = c
	return nil
}

func Get() *Config {
	if config == nil {
		logger.Panic("Config is not initialized")
	}
	return config
}
