package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

type Config struct {
	ServiceName string
	LoggerLevel string

	// Postback HTTP server
	AppPort         int
	PostbackSecret  string
	PostbackBaseURL string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string

	TelegramBotToken string
	AdminIDs         []int64

	BasicMiniappURL string
	VIPMiniappURL   string

	DefaultLanguage string
}

func Load() Config {
	_ = godotenv.Load(".env")

	cfg := Config{}

	cfg.ServiceName = cast.ToString(getOrReturnDefault("SERVICE_NAME", "signalbot"))
	cfg.LoggerLevel = cast.ToString(getOrReturnDefault("LOGGER_LEVEL", "debug"))

	cfg.AppPort = cast.ToInt(getOrReturnDefault("APP_PORT", 8080))
	cfg.PostbackSecret = cast.ToString(getOrReturnDefault("BROKER_POSTBACK_SECRET", ""))
	cfg.PostbackBaseURL = strings.TrimRight(cast.ToString(getOrReturnDefault("POSTBACK_BASE_URL", "http://localhost:8080")), "/")

	cfg.PostgresHost = cast.ToString(getOrReturnDefault("POSTGRES_HOST", "localhost"))
	cfg.PostgresPort = cast.ToString(getOrReturnDefault("POSTGRES_PORT", "5432"))
	cfg.PostgresUser = cast.ToString(getOrReturnDefault("POSTGRES_USER", "postgres"))
	cfg.PostgresPassword = cast.ToString(getOrReturnDefault("POSTGRES_PASSWORD", "1234"))
	cfg.PostgresDB = cast.ToString(getOrReturnDefault("POSTGRES_DB", "signalbot"))

	cfg.TelegramBotToken = cast.ToString(getOrReturnDefault("BOT_TOKEN", ""))
	cfg.AdminIDs = parseAdminIDs(cast.ToString(getOrReturnDefault("ADMIN_IDS", "")))

	cfg.BasicMiniappURL = strings.TrimSpace(cast.ToString(getOrReturnDefault("BASIC_MINIAPP_URL", "")))
	cfg.VIPMiniappURL = strings.TrimSpace(cast.ToString(getOrReturnDefault("VIP_MINIAPP_URL", "")))

	cfg.DefaultLanguage = cast.ToString(getOrReturnDefault("DEFAULT_LANGUAGE", "en"))

	return cfg
}

// parseAdminIDs accepts a comma-separated list of telegram ids.
func parseAdminIDs(raw string) []int64 {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if id := cast.ToInt64(part); id != 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

func getOrReturnDefault(key string, defaultValue interface{}) interface{} {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}
