package config

import (
	"os"
	"strconv"
	"strings"
)

type ConfigStruct struct {
	Discord DiscordConfig
	Storage StorageConfig
	Limits  LimitsConfig
	Sentry  SentryConfig
	Options Options
}

type DiscordConfig struct {
	BotToken     string
	AppID        string
	PublicKey    string
	GuildID      string
	AdminUserIDs []string
}

type StorageConfig struct {
	DBPath string
}

// LimitsConfig holds the env defaults for runtime settings. Stored values
// override them once the database is loaded.
type LimitsConfig struct {
	RateLimitPerMin int
	LimitMode       bool
	APIRatePerSec   int
}

type SentryConfig struct {
	DSN     string
	Release string
}

type Options struct {
	Port     string
	LogLevel string
}

// HasInteractionsEndpoint reports whether the HTTP interactions endpoint can
// verify request signatures.
func (d *DiscordConfig) HasInteractionsEndpoint() bool {
	return d.PublicKey != ""
}

func Load() *ConfigStruct {
	return &ConfigStruct{
		Discord: DiscordConfig{
			BotToken:     os.Getenv("DISCORD_BOT_TOKEN"),
			AppID:        os.Getenv("DISCORD_APP_ID"),
			PublicKey:    os.Getenv("DISCORD_PUBLIC_KEY"),
			GuildID:      os.Getenv("DISCORD_GUILD_ID"),
			AdminUserIDs: getAdminUserIDs(),
		},
		Storage: StorageConfig{
			DBPath: getDBPath(),
		},
		Limits: LimitsConfig{
			RateLimitPerMin: getRateLimitPerMin(),
			LimitMode:       getLimitMode(),
			APIRatePerSec:   getAPIRatePerSec(),
		},
		Sentry: SentryConfig{
			DSN:     os.Getenv("SENTRY_DSN"),
			Release: os.Getenv("RELEASE"),
		},
		Options: Options{
			Port:     getPort(),
			LogLevel: getLogLevel(),
		},
	}
}

func getAdminUserIDs() []string {
	raw := os.Getenv("ADMIN_USER_IDS")
	ids := []string{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}

func getDBPath() string {
	path := strings.TrimSpace(os.Getenv("DB_PATH"))
	if path == "" {
		return "data/nullscape.db"
	}
	return path
}

func getPort() string {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		return "8080"
	}
	return port
}

func getLogLevel() string {
	level := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if level == "" {
		return "info"
	}
	return level
}

func getRateLimitPerMin() int {
	limitStr := os.Getenv("RATE_LIMIT_PER_MIN")
	if limitStr == "" {
		return 3
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		return 3
	}
	return limit
}

func getLimitMode() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("NAI_LIMIT_MODE"))) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

func getAPIRatePerSec() int {
	rateStr := os.Getenv("API_RATE_PER_SEC")
	if rateStr == "" {
		return 5
	}
	rate, err := strconv.Atoi(rateStr)
	if err != nil || rate <= 0 {
		return 5
	}
	if rate > 100 {
		return 100
	}
	return rate
}
