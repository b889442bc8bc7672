package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int
	LogLevel     slog.Level

	CORSAllowedOrigins []string

	InviteTTL       time.Duration
	ResultRetention time.Duration // 0: хранить результаты вечно
	ShuffleSeed     *uint64

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string

	DiscordBotToken string
	DiscordChannels map[string]string // guild id -> announcement channel id
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds the configuration from a lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		DatabaseURL:       getenv("DATABASE_URL"),
		JWTSecretKey:      getenv("JWT_SECRET_KEY"),
		R2AccountID:       getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:   getenv("R2_PUBLIC_BASE_URL"),
		DiscordBotToken:   getenv("DISCORD_BOT_TOKEN"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}
	if cfg.JWTSecretKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	portStr := getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}
	cfg.ServerPort = port

	if lvl := getenv("LOG_LEVEL"); lvl != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(lvl)); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", lvl, err)
		}
	}

	cfg.CORSAllowedOrigins = splitList(getenv("CORS_ALLOWED_ORIGINS"))
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}

	if cfg.InviteTTL, err = durationOr(getenv, "INVITE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.InviteTTL <= 0 {
		return nil, fmt.Errorf("INVITE_TTL must be positive, got %s", cfg.InviteTTL)
	}
	if cfg.ResultRetention, err = durationOr(getenv, "RESULT_RETENTION", 0); err != nil {
		return nil, err
	}

	if raw := getenv("SHUFFLE_SEED"); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid SHUFFLE_SEED environment variable: %w", err)
		}
		cfg.ShuffleSeed = &seed
	}

	if err := cfg.validateR2(); err != nil {
		return nil, err
	}

	if cfg.DiscordChannels, err = parseChannels(getenv("DISCORD_CHANNELS")); err != nil {
		return nil, err
	}
	if len(cfg.DiscordChannels) > 0 && cfg.DiscordBotToken == "" {
		return nil, fmt.Errorf("DISCORD_CHANNELS is set but DISCORD_BOT_TOKEN is not")
	}

	return cfg, nil
}

// R2Enabled reports whether completed brackets should be uploaded.
func (c *Config) R2Enabled() bool {
	return c.R2AccountID != ""
}

// DiscordEnabled reports whether announcements should be sent.
func (c *Config) DiscordEnabled() bool {
	return c.DiscordBotToken != ""
}

func (c *Config) validateR2() error {
	set := 0
	for _, v := range []string{c.R2AccountID, c.R2AccessKeyID, c.R2SecretAccessKey, c.R2BucketName, c.R2PublicBaseURL} {
		if v != "" {
			set++
		}
	}
	if set != 0 && set != 5 {
		return fmt.Errorf("R2 storage is partially configured: set all of R2_ACCOUNT_ID, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY, R2_BUCKET_NAME, R2_PUBLIC_BASE_URL or none")
	}
	return nil
}

func durationOr(getenv func(string) string, key string, fallback time.Duration) (time.Duration, error) {
	raw := getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseChannels reads "guild:channel,guild:channel".
func parseChannels(raw string) (map[string]string, error) {
	channels := make(map[string]string)
	for _, pair := range splitList(raw) {
		guild, channel, ok := strings.Cut(pair, ":")
		guild, channel = strings.TrimSpace(guild), strings.TrimSpace(channel)
		if !ok || guild == "" || channel == "" {
			return nil, fmt.Errorf("invalid DISCORD_CHANNELS entry %q, expected guild:channel", pair)
		}
		channels[guild] = channel
	}
	return channels, nil
}
