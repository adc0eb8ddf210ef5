package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	BotToken string

	DBUser     string
	DBPassword string
	DBName     string
	DBHost     string
	DBPort     string

	// AdminChatIDs is the fixed set of admins receiving submission fan-out.
	AdminChatIDs []int64

	// PublicChannelURL is the static fallback link handed out on approval.
	PublicChannelURL string
	// VIPChannelID enables single-use invite link issuance when non-zero.
	VIPChannelID int64

	HealthPort string
	DocDir     string
}

func Load() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Printf("config.Load: no .env file found - using env variables")
	}

	cfg := &Config{
		BotToken:         os.Getenv("BOT_TOKEN"),
		DBUser:           os.Getenv("DB_USER"),
		DBPassword:       os.Getenv("DB_PASSWORD"),
		DBName:           os.Getenv("DB_NAME"),
		DBHost:           os.Getenv("DB_HOST"),
		DBPort:           os.Getenv("DB_PORT"),
		PublicChannelURL: os.Getenv("PUBLIC_CHANNEL_URL"),
		HealthPort:       os.Getenv("HEALTH_PORT"),
		DocDir:           os.Getenv("DOC_DIR"),
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("config.Load: BOT_TOKEN is required")
	}

	if cfg.DBUser == "" || cfg.DBPassword == "" || cfg.DBName == "" {
		return nil, fmt.Errorf("config.Load: DB_USER, DB_PASSWORD, DB_NAME are required")
	}

	cfg.AdminChatIDs, err = parseAdminIDs(os.Getenv("ADMIN_CHAT_IDS"))
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	if len(cfg.AdminChatIDs) == 0 {
		return nil, fmt.Errorf("config.Load: ADMIN_CHAT_IDS is required")
	}

	if raw := os.Getenv("VIP_CHANNEL_ID"); raw != "" {
		cfg.VIPChannelID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("config.Load: invalid VIP_CHANNEL_ID %q", raw)
		}
	}

	if cfg.DBHost == "" {
		cfg.DBHost = "localhost"
	}

	if cfg.DBPort == "" {
		cfg.DBPort = "5432"
	}

	if cfg.HealthPort == "" {
		cfg.HealthPort = "8080"
	}

	if cfg.DocDir == "" {
		cfg.DocDir = "doc_files"
	}

	return cfg, nil
}

func parseAdminIDs(raw string) ([]int64, error) {
	var ids []int64

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid admin chat id %q", part)
		}

		ids = append(ids, id)
	}

	return ids, nil
}

// IsAdmin reports whether chatID belongs to the configured admin set.
func (c *Config) IsAdmin(chatID int64) bool {
	for _, id := range c.AdminChatIDs {
		if id == chatID {
			return true
		}
	}

	return false
}
