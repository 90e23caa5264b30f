package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port      string
	MongoURI  string
	MongoDB   string
	JWTSecret string
	RedisAddr string
	RabbitURL string

	AccessTTLMinutes int

	// Outbound links in mail digests are built from BaseURL.
	BaseURL string

	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	MailFrom string

	// Timestamps are stored UTC and rendered in this zone.
	Timezone string

	BoardCacheTTLSeconds int

	Production bool
}

func Load() Config {
	return Config{
		Port:                 getenv("APP_PORT", "8080"),
		MongoURI:             getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:              getenv("MONGO_DB", "bbs_db"),
		JWTSecret:            getenv("JWT", "default_secret_key"),
		RedisAddr:            getenv("REDIS_ADDR", "localhost:6379"),
		RabbitURL:            getenv("RABBIT_URL", ""),
		AccessTTLMinutes:     geti("ACCESS_TTL_MINUTES", 720),
		BaseURL:              getenv("BASE_URL", ""),
		SMTPHost:             getenv("SMTP_HOST", ""),
		SMTPPort:             getenv("SMTP_PORT", "25"),
		SMTPUser:             getenv("SMTP_USER", ""),
		SMTPPass:             getenv("SMTP_PASS", ""),
		MailFrom:             getenv("MAIL_FROM", "bbs@localhost"),
		Timezone:             getenv("APP_TZ", "Asia/Shanghai"),
		BoardCacheTTLSeconds: geti("BOARD_CACHE_TTL_SECONDS", 60),
		Production:           getenv("APP_ENV", "dev") == "prod",
	}
}

// Location resolves the display timezone, falling back to GMT+8.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.FixedZone("GMT+8", 8*3600)
	}
	return loc
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func geti(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
