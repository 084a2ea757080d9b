package config

import (
	"encoding/hex"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"golang.org/x/text/language"
)

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds application configuration
type Config struct {
	Port      string
	DBBackend string
	DBConn    string
	LogLevel  string

	JWTSecret     string
	TokenTTL      time.Duration
	HMACSecret    string
	EncryptionKey string

	// Redis backs the report cache and the login rate limiter. Both are
	// disabled when RedisAddr is empty.
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	ReportCacheTTL  time.Duration
	LoginRateLimit  int
	LoginRateWindow time.Duration
	// TrustedProxies lists the IPs or CIDRs whose X-Forwarded-For header
	// is believed. Empty means clients are keyed by their socket address.
	TrustedProxies []string

	Locale             string
	CurrencySymbol     string
	DefaultPhoneRegion string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string

	DigestDailySchedule  string
	DigestWeeklySchedule string
}

// NewConfig loads configuration from environment variables and an optional .env file
func NewConfig() (*Config, error) {
	// A missing .env is fine; real environments set variables directly.
	_ = godotenv.Load()

	cfg := &Config{
		Port:      getEnv("PORT", "8080"),
		DBBackend: getEnv("DB_BACKEND", BackendPostgres),
		DBConn:    getEnv("DB_CONN", "host=localhost port=5436 user=test password=test dbname=finance sslmode=disable"),
		LogLevel:  getEnv("LOG_LEVEL", "INFO"),

		JWTSecret:     getEnv("JWT_SECRET", "secret"),
		TokenTTL:      getEnvDuration("TOKEN_TTL", 24*time.Hour),
		HMACSecret:    getEnv("HMAC_SECRET", "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6"),
		EncryptionKey: getEnv("ENCRYPTION_KEY", "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6"),

		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		ReportCacheTTL:  getEnvDuration("REPORT_CACHE_TTL", 2*time.Minute),
		LoginRateLimit:  getEnvInt("LOGIN_RATE_LIMIT", 10),
		LoginRateWindow: getEnvDuration("LOGIN_RATE_WINDOW", time.Minute),
		TrustedProxies:  getEnvList("TRUSTED_PROXIES"),

		Locale:             getEnv("LOCALE", "pt-BR"),
		CurrencySymbol:     getEnv("CURRENCY_SYMBOL", "R$"),
		DefaultPhoneRegion: getEnv("DEFAULT_PHONE_REGION", "BR"),

		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SenderEmail:  getEnv("SENDER_EMAIL", "noreply@finance.local"),

		DigestDailySchedule:  getEnv("DIGEST_DAILY_SCHEDULE", "0 8 * * *"),
		DigestWeeklySchedule: getEnv("DIGEST_WEEKLY_SCHEDULE", "0 8 * * 1"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every setting and reports all problems at once
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DBBackend {
	case BackendPostgres:
		if c.DBConn == "" {
			problems = append(problems, "DB_CONN is required for the postgres backend")
		}
	case BackendMemory:
	default:
		problems = append(problems, fmt.Sprintf("invalid db backend '%s': must be one of [%s %s]", c.DBBackend, BackendPostgres, BackendMemory))
	}

	if c.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is required")
	}
	if c.TokenTTL <= 0 {
		problems = append(problems, fmt.Sprintf("invalid token ttl %v: must be positive", c.TokenTTL))
	}
	if c.HMACSecret == "" {
		problems = append(problems, "HMAC_SECRET is required")
	}
	if _, err := c.EncryptionKeyBytes(); err != nil {
		problems = append(problems, err.Error())
	}

	if c.ReportCacheTTL <= 0 {
		problems = append(problems, fmt.Sprintf("invalid report cache ttl %v: must be positive", c.ReportCacheTTL))
	}
	if c.LoginRateLimit < 0 {
		problems = append(problems, fmt.Sprintf("invalid login rate limit %d: must not be negative", c.LoginRateLimit))
	}
	if c.LoginRateWindow <= 0 {
		problems = append(problems, fmt.Sprintf("invalid login rate window %v: must be positive", c.LoginRateWindow))
	}

	if _, err := c.TrustedProxyNets(); err != nil {
		problems = append(problems, err.Error())
	}

	if _, err := language.Parse(c.Locale); err != nil {
		problems = append(problems, fmt.Sprintf("invalid locale '%s': %v", c.Locale, err))
	}

	for name, spec := range map[string]string{
		"DIGEST_DAILY_SCHEDULE":  c.DigestDailySchedule,
		"DIGEST_WEEKLY_SCHEDULE": c.DigestWeeklySchedule,
	} {
		if _, err := cron.ParseStandard(spec); err != nil {
			problems = append(problems, fmt.Sprintf("invalid %s '%s': %v", name, spec, err))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// EncryptionKeyBytes decodes the hex AES key.
func (c *Config) EncryptionKeyBytes() ([]byte, error) {
	key, err := hex.DecodeString(c.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("invalid ENCRYPTION_KEY: must be hex encoded")
	}
	switch len(key) {
	case 16, 24, 32:
		return key, nil
	default:
		return nil, fmt.Errorf("invalid ENCRYPTION_KEY: must decode to 16, 24 or 32 bytes, got %d", len(key))
	}
}

// TrustedProxyNets parses TrustedProxies. A bare IP becomes a single-host network.
func (c *Config) TrustedProxyNets() ([]*net.IPNet, error) {
	nets := make([]*net.IPNet, 0, len(c.TrustedProxies))
	for _, entry := range c.TrustedProxies {
		if !strings.Contains(entry, "/") {
			ip := net.ParseIP(entry)
			if ip == nil {
				return nil, fmt.Errorf("invalid trusted proxy '%s': must be an IP or CIDR", entry)
			}
			bits := 128
			if ip.To4() != nil {
				ip, bits = ip.To4(), 32
			}
			nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, ipNet, err := net.ParseCIDR(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy '%s': must be an IP or CIDR", entry)
		}
		nets = append(nets, ipNet)
	}
	return nets, nil
}

// LanguageTag returns the parsed locale, falling back to Brazilian Portuguese.
func (c *Config) LanguageTag() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.BrazilianPortuguese
	}
	return tag
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// getEnvList splits a comma separated variable, dropping empty items.
func getEnvList(key string) []string {
	var items []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
