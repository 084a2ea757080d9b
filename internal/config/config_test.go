package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Port:                 "8080",
		DBBackend:            BackendMemory,
		JWTSecret:            "secret",
		TokenTTL:             time.Hour,
		HMACSecret:           "hmac",
		EncryptionKey:        "000102030405060708090a0b0c0d0e0f",
		ReportCacheTTL:       time.Minute,
		LoginRateLimit:       10,
		LoginRateWindow:      time.Minute,
		Locale:               "pt-BR",
		DigestDailySchedule:  "0 8 * * *",
		DigestWeeklySchedule: "@weekly",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		errorString string
	}{
		{name: "valid memory backend", mutate: func(*Config) {}},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range",
			mutate:      func(c *Config) { c.Port = "70000" },
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "postgres without connection string",
			mutate:      func(c *Config) { c.DBBackend = BackendPostgres; c.DBConn = "" },
			errorString: "DB_CONN is required for the postgres backend",
		},
		{
			name:        "unknown backend",
			mutate:      func(c *Config) { c.DBBackend = "sqlite" },
			errorString: "invalid db backend 'sqlite'",
		},
		{
			name:        "missing jwt secret",
			mutate:      func(c *Config) { c.JWTSecret = "" },
			errorString: "JWT_SECRET is required",
		},
		{
			name:        "short encryption key",
			mutate:      func(c *Config) { c.EncryptionKey = "0011" },
			errorString: "must decode to 16, 24 or 32 bytes, got 2",
		},
		{
			name:        "non-hex encryption key",
			mutate:      func(c *Config) { c.EncryptionKey = "not-hex" },
			errorString: "ENCRYPTION_KEY: must be hex encoded",
		},
		{
			name:        "bad digest schedule",
			mutate:      func(c *Config) { c.DigestDailySchedule = "every morning" },
			errorString: "invalid DIGEST_DAILY_SCHEDULE",
		},
		{
			name:        "negative rate limit",
			mutate:      func(c *Config) { c.LoginRateLimit = -1 },
			errorString: "invalid login rate limit -1",
		},
		{
			name:        "bad trusted proxy",
			mutate:      func(c *Config) { c.TrustedProxies = []string{"10.0.0.0/8", "proxy.local"} },
			errorString: "invalid trusted proxy 'proxy.local'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errorString == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorString)
		})
	}
}

func TestNewConfigReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_BACKEND", BackendMemory)
	t.Setenv("TOKEN_TTL", "90m")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("LOCALE", "en-US")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.168.1.10,")

	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 90*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, "en-US", cfg.LanguageTag().String())

	nets, err := cfg.TrustedProxyNets()
	require.NoError(t, err)
	require.Len(t, nets, 2)
	assert.Equal(t, "10.0.0.0/8", nets[0].String())
	assert.Equal(t, "192.168.1.10/32", nets[1].String())

	key, err := cfg.EncryptionKeyBytes()
	require.NoError(t, err)
	assert.Len(t, key, 32)
}
