package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                 string
	DBUrl                string
	DBMaxConns           int
	DBMinConns           int
	JWTSecret            string
	JWTTTL               time.Duration
	AppEnv               string
	CORSOrigins          string
	RedisAddr            string
	DashboardCacheTTL    time.Duration
	LoginRateLimit       int
	GSTPercent           int64
	PlatformFeePercent   int64
	SupabaseURL          string
	SupabaseBucket       string
	SupabaseServiceKey   string
	DefaultAdminEmail    string
	DefaultAdminPassword string
	DefaultAdminName     string
	DefaultMentorEmail   string
	DefaultMentorPass    string
	DefaultMentorName    string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	jwtSecret, exists := os.LookupEnv("JWT_SECRET")
	if !exists || jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	cfg := &Config{
		Port:                 getEnv("PORT", "8080"),
		DBUrl:                getEnv("DB_URL", ""),
		DBMaxConns:           getEnvInt("DB_MAX_CONNS", 10),
		DBMinConns:           getEnvInt("DB_MIN_CONNS", 2),
		JWTSecret:            jwtSecret,
		JWTTTL:               getEnvDuration("JWT_TTL", 24*time.Hour),
		AppEnv:               normalizeEnv(getEnv("APP_ENV", "production")),
		CORSOrigins:          strings.TrimSpace(getEnv("CORS_ORIGINS", "")),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		DashboardCacheTTL:    getEnvDuration("DASHBOARD_CACHE_TTL", 30*time.Second),
		LoginRateLimit:       getEnvInt("LOGIN_RATE_LIMIT", 10),
		GSTPercent:           int64(getEnvInt("PAYOUT_GST_PERCENT", 5)),
		PlatformFeePercent:   int64(getEnvInt("PAYOUT_PLATFORM_FEE_PERCENT", 10)),
		SupabaseURL:          getEnv("SUPABASE_URL", ""),
		SupabaseBucket:       getEnv("SUPABASE_BUCKET", ""),
		SupabaseServiceKey:   getEnv("SUPABASE_SERVICE_KEY", ""),
		DefaultAdminEmail:    getEnv("DEFAULT_ADMIN_EMAIL", ""),
		DefaultAdminPassword: getEnv("DEFAULT_ADMIN_PASSWORD", ""),
		DefaultAdminName:     getEnv("DEFAULT_ADMIN_NAME", "Admin User"),
		DefaultMentorEmail:   getEnv("DEFAULT_MENTOR_EMAIL", ""),
		DefaultMentorPass:    getEnv("DEFAULT_MENTOR_PASSWORD", ""),
		DefaultMentorName:    getEnv("DEFAULT_MENTOR_NAME", "Mentor"),
	}

	if cfg.GSTPercent < 0 || cfg.GSTPercent > 100 {
		return nil, fmt.Errorf("PAYOUT_GST_PERCENT must be between 0 and 100")
	}
	if cfg.PlatformFeePercent < 0 || cfg.PlatformFeePercent > 100 {
		return nil, fmt.Errorf("PAYOUT_PLATFORM_FEE_PERCENT must be between 0 and 100")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}

	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}

// SecureCookies reports whether the auth cookie should carry the Secure flag.
func (c *Config) SecureCookies() bool {
	if c == nil {
		return true
	}
	if override, ok := os.LookupEnv("COOKIE_SECURE"); ok && override != "" {
		return getEnvBool("COOKIE_SECURE", true)
	}
	return c.AppEnv != "development" && c.AppEnv != "test"
}

func (c *Config) StorageConfigured() bool {
	return c != nil && c.SupabaseURL != "" && c.SupabaseBucket != "" && c.SupabaseServiceKey != ""
}
