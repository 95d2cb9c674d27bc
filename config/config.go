package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func LoadEnv() error {
	// Try to load .env file if it exists (for local development).
	// In production the variables are set directly on the host.
	err := godotenv.Load()
	if err != nil {
		// .env file not found is not an error
		return nil
	}
	return nil
}

// ValidateEnv checks that critical environment variables are set.
// Returns an error if any critical variable is missing; optional ones are only logged.
func ValidateEnv(logger *zap.Logger) error {
	var missing []string

	// Critical variables - application cannot function without these
	for _, key := range []string{"DATABASE_URL", "SUPABASE_URL", "SUPABASE_ANON_KEY", "SUPABASE_JWT_SECRET"} {
		if os.Getenv(key) == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("critical environment variables not set: %v", missing)
	}

	warnings := map[string]string{
		"ROOT_DOMAIN":             "tenant redirects default to beachlifeapp.com",
		"AUTH_BASE":               "magic links will point at https://ROOT_DOMAIN",
		"ADMIN_API_KEY_HASH":      "admin endpoints are disabled",
		"FIREBASE_STORAGE_BUCKET": "tenant logo uploads are disabled",
		"SMTP_HOST":               "claim receipts will not be emailed",
		"FRONTEND_URL":            "CORS only allows tenant subdomains",
	}
	for key, consequence := range warnings {
		if os.Getenv(key) == "" {
			logger.Warn(key+" not set", zap.String("consequence", consequence))
		}
	}

	return nil
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// Config is the process configuration, read once at startup.
type Config struct {
	Environment       string
	Port              string
	DatabaseURL       string
	SupabaseURL       string
	SupabaseAnonKey   string
	SupabaseJWTSecret string
	RootDomain        string
	AuthBase          string
	FrontendURL       string
	AdminAPIKeyHash   string
	FirebaseBucket    string
	ClaimRatePerMin   int
}

func Load() *Config {
	rootDomain := strings.TrimPrefix(strings.TrimPrefix(GetEnv("ROOT_DOMAIN", "beachlifeapp.com"), "https://"), "http://")
	rootDomain = strings.TrimSuffix(rootDomain, "/")

	claimRate := GetEnvInt("CLAIM_RATE_PER_MINUTE", 20)
	if claimRate < 1 {
		claimRate = 20
	}

	return &Config{
		Environment:       GetEnv("APP_ENV", "production"),
		Port:              GetEnv("PORT", "8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		SupabaseURL:       strings.TrimSuffix(os.Getenv("SUPABASE_URL"), "/"),
		SupabaseAnonKey:   os.Getenv("SUPABASE_ANON_KEY"),
		SupabaseJWTSecret: os.Getenv("SUPABASE_JWT_SECRET"),
		RootDomain:        rootDomain,
		AuthBase:          strings.TrimSuffix(GetEnv("AUTH_BASE", "https://"+rootDomain), "/"),
		FrontendURL:       os.Getenv("FRONTEND_URL"),
		AdminAPIKeyHash:   os.Getenv("ADMIN_API_KEY_HASH"),
		FirebaseBucket:    os.Getenv("FIREBASE_STORAGE_BUCKET"),
		ClaimRatePerMin:   claimRate,
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// CookieDomain returns the domain session cookies are scoped to so that every
// tenant subdomain shares the session. Empty for localhost.
func (c *Config) CookieDomain() string {
	host := c.RootDomain
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	if host == "" || host == "localhost" {
		return ""
	}
	return "." + host
}

// TenantURL returns the absolute URL of path on a tenant's subdomain.
func (c *Config) TenantURL(slug, path string) string {
	return "https://" + slug + "." + c.RootDomain + path
}
