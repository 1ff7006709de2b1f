package config

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/vetclinic/clinic/internal/domain/slotgrid"
)

type Config struct {
	Port           string        `mapstructure:"PORT"`
	Env            string        `mapstructure:"ENV"`
	DatabaseURL    string        `mapstructure:"DATABASE_URL"`
	DBMaxConns     int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns     int32         `mapstructure:"DB_MIN_CONNS"`
	MemoryStore    bool          `mapstructure:"MEMORY_STORE"`
	RedisURL       string        `mapstructure:"REDIS_URL"`
	CacheTTL       time.Duration `mapstructure:"CACHE_TTL"`
	AuthIssuer     string        `mapstructure:"AUTH_ISSUER"`
	AuthJWKSURL    string        `mapstructure:"AUTH_JWKS_URL"`
	AuthAudience   string        `mapstructure:"AUTH_AUDIENCE"`
	AuthSigningKey string        `mapstructure:"AUTH_SIGNING_KEY"`
	CORSOrigins    []string      `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS   float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int           `mapstructure:"RATE_LIMIT_BURST"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	ClinicTimezone string        `mapstructure:"CLINIC_TIMEZONE"`
	ClinicOpen     string        `mapstructure:"CLINIC_OPEN"`
	ClinicClose    string        `mapstructure:"CLINIC_CLOSE"`
	SlotMinutes    int           `mapstructure:"SLOT_MINUTES"`
	OperatingDays  []string      `mapstructure:"CLINIC_OPERATING_DAYS"`
}

var keys = []string{
	"PORT", "ENV", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS", "MEMORY_STORE",
	"REDIS_URL", "CACHE_TTL", "AUTH_ISSUER", "AUTH_JWKS_URL", "AUTH_AUDIENCE",
	"AUTH_SIGNING_KEY", "CORS_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"REQUEST_TIMEOUT", "CLINIC_TIMEZONE", "CLINIC_OPEN", "CLINIC_CLOSE", "SLOT_MINUTES",
	"CLINIC_OPERATING_DAYS",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("CLINIC_TIMEZONE", "UTC")
	v.SetDefault("CLINIC_OPEN", "09:00")
	v.SetDefault("CLINIC_CLOSE", "17:00")
	v.SetDefault("SLOT_MINUTES", 30)
	v.SetDefault("CLINIC_OPERATING_DAYS", "mon,tue,wed,thu,fri,sat")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// A missing .env is fine.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Comma separated env values arrive as a single element.
	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))
	cfg.OperatingDays = splitList(v.GetString("CLINIC_OPERATING_DAYS"))
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ResolvedAuthMode is "development" (dev middleware, admin by default) in the
// development environment and "jwt" everywhere else.
func (c *Config) ResolvedAuthMode() string {
	if c.IsDev() {
		return "development"
	}
	return "jwt"
}

// Validate checks that the configuration is safe to run.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" && !c.MemoryStore {
		return fmt.Errorf("DATABASE_URL is required unless the in-memory store is enabled")
	}
	if c.MemoryStore && c.IsProduction() {
		return fmt.Errorf("the in-memory store cannot be used in production")
	}

	if c.ResolvedAuthMode() == "jwt" {
		if c.AuthSigningKey == "" && c.AuthJWKSURL == "" {
			return fmt.Errorf("AUTH_SIGNING_KEY or AUTH_JWKS_URL must be set when ENV=%q", c.Env)
		}
		if c.AuthIssuer == "" {
			return fmt.Errorf("AUTH_ISSUER must be set when ENV=%q", c.Env)
		}
	}
	if c.AuthSigningKey != "" && c.IsProduction() {
		if key, err := hex.DecodeString(c.AuthSigningKey); err != nil || len(key) < 32 {
			return fmt.Errorf("AUTH_SIGNING_KEY must be at least 32 bytes of hex in production")
		}
	}

	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.Hours(); err != nil {
		return err
	}
	if _, err := c.Weekdays(); err != nil {
		return err
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %s", c.CacheTTL)
	}
	return nil
}

// SigningKey returns the HMAC key for bearer tokens. A hex value is decoded,
// anything else is used as raw bytes.
func (c *Config) SigningKey() []byte {
	if c.AuthSigningKey == "" {
		return nil
	}
	if key, err := hex.DecodeString(c.AuthSigningKey); err == nil {
		return key
	}
	return []byte(c.AuthSigningKey)
}

// Location resolves CLINIC_TIMEZONE, the zone that defines clinic days.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.ClinicTimezone)
	if err != nil {
		return nil, fmt.Errorf("CLINIC_TIMEZONE %q: %w", c.ClinicTimezone, err)
	}
	return loc, nil
}

func (c *Config) Hours() (slotgrid.OperatingHours, error) {
	h, err := slotgrid.ParseHours(c.ClinicOpen, c.ClinicClose, c.SlotMinutes)
	if err != nil {
		return h, fmt.Errorf("clinic hours: %w", err)
	}
	return h, nil
}

var weekdays = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
}

// Weekdays parses CLINIC_OPERATING_DAYS, a list of three letter day names.
func (c *Config) Weekdays() ([]time.Weekday, error) {
	out := make([]time.Weekday, 0, len(c.OperatingDays))
	seen := make(map[time.Weekday]bool)
	for _, name := range c.OperatingDays {
		key := strings.ToLower(name)
		if len(key) > 3 {
			key = key[:3]
		}
		d, ok := weekdays[key]
		if !ok {
			return nil, fmt.Errorf("CLINIC_OPERATING_DAYS: unknown day %q", name)
		}
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("CLINIC_OPERATING_DAYS must name at least one day")
	}
	return out, nil
}
