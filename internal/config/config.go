package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	AuthModeDevelopment = "development"
	AuthModeJWT         = "jwt"
)

type Config struct {
	Port            string   `mapstructure:"PORT"`
	Env             string   `mapstructure:"ENV"`
	AuthMode        string   `mapstructure:"AUTH_MODE"`
	AuthIssuer      string   `mapstructure:"AUTH_ISSUER"`
	AuthSigningKey  string   `mapstructure:"AUTH_SIGNING_KEY"`
	DatabaseURL     string   `mapstructure:"DATABASE_URL"`
	DBMaxConns      int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns      int32    `mapstructure:"DB_MIN_CONNS"`
	RedisURL        string   `mapstructure:"REDIS_URL"`
	BillNumberStart int64    `mapstructure:"BILL_NUMBER_START"`
	PublicHost      string   `mapstructure:"PUBLIC_HOST"`
	HospitalName    string   `mapstructure:"HOSPITAL_NAME"`
	CORSOrigins     []string `mapstructure:"CORS_ORIGINS"`
	SeedDemoData    bool     `mapstructure:"SEED_DEMO_DATA"`
	BodyLimit       string   `mapstructure:"BODY_LIMIT"`
}

var keys = []string{
	"PORT", "ENV", "AUTH_MODE", "AUTH_ISSUER", "AUTH_SIGNING_KEY",
	"DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS", "REDIS_URL",
	"BILL_NUMBER_START", "PUBLIC_HOST", "HOSPITAL_NAME", "CORS_ORIGINS", "SEED_DEMO_DATA", "BODY_LIMIT",
}

// Load reads configuration from the environment, optionally backed by a
// .env file in the working directory.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("AUTH_MODE", "")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("BILL_NUMBER_START", 10001)
	v.SetDefault("PUBLIC_HOST", "localhost:8080")
	v.SetDefault("HOSPITAL_NAME", "Hospital Management System")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("SEED_DEMO_DATA", true)
	v.SetDefault("BODY_LIMIT", "1M")

	// Unmarshal only sees keys viper knows about.
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// A missing .env is fine.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.CORSOrigins) == 1 && strings.Contains(cfg.CORSOrigins[0], ",") {
		cfg.CORSOrigins = strings.Split(cfg.CORSOrigins[0], ",")
	}
	if len(cfg.CORSOrigins) == 0 {
		if origins := v.GetString("CORS_ORIGINS"); origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// UsesPostgres reports whether bills live in Postgres rather than memory.
func (c *Config) UsesPostgres() bool {
	return c.DatabaseURL != ""
}

// ResolvedAuthMode returns AUTH_MODE when set, otherwise "development" in a
// development environment and "jwt" everywhere else.
func (c *Config) ResolvedAuthMode() string {
	if c.AuthMode != "" {
		return c.AuthMode
	}
	if c.IsDev() {
		return AuthModeDevelopment
	}
	return AuthModeJWT
}

// Validate checks that the configuration is safe to run.
func (c *Config) Validate() error {
	switch mode := c.ResolvedAuthMode(); mode {
	case AuthModeDevelopment:
	case AuthModeJWT:
		if len(c.AuthSigningKey) < 32 {
			return fmt.Errorf("AUTH_SIGNING_KEY must be at least 32 characters when AUTH_MODE is %q", AuthModeJWT)
		}
	default:
		return fmt.Errorf("AUTH_MODE must be %q or %q, got %q", AuthModeDevelopment, AuthModeJWT, mode)
	}
	if c.BillNumberStart <= 0 {
		return fmt.Errorf("BILL_NUMBER_START must be positive, got %d", c.BillNumberStart)
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	return nil
}
