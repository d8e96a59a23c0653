package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string   `mapstructure:"PORT"`
	Env         string   `mapstructure:"ENV"`
	DatabaseURL string   `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32    `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	// Cashfree payment gateway
	CashfreeAppID     string `mapstructure:"CASHFREE_APP_ID"`
	CashfreeSecretKey string `mapstructure:"CASHFREE_SECRET_KEY"`
	CashfreeEnv       string `mapstructure:"CASHFREE_ENV"`

	// Base URL resolution. PUBLIC_APP_URL wins; PLATFORM_URL/PLATFORM_ENV
	// come from the deployment platform when the app runs behind one.
	PublicAppURL string `mapstructure:"PUBLIC_APP_URL"`
	PlatformURL  string `mapstructure:"PLATFORM_URL"`
	PlatformEnv  string `mapstructure:"PLATFORM_ENV"`

	// Auth for the /api/v1 admin surfaces
	AuthMode       string `mapstructure:"AUTH_MODE"`
	AuthSigningKey string `mapstructure:"AUTH_SIGNING_KEY"`
	AuthIssuer     string `mapstructure:"AUTH_ISSUER"`
	AuthAudience   string `mapstructure:"AUTH_AUDIENCE"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "3000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("CASHFREE_ENV", "sandbox")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("CASHFREE_APP_ID")
	v.BindEnv("CASHFREE_SECRET_KEY")
	v.BindEnv("CASHFREE_ENV")
	v.BindEnv("PUBLIC_APP_URL")
	v.BindEnv("PLATFORM_URL")
	v.BindEnv("PLATFORM_ENV")
	v.BindEnv("AUTH_MODE")
	v.BindEnv("AUTH_SIGNING_KEY")
	v.BindEnv("AUTH_ISSUER")
	v.BindEnv("AUTH_AUDIENCE")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: Admin endpoints accept unauthenticated requests in this mode.")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// HasCashfreeCredentials reports whether both gateway credentials are set.
// The payment handlers return a 500 when they are not, so the server still
// starts without them (the rest of the API keeps working).
func (c *Config) HasCashfreeCredentials() bool {
	return c.CashfreeAppID != "" && c.CashfreeSecretKey != ""
}

// Validate checks that the configuration is safe to run.
func (c *Config) Validate() error {
	if c.CashfreeEnv != "sandbox" && c.CashfreeEnv != "production" {
		return fmt.Errorf("CASHFREE_ENV must be \"sandbox\" or \"production\", got %q", c.CashfreeEnv)
	}
	if !c.IsDev() && c.AuthMode != "none" && c.AuthSigningKey == "" && c.AuthIssuer == "" {
		return fmt.Errorf(
			"AUTH_SIGNING_KEY or AUTH_ISSUER must be set when ENV=%q. "+
				"Refusing to start admin endpoints without authentication configuration. "+
				"Set AUTH_MODE=none to disable auth explicitly", c.Env)
	}
	return nil
}
