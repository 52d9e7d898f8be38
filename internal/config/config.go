package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string   `mapstructure:"PORT"`
	Env         string   `mapstructure:"ENV"`
	DatabaseURL string   `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32    `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	JWTSecret      string  `mapstructure:"JWT_SECRET"`
	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`

	AIAPIKey  string `mapstructure:"AI_API_KEY"`
	AIBaseURL string `mapstructure:"AI_BASE_URL"`
	AIModel   string `mapstructure:"AI_MODEL"`

	ChunkIntervalMS    int    `mapstructure:"CHUNK_INTERVAL_MS"`
	TranslateTimeoutMS int    `mapstructure:"TRANSLATE_TIMEOUT_MS"`
	DefaultSourceLang  string `mapstructure:"DEFAULT_SOURCE_LANG"`
	DefaultTargetLang  string `mapstructure:"DEFAULT_TARGET_LANG"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("AI_MODEL", "gpt-4o-mini")
	v.SetDefault("CHUNK_INTERVAL_MS", 3000)
	v.SetDefault("TRANSLATE_TIMEOUT_MS", 10000)
	v.SetDefault("DEFAULT_SOURCE_LANG", "en")
	v.SetDefault("DEFAULT_TARGET_LANG", "hi")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("AI_API_KEY")
	v.BindEnv("AI_BASE_URL")
	v.BindEnv("AI_MODEL")
	v.BindEnv("CHUNK_INTERVAL_MS")
	v.BindEnv("TRANSLATE_TIMEOUT_MS")
	v.BindEnv("DEFAULT_SOURCE_LANG")
	v.BindEnv("DEFAULT_TARGET_LANG")

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
		log.Println("WARNING: ============================================================")
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: DevAuthMiddleware is active — all requests get admin access.")
		log.Println("WARNING: Do NOT use this configuration in production.")
		log.Println("WARNING: Set ENV=production and configure JWT_SECRET for production.")
		log.Println("WARNING: ============================================================")
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

// ChunkInterval returns the audio chunk duration used by the live
// translation recorder.
func (c *Config) ChunkInterval() time.Duration {
	return time.Duration(c.ChunkIntervalMS) * time.Millisecond
}

// TranslateTimeout returns the per-chunk translation request deadline.
func (c *Config) TranslateTimeout() time.Duration {
	return time.Duration(c.TranslateTimeoutMS) * time.Millisecond
}

// Validate checks that the configuration is safe to run. Outside development
// mode JWT_SECRET must be set so that real authentication is enforced, and an
// AI_API_KEY is required because the symptom checker and the live translation
// pipeline both depend on the generation provider.
func (c *Config) Validate() error {
	if !c.IsDev() {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when ENV=%q", c.Env)
		}
		if c.AIAPIKey == "" {
			return fmt.Errorf("AI_API_KEY is required when ENV=%q", c.Env)
		}
	}
	if c.ChunkIntervalMS <= 0 {
		return fmt.Errorf("CHUNK_INTERVAL_MS must be positive, got %d", c.ChunkIntervalMS)
	}
	if c.TranslateTimeoutMS <= 0 {
		return fmt.Errorf("TRANSLATE_TIMEOUT_MS must be positive, got %d", c.TranslateTimeoutMS)
	}
	return nil
}
