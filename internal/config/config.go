package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr string        `mapstructure:"http_addr"`
	DB       DBConfig      `mapstructure:"db"`
	Scoring  ScoringConfig `mapstructure:"scoring"`
	Auth     AuthConfig    `mapstructure:"auth"`
	CORS     CORSConfig    `mapstructure:"cors"`
	Logging  LoggingConfig `mapstructure:"logging"`
}

type DBConfig struct {
	Driver string `mapstructure:"driver"` // sqlite|postgres
	DSN    string `mapstructure:"dsn"`
}

type ScoringConfig struct {
	// PassThreshold is the percentage a candidate must reach to pass.
	PassThreshold float64 `mapstructure:"pass_threshold"`
	// AssessmentCode tags sealed results with the scoring scheme version.
	AssessmentCode string `mapstructure:"assessment_code"`
}

type AuthConfig struct {
	HMACSecret string `mapstructure:"hmac_secret"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json|console
}

// Load reads config.yaml (if present) and applies env overrides with the
// CERTIFLOW_ prefix, e.g. CERTIFLOW_DB_DRIVER=postgres.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CERTIFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http_addr", ":8080")
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "")
	v.SetDefault("scoring.pass_threshold", 65.0)
	v.SetDefault("scoring.assessment_code", "CB")
	v.SetDefault("auth.hmac_secret", "supersecret-dev-key")
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Scoring.PassThreshold < 0 || cfg.Scoring.PassThreshold > 100 {
		return fmt.Errorf("scoring.pass_threshold must be within [0,100], got %v", cfg.Scoring.PassThreshold)
	}
	switch cfg.DB.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("db.driver must be sqlite or postgres, got %q", cfg.DB.Driver)
	}
	return nil
}
