package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port      int    `yaml:"port"`
	PublicURL string `yaml:"public_url"` // used to build payment callback URLs
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL        string        `yaml:"url"`
	Password   string        `yaml:"password"`
	DB         int           `yaml:"db"`
	WeatherTTL time.Duration `yaml:"weather_ttl"`
}

type IdentityConfig struct {
	Mode    string `yaml:"mode"` // remote | local
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	// ServiceAccountKey is the provider's service-account credential JSON.
	// Admin operations (lookup by email, delete user) authenticate with it.
	ServiceAccountKey string `yaml:"service_account_key"`
	// LocalSecret signs HS256 bearer tokens in local mode (dev/tests).
	LocalSecret string `yaml:"local_secret"`
}

type PaystackConfig struct {
	SecretKey    string `yaml:"secret_key"`
	PublicKey    string `yaml:"public_key"`
	CallbackPath string `yaml:"callback_path"`
}

type PaymentConfig struct {
	Paystack PaystackConfig `yaml:"paystack"`
}

type AccessCodeConfig struct {
	Value   string `yaml:"value"`
	MaxUses int    `yaml:"max_uses"`
}

type AIConfig struct {
	OpenAIKey    string  `yaml:"openai_key"`
	GeminiKey    string  `yaml:"gemini_key"`
	GeminiURL    string  `yaml:"gemini_url"`
	DefaultModel string  `yaml:"default_model"`
	Temperature  float64 `yaml:"temperature"`
	MaxTokens    int     `yaml:"max_tokens"`
}

type WeatherConfig struct {
	APIKey string `yaml:"api_key"`
}

type NewsConfig struct {
	SerpAPIKey string `yaml:"serp_api_key"`
}

type AdminConfig struct {
	Secret string `yaml:"secret"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type SchedulerConfig struct {
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

type RateLimitConfig struct {
	PerMinute int `yaml:"per_minute"` // per-caller ceiling on AI routes
}

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Identity   IdentityConfig   `yaml:"identity"`
	Payment    PaymentConfig    `yaml:"payment"`
	AccessCode AccessCodeConfig `yaml:"access_code"`
	AI         AIConfig         `yaml:"ai"`
	Weather    WeatherConfig    `yaml:"weather"`
	News       NewsConfig       `yaml:"news"`
	Admin      AdminConfig      `yaml:"admin"`
	CORS       CORSConfig       `yaml:"cors"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file, applies environment fallbacks for
// secrets, defaults, and minimal validation.
func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// env fallbacks: deployment secrets usually arrive via environment
	fallback(&cfg.Database.URL, "DATABASE_URL")
	fallback(&cfg.Redis.URL, "REDIS_URL")
	fallback(&cfg.Payment.Paystack.SecretKey, "PAYSTACK_SECRET_KEY")
	fallback(&cfg.Payment.Paystack.PublicKey, "PAYSTACK_PUBLIC_KEY")
	fallback(&cfg.AI.OpenAIKey, "OPENAI_API_KEY")
	fallback(&cfg.AI.GeminiKey, "GEMINI_API_KEY")
	fallback(&cfg.Weather.APIKey, "OPENWEATHERMAP_API_KEY")
	fallback(&cfg.News.SerpAPIKey, "SERP_GOOGLE_API_KEY")
	fallback(&cfg.Admin.Secret, "ADMIN_SECRET")
	fallback(&cfg.Identity.APIKey, "IDENTITY_API_KEY")
	fallback(&cfg.Identity.ServiceAccountKey, "IDENTITY_SERVICE_ACCOUNT_KEY")
	fallback(&cfg.AccessCode.Value, "ACCESS_CODE")
	fallback(&cfg.Server.PublicURL, "APP_PUBLIC_URL")

	// defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Redis.WeatherTTL <= 0 {
		cfg.Redis.WeatherTTL = 10 * time.Minute
	}
	if cfg.Identity.Mode == "" {
		cfg.Identity.Mode = "remote"
	}
	if cfg.Payment.Paystack.CallbackPath == "" {
		cfg.Payment.Paystack.CallbackPath = "/signup/verify"
	}
	if cfg.AccessCode.MaxUses <= 0 {
		cfg.AccessCode.MaxUses = 50
	}
	if cfg.AI.DefaultModel == "" {
		cfg.AI.DefaultModel = "gpt-4o-mini"
	}
	if cfg.AI.Temperature <= 0 {
		cfg.AI.Temperature = 0.2
	}
	if cfg.AI.MaxTokens <= 0 {
		cfg.AI.MaxTokens = 700
	}
	if cfg.Scheduler.SweepInterval <= 0 {
		cfg.Scheduler.SweepInterval = time.Hour
	}
	if cfg.RateLimit.PerMinute <= 0 {
		cfg.RateLimit.PerMinute = 10
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.AccessCode.Value == "" {
		return nil, errors.New("access_code.value is required")
	}
	if cfg.Admin.Secret == "" && !dev {
		return nil, errors.New("admin.secret is required outside dev mode")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func fallback(dst *string, env string) {
	if *dst == "" {
		*dst = os.Getenv(env)
	}
}
