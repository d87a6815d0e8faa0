package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	DefaultSource  string `envconfig:"EASYDICT_DEFAULT_SOURCE" default:"auto"`
	DefaultTarget  string `envconfig:"EASYDICT_DEFAULT_TARGET" default:"zh-Hans"`
	FallbackSource string `envconfig:"EASYDICT_FALLBACK_SOURCE" default:"en"`

	Providers string `envconfig:"EASYDICT_PROVIDERS" default:"youdao,iciba,baidu,tencent,caiyun,google"`
	Detectors string `envconfig:"EASYDICT_DETECTORS" default:"script,lingua,whatlang,baidu,google"`
	Proxy     string `envconfig:"EASYDICT_PROXY" default:""`

	ProviderTimeout     time.Duration `envconfig:"EASYDICT_PROVIDER_TIMEOUT" default:"6s"`
	DetectDeadline      time.Duration `envconfig:"EASYDICT_DETECT_DEADLINE" default:"1500ms"`
	ConfidenceThreshold float64       `envconfig:"EASYDICT_CONFIDENCE_THRESHOLD" default:"0.8"`
	RatePerSecond       float64       `envconfig:"EASYDICT_RATE_PER_SECOND" default:"5"`
	RateBurst           int           `envconfig:"EASYDICT_RATE_BURST" default:"5"`
	DetectCacheTTL      time.Duration `envconfig:"EASYDICT_DETECT_CACHE_TTL" default:"10m"`

	// DatabaseURL enables the result cache. A postgres:// URL uses
	// Postgres; anything else is treated as a SQLite DSN.
	DatabaseURL string        `envconfig:"DATABASE_URL" default:""`
	CacheTTL    time.Duration `envconfig:"EASYDICT_CACHE_TTL" default:"24h"`

	YoudaoAppKey     string `envconfig:"YOUDAO_APP_KEY" default:""`
	YoudaoAppSecret  string `envconfig:"YOUDAO_APP_SECRET" default:""`
	IcibaKey         string `envconfig:"ICIBA_KEY" default:""`
	BaiduAppID       string `envconfig:"BAIDU_APP_ID" default:""`
	BaiduSecret      string `envconfig:"BAIDU_APP_SECRET" default:""`
	TencentSecretID  string `envconfig:"TENCENT_SECRET_ID" default:""`
	TencentSecretKey string `envconfig:"TENCENT_SECRET_KEY" default:""`
	TencentRegion    string `envconfig:"TENCENT_REGION" default:"ap-guangzhou"`
	CaiyunToken      string `envconfig:"CAIYUN_TOKEN" default:""`

	TranslationEndpoint string `envconfig:"TRANSLATION_ENDPOINT" default:""`
	TranslationModel    string `envconfig:"TRANSLATION_MODEL" default:""`

	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:""`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DefaultTarget) == "" {
		return fmt.Errorf("EASYDICT_DEFAULT_TARGET is required")
	}
	if strings.EqualFold(strings.TrimSpace(c.DefaultTarget), "auto") {
		return fmt.Errorf("EASYDICT_DEFAULT_TARGET cannot be auto")
	}
	if strings.TrimSpace(c.FallbackSource) == "" || strings.EqualFold(strings.TrimSpace(c.FallbackSource), "auto") {
		return fmt.Errorf("EASYDICT_FALLBACK_SOURCE must name a language")
	}
	if len(splitList(c.Providers)) == 0 {
		return fmt.Errorf("EASYDICT_PROVIDERS must list at least one provider")
	}
	if c.ProviderTimeout <= 0 {
		return fmt.Errorf("EASYDICT_PROVIDER_TIMEOUT must be > 0")
	}
	if c.DetectDeadline <= 0 {
		return fmt.Errorf("EASYDICT_DETECT_DEADLINE must be > 0")
	}
	if c.ConfidenceThreshold <= 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("EASYDICT_CONFIDENCE_THRESHOLD must be in (0, 1]")
	}
	if c.RatePerSecond < 0 {
		return fmt.Errorf("EASYDICT_RATE_PER_SECOND must be >= 0")
	}
	if c.RateBurst < 1 {
		return fmt.Errorf("EASYDICT_RATE_BURST must be >= 1")
	}
	if c.DetectCacheTTL < 0 || c.CacheTTL < 0 {
		return fmt.Errorf("cache TTLs must be >= 0")
	}
	return nil
}

// ProviderList returns EASYDICT_PROVIDERS split and deduplicated, in order.
func (c *Config) ProviderList() []string {
	if c == nil {
		return nil
	}
	return splitList(c.Providers)
}

// DetectorList returns EASYDICT_DETECTORS split and deduplicated, in order.
func (c *Config) DetectorList() []string {
	if c == nil {
		return nil
	}
	return splitList(c.Detectors)
}

func (c *Config) CORSAllowedOriginsList() []string {
	if c == nil {
		return nil
	}
	return splitList(c.CORSAllowedOrigins)
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		value := strings.TrimSpace(part)
		if value == "" {
			continue
		}
		if _, exists := seen[value]; exists {
			continue
		}
		seen[value] = struct{}{}
		values = append(values, value)
	}
	return values
}
