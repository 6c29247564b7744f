// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"telegram-pix-packs/internal/domain/model"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token    string  `yaml:"token"`
	Workers  int     `yaml:"workers"` // polling workers
	AdminIDs []int64 `yaml:"admin_ids"`
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
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type MercadoPagoConfig struct {
	AccessToken string        `yaml:"access_token"`
	PayerEmail  string        `yaml:"payer_email"`
	BaseURL     string        `yaml:"base_url"`   // override for tests
	ChargeTTL   time.Duration `yaml:"charge_ttl"` // PIX expiration horizon
}

type PaymentConfig struct {
	MercadoPago MercadoPagoConfig `yaml:"mercadopago"`
}

type AdminConfig struct {
	Port       int           `yaml:"port"`
	APIKey     string        `yaml:"api_key"`
	JWTSecret  string        `yaml:"jwt_secret"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

type PackConfig struct {
	Type       string `yaml:"type"`
	Label      string `yaml:"label"`
	PriceCents int64  `yaml:"price_cents"`
}

type ReconcilerConfig struct {
	Interval   time.Duration `yaml:"interval"`
	StaleAfter time.Duration `yaml:"stale_after"`
}

type Config struct {
	Bot        BotConfig        `yaml:"bot"`
	Log        LogConfig        `yaml:"log"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Payment    PaymentConfig    `yaml:"payment"`
	Admin      AdminConfig      `yaml:"admin"`
	Packs      []PackConfig     `yaml:"packs"`
	Reconciler ReconcilerConfig `yaml:"reconciler"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Payment.MercadoPago.ChargeTTL <= 0 {
		cfg.Payment.MercadoPago.ChargeTTL = 24 * time.Hour
	}
	if cfg.Payment.MercadoPago.PayerEmail == "" {
		cfg.Payment.MercadoPago.PayerEmail = "email@dominio.com"
	}
	if cfg.Admin.SessionTTL <= 0 {
		cfg.Admin.SessionTTL = 30 * time.Minute
	}
	if cfg.Reconciler.Interval <= 0 {
		cfg.Reconciler.Interval = time.Minute
	}
	if cfg.Reconciler.StaleAfter <= 0 {
		cfg.Reconciler.StaleAfter = 10 * time.Minute
	}

	// Minimal validation
	if cfg.Bot.Token == "" {
		return nil, errors.New("bot.token is required")
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if !dev && cfg.Payment.MercadoPago.AccessToken == "" {
		return nil, errors.New("payment.mercadopago.access_token is required")
	}
	for i, p := range cfg.Packs {
		if p.Type == "" || p.PriceCents <= 0 {
			return nil, fmt.Errorf("packs[%d]: type and a positive price_cents are required", i)
		}
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

// Catalog builds the pack catalog from config, falling back to the default
// offer when the packs section is absent.
func (c *Config) Catalog() model.PackCatalog {
	if len(c.Packs) == 0 {
		return model.DefaultPackCatalog()
	}
	out := make(model.PackCatalog, 0, len(c.Packs))
	for _, p := range c.Packs {
		label := p.Label
		if label == "" {
			label = p.Type
		}
		out = append(out, model.Pack{Type: p.Type, Label: label, PriceCents: p.PriceCents})
	}
	return out
}
