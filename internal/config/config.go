// Package config loads runtime settings from the environment and reference
// data from a YAML seed file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aretw0/wayfinder/pkg/persistence/middleware"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
)

// ErrMissing is wrapped by validation errors for unset required keys.
var ErrMissing = errors.New("required setting is missing")

// Settings holds every environment-driven option.
type Settings struct {
	BotToken    string `mapstructure:"BOT_TOKEN"`
	BotUsername string `mapstructure:"BOT_USERNAME"`

	DatabasePath string `mapstructure:"DATABASE_PATH"`
	SeedPath     string `mapstructure:"SEED_PATH"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	RedisPoolSize int    `mapstructure:"REDIS_POOL_SIZE"`
	CachePrefix   string `mapstructure:"CACHE_PREFIX"`

	// SessionKeys are hex AES-256 keys; the first encrypts, the rest only decrypt.
	SessionKeys []string `mapstructure:"SESSION_KEY"`

	HTTPAddr      string `mapstructure:"HTTP_ADDR"`
	WebhookURL    string `mapstructure:"WEBHOOK_URL"`
	WebhookSecret string `mapstructure:"WEBHOOK_SECRET"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	Timezone           string        `mapstructure:"TIMEZONE"`
	FormTTL            time.Duration `mapstructure:"FORM_TTL"`
	LockTTL            time.Duration `mapstructure:"LOCK_TTL"`
	MailingConcurrency int           `mapstructure:"MAILING_CONCURRENCY"`
}

// Defaults returns the settings used when a key is not set.
func Defaults() Settings {
	return Settings{
		DatabasePath:       "data/wayfinder.db",
		RedisPoolSize:      10,
		CachePrefix:        "wayfinder:",
		HTTPAddr:           ":8080",
		LogLevel:           "info",
		LogFormat:          "text",
		Timezone:           "UTC",
		FormTTL:            24 * time.Hour,
		LockTTL:            30 * time.Second,
		MailingConcurrency: 8,
	}
}

// Load reads the given .env files (missing files are skipped; variables
// already in the environment win) and decodes the environment.
func Load(envFiles ...string) (*Settings, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return FromEnv(environ())
}

func environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

// FromEnv decodes settings from a key/value map on top of Defaults. Empty
// values are treated as unset.
func FromEnv(env map[string]string) (*Settings, error) {
	input := make(map[string]any)
	for k, v := range env {
		if strings.TrimSpace(v) != "" {
			input[k] = v
		}
	}

	s := Defaults()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &s,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(input); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks values that every command relies on.
func (s *Settings) Validate() error {
	var errs []error
	if _, err := time.LoadLocation(s.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("TIMEZONE: %w", err))
	}
	if s.FormTTL <= 0 {
		errs = append(errs, errors.New("FORM_TTL must be positive"))
	}
	if s.LockTTL <= 0 {
		errs = append(errs, errors.New("LOCK_TTL must be positive"))
	}
	if s.MailingConcurrency < 1 {
		errs = append(errs, errors.New("MAILING_CONCURRENCY must be at least 1"))
	}
	switch s.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT: unknown format %q", s.LogFormat))
	}
	if len(s.SessionKeys) > 0 {
		if _, err := s.Encryption(); err != nil {
			errs = append(errs, fmt.Errorf("SESSION_KEY: %w", err))
		}
	}
	return errors.Join(errs...)
}

// RequireBot checks the settings needed to talk to Telegram.
func (s *Settings) RequireBot() error {
	var errs []error
	if s.BotToken == "" {
		errs = append(errs, fmt.Errorf("BOT_TOKEN: %w", ErrMissing))
	}
	if s.BotUsername == "" {
		errs = append(errs, fmt.Errorf("BOT_USERNAME: %w", ErrMissing))
	}
	return errors.Join(errs...)
}

// RequireWebhook checks the settings needed to serve updates over HTTPS.
func (s *Settings) RequireWebhook() error {
	errs := []error{s.RequireBot()}
	if s.WebhookURL == "" {
		errs = append(errs, fmt.Errorf("WEBHOOK_URL: %w", ErrMissing))
	}
	if s.WebhookSecret == "" {
		errs = append(errs, fmt.Errorf("WEBHOOK_SECRET: %w", ErrMissing))
	}
	return errors.Join(errs...)
}

// Location returns the configured time zone.
func (s *Settings) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Encryption parses SessionKeys into a cipher configuration.
func (s *Settings) Encryption() (middleware.EncryptionConfig, error) {
	cfg, err := middleware.ParseKeys(s.SessionKeys)
	if err != nil {
		return middleware.EncryptionConfig{}, err
	}
	for i, k := range append([][]byte{cfg.ActiveKey}, cfg.FallbackKeys...) {
		if len(k) != 32 {
			return middleware.EncryptionConfig{}, fmt.Errorf("key %d must be 32 bytes, got %d", i, len(k))
		}
	}
	return cfg, nil
}
