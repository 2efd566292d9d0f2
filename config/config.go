package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix - префикс переменных окружения, LB_FETCH__FILE_ID -> fetch.file_id
const EnvPrefix = "LB_"

type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Fetch    FetchConfig    `json:"fetch"`
	Schedule ScheduleConfig `json:"schedule"`
	Storage  StorageConfig  `json:"storage"`
	HTTP     HTTPConfig     `json:"http"`
	// Timezone определяет "сегодня" и "завтра"
	Timezone string `json:"timezone"`
}

// Load читает конфигурацию из файла (если path не пустой) и переменных окружения
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		var parser koanf.Parser
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.applyLegacyEnv()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyLegacyEnv поддерживает переменные TELEGRAM_BOT_TOKEN, REDIS_ADDR и
// REDIS_PASSWORD, если они не заданы другим способом
func (c *Config) applyLegacyEnv() {
	if c.Telegram.Token == "" {
		c.Telegram.Token = os.Getenv("TELEGRAM_BOT_TOKEN")
	}
	if c.Storage.Redis.Addr == "" {
		c.Storage.Redis.Addr = os.Getenv("REDIS_ADDR")
	}
	if c.Storage.Redis.Password == "" {
		c.Storage.Redis.Password = os.Getenv("REDIS_PASSWORD")
	}
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	c.Fetch.SetDefaults()
	c.Schedule.SetDefaults()
	c.Storage.SetDefaults()
	if c.Timezone == "" {
		c.Timezone = "Europe/Moscow"
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if err := c.Fetch.Validate(); err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	if err := c.Schedule.Validate(); err != nil {
		return fmt.Errorf("schedule: %w", err)
	}
	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	return nil
}
