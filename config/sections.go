package config

import (
	"fmt"
	"time"
)

// TelegramConfig - подключение к Bot API
type TelegramConfig struct {
	Token string `json:"token"`
	// AdminID - chat_id владельца: рассылка и принудительное обновление
	AdminID int64 `json:"admin_id"`
	Debug   bool  `json:"debug"`
}

// Validate требует токен: без него бот не запустится
func (c TelegramConfig) Validate() error {
	if c.Token == "" {
		return fmt.Errorf("token is required (telegram.token or TELEGRAM_BOT_TOKEN)")
	}
	return nil
}

// FetchConfig - откуда и как скачивать документ
type FetchConfig struct {
	FileID  string        `json:"file_id"`
	BaseURL string        `json:"base_url"`
	Timeout time.Duration `json:"timeout"`
	// Snapshot - хранить копию документа и отдавать ее, когда Drive недоступен
	Snapshot bool `json:"snapshot"`
}

func (c *FetchConfig) SetDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://drive.google.com"
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
}

func (c FetchConfig) Validate() error {
	if c.FileID == "" {
		return fmt.Errorf("file_id is required")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

// ScheduleConfig - параметры кэша и разбора
type ScheduleConfig struct {
	TTL time.Duration `json:"ttl"`
	// Year - год в датах заголовков страниц ("12 января 2026 г.")
	Year int `json:"year"`
	// PageSelector - CSS-селектор страниц для HTML-документов
	PageSelector string `json:"page_selector"`
}

func (c *ScheduleConfig) SetDefaults() {
	if c.TTL == 0 {
		c.TTL = 600 * time.Second
	}
	if c.Year == 0 {
		c.Year = 2026
	}
}

func (c ScheduleConfig) Validate() error {
	if c.TTL < 0 {
		return fmt.Errorf("ttl must be positive")
	}
	if c.Year < 2000 || c.Year > 2100 {
		return fmt.Errorf("year %d out of range", c.Year)
	}
	return nil
}

// StorageConfig выбирает хранилище пользователей
type StorageConfig struct {
	// Backend: "redis" или "sqlite"
	Backend string      `json:"backend"`
	Redis   RedisConfig `json:"redis"`
	SQLite  struct {
		Path string `json:"path"`
	} `json:"sqlite"`
}

type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

func (c *StorageConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "sqlite"
	}
	if c.SQLite.Path == "" {
		c.SQLite.Path = "users.db"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
}

func (c StorageConfig) Validate() error {
	switch c.Backend {
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required")
		}
	case "sqlite":
		if c.SQLite.Path == "" {
			return fmt.Errorf("sqlite.path is required")
		}
	default:
		return fmt.Errorf("unknown backend %s", c.Backend)
	}
	return nil
}

// HTTPConfig - служебный HTTP-сервер (/healthz, /metrics). Пустой Addr отключает его.
type HTTPConfig struct {
	Addr string `json:"addr"`
}
