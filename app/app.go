package app

import (
	"context"
	"fmt"

	"lesson-bot/config"
	"lesson-bot/fetcher"
	"lesson-bot/logger"
	"lesson-bot/parser"
	"lesson-bot/schedule"
	"lesson-bot/storage"
)

// App связывает хранилище, загрузку документа, кэш и сервис запросов
type App struct {
	Config  *config.Config
	Store   storage.Store
	Cache   *schedule.Cache
	Service *schedule.Service
	log     logger.Logger
}

// New собирает приложение по конфигурации. rec может быть nil.
func New(ctx context.Context, cfg *config.Config, rec schedule.Recorder) (*App, error) {
	log := logger.New("app")

	store, err := storage.Open(ctx, storage.Options{
		Backend:       cfg.Storage.Backend,
		RedisAddr:     cfg.Storage.Redis.Addr,
		RedisPassword: cfg.Storage.Redis.Password,
		RedisDB:       cfg.Storage.Redis.DB,
		SQLitePath:    cfg.Storage.SQLite.Path,
	})
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	log.Infof("💾 Storage backend: %s", cfg.Storage.Backend)

	drive, err := fetcher.NewDrive(cfg.Fetch.BaseURL, cfg.Fetch.FileID, logger.New("fetcher"))
	if err != nil {
		store.Close()
		return nil, err
	}
	var source schedule.Fetcher = drive
	if cfg.Fetch.Snapshot {
		source = fetcher.NewSnapshot(drive, store, logger.New("fetcher"))
		log.Infof("📦 Document snapshots enabled")
	}

	p := parser.New(logger.New("parser"))
	if cfg.Schedule.PageSelector != "" {
		p.HTML = parser.NewHTML(cfg.Schedule.PageSelector)
	}

	opts := []schedule.CacheOption{schedule.WithLogger(logger.New("cache"))}
	if rec != nil {
		opts = append(opts, schedule.WithRecorder(rec))
	}
	cache := schedule.NewCache(source, p, schedule.CacheConfig{
		TTL:          cfg.Schedule.TTL,
		FetchTimeout: cfg.Fetch.Timeout,
		Year:         cfg.Schedule.Year,
	}, opts...)

	return &App{
		Config:  cfg,
		Store:   store,
		Cache:   cache,
		Service: schedule.NewService(cache, logger.New("schedule"), rec),
		log:     log,
	}, nil
}

// Close освобождает хранилище
func (a *App) Close() error {
	return a.Store.Close()
}
