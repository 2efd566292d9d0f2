package storage

import (
	"context"
	"fmt"
)

// Store - хранилище пользователей и сохраненного документа
type Store interface {
	SaveClass(ctx context.Context, chatID int64, class string) error
	GetClass(ctx context.Context, chatID int64) (string, error)
	ListUsers(ctx context.Context) ([]int64, error)
	SaveDocument(ctx context.Context, data []byte) error
	LoadDocument(ctx context.Context) ([]byte, error)
	Ping(ctx context.Context) error
	Close() error
}

// Options описывает подключение к выбранному хранилищу
type Options struct {
	Backend       string // "redis" или "sqlite"
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SQLitePath    string
}

// Open открывает хранилище и проверяет соединение
func Open(ctx context.Context, opts Options) (Store, error) {
	var (
		store Store
		err   error
	)
	switch opts.Backend {
	case "redis":
		store = NewRedis(opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
	case "sqlite":
		store, err = OpenSQLite(opts.SQLitePath)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}

	if err := store.Ping(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("%s connection failed: %w", opts.Backend, err)
	}
	return store, nil
}
