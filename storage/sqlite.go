package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	user_id INTEGER PRIMARY KEY,
	class   TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS documents (
	id       INTEGER PRIMARY KEY CHECK (id = 1),
	data     BLOB NOT NULL,
	saved_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// SQLite хранит пользователей и копию документа в одном файле
type SQLite struct {
	db *sql.DB
}

// OpenSQLite открывает (или создает) базу по пути path
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite %s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// SaveClass сохраняет класс пользователя
func (s *SQLite) SaveClass(ctx context.Context, chatID int64, class string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (user_id, class) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET class = excluded.class`, chatID, class)
	return err
}

// GetClass возвращает класс пользователя или "" если он не выбран
func (s *SQLite) GetClass(ctx context.Context, chatID int64) (string, error) {
	var class string
	err := s.db.QueryRowContext(ctx, `SELECT class FROM users WHERE user_id = ?`, chatID).Scan(&class)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return class, err
}

// ListUsers возвращает chat_id всех пользователей
func (s *SQLite) ListUsers(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user_id FROM users ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SaveDocument заменяет сохраненный документ
func (s *SQLite) SaveDocument(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, data, saved_at) VALUES (1, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data, saved_at = excluded.saved_at`, data)
	return err
}

// LoadDocument получает сохраненный документ, nil если его нет
func (s *SQLite) LoadDocument(ctx context.Context) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM documents WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return data, err
}

// Ping проверяет соединение
func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close закрывает базу
func (s *SQLite) Close() error {
	return s.db.Close()
}
