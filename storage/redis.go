package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	usersKey    = "users"
	documentKey = "cache:document"
	// documentTTL - сохраненный документ нужен только как запасной вариант
	documentTTL = 72 * time.Hour
)

// Redis хранит классы пользователей и копию последнего документа
type Redis struct {
	client *redis.Client
}

// NewRedis подключается к Redis
func NewRedis(addr, password string, db int) *Redis {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,     // например: "localhost:6379"
		Password: password, // можно пустым
		DB:       db,
	})
	return &Redis{client: rdb}
}

func userKey(chatID int64) string {
	return fmt.Sprintf("user:%d", chatID)
}

// SaveClass сохраняет класс пользователя
func (s *Redis) SaveClass(ctx context.Context, chatID int64, class string) error {
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, userKey(chatID), class, 0)
		p.SAdd(ctx, usersKey, chatID)
		return nil
	})
	return err
}

// GetClass возвращает класс пользователя или "" если он не выбран
func (s *Redis) GetClass(ctx context.Context, chatID int64) (string, error) {
	val, err := s.client.Get(ctx, userKey(chatID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// ListUsers возвращает chat_id всех пользователей
func (s *Redis) ListUsers(ctx context.Context) ([]int64, error) {
	members, err := s.client.SMembers(ctx, usersKey).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// SaveDocument сохраняет скачанный документ (TTL: 72 часа)
func (s *Redis) SaveDocument(ctx context.Context, data []byte) error {
	return s.client.Set(ctx, documentKey, data, documentTTL).Err()
}

// LoadDocument получает сохраненный документ, nil если его нет
func (s *Redis) LoadDocument(ctx context.Context) ([]byte, error) {
	val, err := s.client.Get(ctx, documentKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Ping проверяет соединение
func (s *Redis) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close закрывает соединение
func (s *Redis) Close() error {
	return s.client.Close()
}
