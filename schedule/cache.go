package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"lesson-bot/logger"
	"lesson-bot/types"
)

// DefaultTTL - документ меняется редко, 10 минут устаревания допустимы
const DefaultTTL = 600 * time.Second

// ErrEmptyDocument возвращается, если в документе нет ни одной страницы
var ErrEmptyDocument = errors.New("schedule document has no pages")

// Fetcher скачивает исходный документ
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// Extractor разбирает документ на страницы с таблицами
type Extractor interface {
	Parse(raw []byte) ([]types.Page, error)
}

// Recorder получает события обновления кэша и запросов
type Recorder interface {
	ObserveRefresh(ok bool, d time.Duration)
	ObserveQuery(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveRefresh(bool, time.Duration) {}
func (nopRecorder) ObserveQuery(string)                {}

// CacheConfig задает параметры кэша
type CacheConfig struct {
	TTL          time.Duration
	FetchTimeout time.Duration
	Year         int
}

// Cache хранит разобранный документ целиком и обновляет его не чаще TTL.
// Читатели получают неизменяемый снимок, обновление подменяет его атомарно.
// Одновременные обновления объединяются в одно.
type Cache struct {
	fetcher   Fetcher
	extractor Extractor
	headers   *DayHeaderParser
	cfg       CacheConfig
	log       logger.Logger
	rec       Recorder

	snapshot  atomic.Pointer[types.Snapshot]
	group     singleflight.Group
	refreshMu sync.Mutex

	now func() time.Time
}

// CacheOption настраивает Cache
type CacheOption func(*Cache)

// WithLogger задает логгер кэша
func WithLogger(l logger.Logger) CacheOption {
	return func(c *Cache) { c.log = l }
}

// WithRecorder подключает метрики
func WithRecorder(r Recorder) CacheOption {
	return func(c *Cache) { c.rec = r }
}

// WithClock подменяет источник времени (для тестов)
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) { c.now = now }
}

// NewCache создает пустой кэш. Первый запрос вызовет загрузку документа.
func NewCache(f Fetcher, e Extractor, cfg CacheConfig, opts ...CacheOption) *Cache {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 30 * time.Second
	}
	if cfg.Year == 0 {
		cfg.Year = 2026
	}
	c := &Cache{
		fetcher:   f,
		extractor: e,
		headers:   NewDayHeaderParser(cfg.Year),
		cfg:       cfg,
		log:       logger.NopLogger{},
		rec:       nopRecorder{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot возвращает текущий снимок или nil до первого обновления
func (c *Cache) Snapshot() *types.Snapshot {
	return c.snapshot.Load()
}

// Fresh сообщает, моложе ли текущий снимок TTL
func (c *Cache) Fresh() bool {
	s := c.snapshot.Load()
	return s != nil && c.now().Sub(s.FetchedAt) < c.cfg.TTL
}

// EnsureFresh обновляет кэш, если он устарел или force=true.
// При ошибке загрузки или разбора старый снимок остается на месте и
// возвращается false: решение о допустимости устаревших данных за вызывающим.
func (c *Cache) EnsureFresh(ctx context.Context, force bool) bool {
	if !force && c.Fresh() {
		return true
	}
	return c.update(ctx, force) == nil
}

// Refresh принудительно загружает и разбирает документ
func (c *Cache) Refresh(ctx context.Context) error {
	return c.update(ctx, true)
}

// update объединяет конкурентные обновления одного вида в одну загрузку,
// а refreshMu не дает двум загрузкам идти одновременно.
func (c *Cache) update(ctx context.Context, force bool) error {
	key := "stale"
	if force {
		key = "force"
	}
	ch := c.group.DoChan(key, func() (any, error) {
		c.refreshMu.Lock()
		defer c.refreshMu.Unlock()
		// пока ждали блокировку, снимок мог обновить другой вызов
		if !force && c.Fresh() {
			return nil, nil
		}
		// Обновление общее для всех ожидающих, поэтому отмена одного
		// вызывающего его не прерывает. Ограничено только таймаутом загрузки.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.FetchTimeout)
		defer cancel()
		return nil, c.refresh(fetchCtx)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Cache) refresh(ctx context.Context) error {
	started := c.now()

	snap, err := c.load(ctx)
	elapsed := c.now().Sub(started)
	c.rec.ObserveRefresh(err == nil, elapsed)
	if err != nil {
		c.log.Errorf("⚠️ schedule refresh failed: %v", err)
		return err
	}

	c.snapshot.Store(snap)
	c.log.Infof("✅ schedule refreshed: %d pages, generation %s (%s)", len(snap.Days), snap.Generation, elapsed)
	return nil
}

func (c *Cache) load(ctx context.Context) (*types.Snapshot, error) {
	raw, err := c.fetcher.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch document: %w", err)
	}

	pages, err := c.extractor.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	if len(pages) == 0 {
		return nil, ErrEmptyDocument
	}

	days := make([]types.Day, len(pages))
	for i, p := range pages {
		days[i] = types.Day{
			Header: c.headers.Parse(p.Text, i),
			Grids:  p.Grids,
		}
	}

	return &types.Snapshot{
		Generation: uuid.NewString(),
		Days:       days,
		FetchedAt:  c.now(),
	}, nil
}
