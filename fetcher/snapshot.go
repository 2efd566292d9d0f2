package fetcher

import (
	"context"

	"lesson-bot/logger"
)

// Source - то, что умеет скачать документ
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// DocumentStore хранит последний успешно скачанный документ
type DocumentStore interface {
	SaveDocument(ctx context.Context, data []byte) error
	// LoadDocument возвращает nil, nil если документа нет
	LoadDocument(ctx context.Context) ([]byte, error)
}

// Snapshot сохраняет каждый скачанный документ и отдает сохраненную копию,
// когда источник недоступен.
type Snapshot struct {
	source Source
	store  DocumentStore
	log    logger.Logger
}

// NewSnapshot оборачивает source
func NewSnapshot(source Source, store DocumentStore, log logger.Logger) *Snapshot {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Snapshot{source: source, store: store, log: log}
}

// Fetch скачивает документ или возвращает сохраненную копию
func (s *Snapshot) Fetch(ctx context.Context) ([]byte, error) {
	data, err := s.source.Fetch(ctx)
	if err == nil {
		if serr := s.store.SaveDocument(context.WithoutCancel(ctx), data); serr != nil {
			s.log.Warnf("⚠️ Failed to store document snapshot: %v", serr)
		}
		return data, nil
	}

	cached, lerr := s.store.LoadDocument(context.WithoutCancel(ctx))
	if lerr != nil {
		s.log.Warnf("⚠️ Failed to load document snapshot: %v", lerr)
		return nil, err
	}
	if cached == nil {
		return nil, err
	}

	s.log.Warnf("📦 Source unavailable (%v), using stored document (%d bytes)", err, len(cached))
	return cached, nil
}
