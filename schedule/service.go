package schedule

import (
	"context"

	"lesson-bot/logger"
	"lesson-bot/types"
)

// minGridRows - таблица меньше 5 строк не вмещает заголовок и уроки
const minGridRows = 5

// DaysPerWeek - число учебных дней в документе
const DaysPerWeek = 5

// Service отвечает на запросы расписания поверх кэша
type Service struct {
	cache *Cache
	log   logger.Logger
	rec   Recorder
}

// NewService создает сервис запросов. rec может быть nil.
func NewService(cache *Cache, log logger.Logger, rec Recorder) *Service {
	if log == nil {
		log = logger.NopLogger{}
	}
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Service{cache: cache, log: log, rec: rec}
}

// GetSchedule возвращает расписание класса на день с индексом dayIndex (0 - понедельник)
func (s *Service) GetSchedule(ctx context.Context, class string, dayIndex int) Result {
	res := s.getSchedule(ctx, class, dayIndex)
	s.rec.ObserveQuery(res.Outcome.String())
	s.log.Debugw("schedule query", map[string]any{
		"class":   Normalize(class),
		"day":     dayIndex,
		"outcome": res.Outcome.String(),
		"lessons": len(res.Lessons),
	})
	return res
}

func (s *Service) getSchedule(ctx context.Context, class string, dayIndex int) Result {
	res := Result{DayIndex: dayIndex}
	if dayIndex < 0 || dayIndex >= DaysPerWeek {
		res.Outcome = OutcomeDayNotFound
		return res
	}

	// При ошибке обновления отвечаем по старому снимку, если он есть
	refreshed := s.cache.EnsureFresh(ctx, false)
	day, ok := s.cache.Snapshot().Day(dayIndex)
	if !ok {
		if !refreshed {
			res.Outcome = OutcomeFailure
		} else {
			res.Outcome = OutcomeDayNotFound
		}
		return res
	}
	if !refreshed {
		s.log.Warnf("serving stale schedule for day %d", dayIndex)
	}

	return Lookup(day, class, dayIndex)
}

// Lookup ищет класс в таблицах дня. Побеждает первая таблица, в заголовке
// которой есть класс; следующие таблицы дня не просматриваются.
func Lookup(day types.Day, class string, dayIndex int) Result {
	res := Result{DayIndex: dayIndex, Header: day.Header}
	if len(day.Grids) == 0 {
		res.Outcome = OutcomeDayNotFound
		return res
	}

	for _, g := range day.Grids {
		if len(g) < minGridRows {
			continue
		}
		header, ok := LocateHeader(g)
		if !ok {
			continue
		}
		lessons, ok := ExtractLessons(g, header, class)
		if !ok {
			continue
		}
		if len(lessons) == 0 {
			res.Outcome = OutcomeNoLessons
			return res
		}
		res.Outcome = OutcomeLessons
		res.Lessons = lessons
		return res
	}

	res.Outcome = OutcomeClassNotFound
	return res
}

// GetWeek возвращает расписание на дни 0..4 по порядку.
// Каждый день обрабатывается независимо.
func (s *Service) GetWeek(ctx context.Context, class string) []Result {
	results := make([]Result, 0, DaysPerWeek)
	for i := 0; i < DaysPerWeek; i++ {
		results = append(results, s.GetSchedule(ctx, class, i))
	}
	return results
}

// Refresh принудительно обновляет документ
func (s *Service) Refresh(ctx context.Context) error {
	return s.cache.Refresh(ctx)
}

// Snapshot отдает текущий снимок (для диагностики)
func (s *Service) Snapshot() *types.Snapshot {
	return s.cache.Snapshot()
}
