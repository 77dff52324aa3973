// Package memo — процессный мемо-кеш с TTL и склейкой (coalescing)
// параллельных запросов: на один ключ в любой момент летит не больше
// одного сетевого вызова, остальные вызывающие ждут его результат.
// Это слой мемоизации, не слой надёжности: ни ретраев, ни бэкоффа —
// ошибка fetcher'а отдаётся всем ожидающим как есть.
package memo

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultTTL — свежесть записи по умолчанию.
const DefaultTTL = 2 * time.Minute

// ErrWrongType: по ключу лежит значение другого типа. Ключи должны быть
// неймспейсены вызывающим (ресурс + токен сессии), так что это баг кода.
var ErrWrongType = errors.New("memo: cached value has unexpected type")

// inflight — один сетевой вызов, разделяемый всеми ожидающими.
type inflight struct {
	done chan struct{}
	val  any
	err  error
}

func (p *inflight) wait(ctx context.Context) (any, error) {
	select {
	case <-p.done:
		return p.val, p.err
	case <-ctx.Done():
		// отказ от ожидания не отменяет сам вызов: он довезёт
		// результат в кеш для будущих читателей
		return nil, ctx.Err()
	}
}

type entry struct {
	data    any
	ts      time.Time // момент последней успешной загрузки
	hasData bool      // false: заглушка под первый полёт, без прошлого значения
	pending *inflight // != nil: запрос в полёте, новые вызовы присоединяются
}

// Store — изолированный экземпляр кеша (без глобального состояния,
// чтобы тесты и независимые клиенты не мешали друг другу).
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time // подменяется в тестах
}

func NewStore() *Store {
	return &Store{entries: make(map[string]*entry), now: time.Now}
}

// Options управляет одним вызовом Fetch.
type Options struct {
	TTL   time.Duration // 0 → DefaultTTL
	Force bool          // игнорировать свежесть (но не полёт в воздухе)
}

// Fetch возвращает данные по ключу: свежий хит — из памяти, полёт в
// воздухе — присоединяемся к нему, иначе зовём fetcher. Порядок проверок
// важен: висящий запрос имеет приоритет над свежим значением, чтобы
// force-обновление не раздваивало сетевые вызовы.
func Fetch[T any](ctx context.Context, s *Store, key string, fetcher func(context.Context) (T, error), opts Options) (T, error) {
	var zero T
	v, err := s.fetch(ctx, key, opts, func(ctx context.Context) (any, error) {
		return fetcher(ctx)
	})
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, ErrWrongType
	}
	return out, nil
}

// Get — синхронная проба без сетевого вызова: данные, если они есть и
// свежи, иначе промах. Протухшую запись выселяем (если по ключу не
// летит запрос — его склейку терять нельзя).
func Get[T any](s *Store, key string, ttl time.Duration) (T, bool) {
	var zero T
	v, ok := s.probe(key, ttl)
	if !ok {
		return zero, false
	}
	out, tok := v.(T)
	if !tok {
		return zero, false
	}
	return out, true
}

// Put безусловно перезаписывает значение со свежим штампом, минуя сеть.
// Используется после локальных мутаций (create/update/delete), чтобы не
// гонять повторный запрос.
func (s *Store) Put(key string, data any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e := s.entries[key]; e != nil && e.pending != nil {
		// полёт не бросаем: его успех перепишет значение позже
		// (последняя успешная запись побеждает)
		e.data, e.ts, e.hasData = data, s.now(), true
		return
	}
	s.entries[key] = &entry{data: data, ts: s.now(), hasData: true}
}

// Invalidate удаляет запись целиком: следующий Fetch пойдёт в сеть.
func (s *Store) Invalidate(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Clear сбрасывает весь кеш (смена аккаунта, teardown в тестах).
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*entry)
}

// Len — количество записей (включая заглушки под полёты).
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) fetch(ctx context.Context, key string, opts Options, fn func(context.Context) (any, error)) (any, error) {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	s.mu.Lock()
	e := s.entries[key]

	// 1) запрос уже летит — присоединяемся (независимо от Force и возраста)
	if e != nil && e.pending != nil {
		p := e.pending
		s.mu.Unlock()
		return p.wait(ctx)
	}

	// 2) свежий хит
	if !opts.Force && e != nil && e.hasData && s.now().Sub(e.ts) <= ttl {
		v := e.data
		s.mu.Unlock()
		return v, nil
	}

	// 3) промах: регистрируем полёт под мьютексом — "проверил и занял"
	// должно быть атомарным, иначе два вызова стартуют по сети каждый.
	// Прежние data/ts записи сохраняются для отката при ошибке.
	p := &inflight{done: make(chan struct{})}
	if e == nil {
		e = &entry{}
		s.entries[key] = e
	}
	e.pending = p
	s.mu.Unlock()

	v, err := fn(ctx)

	s.mu.Lock()
	cur := s.entries[key]
	switch {
	case err == nil && (cur == nil || cur == e):
		// успех перезаписывает нашу запись (или пустое место после
		// Invalidate) свежим результатом; наш маркер полёта снят
		s.entries[key] = &entry{data: v, ts: s.now(), hasData: true}
	case err == nil:
		// ключ успели пересоздать, пока мы летали: данные обновляем
		// (последний сетевой результат побеждает), но чужой маркер
		// полёта не трогаем — снять его значило бы пустить по ключу
		// второй сетевой вызов параллельно живому
		cur.data, cur.ts, cur.hasData = v, s.now(), true
	case cur == e && cur.pending == p:
		if e.hasData {
			// был прежний результат (или Put во время полёта) —
			// откатываемся к нему, штамп не трогаем
			e.pending = nil
		} else {
			// первая загрузка упала — заглушку не оставляем
			delete(s.entries, key)
		}
	default:
		// запись сменили, пока мы летали — ей и владеть
	}
	s.mu.Unlock()

	p.val, p.err = v, err
	close(p.done)
	return v, err
}

func (s *Store) probe(key string, ttl time.Duration) (any, bool) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entries[key]
	if e == nil || !e.hasData {
		return nil, false
	}
	if s.now().Sub(e.ts) > ttl {
		if e.pending == nil {
			delete(s.entries, key)
		}
		return nil, false
	}
	return e.data, true
}
