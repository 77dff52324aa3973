package memo

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// фейковые часы, чтобы не спать в тестах
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStore() (*Store, *fakeClock) {
	clk := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	s := NewStore()
	s.now = clk.Now
	return s, clk
}

func constFetcher(v int) func(context.Context) (int, error) {
	return func(context.Context) (int, error) { return v, nil }
}

func TestFetchCoalescing(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	var calls int32
	release := make(chan struct{})
	fetcher := func(context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return 42, nil
	}

	const n = 10
	results := make([]int, n)
	errs := make([]error, n)

	var started, done sync.WaitGroup
	started.Add(n)
	done.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			started.Done()
			defer done.Done()
			results[i], errs[i] = Fetch(ctx, s, "k", fetcher, Options{})
		}(i)
	}
	started.Wait()
	// даём всем горутинам дойти до ожидания полёта
	time.Sleep(20 * time.Millisecond)
	close(release)
	done.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "fetcher must run exactly once")
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, 42, results[i])
	}
}

func TestFetchFreshness(t *testing.T) {
	s, clk := newTestStore()
	ctx := context.Background()
	const ttl = time.Second

	v, err := Fetch(ctx, s, "k", constFetcher(1), Options{TTL: ttl})
	require.NoError(t, err)
	require.Equal(t, 1, v)

	// за 1мс до протухания — хит, второй fetcher не зовётся
	clk.Advance(ttl - time.Millisecond)
	v, err = Fetch(ctx, s, "k", func(context.Context) (int, error) {
		t.Fatal("fetcher must not be called on fresh hit")
		return 0, nil
	}, Options{TTL: ttl})
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	// через 1мс после протухания — уже сеть
	clk.Advance(2 * time.Millisecond)
	v, err = Fetch(ctx, s, "k", constFetcher(2), Options{TTL: ttl})
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestFetchForceBypassesFreshEntry(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	_, err := Fetch(ctx, s, "k", constFetcher(1), Options{})
	require.NoError(t, err)

	v, err := Fetch(ctx, s, "k", constFetcher(2), Options{Force: true})
	require.NoError(t, err)
	assert.Equal(t, 2, v, "force must refetch")

	// результат force-обновления перезаписал запись
	got, ok := Get[int](s, "k", time.Hour)
	require.True(t, ok)
	assert.Equal(t, 2, got)
}

func TestFetchFailureKeepsPriorData(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()
	boom := errors.New("network down")

	_, err := Fetch(ctx, s, "k", constFetcher(7), Options{})
	require.NoError(t, err)

	_, err = Fetch(ctx, s, "k", func(context.Context) (int, error) {
		return 0, boom
	}, Options{Force: true})
	require.ErrorIs(t, err, boom)

	// старое значение пережило неудачное обновление
	got, ok := Get[int](s, "k", time.Hour)
	require.True(t, ok)
	assert.Equal(t, 7, got)
}

func TestFetchFailureWithoutPriorDataLeavesNothing(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()
	boom := errors.New("network down")

	_, err := Fetch(ctx, s, "fresh-key", func(context.Context) (int, error) {
		return 0, boom
	}, Options{})
	require.ErrorIs(t, err, boom)

	_, ok := Get[int](s, "fresh-key", time.Hour)
	assert.False(t, ok, "failed first fetch must not leave a placeholder")
	assert.Equal(t, 0, s.Len())
}

func TestCoalescedCallersShareFailure(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()
	boom := errors.New("boom")

	release := make(chan struct{})
	fetcher := func(context.Context) (int, error) {
		<-release
		return 0, boom
	}

	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = Fetch(ctx, s, "k", fetcher, Options{})
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, errs[i], boom, "all coalesced callers observe the same failure")
	}
}

func TestPutAndInvalidate(t *testing.T) {
	s, _ := newTestStore()

	s.Put("k", "B")
	got, ok := Get[string](s, "k", time.Hour)
	require.True(t, ok)
	assert.Equal(t, "B", got)

	s.Invalidate("k")
	_, ok = Get[string](s, "k", time.Hour)
	assert.False(t, ok)
}

func TestGetEvictsStale(t *testing.T) {
	s, clk := newTestStore()

	s.Put("k", 1)
	clk.Advance(time.Hour)

	_, ok := Get[int](s, "k", time.Minute)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len(), "stale probe evicts the entry")
}

func TestScenarioTTLExpiry(t *testing.T) {
	s, clk := newTestStore()
	ctx := context.Background()
	const ttl = time.Second

	v, err := Fetch(ctx, s, "x", constFetcher(1), Options{TTL: ttl})
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	// сразу же — хит, двойка не загружается
	v, err = Fetch(ctx, s, "x", constFetcher(2), Options{TTL: ttl})
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	clk.Advance(1001 * time.Millisecond)
	v, err = Fetch(ctx, s, "x", constFetcher(2), Options{TTL: ttl})
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestWaiterContextCancel(t *testing.T) {
	s, _ := newTestStore()

	release := make(chan struct{})
	first := make(chan error, 1)
	go func() {
		_, err := Fetch(context.Background(), s, "k", func(context.Context) (int, error) {
			<-release
			return 5, nil
		}, Options{})
		first <- err
	}()
	time.Sleep(20 * time.Millisecond)

	// второй вызывающий отменяет ожидание — сам вызов продолжает лететь
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Fetch(ctx, s, "k", constFetcher(9), Options{})
	require.ErrorIs(t, err, context.Canceled)

	close(release)
	require.NoError(t, <-first)

	// результат всё равно доехал до кеша
	got, ok := Get[int](s, "k", time.Hour)
	require.True(t, ok)
	assert.Equal(t, 5, got)
}

func TestWrongTypeForKey(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	_, err := Fetch(ctx, s, "k", constFetcher(1), Options{})
	require.NoError(t, err)

	_, err = Fetch(ctx, s, "k", func(context.Context) (string, error) {
		return "nope", nil
	}, Options{})
	require.ErrorIs(t, err, ErrWrongType)
}

func TestInvalidateMidFlightKeepsSingleFlight(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	var calls int32
	gates := []chan struct{}{make(chan struct{}), make(chan struct{})}
	fetcher := func(context.Context) (int, error) {
		n := atomic.AddInt32(&calls, 1)
		if int(n) <= len(gates) {
			<-gates[n-1]
		}
		return int(n), nil
	}

	first := make(chan int, 1)
	go func() {
		v, _ := Fetch(ctx, s, "k", fetcher, Options{})
		first <- v
	}()
	time.Sleep(20 * time.Millisecond)

	// инвалидация во время полёта №1 и запуск полёта №2
	s.Invalidate("k")
	second := make(chan int, 1)
	go func() {
		v, _ := Fetch(ctx, s, "k", fetcher, Options{})
		second <- v
	}()
	time.Sleep(20 * time.Millisecond)

	// полёт №1 финиширует: данные доезжают, но маркер полёта №2 живёт
	close(gates[0])
	assert.Equal(t, 1, <-first)
	time.Sleep(20 * time.Millisecond)

	// force при живом полёте №2 присоединяется к нему — третьего
	// сетевого вызова быть не должно
	third := make(chan int, 1)
	go func() {
		v, _ := Fetch(ctx, s, "k", fetcher, Options{Force: true})
		third <- v
	}()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "at most one flight per key at any instant")

	close(gates[1])
	assert.Equal(t, 2, <-second)
	assert.Equal(t, 2, <-third)
}

func TestForceJoinsInflightFetch(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	var calls int32
	release := make(chan struct{})
	slow := func(context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return 1, nil
	}

	done := make(chan int, 1)
	go func() {
		v, _ := Fetch(ctx, s, "k", slow, Options{})
		done <- v
	}()
	time.Sleep(20 * time.Millisecond)

	// force во время полёта присоединяется, а не раздваивает запрос
	forced := make(chan int, 1)
	go func() {
		v, _ := Fetch(ctx, s, "k", slow, Options{Force: true})
		forced <- v
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)

	assert.Equal(t, 1, <-done)
	assert.Equal(t, 1, <-forced)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
