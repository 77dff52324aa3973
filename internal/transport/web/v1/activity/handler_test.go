package activity

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brvnobarreto/activity-log-controller/internal/domain"
)

type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ctr  map[string]int64
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}, ctr: map[string]int64{}}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok := c.ctr[key]; ok {
		return []byte(strconv.FormatInt(n, 10)), nil
	}
	return c.data[key], nil
}

func (c *fakeCache) Set(_ context.Context, key string, val []byte, _ int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = val
	return nil
}

func (c *fakeCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
		delete(c.ctr, k)
	}
	return nil
}

func (c *fakeCache) Incr(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ctr[key]++
	return c.ctr[key], nil
}

func (c *fakeCache) Ping(context.Context) error { return nil }
func (c *fakeCache) Close()                     {}

type fakeActs struct {
	mu         sync.Mutex
	byID       map[domain.ActivityID]domain.Activity
	listCalls  int
	lastFilter domain.ListFilter
}

func newFakeActs(acts ...domain.Activity) *fakeActs {
	f := &fakeActs{byID: map[domain.ActivityID]domain.Activity{}}
	for _, a := range acts {
		f.byID[a.ID] = a
	}
	return f
}

func (f *fakeActs) CreateActivity(_ context.Context, a domain.Activity) (domain.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	a.Version = 1
	f.byID[a.ID] = a
	return a, nil
}

func (f *fakeActs) ActivityByID(_ context.Context, id domain.ActivityID) (domain.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return domain.Activity{}, domain.ErrNotFound
	}
	return a, nil
}

func (f *fakeActs) ActivitiesList(_ context.Context, me domain.User, flt domain.ListFilter) ([]domain.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	f.lastFilter = flt
	var out []domain.Activity
	for _, a := range f.byID {
		if me.IsSupervisor() || a.FiscalID == me.ID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeActs) UpdateStatus(_ context.Context, id domain.ActivityID, st domain.Status) (domain.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return domain.Activity{}, domain.ErrNotFound
	}
	a.Status = st
	a.Version++
	a.UpdatedAt = time.Now()
	f.byID[id] = a
	return a, nil
}

func (f *fakeActs) DeleteActivity(_ context.Context, id domain.ActivityID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeActs) StatusSummary(context.Context) ([]domain.SummaryRow, error) {
	return nil, nil
}

func testHandler(acts *fakeActs, cache domain.Cache) *Handler {
	return NewHandler(log.New(io.Discard, "", 0), nil, acts, nil, cache, 120, 120)
}

type fakeStorage struct {
	payload []byte
}

func (s *fakeStorage) Put(context.Context, io.Reader, string, string) (domain.BlobPutResult, error) {
	return domain.BlobPutResult{}, nil
}

func (s *fakeStorage) Get(_ context.Context, _ string, rangeHeader string) (io.ReadCloser, int64, string, string, string, error) {
	if rangeHeader != "" {
		return nil, 0, "", "", "", domain.ErrRangeInvalid
	}
	return io.NopCloser(strings.NewReader(string(s.payload))),
		int64(len(s.payload)), "", "image/jpeg", `"abc"`, nil
}

func (s *fakeStorage) Delete(context.Context, string) error { return nil }
func (s *fakeStorage) Ping(context.Context) error           { return nil }

func asUser(u domain.User, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h(w, r.WithContext(domain.WithUser(r.Context(), u)))
	})
}

func newTestMux(u domain.User, h *Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /api/activities", asUser(u, h.List))
	mux.Handle("GET /api/activities/{id}", asUser(u, h.GetOne))
	mux.Handle("PATCH /api/activities/{id}/status", asUser(u, h.UpdateStatus))
	return mux
}

func TestListCachesUntilMutation(t *testing.T) {
	me := domain.User{ID: uuid.New(), Login: "inspector77", Role: domain.RoleFiscal}
	acts := newFakeActs(domain.Activity{
		ID: uuid.New(), FiscalID: me.ID,
		Description: "expired goods on shelf",
		Severity:    domain.SeverityMedium, Status: domain.StatusOpen,
	})
	h := testHandler(acts, newFakeCache())
	mux := newTestMux(me, h)

	get := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/activities", nil))
		return rec
	}

	rec := get()
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, acts.listCalls)

	// повтор — из кеша
	rec = get()
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, acts.listCalls)

	// мутация двигает версию — следующий запрос идёт в БД
	h.bumpListVersion(context.Background())
	rec = get()
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, acts.listCalls)
}

func TestListKeysetCursor(t *testing.T) {
	me := domain.User{ID: uuid.New(), Role: domain.RoleFiscal}
	acts := newFakeActs(domain.Activity{
		ID: uuid.New(), FiscalID: me.ID,
		Description: "first page tail",
		Severity:    domain.SeverityLow, Status: domain.StatusOpen,
	})
	h := testHandler(acts, newFakeCache())
	mux := newTestMux(me, h)

	cursorAt := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	cursorID := uuid.New()

	get := func(q string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/activities"+q, nil))
		return rec
	}

	rec := get("?after_created=" + cursorAt.Format(time.RFC3339) + "&after_id=" + cursorID.String())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, acts.lastFilter.AfterCreated.Equal(cursorAt), "cursor timestamp reaches the repo")
	assert.Equal(t, cursorID, acts.lastFilter.AfterID)

	// другой курсор — другой кэш-ключ, снова поход в БД
	rec = get("?after_created=" + cursorAt.Add(time.Hour).Format(time.RFC3339))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, acts.listCalls)

	// с сортировкой по серьёзности курсор не совместим
	rec = get("?sort=severity&after_created=" + cursorAt.Format(time.RFC3339))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// битые значения курсора отбрасываются как bad params
	assert.Equal(t, http.StatusBadRequest, get("?after_created=yesterday").Code)
	assert.Equal(t, http.StatusBadRequest,
		get("?after_created="+cursorAt.Format(time.RFC3339)+"&after_id=not-a-uuid").Code)
}

func TestGetOneETag(t *testing.T) {
	me := domain.User{ID: uuid.New(), Role: domain.RoleFiscal}
	a := domain.Activity{
		ID: uuid.New(), FiscalID: me.ID,
		Description: "no price tags",
		Severity:    domain.SeverityLow, Status: domain.StatusOpen,
		Version: 3, UpdatedAt: time.Now(),
	}
	h := testHandler(newFakeActs(a), newFakeCache())
	mux := newTestMux(me, h)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/activities/"+a.ID.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	et := rec.Header().Get("ETag")
	require.NotEmpty(t, et)

	// повтор с If-None-Match — 304 без тела
	req := httptest.NewRequest(http.MethodGet, "/api/activities/"+a.ID.String(), nil)
	req.Header.Set("If-None-Match", et)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestGetOneHidesForeign(t *testing.T) {
	me := domain.User{ID: uuid.New(), Role: domain.RoleFiscal}
	foreign := domain.Activity{
		ID: uuid.New(), FiscalID: uuid.New(),
		Description: "not mine", Severity: domain.SeverityLow, Status: domain.StatusOpen,
	}
	h := testHandler(newFakeActs(foreign), newFakeCache())
	mux := newTestMux(me, h)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/activities/"+foreign.ID.String(), nil))
	// чужая запись неотличима от несуществующей
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPhotoUnsatisfiableRange(t *testing.T) {
	me := domain.User{ID: uuid.New(), Role: domain.RoleFiscal}
	a := domain.Activity{
		ID: uuid.New(), FiscalID: me.ID,
		Description: "counterfeit seal",
		Severity:    domain.SeverityHigh, Status: domain.StatusOpen,
		HasPhoto: true, PhotoMIME: "image/jpeg", PhotoSize: 10,
		StorageKey: "sha256/0a1b", UpdatedAt: time.Now(),
	}
	h := testHandler(newFakeActs(a), newFakeCache())
	h.Storage = &fakeStorage{payload: []byte("0123456789")}

	mux := http.NewServeMux()
	mux.Handle("GET /api/activities/{id}/photo", asUser(me, h.Photo))

	// обычное чтение отдаёт тело целиком
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/activities/"+a.ID.String()+"/photo", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0123456789", rec.Body.String())

	// диапазон за концом файла — 416 с Content-Range "bytes */size"
	req := httptest.NewRequest(http.MethodGet, "/api/activities/"+a.ID.String()+"/photo", nil)
	req.Header.Set("Range", "bytes=999-")
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestedRangeNotSatisfiable, rec.Code)
	assert.Equal(t, "bytes */10", rec.Header().Get("Content-Range"))
}

func TestUpdateStatusValidation(t *testing.T) {
	me := domain.User{ID: uuid.New(), Role: domain.RoleFiscal}
	a := domain.Activity{
		ID: uuid.New(), FiscalID: me.ID,
		Description: "x", Severity: domain.SeverityLow, Status: domain.StatusOpen,
	}
	acts := newFakeActs(a)
	h := testHandler(acts, newFakeCache())
	mux := newTestMux(me, h)

	patch := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPatch,
			"/api/activities/"+a.ID.String()+"/status", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusBadRequest, patch(`{"status":"done"}`).Code)
	assert.Equal(t, http.StatusOK, patch(`{"status":"resolved"}`).Code)

	got, err := acts.ActivityByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResolved, got.Status)
}
