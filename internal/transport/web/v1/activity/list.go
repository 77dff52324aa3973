package activity

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/brvnobarreto/activity-log-controller/internal/domain"
	"github.com/brvnobarreto/activity-log-controller/internal/transport/web/mw"
	v1 "github.com/brvnobarreto/activity-log-controller/internal/transport/web/v1"
)

// List godoc
// @Summary     List activities
// @Description Фискал видит только свои записи; супервизор — все, с фильтрами.
// @Tags        activities
// @Produce     json
// @Param       login    query string false "fiscal login (supervisor only)"
// @Param       status   query string false "open|in_review|resolved"
// @Param       severity query string false "low|medium|high"
// @Param       from     query string false "RFC3339"
// @Param       to       query string false "RFC3339"
// @Param       limit    query int    false "limit"
// @Param       sort     query string false "created_desc|created_asc|severity"
// @Param       after_created query string false "keyset cursor: created_at of the last row (RFC3339)"
// @Param       after_id      query string false "keyset cursor: id of the last row"
// @Success     200 {object} domain.APIEnvelope{data=object}
// @Failure     401 {object} domain.APIEnvelope
// @Router      /api/activities [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	me, ok := mw.UserFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	f := domain.ListFilter{
		Status:   domain.Status(r.URL.Query().Get("status")),
		Severity: domain.Severity(r.URL.Query().Get("severity")),
		Sort:     normalizeSort(r.URL.Query().Get("sort")),
		Limit:    50,
	}
	if f.Status != "" && !domain.ValidStatus(f.Status) {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}
	if f.Severity != "" && !domain.ValidSeverity(f.Severity) {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}
	// фильтр по чужому логину — только супервизору
	if login := r.URL.Query().Get("login"); login != "" {
		if !me.IsSupervisor() {
			v1.WriteDomainError(w, r, domain.ErrForbidden)
			return
		}
		f.FiscalLogin = login
	}
	if s := r.URL.Query().Get("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			v1.WriteDomainError(w, r, domain.ErrBadParams)
			return
		}
		f.From = t
	}
	if s := r.URL.Query().Get("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			v1.WriteDomainError(w, r, domain.ErrBadParams)
			return
		}
		f.To = t
	}
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 1000 {
			f.Limit = n
		}
	}
	// кейсет-курсор: after_created + after_id из последней строки
	// предыдущей страницы; с сортировкой по серьёзности не совместим
	if s := r.URL.Query().Get("after_created"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil || f.Sort == domain.SortBySeverityDesc {
			v1.WriteDomainError(w, r, domain.ErrBadParams)
			return
		}
		f.AfterCreated = t
		if s := r.URL.Query().Get("after_id"); s != "" {
			id, err := uuid.Parse(s)
			if err != nil {
				v1.WriteDomainError(w, r, domain.ErrBadParams)
				return
			}
			f.AfterID = id
		}
	}

	// кэш: ключ включает версию списков, мутации её двигают
	ckey := listCacheKey(me, f, h.listVersion(r.Context()))
	if b, err := h.Cache.Get(r.Context(), ckey); err != nil {
		h.Log.Printf("cache get list: %v", err)
	} else if b != nil {
		w.Header().Set("Cache-Control", "private, max-age=60")
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
		return
	}

	// промах: одинаковые запросы схлопываем в один поход в БД
	buf, err, _ := h.listFlight.Do(ckey, func() (any, error) {
		acts, err := h.Acts.ActivitiesList(r.Context(), me, f)
		if err != nil {
			return nil, err
		}
		out := struct {
			Activities []domain.Activity `json:"activities"`
		}{Activities: acts}
		if out.Activities == nil {
			out.Activities = []domain.Activity{}
		}
		env := domain.OkData(out)
		b, err := json.Marshal(env)
		if err != nil {
			return nil, err
		}
		_ = h.Cache.Set(r.Context(), ckey, b, h.ListTTL)
		return b, nil
	})
	if err != nil {
		h.Log.Printf("list: %v", err)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.([]byte))
}
