// Package report — агрегированная сводка для супервизора.
package report

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/brvnobarreto/activity-log-controller/internal/domain"
	"github.com/brvnobarreto/activity-log-controller/internal/transport/web/logx"
	"github.com/brvnobarreto/activity-log-controller/internal/transport/web/mw"
	v1 "github.com/brvnobarreto/activity-log-controller/internal/transport/web/v1"
)

// сводка живёт недолго: мутации сбрасывают ключ, TTL — страховка
const summaryTTLSeconds = 30

type Handler struct {
	Log   *log.Logger
	Acts  domain.ActivitiesRepo
	Cache domain.Cache
}

func NewHandler(l *log.Logger, acts domain.ActivitiesRepo, cache domain.Cache) *Handler {
	return &Handler{Log: l, Acts: acts, Cache: cache}
}

type summaryOut struct {
	Rows  []domain.SummaryRow `json:"rows"`
	Total int64               `json:"total"`
}

// Summary godoc
// @Summary     Status/severity breakdown
// @Description Счётчики записей по статусам и серьёзности (только супервизор).
// @Tags        reports
// @Produce     json
// @Success     200 {object} domain.APIEnvelope{data=summaryOut}
// @Failure     403 {object} domain.APIEnvelope
// @Router      /api/reports/summary [get]
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	const op = "reports.summary"
	reqID := mw.RequestIDFromCtx(r.Context())

	key := domain.CacheKeySummary()
	if b, err := h.Cache.Get(r.Context(), key); err != nil {
		h.Log.Printf("cache get summary: %v", err)
	} else if b != nil {
		var out summaryOut
		if err := json.Unmarshal(b, &out); err == nil {
			v1.WriteOKData(w, r, out)
			return
		}
		_ = h.Cache.Del(r.Context(), key)
	}

	rows, err := h.Acts.StatusSummary(r.Context())
	if err != nil {
		logx.Error(h.Log, reqID, op, "db summary failed", err)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}
	if rows == nil {
		rows = []domain.SummaryRow{}
	}
	out := summaryOut{Rows: rows}
	for _, row := range rows {
		out.Total += row.Count
	}

	if b, err := json.Marshal(out); err == nil {
		_ = h.Cache.Set(r.Context(), key, b, summaryTTLSeconds)
	}
	v1.WriteOKData(w, r, out)
}
