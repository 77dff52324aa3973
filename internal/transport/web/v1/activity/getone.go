package activity

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/brvnobarreto/activity-log-controller/internal/domain"
	"github.com/brvnobarreto/activity-log-controller/internal/transport/web/logx"
	"github.com/brvnobarreto/activity-log-controller/internal/transport/web/mw"
	v1 "github.com/brvnobarreto/activity-log-controller/internal/transport/web/v1"
)

// metaCacheRec — то, что лежит в Redis под actmeta:<id>.
// Activity сам по себе прячет Version/SHA из JSON, поэтому кэшируем обёртку.
type metaCacheRec struct {
	Activity   domain.Activity `json:"activity"`
	Version    int64           `json:"version"`
	SHA256     []byte          `json:"sha256,omitempty"`
	StorageKey string          `json:"storage_key,omitempty"`
	PhotoSize  int64           `json:"photo_size,omitempty"`
}

// loadActivity достаёт запись из Redis либо из БД (с прогревом кэша)
func (h *Handler) loadActivity(ctx context.Context, id domain.ActivityID) (domain.Activity, error) {
	key := domain.CacheKeyActivityMeta(id)
	if b, err := h.Cache.Get(ctx, key); err != nil {
		h.Log.Printf("cache get meta: %v", err)
	} else if b != nil {
		var rec metaCacheRec
		if err := json.Unmarshal(b, &rec); err == nil {
			a := rec.Activity
			a.Version = rec.Version
			a.SHA256 = rec.SHA256
			a.StorageKey = rec.StorageKey
			a.PhotoSize = rec.PhotoSize
			return a, nil
		}
		// битый кэш — сносим и идём в БД
		_ = h.Cache.Del(ctx, key)
	}

	a, err := h.Acts.ActivityByID(ctx, id)
	if err != nil {
		return domain.Activity{}, err
	}
	rec := metaCacheRec{
		Activity:   a,
		Version:    a.Version,
		SHA256:     a.SHA256,
		StorageKey: a.StorageKey,
		PhotoSize:  a.PhotoSize,
	}
	if b, err := json.Marshal(rec); err == nil {
		_ = h.Cache.Set(ctx, key, b, h.ActTTL)
	}
	return a, nil
}

// canSee: фискал видит только собственные записи
func canSee(me domain.User, a domain.Activity) bool {
	return me.IsSupervisor() || a.FiscalID == me.ID
}

// GetOne godoc
// @Summary     Get activity by id
// @Tags        activities
// @Produce     json
// @Param       id path string true "activity id"
// @Success     200 {object} domain.APIEnvelope{response=domain.Activity}
// @Failure     304 "Not Modified"
// @Failure     404 {object} domain.APIEnvelope
// @Router      /api/activities/{id} [get]
func (h *Handler) GetOne(w http.ResponseWriter, r *http.Request) {
	const op = "activities.get"
	reqID := mw.RequestIDFromCtx(r.Context())

	me, ok := mw.UserFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}
	id, err := uuid.Parse(unescape(r.PathValue("id")))
	if err != nil {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	a, err := h.loadActivity(r.Context(), id)
	if err != nil {
		logx.Error(h.Log, reqID, op, "load failed", err)
		v1.WriteDomainError(w, r, err)
		return
	}
	// чужие записи для фискала неотличимы от несуществующих
	if !canSee(me, a) {
		v1.WriteDomainError(w, r, domain.ErrNotFound)
		return
	}

	et := weakETag(a.Version, a.SHA256)
	w.Header().Set("ETag", et)
	w.Header().Set("Last-Modified", httpTime(a.UpdatedAt))
	if r.Header.Get("If-None-Match") == et {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	v1.WriteOKResponse(w, r, a)
}
