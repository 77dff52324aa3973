package activity

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/brvnobarreto/activity-log-controller/internal/domain"
	"github.com/brvnobarreto/activity-log-controller/internal/transport/web/logx"
	"github.com/brvnobarreto/activity-log-controller/internal/transport/web/mw"
	v1 "github.com/brvnobarreto/activity-log-controller/internal/transport/web/v1"
)

// Delete godoc
// @Summary     Delete activity
// @Description Автор удаляет свою запись, супервизор — любую. Фото уходит из S3.
// @Tags        activities
// @Produce     json
// @Param       id path string true "activity id"
// @Success     200 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Router      /api/activities/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "activities.delete"
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
		v1.WriteDomainError(w, r, err)
		return
	}
	if !canSee(me, a) {
		v1.WriteDomainError(w, r, domain.ErrNotFound)
		return
	}

	// сначала БД: если не удалилось, фото остаётся консистентным
	if err := h.Acts.DeleteActivity(r.Context(), id); err != nil {
		logx.Error(h.Log, reqID, op, "db delete failed", err)
		v1.WriteDomainError(w, r, err)
		return
	}
	if a.HasPhoto && a.StorageKey != "" {
		if err := h.Storage.Delete(r.Context(), a.StorageKey); err != nil {
			// не фатально: на тот же контент могут ссылаться другие записи
			logx.Error(h.Log, reqID, op, "storage delete failed", err)
		}
	}

	_ = h.Cache.Del(r.Context(), domain.CacheKeyActivityMeta(id))
	h.bumpListVersion(r.Context())

	logx.Info(h.Log, reqID, op, "ok", "activity_id", id)
	v1.WriteOKData(w, r, struct {
		Deleted bool `json:"deleted"`
	}{Deleted: true})
}
