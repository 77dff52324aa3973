package activity

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/brvnobarreto/activity-log-controller/internal/domain"
	"github.com/brvnobarreto/activity-log-controller/internal/transport/web/logx"
	"github.com/brvnobarreto/activity-log-controller/internal/transport/web/mw"
	v1 "github.com/brvnobarreto/activity-log-controller/internal/transport/web/v1"
)

type statusPatch struct {
	Status string `json:"status" validate:"required,oneof=open in_review resolved"`
}

// UpdateStatus godoc
// @Summary     Change activity status
// @Description Автор может двигать статус своей записи, супервизор — любой.
// @Tags        activities
// @Accept      json
// @Produce     json
// @Param       id   path string      true "activity id"
// @Param       body body statusPatch true "new status"
// @Success     200 {object} domain.APIEnvelope{response=domain.Activity}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Router      /api/activities/{id}/status [patch]
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	const op = "activities.status"
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

	var p statusPatch
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}
	if err := h.Validate.Struct(p); err != nil {
		logx.Error(h.Log, reqID, op, "validation failed", err)
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

	out, err := h.Acts.UpdateStatus(r.Context(), id, domain.Status(p.Status))
	if err != nil {
		logx.Error(h.Log, reqID, op, "db update failed", err)
		v1.WriteDomainError(w, r, err)
		return
	}

	// запись поменялась: мета-кэш сносим, версию списков двигаем
	_ = h.Cache.Del(r.Context(), domain.CacheKeyActivityMeta(id))
	h.bumpListVersion(r.Context())

	logx.Info(h.Log, reqID, op, "ok", "activity_id", id, "status", out.Status)
	v1.WriteOKResponse(w, r, out)
}
