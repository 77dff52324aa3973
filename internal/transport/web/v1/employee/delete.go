package employee

import (
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/brvnobarreto/activity-log-controller/internal/domain"
	"github.com/brvnobarreto/activity-log-controller/internal/transport/web/logx"
	"github.com/brvnobarreto/activity-log-controller/internal/transport/web/mw"
	v1 "github.com/brvnobarreto/activity-log-controller/internal/transport/web/v1"
)

// Delete godoc
// @Summary     Delete employee
// @Description Удаляет учётку. Собственную учётку удалить нельзя.
// @Tags        employees
// @Produce     json
// @Param       id path string true "user id"
// @Success     200 {object} domain.APIEnvelope
// @Failure     400 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Router      /api/employees/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "employees.delete"
	reqID := mw.RequestIDFromCtx(r.Context())

	me, ok := mw.UserFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	idRaw, _ := url.PathUnescape(r.PathValue("id"))
	id, err := uuid.Parse(idRaw)
	if err != nil {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}
	if id == me.ID {
		// защита от выстрела себе в ногу
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	if err := h.Users.DeleteUser(r.Context(), id); err != nil {
		logx.Error(h.Log, reqID, op, "db delete failed", err)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "user_id", id)
	v1.WriteOKData(w, r, struct {
		Deleted bool `json:"deleted"`
	}{Deleted: true})
}
