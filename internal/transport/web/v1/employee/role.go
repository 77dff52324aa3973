package employee

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/brvnobarreto/activity-log-controller/internal/domain"
	"github.com/brvnobarreto/activity-log-controller/internal/transport/web/logx"
	"github.com/brvnobarreto/activity-log-controller/internal/transport/web/mw"
	v1 "github.com/brvnobarreto/activity-log-controller/internal/transport/web/v1"
)

type rolePatch struct {
	// роль приходит в разнобой: строка, список, объект с флагами —
	// все варианты нормализуются единым кодом
	Role any `json:"role"`
}

// UpdateRole godoc
// @Summary     Change employee role
// @Tags        employees
// @Accept      json
// @Produce     json
// @Param       id   path string    true "user id"
// @Param       body body rolePatch true "new role (string/list/flags)"
// @Success     200 {object} domain.APIEnvelope{response=domain.User}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Router      /api/employees/{id}/role [patch]
func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	const op = "employees.role"
	reqID := mw.RequestIDFromCtx(r.Context())

	idRaw, _ := url.PathUnescape(r.PathValue("id"))
	id, err := uuid.Parse(idRaw)
	if err != nil {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	var p rolePatch
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}
	role, ok := domain.NormalizeRole(p.Role)
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	u, err := h.Users.UpdateUserRole(r.Context(), id, role)
	if err != nil {
		logx.Error(h.Log, reqID, op, "db update failed", err)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "user_id", id, "role", u.Role)
	v1.WriteOKResponse(w, r, u)
}
