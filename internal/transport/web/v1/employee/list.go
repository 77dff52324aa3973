package employee

import (
	"net/http"

	"github.com/brvnobarreto/activity-log-controller/internal/domain"
	"github.com/brvnobarreto/activity-log-controller/internal/transport/web/logx"
	"github.com/brvnobarreto/activity-log-controller/internal/transport/web/mw"
	v1 "github.com/brvnobarreto/activity-log-controller/internal/transport/web/v1"
)

// List godoc
// @Summary     List employees
// @Description Список сотрудников (только супервизор).
// @Tags        employees
// @Produce     json
// @Success     200 {object} domain.APIEnvelope{data=object}
// @Failure     403 {object} domain.APIEnvelope
// @Router      /api/employees [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "employees.list"
	reqID := mw.RequestIDFromCtx(r.Context())

	users, err := h.Users.UsersList(r.Context())
	if err != nil {
		logx.Error(h.Log, reqID, op, "db list failed", err)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}
	if users == nil {
		users = []domain.User{}
	}
	v1.WriteOKData(w, r, struct {
		Employees []domain.User `json:"employees"`
	}{Employees: users})
}
