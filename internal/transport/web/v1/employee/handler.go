// Package employee — админ-операции супервизора над учётками.
package employee

import (
	"log"

	"github.com/brvnobarreto/activity-log-controller/internal/domain"
)

type Handler struct {
	Log   *log.Logger
	Users domain.UsersRepo
}

func NewHandler(l *log.Logger, users domain.UsersRepo) *Handler {
	return &Handler{Log: l, Users: users}
}
