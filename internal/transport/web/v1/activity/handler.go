package activity

import (
	"log"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"

	"github.com/brvnobarreto/activity-log-controller/internal/domain"
)

type Handler struct {
	Log     *log.Logger
	Users   domain.UsersRepo
	Acts    domain.ActivitiesRepo
	Storage domain.BlobStorage
	Cache   domain.Cache

	Validate *validator.Validate

	ListTTL int // секунд
	ActTTL  int // секунд

	// гасим лавину одинаковых запросов списка при промахе Redis
	listFlight singleflight.Group
}

func NewHandler(l *log.Logger, users domain.UsersRepo, acts domain.ActivitiesRepo,
	storage domain.BlobStorage, cache domain.Cache, listTTL, actTTL int) *Handler {
	return &Handler{
		Log:      l,
		Users:    users,
		Acts:     acts,
		Storage:  storage,
		Cache:    cache,
		Validate: validator.New(),
		ListTTL:  listTTL,
		ActTTL:   actTTL,
	}
}
