package domain

import (
	"context"
	"time"
)

// Сортировка списков
type ListSort string

const (
	SortByCreatedDesc  ListSort = "created_desc"
	SortByCreatedAsc   ListSort = "created_asc"
	SortBySeverityDesc ListSort = "severity_desc"
)

// Фильтры и пагинация списка записей
type ListFilter struct {
	FiscalLogin string   // если пусто — все (для супервизора); фискал видит только свои
	Status      Status   // опционально
	Severity    Severity // опционально
	From        time.Time
	To          time.Time
	Limit       int
	Sort        ListSort
	// Кейсет пагинация
	AfterCreated time.Time
	AfterID      ActivityID
}

type UsersRepo interface {
	Close()
	Ping(context.Context) error
	CreateUser(ctx context.Context, login string, passHash []byte, role Role) (User, error)
	UserByLogin(ctx context.Context, login string) (User, error)
	UserByID(ctx context.Context, id UserID) (User, error)
	UsersList(ctx context.Context) ([]User, error)
	UpdateUserRole(ctx context.Context, id UserID, role Role) (User, error)
	DeleteUser(ctx context.Context, id UserID) error
}

type ActivitiesRepo interface {
	CreateActivity(ctx context.Context, a Activity) (Activity, error)
	ActivityByID(ctx context.Context, id ActivityID) (Activity, error)

	// Список с учётом роли: фискал — только свои, супервизор — по фильтру
	ActivitiesList(ctx context.Context, me User, f ListFilter) ([]Activity, error)

	// Смена статуса (поднимает версию/updated_at)
	UpdateStatus(ctx context.Context, id ActivityID, st Status) (Activity, error)
	DeleteActivity(ctx context.Context, id ActivityID) error

	// Агрегат для отчёта супервизора
	StatusSummary(ctx context.Context) ([]SummaryRow, error)
}
